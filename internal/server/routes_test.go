package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/berfenger/ecovolter2mqtt/internal/config"
	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/service"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMaster answers like the master actor would for a charger with one
// point.
func fakeMaster(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{Id: domain.ACTOR_ID_MASTER, Healthy: true})
	case domain.GetPointsRequest:
		if msg.PointId != "" && msg.PointId != "target_current" {
			ctx.Respond(domain.GetPointsResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: fmt.Errorf("%w: %s", domain.ErrUnknownPoint, msg.PointId)},
			})
			return
		}
		ctx.Respond(domain.GetPointsResponse{
			UpdatedAt: "2024-05-01T12:00:00Z",
			Points: []domain.PointValue{{
				Id: "target_current", Key: "targetCurrent", Kind: domain.POINT_KIND_NUMBER, Value: 10.0, Available: true,
			}},
		})
	case domain.WritePointRequest:
		resp := domain.WritePointResponse{PointId: msg.PointId}
		switch msg.PointId {
		case "currency":
			resp.ResponseError = domain.ErrUnknownCurrency
		case "locked":
			resp.ResponseError = fmt.Errorf("%w: settings", service.ErrReauthRequired)
		case "offline":
			resp.ResponseError = fmt.Errorf("%w: settings", service.ErrUpdateFailed)
		default:
			resp.Sent = msg.Value
		}
		ctx.Respond(resp)
	case domain.RefreshRequest:
		ctx.Respond(domain.RefreshResponse{Snapshot: &domain.Snapshot{}})
	}
}

func testServer(t *testing.T) http.Handler {
	system := actor.NewActorSystem()
	pid := system.Root.Spawn(actor.PropsFromFunc(fakeMaster))
	t.Cleanup(func() {
		system.Root.Stop(pid)
		system.Shutdown()
	})
	return newServer(config.Config{}, system.Root, pid).RegisterRoutes()
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := do(testServer(t), http.MethodGet, "/healthcheck", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "health_check: OK", rec.Body.String())
}

func TestGetPoints(t *testing.T) {
	h := testServer(t)

	rec := do(h, http.MethodGet, "/api/points", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body pointsBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2024-05-01T12:00:00Z", body.UpdatedAt)
	require.Len(t, body.Points, 1)
	assert.Equal(t, "target_current", body.Points[0].Id)

	rec = do(h, http.MethodGet, "/api/points/target_current", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/points/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWritePoint(t *testing.T) {
	h := testServer(t)

	rec := do(h, http.MethodPut, "/api/points/target_current", `{"value": 12}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"target_current","sent":12}`, rec.Body.String())

	rec = do(h, http.MethodPut, "/api/points/target_current", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/api/points/currency", `{"value": "GBP"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/api/points/locked", `{"value": true}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPut, "/api/points/offline", `{"value": true}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRefresh(t *testing.T) {
	rec := do(testServer(t), http.MethodPost, "/api/refresh", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(domain.ErrNoSnapshot))
	assert.Equal(t, http.StatusBadRequest, statusOf(fmt.Errorf("point x: %w", domain.ErrOutOfRange)))
	assert.Equal(t, http.StatusBadGateway, statusOf(fmt.Errorf("boom")))
}
