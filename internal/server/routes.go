package server

import (
	"errors"
	"net/http"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type writePointBody struct {
	Value any `json:"value"`
}

type pointsBody struct {
	UpdatedAt string              `json:"updated_at,omitempty"`
	Points    []domain.PointValue `json:"points"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)

	api := e.Group("/api")
	api.GET("/points", s.GetPointsHandler)
	api.GET("/points/:id", s.GetPointHandler)
	api.PUT("/points/:id", s.WritePointHandler)
	api.POST("/refresh", s.RefreshHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, READ_TIMEOUT).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) GetPointsHandler(c echo.Context) error {
	resp, err := s.getPoints("")
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, pointsBody{UpdatedAt: resp.UpdatedAt, Points: resp.Points})
}

func (s *Server) GetPointHandler(c echo.Context) error {
	resp, err := s.getPoints(c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	if len(resp.Points) != 1 {
		return errorResponse(c, domain.ErrUnknownPoint)
	}
	return c.JSON(http.StatusOK, resp.Points[0])
}

func (s *Server) WritePointHandler(c echo.Context) error {
	var body writePointBody
	if err := c.Bind(&body); err != nil || body.Value == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "body must be {\"value\": ...}"})
	}
	resp, err := domain.AwaitResponse[domain.WritePointResponse](s.rootContext.RequestFuture(s.masterActor, domain.WritePointRequest{
		PointId: c.Param("id"),
		Value:   body.Value,
	}, s.requestTimeout).Result())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"id": resp.PointId, "sent": resp.Sent})
}

func (s *Server) RefreshHandler(c echo.Context) error {
	_, err := domain.AwaitResponse[domain.RefreshResponse](s.rootContext.RequestFuture(s.masterActor, domain.RefreshRequest{Reason: "http"}, s.requestTimeout).Result())
	if err != nil {
		return errorResponse(c, err)
	}
	return s.GetPointsHandler(c)
}

func (s *Server) getPoints(id string) (domain.GetPointsResponse, error) {
	return domain.AwaitResponse[domain.GetPointsResponse](s.rootContext.RequestFuture(s.masterActor, domain.GetPointsRequest{PointId: id}, READ_TIMEOUT).Result())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownPoint):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrOutOfRange),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrReadOnly):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSnapshot):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrReauthRequired):
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(statusOf(err), errorBody{Error: err.Error()})
}
