package actor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/events"
	"github.com/berfenger/ecovolter2mqtt/internal/core/port"
	"github.com/berfenger/ecovolter2mqtt/internal/core/service"
	"github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"
	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

const (
	// four sequential calls at most
	REFRESH_TASK_TIMEOUT = 4*ecovolter.DEFAULT_TIMEOUT + 5*time.Second
	WRITE_TASK_TIMEOUT   = ecovolter.DEFAULT_TIMEOUT + 5*time.Second
)

type ChargerActor struct {
	actorutil.ActorWithStates
	serial      string
	coordinator *service.RefreshCoordinator
	registry    *service.PointRegistry
	writer      port.ChargerWriter
	eventStream *eventstream.EventStream
	stash       *actorutil.Stash
	logger      *zap.Logger

	idle       *chargerIdleState
	refreshing *chargerRefreshingState
	writing    *chargerWritingState

	waiters   []*actor.PID
	lastError error
}

type refreshResult struct {
	snapshot *domain.Snapshot
	err      error
}

type writeResult struct {
	replyTo *actor.PID
	pointId string
	patch   map[string]any
	err     error
}

func NewChargerActor(serial string, client port.ChargerClient, registry *service.PointRegistry,
	eventStream *eventstream.EventStream, logger *zap.Logger) *ChargerActor {
	actorLogger := actorutil.ActorLogger(domain.ACTOR_ID_CHARGER, logger)
	act := &ChargerActor{
		ActorWithStates: actorutil.NewActorWithStates(nil),
		serial:          serial,
		coordinator:     service.NewRefreshCoordinator(client, actorLogger),
		registry:        registry,
		writer:          client,
		eventStream:     eventStream,
		stash:           &actorutil.Stash{},
		logger:          actorLogger,
	}
	act.idle = &chargerIdleState{act}
	act.refreshing = &chargerRefreshingState{act}
	act.writing = &chargerWritingState{act}
	act.Become(act.idle)
	return act
}

func (state *ChargerActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Latest is safe to call from any goroutine.
func (state *ChargerActor) Latest() *domain.Snapshot {
	return state.coordinator.Latest()
}

// handleCommon answers the messages every state serves the same way. Reads
// never wait for an in-flight cycle.
func (state *ChargerActor) handleCommon(ctx actor.Context) bool {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("charger@started")
		root := ctx.ActorSystem().Root
		self := ctx.Self()
		state.registry.OnWritten(func(pointId string) {
			root.Send(self, domain.RefreshRequest{Reason: "write " + pointId})
		})
	case domain.ActorHealthRequest:
		state.logger.Debug(fmt.Sprintf("charger@%s ActorHealthRequest", state.StateName()))
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_CHARGER,
			Healthy: !errors.Is(state.lastError, service.ErrReauthRequired),
			State:   state.StateName(),
		})
	case domain.GetPointsRequest:
		actorutil.ForRequest(msg).Respond(ctx, state.getPoints(msg))
	case domain.GetDeviceInfoRequest:
		actorutil.ForRequest(msg).Respond(ctx, domain.GetDeviceInfoResponse{
			Serial:   state.serial,
			Points:   state.registry.Points(),
			Snapshot: state.coordinator.Latest(),
		})
	default:
		return false
	}
	return true
}

func (state *ChargerActor) getPoints(msg domain.GetPointsRequest) domain.GetPointsResponse {
	snap := state.coordinator.Latest()
	var resp domain.GetPointsResponse
	if snap != nil {
		resp.UpdatedAt = snap.UpdatedAt.UTC().Format(time.RFC3339)
	}
	if msg.PointId == "" {
		resp.Points = state.registry.ReadAll(snap)
		return resp
	}
	pv, err := state.registry.Read(snap, msg.PointId)
	if err != nil {
		resp.ResponseError = err
		return resp
	}
	resp.Points = []domain.PointValue{pv}
	return resp
}

func (state *ChargerActor) startRefresh(ctx actor.Context) {
	actorutil.NewBackgroundTask(ctx, func() (*refreshResult, error) {
		taskCtx, cancel := context.WithTimeout(context.Background(), REFRESH_TASK_TIMEOUT)
		defer cancel()
		snap, err := state.coordinator.Refresh(taskCtx)
		if err != nil {
			return nil, err
		}
		return &refreshResult{snapshot: snap}, nil
	}).Recover(func(err error) refreshResult {
		return refreshResult{err: taskError(err)}
	}).WithTimeout(REFRESH_TASK_TIMEOUT).PipeTo(ctx.Self())
	state.Become(state.refreshing)
}

func (state *ChargerActor) addWaiter(ctx actor.Context, msg domain.RefreshRequest) {
	if replyTo := actorutil.ForRequest(msg).ReplyTo(ctx); replyTo != nil {
		state.waiters = append(state.waiters, replyTo)
	}
}

func (state *ChargerActor) finishRefresh(ctx actor.Context, result refreshResult) {
	state.lastError = result.err
	if result.err != nil {
		state.logger.Error("charger@refreshing cycle failed", zap.Error(result.err))
		state.eventStream.Publish(events.ChargerAvailabilityUpdateEvent(false))
	} else {
		state.eventStream.Publish(domain.SnapshotUpdatedEvent{Snapshot: result.snapshot})
		state.eventStream.Publish(events.ChargerAvailabilityUpdateEvent(true))
		for _, ev := range events.SnapshotToUpdateEvents(state.registry.Points(), result.snapshot) {
			state.eventStream.Publish(ev)
		}
	}

	resp := domain.RefreshResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: result.err},
		Snapshot:           result.snapshot,
	}
	for _, w := range state.waiters {
		ctx.Send(w, resp)
	}
	state.waiters = nil
}

func (state *ChargerActor) startWrite(ctx actor.Context, msg domain.WritePointRequest) {
	replyTo := actorutil.ForRequest(msg).ReplyTo(ctx)
	snap := state.coordinator.Latest()
	actorutil.NewBackgroundTask(ctx, func() (*writeResult, error) {
		taskCtx, cancel := context.WithTimeout(context.Background(), WRITE_TASK_TIMEOUT)
		defer cancel()
		patch, err := state.registry.Write(taskCtx, snap, state.writer, msg.PointId, msg.Value)
		if err != nil {
			return nil, err
		}
		return &writeResult{replyTo: replyTo, pointId: msg.PointId, patch: patch}, nil
	}).Recover(func(err error) writeResult {
		return writeResult{replyTo: replyTo, pointId: msg.PointId, err: taskError(err)}
	}).WithTimeout(WRITE_TASK_TIMEOUT).PipeTo(ctx.Self())
	state.Become(state.writing)
}

func (state *ChargerActor) finishWrite(ctx actor.Context, result writeResult) {
	if errors.Is(result.err, service.ErrReauthRequired) {
		state.lastError = result.err
	}
	if result.replyTo == nil {
		return
	}
	resp := domain.WritePointResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{ResponseError: result.err},
		PointId:            result.pointId,
	}
	if result.err == nil {
		for _, v := range result.patch {
			resp.Sent = v
		}
	}
	ctx.Send(result.replyTo, resp)
}

var classifiedErrors = []error{
	service.ErrReauthRequired,
	service.ErrUpdateFailed,
	domain.ErrUnknownPoint,
	domain.ErrReadOnly,
	domain.ErrInvalidValue,
	domain.ErrOutOfRange,
	domain.ErrUnknownCurrency,
	domain.ErrNoSnapshot,
}

// taskError keeps errors the coordinator and registry already classified.
// Anything else (task timeout, panic) is a failed update.
func taskError(err error) error {
	for _, known := range classifiedErrors {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %w", service.ErrUpdateFailed, err)
}

type chargerIdleState struct {
	*ChargerActor
}

func (s *chargerIdleState) Name() string {
	return "idle"
}

func (s *chargerIdleState) Receive(ctx actor.Context) {
	if s.handleCommon(ctx) {
		return
	}
	switch msg := ctx.Message().(type) {
	case domain.RefreshRequest:
		s.logger.Debug("charger@idle RefreshRequest", zap.String("reason", msg.Reason))
		s.addWaiter(ctx, msg)
		s.startRefresh(ctx)
	case domain.WritePointRequest:
		s.logger.Debug("charger@idle WritePointRequest", zap.String("point", msg.PointId))
		s.startWrite(ctx, msg)
	default:
		s.logger.Debug("charger@idle default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

type chargerRefreshingState struct {
	*ChargerActor
}

func (s *chargerRefreshingState) Name() string {
	return "refreshing"
}

func (s *chargerRefreshingState) Receive(ctx actor.Context) {
	if s.handleCommon(ctx) {
		return
	}
	switch msg := ctx.Message().(type) {
	case domain.RefreshRequest:
		// coalesce onto the cycle in flight
		s.logger.Debug("charger@refreshing RefreshRequest joined", zap.String("reason", msg.Reason))
		s.addWaiter(ctx, msg)
	case refreshResult:
		s.finishRefresh(ctx, msg)
		s.Become(s.idle)
		s.stash.UnstashAll(ctx)
	default:
		s.logger.Debug("charger@refreshing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		s.stash.Stash(ctx, msg)
	}
}

type chargerWritingState struct {
	*ChargerActor
}

func (s *chargerWritingState) Name() string {
	return "writing"
}

func (s *chargerWritingState) Receive(ctx actor.Context) {
	if s.handleCommon(ctx) {
		return
	}
	switch msg := ctx.Message().(type) {
	case writeResult:
		s.finishWrite(ctx, msg)
		s.Become(s.idle)
		s.stash.UnstashAll(ctx)
	default:
		s.logger.Debug("charger@writing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		s.stash.Stash(ctx, msg)
	}
}
