package actor

import (
	"errors"
	"fmt"
	"time"

	adactor "github.com/berfenger/ecovolter2mqtt/internal/adapter/actor"
	"github.com/berfenger/ecovolter2mqtt/internal/config"
	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/service"
	. "github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

const (
	REFRESH_RESPONSE_TIMEOUT = adactor.REFRESH_TASK_TIMEOUT + 5*time.Second
)

// PollerActor drives periodic refresh cycles on the charger actor.
type PollerActor struct {
	behavior  actor.Behavior
	stash     *Stash
	scheduler *scheduler.TimerScheduler
	cancel    scheduler.CancelFunc

	chargerActor *actor.PID
	interval     time.Duration
	lastError    error

	logger *zap.Logger
}

type pollTick struct {
}

func NewPollerActor(config *config.Config, chargerActor *actor.PID, logger *zap.Logger) *PollerActor {
	act := &PollerActor{
		chargerActor: chargerActor,
		interval:     config.Charger.PollInterval(),
		behavior:     actor.NewBehavior(),
		stash:        &Stash{},
		logger:       ActorLogger(domain.ACTOR_ID_POLLER, logger),
	}
	act.behavior.Become(act.DefaultReceive)
	return act
}

func (state *PollerActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *PollerActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("poller@default started", zap.Duration("interval", state.interval))
		state.scheduler = scheduler.NewTimerScheduler(ctx)
		// first cycle right away
		ctx.Send(ctx.Self(), pollTick{})
	case *actor.Stopping:
		state.stopTicks()
	case domain.ActorHealthRequest:
		state.logger.Debug("poller@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: true,
			State:   "polling",
		})
	case pollTick:
		state.logger.Debug("poller@default tick")
		state.cancel = state.scheduler.RequestOnce(state.interval, ctx.Self(), pollTick{})
		// cycles run one at a time on the charger, so this never piles up
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.chargerActor, domain.RefreshRequest{Reason: "poll"}, REFRESH_RESPONSE_TIMEOUT), func(err error) any {
			return domain.RefreshResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: fmt.Errorf("%w: %w", service.ErrUpdateFailed, err),
				},
			}
		})
	case domain.RefreshResponse:
		state.lastError = msg.GetResponseError()
		if errors.Is(state.lastError, service.ErrReauthRequired) {
			state.logger.Error("poller@default charger rejected credentials, polling stopped", zap.Error(state.lastError))
			state.stopTicks()
			state.behavior.Become(state.ReauthReceive)
			return
		}
		if msg.HasResponseError() {
			// retried on the next tick
			state.logger.Warn("poller@default refresh failed", zap.Error(msg.GetResponseError()))
		}
	default:
		state.logger.Debug("poller@default: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// ReauthReceive is terminal until restart with new credentials.
func (state *PollerActor) ReauthReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_POLLER,
			Healthy: false,
			State:   "reauth_required",
		})
	case *actor.Stopping:
		state.stopTicks()
	default:
		state.logger.Debug("poller@reauth: ignored", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *PollerActor) stopTicks() {
	if state.cancel != nil {
		state.cancel()
		state.cancel = nil
	}
}
