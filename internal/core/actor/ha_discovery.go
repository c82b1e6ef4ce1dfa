package actor

import (
	"errors"
	"fmt"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/config"
	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type HADiscoveryActor struct {
	config              *config.Config
	behavior            actor.Behavior
	stash               *actorutil.Stash
	chargerActor        *actor.PID
	mqttActor           *actor.PID
	eventStream         *eventstream.EventStream
	eventStreamSub      *eventstream.Subscription
	chargerActorHealthy bool
	mqttActorHealthy    bool
	healthyRecv         int

	serial      string
	points      []domain.Point
	fingerprint string

	logger *zap.Logger
}

type snapshotChanged struct {
	snapshot *domain.Snapshot
}

func NewHADiscoveryActor(config *config.Config, chargerActor *actor.PID, mqttActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *HADiscoveryActor {
	act := &HADiscoveryActor{
		config:       config,
		chargerActor: chargerActor,
		mqttActor:    mqttActor,
		eventStream:  eventStream,
		behavior:     actor.NewBehavior(),
		stash:        &actorutil.Stash{},
		logger:       actorutil.ActorLogger(domain.ACTOR_ID_HA_DISCOVERY, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *HADiscoveryActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *HADiscoveryActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("hadiscovery@starting started")

		// Check charger and MQTT actor healthy
		state.healthyRecv = 0
		state.chargerActorHealthy = false
		state.mqttActorHealthy = false
		// Charger Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.chargerActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_CHARGER,
				Healthy: false,
			}
		})
		// MQTT Actor Request
		actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.mqttActor, domain.ActorHealthRequest{}, 2*time.Second), func(err error) any {
			return domain.ActorHealthResponse{
				Id:      domain.ACTOR_ID_MQTT,
				Healthy: false,
			}
		})
		state.behavior.Become(state.WaitingHealthyReceive)
	case *actor.Restarting:
		state.unsubscribe()
	default:
		state.logger.Debug("hadiscovery@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingHealthyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthResponse:
		state.logger.Debug("hadiscovery@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.healthyRecv++
		if msg.Healthy {
			switch msg.Id {
			case domain.ACTOR_ID_CHARGER:
				state.chargerActorHealthy = true
			case domain.ACTOR_ID_MQTT:
				state.mqttActorHealthy = true
			}
		}
		if state.healthyRecv == 2 {

			if state.chargerActorHealthy && state.mqttActorHealthy {
				// Ask charger GetDeviceInfoRequest
				actorutil.PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.chargerActor, domain.GetDeviceInfoRequest{}, 2*time.Second), func(err error) any {
					return domain.GetDeviceInfoResponse{
						ActorResponseMixIn: domain.ActorResponseMixIn{
							ResponseError: err,
						},
					}
				})
				state.behavior.Become(state.WaitingInfoReceive)
				state.stash.UnstashAll(ctx)
			} else {
				panic(errors.New("MQTT Actor or Charger Actor are not healthy"))
			}
		}
	default:
		state.logger.Debug("hadiscovery@healthcheck: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *HADiscoveryActor) WaitingInfoReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetDeviceInfoResponse:
		if msg.HasResponseError() {
			panic(msg.GetResponseError())
		}
		state.logger.Debug("hadiscovery@info: GetDeviceInfoResponse", zap.String("serial", msg.Serial))
		state.serial = msg.Serial
		state.points = msg.Points

		// keep discovery in sync with dynamic bounds
		root := ctx.ActorSystem().Root
		self := ctx.Self()
		state.eventStreamSub = state.eventStream.SubscribeWithPredicate(func(evt any) {
			root.Send(self, snapshotChanged{snapshot: evt.(domain.SnapshotUpdatedEvent).Snapshot})
		}, func(evt any) bool {
			_, ok := evt.(domain.SnapshotUpdatedEvent)
			return ok
		})

		state.publish(ctx, msg.Snapshot)
		state.behavior.Become(state.PublishedReceive)
	case *actor.Restarting:
		state.unsubscribe()
	default:
		state.logger.Debug("hadiscovery@info: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) PublishedReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case snapshotChanged:
		fingerprint := domain.DiscoveryFingerprint(state.points, msg.snapshot)
		if fingerprint == state.fingerprint {
			return
		}
		state.logger.Info("hadiscovery@published bounds changed, republishing")
		state.publish(ctx, msg.snapshot)
	case *actor.Stopping, *actor.Restarting:
		state.unsubscribe()
	default:
		state.logger.Debug("hadiscovery@published: default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *HADiscoveryActor) publish(ctx actor.Context, snap *domain.Snapshot) {
	d := domain.BuildDiscovery(state.config.MQTT.BaseTopic, state.serial, state.points, snap)
	state.fingerprint = domain.DiscoveryFingerprint(state.points, snap)
	ctx.Send(state.mqttActor, domain.PublishDiscoveryRequest{
		Sensors:      d.Sensors,
		Switches:     d.Switches,
		InputNumbers: d.InputNumbers,
		Selects:      d.Selects,
	})
}

func (state *HADiscoveryActor) unsubscribe() {
	if state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
}
