package actor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/config"
	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/mqtt"
	"github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type MQTTActor struct {
	config         *config.Config
	behavior       actor.Behavior
	stash          *actorutil.Stash
	client         *mqtt.MQTTClient
	eventStream    *eventstream.EventStream
	eventStreamSub *eventstream.Subscription
	logger         *zap.Logger
}

type MQTTConnected struct {
}

type MQTTSubscribed struct {
}

type MQTTConnectionLost struct {
	Error error
}

type publishResult struct {
	Topic        string
	ReplyTo      *actor.PID
	SensorUpdate bool
	Error        error
}

type ParsedCommand struct {
	Command *mqtt.ParsedMQTTCommand
}

type rawMessage struct {
	topic   string
	message string
	retain  bool
}

func NewMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MQTTActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MQTTActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("mqtt@starting started")
		// paho callbacks run on their own goroutines
		root, self := ctx.ActorSystem().Root, ctx.Self()

		// create MQTT client
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), func(_ pahomqtt.Client) {
		}, func(_ pahomqtt.Client, err error) {
			root.Send(self, MQTTConnectionLost{Error: err})
		})

		// connect to MQTT server
		state.client.Connect(func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTConnected{})
			}
		}, 10*time.Second)

	case MQTTConnected:
		state.logger.Debug("mqtt@starting connected")
		root, self := ctx.ActorSystem().Root, ctx.Self()

		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_ONLINE, 0, true, func(error) {}, 500*time.Millisecond)

		// state events from the charger
		state.subscribeEventStream(ctx)

		// subscribe to MQTT command topic
		state.client.SubscribeToCommandTopic(func(c pahomqtt.Client, m pahomqtt.Message) {
			cmd, err := state.client.ParseMQTTCommand(m)
			if err == nil && cmd != nil {
				root.Send(self, ParsedCommand{Command: cmd})
			}
		}, func(err error) {
			if err != nil {
				root.Send(self, MQTTConnectionLost{Error: err})
			} else {
				root.Send(self, MQTTSubscribed{})
			}
		}, 1*time.Second)
	case MQTTSubscribed:
		// init completed, transition to default state
		state.logger.Debug("mqtt@starting subscribed")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@starting connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	case *actor.Restarting:
		state.stop()
	default:
		state.logger.Debug("mqtt@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MQTTActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Restarting:
		state.stop()
	case *actor.Stopping:
		state.stop()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case ParsedCommand:
		// route command to parent
		state.logger.Debug("mqtt@default parsedCommand", zap.Any("command", msg.Command))
		ctx.Send(ctx.Parent(), msg)
	case domain.PublishMessageRequest:
		state.logger.Debug("mqtt@default PublishMessageRequest", zap.Any("message", msg))
		state.publish(ctx, msg.Topic, msg.Payload, msg.Retain, actorutil.ForRequest(msg).ReplyTo(ctx), false)
	case domain.PublishSensorUpdateRequest:
		// receive message from event bus and publish to MQTT if needed
		state.logger.Debug("mqtt@default PublishSensorUpdateRequest", zap.String("id", msg.Event.SensorId()), zap.String("kind", string(msg.Event.PointKind())))
		state.publishSensorValue(ctx, msg.Event, msg.Retain, actorutil.ForRequest(msg).ReplyTo(ctx))
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@default PublishHADiscovery")
		err := state.PublishHomeAssistantDiscovery(ctx, msg)
		if err != nil {
			state.logger.Error("mqtt@default PublishHADiscovery error", zap.Error(err))
		}
	case MQTTConnectionLost:
		// if connection lost, stop actor and let supervisor decide
		state.logger.Error("mqtt@default connection lost", zap.Error(msg.Error))
		panic(msg.Error)
	default:
		state.logger.Debug("mqtt@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MQTTActor) event2MQTTMessage(event any) *rawMessage {
	switch msg := event.(type) {
	case domain.FloatSensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.SensorStateTopic(msg.Id),
			message: fmt.Sprintf(fmt.Sprintf("%%.%df", msg.Decimals), msg.Value),
		}
	case domain.BinarySensorUpdateEvent:
		return &rawMessage{
			topic:   state.client.BinarySensorStateTopic(msg.Id),
			message: bool2MQTTPayload(msg.Value),
		}
	case domain.SwitchUpdateEvent:
		return &rawMessage{
			topic:   state.client.SwitchStateTopic(msg.Id),
			message: bool2MQTTPayload(msg.Value),
			retain:  true,
		}
	case domain.NumberUpdateEvent:
		return &rawMessage{
			topic:   state.client.InputNumberStateTopic(msg.Id),
			message: fmt.Sprintf(fmt.Sprintf("%%.%df", msg.Decimals), msg.Value),
			retain:  true,
		}
	case domain.SelectUpdateEvent:
		return &rawMessage{
			topic:   state.client.SelectStateTopic(msg.Id),
			message: msg.Value,
			retain:  true,
		}
	case domain.ChargerAvailabilityEvent:
		return &rawMessage{
			topic:   state.client.ChargerStateTopic(),
			message: online2MQTTPayload(msg.Online),
			retain:  true,
		}
	default:
		return nil
	}
}

func (state *MQTTActor) publishSensorValue(ctx actor.Context, event domain.SensorUpdateEvent, retain bool, replyTo *actor.PID) {
	msg := state.event2MQTTMessage(event)
	if msg == nil {
		return
	}
	state.publish(ctx, msg.topic, msg.message, msg.retain || retain, replyTo, true)
}

func (state *MQTTActor) publish(ctx actor.Context, topic, payload string, retain bool, replyTo *actor.PID, sensorUpdate bool) {
	state.logger.Sugar().Debugf("mqtt@publish: %s => %s", topic, payload)
	root, self := ctx.ActorSystem().Root, ctx.Self()
	state.client.Publish(topic, payload, 1, retain, func(err error) {
		root.Send(self, publishResult{Topic: topic, ReplyTo: replyTo, SensorUpdate: sensorUpdate, Error: err})
	}, 5*time.Second)
	state.behavior.BecomeStacked(state.PublishResultReceive)
}

// PublishResultReceive holds every other message until the broker acked.
func (state *MQTTActor) PublishResultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case publishResult:
		if msg.Error != nil {
			state.logger.Error("mqtt@publishing could not publish a message", zap.String("topic", msg.Topic), zap.Error(msg.Error))
		}
		if msg.ReplyTo != nil {
			ctx.Send(msg.ReplyTo, msg.response())
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashOldest(ctx)
	default:
		state.logger.Debug("mqtt@publishing stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (r publishResult) response() domain.ActorResponse {
	mixIn := domain.ActorResponseMixIn{ResponseError: r.Error}
	if r.SensorUpdate {
		return domain.PublishSensorUpdateResponse{ActorResponseMixIn: mixIn}
	}
	return domain.PublishMessageResponse{ActorResponseMixIn: mixIn}
}

func (state *MQTTActor) PublishHomeAssistantDiscovery(ctx actor.Context, req domain.PublishDiscoveryRequest) error {
	publish := func(topic string, msg mqtt.HADiscoveryConfig) error {
		payload, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		state.client.Publish(topic, payload, 0, true, func(error) {}, 1*time.Second)
		return nil
	}
	for i := range req.Sensors {
		msg := mqtt.GenericSensorToHADiscoveryMessage(state.client, req.Sensors[i])
		if err := publish(state.client.HADiscoverySensorTopic(req.Sensors[i]), msg); err != nil {
			return err
		}
	}
	for i := range req.Switches {
		msg := mqtt.GenericSwitchToHADiscoveryMessage(state.client, req.Switches[i])
		if err := publish(state.client.HADiscoverySwitchTopic(req.Switches[i]), msg); err != nil {
			return err
		}
	}
	for i := range req.InputNumbers {
		msg := mqtt.GenericInputNumberToHADiscoveryMessage(state.client, req.InputNumbers[i])
		if err := publish(state.client.HADiscoveryInputNumberTopic(req.InputNumbers[i]), msg); err != nil {
			return err
		}
	}
	for i := range req.Selects {
		msg := mqtt.GenericSelectToHADiscoveryMessage(state.client, req.Selects[i])
		if err := publish(state.client.HADiscoverySelectTopic(req.Selects[i]), msg); err != nil {
			return err
		}
	}
	return nil
}

// subscribeEventStream forwards state events into the mailbox so publishing
// stays serialized with the rest of the actor.
func (state *MQTTActor) subscribeEventStream(ctx actor.Context) {
	if state.eventStream == nil || state.eventStreamSub != nil {
		return
	}
	root := ctx.ActorSystem().Root
	self := ctx.Self()
	state.eventStreamSub = state.eventStream.SubscribeWithPredicate(func(evt any) {
		root.Send(self, domain.PublishSensorUpdateRequest{Event: evt.(domain.SensorUpdateEvent)})
	}, func(evt any) bool {
		_, ok := evt.(domain.SensorUpdateEvent)
		return ok
	})
}

func (state *MQTTActor) unsubscribeEventStream() {
	if state.eventStream != nil && state.eventStreamSub != nil {
		state.eventStream.Unsubscribe(state.eventStreamSub)
		state.eventStreamSub = nil
	}
}

func (state *MQTTActor) stop() {
	state.logger.Debug("mqtt: disconnect")
	state.unsubscribeEventStream()
	if state.client != nil {
		state.client.Publish(state.client.BridgeStateTopic(), mqtt.MQTT_PAYLOAD_OFFLINE, 0, true, func(error) {}, 500*time.Millisecond)
		state.client.Disconnect(500 * time.Millisecond)
	}
}

func online2MQTTPayload(value bool) string {
	if value {
		return mqtt.MQTT_PAYLOAD_ONLINE
	}
	return mqtt.MQTT_PAYLOAD_OFFLINE
}

func bool2MQTTPayload(value bool) string {
	if value {
		return mqtt.MQTT_PAYLOAD_ON
	} else {
		return mqtt.MQTT_PAYLOAD_OFF
	}
}

// Dummy actor, records what would be published
func NewTestMQTTActor(config *config.Config, eventStream *eventstream.EventStream, logger *zap.Logger) *MQTTActor {
	act := &MQTTActor{
		config:      config,
		behavior:    actor.NewBehavior(),
		stash:       &actorutil.Stash{},
		eventStream: eventStream,
		logger:      actorutil.ActorLogger(domain.ACTOR_ID_MQTT, logger),
	}
	act.behavior.Become(act.DummyReceive)
	return act
}

func (state *MQTTActor) DummyReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.client = mqtt.CreateMQTTClient(state.config, mqtt.OptsFromConfig(state.config), nil, nil)
		state.subscribeEventStream(ctx)
	case *actor.Stopping:
		state.unsubscribeEventStream()
	case domain.ActorHealthRequest:
		state.logger.Debug("mqtt@default ActorHealthRequest")
		// respond health check request
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MQTT,
			Healthy: true,
			State:   "idle",
		})
	case domain.PublishSensorUpdateRequest:
		if raw := state.event2MQTTMessage(msg.Event); raw != nil {
			state.logger.Debug("mqtt@dummy publish", zap.String("topic", raw.topic), zap.String("message", raw.message))
		}
		if msg.ReplyToRef != nil || ctx.Sender() != nil {
			actorutil.ForRequest(msg).Respond(ctx, domain.PublishSensorUpdateResponse{})
		}
	case domain.PublishMessageRequest:
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishMessageResponse{})
	case domain.PublishDiscoveryRequest:
		state.logger.Debug("mqtt@dummy discovery", zap.Int("sensors", len(msg.Sensors)), zap.Int("numbers", len(msg.InputNumbers)))
		actorutil.ForRequest(msg).Respond(ctx, domain.PublishDiscoveryResponse{})
	case ParsedCommand:
		ctx.Send(ctx.Parent(), msg)
	}
}
