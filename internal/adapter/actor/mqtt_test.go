package actor

import (
	"testing"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/mqtt"
	"github.com/berfenger/ecovolter2mqtt/internal/util"
	"github.com/berfenger/ecovolter2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMQTTActor(t *testing.T) {

	cfg := util.LoadTestConfig()

	logger := zap.Must(zap.NewDevelopment())

	as := actorutil.NewActorSystemWithZapLogger(logger)

	context := as.Root

	es := eventstream.EventStream{}

	props := actor.PropsFromProducer(func() actor.Actor { return NewTestMQTTActor(&cfg, &es, logger) })
	pid := context.Spawn(props)

	msg := domain.ActorHealthRequest{}
	result, err := context.RequestFuture(pid, msg, 2*time.Second).Result()
	require.NoError(t, err)
	resp, ok := result.(domain.ActorHealthResponse)
	assert.True(t, ok)
	assert.True(t, resp.Healthy)

	es.Publish(domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: "actual_power",
		},
		Value: 2300,
	})
	es.Publish(domain.SelectUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{
			Id: "currency",
		},
		Value: "EUR",
	})
	// not a state event, filtered out
	es.Publish(domain.SnapshotUpdatedEvent{})

	time.Sleep(200 * time.Millisecond)

	context.Stop(pid)

	time.Sleep(200 * time.Millisecond)

	as.Shutdown()
}

func TestEvent2MQTTMessage(t *testing.T) {
	cfg := util.LoadTestConfig()
	act := NewTestMQTTActor(&cfg, nil, zap.NewNop())
	act.client = mqtt.CreateMQTTClient(&cfg, mqtt.OptsFromConfig(&cfg), nil, nil)

	raw := act.event2MQTTMessage(domain.FloatSensorUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "temperature_internal"},
		Value:                  31.25,
		Decimals:               1,
	})
	require.NotNil(t, raw)
	assert.Equal(t, "ecovolter/sensor/temperature_internal/state", raw.topic)
	assert.Equal(t, "31.2", raw.message)

	raw = act.event2MQTTMessage(domain.SwitchUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "is_charging_enable"},
		Value:                  true,
	})
	require.NotNil(t, raw)
	assert.Equal(t, "ecovolter/switch/is_charging_enable/state", raw.topic)
	assert.Equal(t, mqtt.MQTT_PAYLOAD_ON, raw.message)
	assert.True(t, raw.retain)

	raw = act.event2MQTTMessage(domain.SelectUpdateEvent{
		SensorUpdateEventMixIn: domain.SensorUpdateEventMixIn{Id: "currency"},
		Value:                  "CZK",
	})
	require.NotNil(t, raw)
	assert.Equal(t, "ecovolter/select/currency/state", raw.topic)
	assert.Equal(t, "CZK", raw.message)

	raw = act.event2MQTTMessage(domain.ChargerAvailabilityEvent{Online: false})
	require.NotNil(t, raw)
	assert.Equal(t, "ecovolter/charger/state", raw.topic)
	assert.Equal(t, mqtt.MQTT_PAYLOAD_OFFLINE, raw.message)

	assert.Nil(t, act.event2MQTTMessage(domain.SnapshotUpdatedEvent{}))
}
