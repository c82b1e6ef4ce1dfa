package events

import (
	"testing"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsById(evs []domain.SensorUpdateEvent) map[string]domain.SensorUpdateEvent {
	byId := map[string]domain.SensorUpdateEvent{}
	for _, ev := range evs {
		byId[ev.SensorId()] = ev
	}
	return byId
}

func TestSnapshotToUpdateEvents(t *testing.T) {
	snap := &domain.Snapshot{
		Status: domain.Section{
			"actualPower": 1.5,
			"isCharging":  true,
		},
		Settings: domain.Section{
			"isChargingEnable": false,
			"targetCurrent":    10,
			"kwhPrice":         4.25,
			"currency":         0,
		},
		TypeInfo: domain.Section{"chargerType": 1},
	}
	byId := eventsById(SnapshotToUpdateEvents(domain.ChargerPoints(), snap))

	power, ok := byId["actual_power"].(domain.FloatSensorUpdateEvent)
	require.True(t, ok)
	assert.InDelta(t, 1500.0, power.Value, 1e-9)

	charging, ok := byId["is_charging"].(domain.BinarySensorUpdateEvent)
	require.True(t, ok)
	assert.True(t, charging.Value)

	enable, ok := byId["is_charging_enable"].(domain.SwitchUpdateEvent)
	require.True(t, ok)
	assert.False(t, enable.Value)

	target, ok := byId["target_current"].(domain.NumberUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, 10.0, target.Value)

	price, ok := byId["kwh_price"].(domain.NumberUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, uint(2), price.Decimals)

	currency, ok := byId["currency"].(domain.SelectUpdateEvent)
	require.True(t, ok)
	assert.Equal(t, "CZK", currency.Value)

	// absent device fields are skipped
	assert.NotContains(t, byId, "is_vehicle_connected")
	assert.NotContains(t, byId, "boost_current")
	assert.NotContains(t, byId, "temperature_internal")
}

func TestUpdateEventKindMatchesPoint(t *testing.T) {
	snap := &domain.Snapshot{
		Status: domain.Section{
			"actualPower":        0.5,
			"isVehicleConnected": true,
			"temperatures":       map[string]any{"internal": 30.5},
		},
		Settings: domain.Section{
			"isThreePhaseModeEnable": true,
			"boostTime":              600,
			"currency":               1,
		},
	}
	points := domain.ChargerPoints()
	byId := map[string]domain.Point{}
	for _, p := range points {
		byId[p.Id] = p
	}
	evs := SnapshotToUpdateEvents(points, snap)
	require.NotEmpty(t, evs)
	for _, ev := range evs {
		assert.Equal(t, byId[ev.SensorId()].Kind, ev.PointKind(), ev.SensorId())
	}
}

func TestSnapshotToUpdateEventsNil(t *testing.T) {
	assert.Empty(t, SnapshotToUpdateEvents(domain.ChargerPoints(), nil))
}

func TestChargerAvailabilityUpdateEvent(t *testing.T) {
	ev, ok := ChargerAvailabilityUpdateEvent(false).(domain.ChargerAvailabilityEvent)
	require.True(t, ok)
	assert.False(t, ev.Online)
	assert.Equal(t, domain.SENSOR_ID_CHARGER_STATE, ev.SensorId())
}
