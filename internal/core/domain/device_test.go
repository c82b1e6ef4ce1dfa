package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDiscovery(t *testing.T) {
	snap := testSnapshot()
	d := BuildDiscovery("ecovolter", "ev123", ChargerPoints(), snap)

	// bridge state, charger state, 1 power, 6 temperatures, 2 binary sensors
	assert.Len(t, d.Sensors, 11)
	assert.Len(t, d.Switches, 2)
	assert.Len(t, d.InputNumbers, 5)
	require.Len(t, d.Selects, 1)

	assert.Equal(t, SENSOR_ID_BRIDGE_STATE, d.Sensors[0].Id)
	assert.Equal(t, SENSOR_ID_CHARGER_STATE, d.Sensors[1].Id)
	assert.Equal(t, "ev123", d.Sensors[1].Device.SerialNumber)
	assert.Equal(t, d.Sensors[0].Device.Id, d.Sensors[1].Device.ViaDevice)
	assert.Empty(t, d.Sensors[2].Device.SerialNumber)
	assert.Equal(t, d.Sensors[1].Device.Id, d.Sensors[2].Device.Id)

	numbers := map[string]GenericInputNumber{}
	for _, n := range d.InputNumbers {
		numbers[n.Id] = n
	}
	assert.Equal(t, 16.0, numbers["target_current"].Max)
	assert.Equal(t, 32.0, numbers["max_current"].Max)
	assert.Equal(t, "USD/kWh", numbers["kwh_price"].UnitOfMeasurement)
	assert.Equal(t, []string{"CZK", "EUR", "USD"}, d.Selects[0].Options)
}

func TestDiscoveryFingerprintTracksBounds(t *testing.T) {
	snap := testSnapshot()
	before := DiscoveryFingerprint(ChargerPoints(), snap)
	assert.Equal(t, before, DiscoveryFingerprint(ChargerPoints(), testSnapshot()))

	snap.Settings["maxCurrent"] = 20
	assert.NotEqual(t, before, DiscoveryFingerprint(ChargerPoints(), snap))

	snap = testSnapshot()
	snap.Settings["currency"] = 1
	assert.NotEqual(t, before, DiscoveryFingerprint(ChargerPoints(), snap))
}

func TestChargerDevice(t *testing.T) {
	dev := ChargerDevice("ev123", Section{"chargerType": 0})
	assert.Equal(t, "EcoVolter (ev123)", dev.Name)
	assert.Equal(t, "EcoVolter II (16A)", dev.Model)
	assert.Equal(t, CHARGER_MODEL, ChargerDevice("ev123", nil).Model)
	assert.Equal(t, dev.Id, ChargerDevice("ev123", nil).Id)
}
