package service

import (
	"context"
	"testing"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestRegistry(t *testing.T) (*PointRegistry, *RefreshCoordinator, *fakeCharger) {
	t.Helper()
	fake := newFakeCharger()
	coord := NewRefreshCoordinator(fake, zaptest.NewLogger(t))
	_, err := coord.Refresh(context.Background())
	require.NoError(t, err)
	reg, err := NewPointRegistry(domain.ChargerPoints(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return reg, coord, fake
}

func TestRegistryRejectsDuplicateIds(t *testing.T) {
	points := domain.ChargerPoints()
	points = append(points, points[0])
	_, err := NewPointRegistry(points, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestTargetCurrentIsClamped(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	// maxCurrent=16 and chargerType=1 give a dynamic max of 16
	patch, err := reg.Write(context.Background(), coord.Latest(), fake, "target_current", 99)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"targetCurrent": 16}, patch)
	require.Len(t, fake.writes, 1)
	assert.Equal(t, 16, fake.writes[0]["targetCurrent"])
}

func TestHugeTargetCurrentSaturates(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	for _, huge := range []any{1e19, "9999999999999999999999"} {
		patch, err := reg.Write(context.Background(), coord.Latest(), fake, "target_current", huge)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"targetCurrent": 16}, patch, huge)
	}
}

func TestMaxCurrentClampedToChargerType(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	patch, err := reg.Write(context.Background(), coord.Latest(), fake, "max_current", 40.5)
	require.NoError(t, err)
	assert.Equal(t, 32, patch["maxCurrent"])
}

func TestLoweredMaxCurrentTightensTarget(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	_, err := reg.Write(context.Background(), coord.Latest(), fake, "max_current", 10)
	require.NoError(t, err)
	_, err = coord.Refresh(context.Background())
	require.NoError(t, err)

	pv, err := reg.Read(coord.Latest(), "target_current")
	require.NoError(t, err)
	assert.Equal(t, 10.0, *pv.Max)
}

func TestCurrencyRoundTrip(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	_, err := reg.Write(context.Background(), coord.Latest(), fake, "currency", "USD")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.writes[0]["currency"])

	_, err = coord.Refresh(context.Background())
	require.NoError(t, err)
	pv, err := reg.Read(coord.Latest(), "currency")
	require.NoError(t, err)
	assert.Equal(t, "USD", pv.Value)

	price, err := reg.Read(coord.Latest(), "kwh_price")
	require.NoError(t, err)
	assert.Equal(t, "USD/kWh", price.Unit)
}

func TestUnknownCurrencyRejectedBeforeNetwork(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	_, err := reg.Write(context.Background(), coord.Latest(), fake, "currency", "GBP")
	assert.ErrorIs(t, err, domain.ErrUnknownCurrency)
	assert.Empty(t, fake.writes)

	// reads still default to EUR for unknown device codes
	coord.Latest().Settings["currency"] = 9
	pv, err := reg.Read(coord.Latest(), "currency")
	require.NoError(t, err)
	assert.Equal(t, "EUR", pv.Value)
}

func TestPriceRoundedToCents(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	patch, err := reg.Write(context.Background(), coord.Latest(), fake, "kwh_price", 5.125001)
	require.NoError(t, err)
	assert.Equal(t, 5.13, patch["kwhPrice"])
}

func TestOtherNumbersTruncated(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	patch, err := reg.Write(context.Background(), coord.Latest(), fake, "boost_time", 3599.9)
	require.NoError(t, err)
	assert.Equal(t, 3599, patch["boostTime"])

	_, err = reg.Write(context.Background(), coord.Latest(), fake, "boost_time", -60)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Len(t, fake.writes, 1)
}

func TestSwitchWrite(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	patch, err := reg.Write(context.Background(), coord.Latest(), fake, "is_three_phase_mode_enable", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"isThreePhaseModeEnable": true}, patch)

	_, err = reg.Write(context.Background(), coord.Latest(), fake, "is_charging_enable", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidValue)
}

func TestReadOnlyAndUnknownPoints(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	_, err := reg.Write(context.Background(), coord.Latest(), fake, "actual_power", 1)
	assert.ErrorIs(t, err, domain.ErrReadOnly)
	_, err = reg.Write(context.Background(), coord.Latest(), fake, "nope", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownPoint)
	_, err = reg.Read(coord.Latest(), "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownPoint)
	assert.Empty(t, fake.writes)
}

func TestWriteWithoutSnapshotRejected(t *testing.T) {
	reg, _, fake := newTestRegistry(t)

	_, err := reg.Write(context.Background(), nil, fake, "target_current", 10)
	assert.ErrorIs(t, err, domain.ErrNoSnapshot)
	assert.Empty(t, fake.writes)
}

func TestWriteRunsRefreshHook(t *testing.T) {
	reg, coord, fake := newTestRegistry(t)

	var written []string
	reg.OnWritten(func(id string) { written = append(written, id) })

	_, err := reg.Write(context.Background(), coord.Latest(), fake, "target_current", 8)
	require.NoError(t, err)
	_, err = reg.Write(context.Background(), coord.Latest(), fake, "currency", "XXX")
	require.Error(t, err)

	fake.writeErr = authError()
	_, err = reg.Write(context.Background(), coord.Latest(), fake, "target_current", 9)
	assert.ErrorIs(t, err, ErrReauthRequired)

	assert.Equal(t, []string{"target_current"}, written)
}

func TestReadAllTemperatures(t *testing.T) {
	reg, coord, _ := newTestRegistry(t)

	values := map[string]domain.PointValue{}
	for _, pv := range reg.ReadAll(coord.Latest()) {
		values[pv.Id] = pv
	}
	assert.Equal(t, 22.1, values["temperature_adapter2"].Value)
	assert.Equal(t, 26.0, values["temperature_relay2"].Value)
	assert.InDelta(t, 7200.0, values["actual_power"].Value, 1e-9)
	assert.Equal(t, true, values["is_charging"].Value)
	assert.False(t, values["is_vehicle_connected"].Available)
}
