package service

import (
	"context"
	"errors"
	"testing"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRefreshBuildsSnapshot(t *testing.T) {
	require := require.New(t)

	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))
	require.Nil(c.Latest())

	snap, err := c.Refresh(context.Background())
	require.NoError(err)
	require.NotNil(snap)
	assert.Same(t, snap, c.Latest())
	assert.Equal(t, 7.2, snap.Status["actualPower"])
	assert.EqualValues(t, 16, snap.Settings["maxCurrent"])
	assert.EqualValues(t, 1234, snap.Diagnostics["uptime"])
	assert.EqualValues(t, 1, snap.TypeInfo["chargerType"])
	assert.NotNil(t, c.typeInfo)
}

func TestTypeInfoFetchedOnce(t *testing.T) {
	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		_, err := c.Refresh(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, fake.count(ecovolter.ENDPOINT_TYPE))
	assert.Equal(t, 3, fake.count(ecovolter.ENDPOINT_STATUS))
	assert.Equal(t, 3, fake.count(ecovolter.ENDPOINT_SETTINGS))
	assert.Equal(t, 3, fake.count(ecovolter.ENDPOINT_DIAGNOSTICS))
}

func TestTypeInfoReusedVerbatim(t *testing.T) {
	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	first, err := c.Refresh(context.Background())
	require.NoError(t, err)
	fake.responses[ecovolter.ENDPOINT_TYPE]["chargerType"] = 0

	second, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TypeInfo, second.TypeInfo)
	assert.Equal(t, 32, domain.ChargerTypeMaxCurrent(second.TypeInfo))
}

func TestForbiddenSettingsRequiresReauth(t *testing.T) {
	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	prev, err := c.Refresh(context.Background())
	require.NoError(t, err)
	cachedType := prev.TypeInfo

	fake.fail(ecovolter.ENDPOINT_SETTINGS, authError())
	snap, err := c.Refresh(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.False(t, errors.Is(err, ErrUpdateFailed))
	assert.ErrorIs(t, err, ecovolter.ErrAuthentication)

	assert.Same(t, prev, c.Latest())
	assert.Equal(t, cachedType, c.typeInfo)
	assert.Equal(t, 1, fake.count(ecovolter.ENDPOINT_TYPE))
}

func TestForbiddenOnFirstCycleLeavesNoCache(t *testing.T) {
	fake := newFakeCharger()
	fake.fail(ecovolter.ENDPOINT_SETTINGS, authError())
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrReauthRequired)
	assert.Nil(t, c.typeInfo)
	assert.Nil(t, c.Latest())
	assert.Equal(t, 0, fake.count(ecovolter.ENDPOINT_TYPE))
}

func TestStatusTimeoutFailsWholeCycle(t *testing.T) {
	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	prev, err := c.Refresh(context.Background())
	require.NoError(t, err)

	fake.responses[ecovolter.ENDPOINT_SETTINGS]["targetCurrent"] = 12
	fake.fail(ecovolter.ENDPOINT_STATUS, timeoutError())
	snap, err := c.Refresh(context.Background())
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.False(t, errors.Is(err, ErrReauthRequired))

	// no partial merge
	assert.Same(t, prev, c.Latest())
	assert.EqualValues(t, 10, c.Latest().Settings["targetCurrent"])
}

func TestLateSectionFailureDiscardsEarlierSections(t *testing.T) {
	fake := newFakeCharger()
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	prev, err := c.Refresh(context.Background())
	require.NoError(t, err)

	fake.responses[ecovolter.ENDPOINT_STATUS]["actualPower"] = 1.1
	fake.fail(ecovolter.ENDPOINT_DIAGNOSTICS, timeoutError())
	_, err = c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.Same(t, prev, c.Latest())
	assert.Equal(t, 7.2, c.Latest().Status["actualPower"])

	fake.heal(ecovolter.ENDPOINT_DIAGNOSTICS)
	next, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.1, next.Status["actualPower"])
}

func TestApiErrorIsUpdateFailed(t *testing.T) {
	fake := newFakeCharger()
	fake.fail(ecovolter.ENDPOINT_TYPE, ecovolter.ErrApi)
	c := NewRefreshCoordinator(fake, zaptest.NewLogger(t))

	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrUpdateFailed)
	assert.Nil(t, c.Latest())
}
