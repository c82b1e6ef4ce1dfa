package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/port"
	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"

	"go.uber.org/zap"
)

var (
	// ErrReauthRequired is terminal: the charger rejected the credentials.
	ErrReauthRequired = errors.New("charger credentials rejected, reauthentication required")
	// ErrUpdateFailed is transient and may be retried on the next cycle.
	ErrUpdateFailed = errors.New("charger update failed")
)

// RefreshCoordinator runs refresh cycles against one charger. Cycles must be
// serialized by the caller; Latest is safe from any goroutine.
type RefreshCoordinator struct {
	client   port.ChargerReader
	typeInfo domain.Section
	latest   atomic.Pointer[domain.Snapshot]
	now      func() time.Time
	logger   *zap.Logger
}

func NewRefreshCoordinator(client port.ChargerReader, logger *zap.Logger) *RefreshCoordinator {
	return &RefreshCoordinator{
		client: client,
		now:    time.Now,
		logger: logger,
	}
}

// Refresh fetches status, settings and diagnostics, plus the type info on the
// first successful cycle. Nothing is published unless every call succeeded.
func (c *RefreshCoordinator) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	status, err := c.fetch(ctx, ecovolter.ENDPOINT_STATUS)
	if err != nil {
		return nil, err
	}
	settings, err := c.fetch(ctx, ecovolter.ENDPOINT_SETTINGS)
	if err != nil {
		return nil, err
	}
	diagnostics, err := c.fetch(ctx, ecovolter.ENDPOINT_DIAGNOSTICS)
	if err != nil {
		return nil, err
	}
	typeInfo := c.typeInfo
	if typeInfo == nil {
		typeInfo, err = c.fetch(ctx, ecovolter.ENDPOINT_TYPE)
		if err != nil {
			return nil, err
		}
	}

	snap := &domain.Snapshot{
		Status:      status,
		Settings:    settings,
		Diagnostics: diagnostics,
		TypeInfo:    typeInfo,
		UpdatedAt:   c.now(),
	}
	c.typeInfo = typeInfo
	c.latest.Store(snap)
	c.logger.Debug("refresh cycle completed", zap.Time("updated_at", snap.UpdatedAt))
	return snap, nil
}

// Latest returns the last good snapshot, or nil before the first success.
func (c *RefreshCoordinator) Latest() *domain.Snapshot {
	return c.latest.Load()
}

func (c *RefreshCoordinator) fetch(ctx context.Context, endpoint ecovolter.Endpoint) (domain.Section, error) {
	raw, err := c.client.Fetch(ctx, endpoint)
	if err != nil {
		switch {
		case ecovolter.IsAuthentication(err):
		case ecovolter.IsCommunication(err):
			c.logger.Debug("charger unreachable", zap.String("endpoint", string(endpoint)), zap.Error(err))
		default:
			c.logger.Warn("unexpected charger response", zap.String("endpoint", string(endpoint)), zap.Error(err))
		}
		return nil, classify(endpoint, err)
	}
	return domain.NormalizeSection(raw), nil
}

func classify(endpoint ecovolter.Endpoint, err error) error {
	if ecovolter.IsAuthentication(err) {
		return fmt.Errorf("%w: %s: %w", ErrReauthRequired, endpoint, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrUpdateFailed, endpoint, err)
}
