package service

import (
	"context"
	"fmt"

	"github.com/berfenger/ecovolter2mqtt/internal/core/domain"
	"github.com/berfenger/ecovolter2mqtt/internal/core/port"
	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"

	"go.uber.org/zap"
)

// PointRegistry is the generic read/write engine over the point catalog.
type PointRegistry struct {
	points    []domain.Point
	byId      map[string]domain.Point
	onWritten func(pointId string)
	logger    *zap.Logger
}

func NewPointRegistry(points []domain.Point, logger *zap.Logger) (*PointRegistry, error) {
	byId := make(map[string]domain.Point, len(points))
	for _, p := range points {
		if p.Id == "" {
			return nil, fmt.Errorf("point %q has no id", p.Key)
		}
		if _, dup := byId[p.Id]; dup {
			return nil, fmt.Errorf("duplicate point id %q", p.Id)
		}
		byId[p.Id] = p
	}
	return &PointRegistry{
		points: points,
		byId:   byId,
		logger: logger,
	}, nil
}

// OnWritten registers the hook run after every accepted write, typically an
// out-of-cycle refresh request.
func (r *PointRegistry) OnWritten(fn func(pointId string)) {
	r.onWritten = fn
}

func (r *PointRegistry) Points() []domain.Point {
	return r.points
}

func (r *PointRegistry) Point(id string) (domain.Point, error) {
	p, ok := r.byId[id]
	if !ok {
		return domain.Point{}, fmt.Errorf("%w: %s", domain.ErrUnknownPoint, id)
	}
	return p, nil
}

func (r *PointRegistry) Read(snap *domain.Snapshot, id string) (domain.PointValue, error) {
	p, err := r.Point(id)
	if err != nil {
		return domain.PointValue{}, err
	}
	return p.Read(snap), nil
}

func (r *PointRegistry) ReadAll(snap *domain.Snapshot) []domain.PointValue {
	values := make([]domain.PointValue, 0, len(r.points))
	for _, p := range r.points {
		values = append(values, p.Read(snap))
	}
	return values
}

// PrepareWrite validates and encodes a write into the settings patch to send.
// Rejected writes never reach the device.
func (r *PointRegistry) PrepareWrite(snap *domain.Snapshot, id string, value any) (map[string]any, error) {
	p, err := r.Point(id)
	if err != nil {
		return nil, err
	}
	if !p.Writable() {
		return nil, fmt.Errorf("%w: %s", domain.ErrReadOnly, id)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoSnapshot, id)
	}
	encoded, err := p.Encode(p, snap, value)
	if err != nil {
		return nil, fmt.Errorf("point %s: %w", id, err)
	}
	return map[string]any{p.Key: encoded}, nil
}

func (r *PointRegistry) Write(ctx context.Context, snap *domain.Snapshot, writer port.ChargerWriter, id string, value any) (map[string]any, error) {
	patch, err := r.PrepareWrite(snap, id, value)
	if err != nil {
		r.logger.Warn("write rejected", zap.String("point", id), zap.Any("value", value), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("write point", zap.String("point", id), zap.Any("patch", patch))
	if _, err := writer.Write(ctx, patch); err != nil {
		return nil, classify(ecovolter.ENDPOINT_SETTINGS, err)
	}
	if r.onWritten != nil {
		r.onWritten(id)
	}
	return patch, nil
}
