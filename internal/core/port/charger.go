package port

import (
	"context"

	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"
)

type ChargerReader interface {
	Fetch(ctx context.Context, endpoint ecovolter.Endpoint) (map[string]any, error)
}

type ChargerWriter interface {
	Write(ctx context.Context, patch map[string]any) (map[string]any, error)
}

type ChargerClient interface {
	ChargerReader
	ChargerWriter
}

var _ ChargerClient = (*ecovolter.Client)(nil)
