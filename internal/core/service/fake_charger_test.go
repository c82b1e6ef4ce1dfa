package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/berfenger/ecovolter2mqtt/pkg/ecovolter"
)

type fakeCharger struct {
	mu        sync.Mutex
	responses map[ecovolter.Endpoint]map[string]any
	failures  map[ecovolter.Endpoint]error
	calls     []ecovolter.Endpoint
	writes    []map[string]any
	writeErr  error
}

func newFakeCharger() *fakeCharger {
	return &fakeCharger{
		responses: map[ecovolter.Endpoint]map[string]any{
			ecovolter.ENDPOINT_STATUS: {
				"actualPower": 7.2,
				"isCharging":  true,
				"temperatures": map[string]any{
					"internal": 30.5,
					"adapter":  []any{21.5, 22.1, 23.0},
					"relay":    []any{25.0, 26.0},
				},
			},
			ecovolter.ENDPOINT_SETTINGS: {
				"targetCurrent": 10,
				"maxCurrent":    16,
				"currency":      1,
			},
			ecovolter.ENDPOINT_DIAGNOSTICS: {"uptime": 1234},
			ecovolter.ENDPOINT_TYPE:        {"chargerType": 1},
		},
		failures: map[ecovolter.Endpoint]error{},
	}
}

func (f *fakeCharger) Fetch(ctx context.Context, endpoint ecovolter.Endpoint) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, endpoint)
	if err, ok := f.failures[endpoint]; ok {
		return nil, err
	}
	out := map[string]any{}
	for k, v := range f.responses[endpoint] {
		out[k] = v
	}
	return out, nil
}

func (f *fakeCharger) Write(ctx context.Context, patch map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, patch)
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for k, v := range patch {
		f.responses[ecovolter.ENDPOINT_SETTINGS][k] = v
	}
	return patch, nil
}

func (f *fakeCharger) fail(endpoint ecovolter.Endpoint, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[endpoint] = err
}

func (f *fakeCharger) heal(endpoint ecovolter.Endpoint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, endpoint)
}

func (f *fakeCharger) count(endpoint ecovolter.Endpoint) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == endpoint {
			n++
		}
	}
	return n
}

func authError() error {
	return fmt.Errorf("%w: %w", ecovolter.ErrAuthentication, &ecovolter.StatusError{StatusCode: 403})
}

func timeoutError() error {
	return fmt.Errorf("%w: context deadline exceeded", ecovolter.ErrCommunication)
}
