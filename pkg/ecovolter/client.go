package ecovolter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	API_PATH        = "/api/v1/charger"
	DEFAULT_TIMEOUT = 10 * time.Second
	TIMESTAMP_FIELD = "timestamp"
)

type Endpoint string

const (
	ENDPOINT_STATUS      Endpoint = "/status"
	ENDPOINT_SETTINGS    Endpoint = "/settings"
	ENDPOINT_DIAGNOSTICS Endpoint = "/diagnostics"
	ENDPOINT_TYPE        Endpoint = "/type"
)

// Client talks to the local REST API of an EcoVolter charger. Every request is
// signed with the charger secret key.
type Client struct {
	serial     string
	secretKey  []byte
	baseURI    string
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
	logger     *zap.Logger
}

func NewClient(serial, secretKey string, opts ...OptionFunc) (*Client, error) {
	serial = NormalizeSerial(serial)
	if serial == "" {
		return nil, errors.New("serial number is required")
	}
	if secretKey == "" {
		return nil, errors.New("secret key is required")
	}
	c := &Client{
		serial:     serial,
		secretKey:  []byte(secretKey),
		baseURI:    fmt.Sprintf("http://%s.local", serial),
		timeout:    DEFAULT_TIMEOUT,
		httpClient: &http.Client{},
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func NormalizeSerial(serial string) string {
	return strings.ToLower(strings.TrimSpace(serial))
}

func (c *Client) Serial() string {
	return c.serial
}

func (c *Client) URL(endpoint Endpoint) string {
	return c.baseURI + API_PATH + string(endpoint)
}

// Fetch reads one of the GET endpoints and returns its JSON object.
func (c *Client) Fetch(ctx context.Context, endpoint Endpoint) (map[string]any, error) {
	return c.do(ctx, http.MethodGet, endpoint, nil)
}

// Write sends a partial settings object. A millisecond timestamp is added to
// the body so the charger can order commands.
func (c *Client) Write(ctx context.Context, patch map[string]any) (map[string]any, error) {
	body := make(map[string]any, len(patch)+1)
	maps.Copy(body, patch)
	body[TIMESTAMP_FIELD] = c.now().UnixMilli()
	return c.do(ctx, http.MethodPatch, ENDPOINT_SETTINGS, body)
}

// Probe checks that the charger is reachable and accepts the credentials.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.Fetch(ctx, ENDPOINT_STATUS)
	return err
}

func (c *Client) do(ctx context.Context, method string, endpoint Endpoint, payload map[string]any) (map[string]any, error) {
	url := c.URL(endpoint)

	var body []byte
	if payload != nil {
		var err error
		body, err = compactJSON(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: encode body: %w", ErrApi, err)
		}
	}

	ts := c.now().Unix()
	signature := Sign(c.secretKey, url, ts, body)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrApi, err)
	}
	req.Header.Set(HEADER_TIMESTAMP, strconv.FormatInt(ts, 10))
	req.Header.Set(HEADER_AUTHORIZATION, authorizationHeader(signature))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("ecovolter request", zap.String("method", method), zap.String("url", url))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrCommunication, method, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.Debug("ecovolter response", zap.String("url", url), zap.Int("status", resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %w", ErrAuthentication, &StatusError{StatusCode: resp.StatusCode, URL: url})
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: %w", ErrCommunication, &StatusError{StatusCode: resp.StatusCode, URL: url})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrCommunication, err)
	}
	return decodeObject(raw)
}

// compactJSON encodes without spaces and without HTML escaping. The bytes
// returned are the ones signed and sent.
func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func decodeObject(raw []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrApi, err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
