package ecovolter

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type OptionFunc func(*Client) error

// WithBaseURI replaces the default http://<serial>.local base.
func WithBaseURI(baseURI string) OptionFunc {
	return func(c *Client) error {
		baseURI = strings.TrimRight(strings.TrimSpace(baseURI), "/")
		if baseURI != "" {
			c.baseURI = baseURI
		}
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) OptionFunc {
	return func(c *Client) error {
		if httpClient == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = httpClient
		return nil
	}
}

func WithTimeout(timeout time.Duration) OptionFunc {
	return func(c *Client) error {
		if timeout <= 0 {
			return errors.New("timeout must be positive")
		}
		c.timeout = timeout
		return nil
	}
}

func WithClock(now func() time.Time) OptionFunc {
	return func(c *Client) error {
		c.now = now
		return nil
	}
}

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}
