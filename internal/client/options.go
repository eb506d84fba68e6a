package client

import (
	"net/http"
	"strings"

	"github.com/okian/transcript/pkg/logger"
	"github.com/okian/transcript/pkg/metrics"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL sets the URL every request path is appended to.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithHTTPClient sets the transport used for requests. Timeouts and
// cancellation beyond the per-call context belong to this value.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. A nil manager disables metrics.
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHeader adds a header sent with every request. Per-call headers still
// take precedence.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(http.Header)
		}
		c.headers.Set(key, value)
	}
}

// WithRequestID toggles the X-Request-ID header generated per request.
func WithRequestID(enabled bool) Option {
	return func(c *Client) {
		c.requestID = enabled
	}
}
