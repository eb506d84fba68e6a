// Package client implements the JSON API client for the transcription
// backend: one HTTP round trip per call, JSON in and out, and a single
// RequestError for non-2xx responses.
//
// Payloads are opaque. Request bodies are serialized with encoding/json as
// given and responses are returned as decoded JSON objects; typed views are
// available through Decode.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/transcript/pkg/logger"
	"github.com/okian/transcript/pkg/metrics"
)

// Header names and values set on every request.
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	ContentTypeJSON   = "application/json"
)

// DefaultBaseURL matches the backend's default listen address.
const DefaultBaseURL = "http://localhost:8000"

// operationFetch labels metrics for direct FetchJSON calls.
const operationFetch = "fetch_json"

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Payload is a decoded JSON object. Numbers are kept as json.Number.
type Payload map[string]any

// RequestOptions customizes a single FetchJSON call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body is sent verbatim; callers serialize it as JSON.
	Body []byte
	// Header is merged over the defaults; its values win on collision.
	Header http.Header
}

// Client issues JSON requests against the backend. It keeps no state
// between calls and is safe for concurrent use.
type Client struct {
	baseURL   string
	doer      Doer
	logger    logger.Logger
	metrics   *metrics.Manager
	headers   http.Header
	requestID bool
}

// New creates a Client. Without options it targets DefaultBaseURL through a
// plain http.Client with no timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		doer:      &http.Client{},
		logger:    logger.Nop(),
		requestID: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL request paths are appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchJSON issues one request to path and decodes the JSON response.
//
// A body that is empty or not a JSON object decodes to an empty Payload and
// never produces an error. This includes valid JSON that is not an object,
// such as an array or a bare string: those are dropped on success too, since
// Payload only models objects. A status outside 2xx yields a *RequestError
// carrying the payload's "detail" or DefaultErrorMessage. Transport errors
// are returned as the Doer produced them.
func (c *Client) FetchJSON(ctx context.Context, path string, opts RequestOptions) (Payload, error) {
	return c.fetch(ctx, operationFetch, path, opts)
}

func (c *Client) fetch(ctx context.Context, operation, path string, opts RequestOptions) (Payload, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		c.metrics.RecordRequestError(operation, metrics.ErrorKindBuild)
		return nil, err
	}

	done := c.metrics.RequestStarted()
	start := time.Now()
	resp, err := c.doer.Do(req)
	took := time.Since(start)
	done()
	if err != nil {
		c.metrics.ObserveRequest(operation, method, 0, took)
		c.metrics.RecordRequestError(operation, metrics.ErrorKindTransport)
		c.logger.Debug(ctx, "request transport failure",
			logger.String("operation", operation),
			logger.String("method", method),
			logger.String("path", path),
			logger.Error(err))
		return nil, err
	}

	payload := c.readPayload(ctx, resp)
	c.metrics.ObserveRequest(operation, method, resp.StatusCode, took)

	if !isSuccess(resp.StatusCode) {
		c.metrics.RecordRequestError(operation, metrics.ErrorKindStatus)
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(payload),
			Payload:    payload,
		}
		c.logger.Debug(ctx, "request failed",
			logger.String("operation", operation),
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.String("detail", reqErr.Message))
		return nil, reqErr
	}

	c.logger.Debug(ctx, "request completed",
		logger.String("operation", operation),
		logger.String("method", method),
		logger.String("path", path),
		logger.Int("status", resp.StatusCode),
		logger.Duration("took", took))
	return payload, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildRequest, err)
	}

	req.Header = c.mergeHeaders(opts.Header)
	return req, nil
}

// mergeHeaders layers defaults, client headers and call headers, later
// layers replacing earlier values key by key.
func (c *Client) mergeHeaders(call http.Header) http.Header {
	h := make(http.Header, len(c.headers)+len(call)+2)
	h.Set(HeaderContentType, ContentTypeJSON)
	for k, vs := range c.headers {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	for k, vs := range call {
		h[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if c.requestID && h.Get(HeaderRequestID) == "" {
		h.Set(HeaderRequestID, uuid.NewString())
	}
	return h
}

// readPayload drains and closes the body. Read and decode failures both
// yield an empty Payload.
func (c *Client) readPayload(ctx context.Context, resp *http.Response) Payload {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Debug(ctx, "failed to read response body", logger.Error(err))
		return Payload{}
	}
	return decodePayload(data)
}

func decodePayload(data []byte) Payload {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var p Payload
	if err := dec.Decode(&p); err != nil || p == nil {
		return Payload{}
	}
	// Trailing content makes the document invalid as a whole.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}
	}
	return p
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// errorMessage resolves the RequestError message from a failed payload.
// A non-empty string detail is used verbatim; any other truthy detail is
// rendered as compact JSON.
func errorMessage(p Payload) string {
	detail, ok := p["detail"]
	if !ok || !truthy(detail) {
		return DefaultErrorMessage
	}
	if s, ok := detail.(string); ok {
		return s
	}
	b, err := json.Marshal(detail)
	if err != nil {
		return DefaultErrorMessage
	}
	return string(b)
}

// truthy follows JavaScript truthiness for decoded JSON values: only null,
// false, zero and the empty string are falsy. Lists and objects are truthy
// even when empty.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		// Literals outside float64 range are non-zero.
		return err != nil || f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
