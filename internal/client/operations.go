package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Backend endpoint paths.
const (
	PathConfig   = "/api/config"
	PathSessions = "/api/sessions"
)

// Operation names used as metric labels.
const (
	OpGetConfig     = "get_config"
	OpSaveConfig    = "save_config"
	OpCreateSession = "create_session"
	OpListSessions  = "list_sessions"
	OpGetSession    = "get_session"
	OpDeleteSession = "delete_session"
)

// GetConfig fetches the stored backend configuration.
func (c *Client) GetConfig(ctx context.Context) (Payload, error) {
	return c.fetch(ctx, OpGetConfig, PathConfig, RequestOptions{})
}

// SaveConfig posts payload as the new backend configuration.
func (c *Client) SaveConfig(ctx context.Context, payload any) (Payload, error) {
	return c.postJSON(ctx, OpSaveConfig, PathConfig, payload)
}

// CreateSession posts payload to create a session. The response normally
// carries the new session's id.
func (c *Client) CreateSession(ctx context.Context, payload any) (Payload, error) {
	return c.postJSON(ctx, OpCreateSession, PathSessions, payload)
}

// ListSessions fetches the session collection.
func (c *Client) ListSessions(ctx context.Context) (Payload, error) {
	return c.fetch(ctx, OpListSessions, PathSessions, RequestOptions{})
}

// GetSession fetches one session. A missing session surfaces as a
// *RequestError like any other failed response.
func (c *Client) GetSession(ctx context.Context, sessionID string) (Payload, error) {
	path, err := sessionPath(sessionID)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, OpGetSession, path, RequestOptions{})
}

// DeleteSession deletes one session and returns the decoded
// acknowledgement, which may be empty.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) (Payload, error) {
	path, err := sessionPath(sessionID)
	if err != nil {
		return nil, err
	}
	return c.fetch(ctx, OpDeleteSession, path, RequestOptions{Method: http.MethodDelete})
}

func (c *Client) postJSON(ctx context.Context, operation, path string, payload any) (Payload, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodePayload, err)
	}
	return c.fetch(ctx, operation, path, RequestOptions{Method: http.MethodPost, Body: body})
}

func sessionPath(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidSessionID)
	}
	return PathSessions + "/" + url.PathEscape(sessionID), nil
}
