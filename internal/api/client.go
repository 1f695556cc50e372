// Package api wraps the MyKharche REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	applog "mykharche/internal/log"
)

const maxBodyBytes = 1 << 20

// Error is returned for any non-2xx backend response.
type Error struct {
	Status   int
	Message  string
	Endpoint string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("backend %s: status %d: %s", e.Endpoint, e.Status, e.Message)
}

// StatusOf returns the backend status carried by err, or 0 for transport failures.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsStatus(err error, status int) bool {
	return StatusOf(err) == status
}

// IsUnauthorized reports whether the backend rejected the session itself.
func IsUnauthorized(err error) bool {
	switch StatusOf(err) {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

// MessageOf returns the backend's message for err, empty when there is none.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// Client talks to the backend. Unauthenticated endpoints hang off Client,
// the rest off a Session bound to a user's token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *applog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *applog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger.WithComponent(applog.ComponentAPI),
	}
}

// Session binds the client to a bearer token.
func (c *Client) Session(token string) *Session {
	return &Session{client: c, token: token}
}

type Session struct {
	client *Client
	token  string
}

func (s *Session) Token() string { return s.token }

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Backend request failed",
			applog.FieldEndpoint, path, applog.FieldMethod, method, applog.FieldError, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	c.logger.DebugContext(ctx, "Backend request completed",
		applog.FieldEndpoint, path,
		applog.FieldMethod, method,
		applog.FieldUpstream, resp.StatusCode,
		applog.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Message: decodeMessage(raw), Endpoint: path}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if msg, ok := out.(*Message); ok {
		*msg = Message(decodeMessage(raw))
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// decodeMessage extracts a human message from a JSON string, a {message} object or plain text.
func decodeMessage(raw []byte) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Error
	}
	if raw[0] == '{' || raw[0] == '[' {
		return ""
	}
	return string(raw)
}
