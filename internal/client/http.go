// Package client talks to the studio API: a thin HTTP wrapper, a polling
// cache for reads, the project creation flow and downloads.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appErr "github.com/codegen-studio/engine/pkg/errors"
	"github.com/codegen-studio/engine/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPError is a response outside 2xx. Message is the body text, or the
// status text when the body is empty.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Requester performs API requests. *Client implements it.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (*http.Response, error)
}

// Client sends requests to one API base URL. No retries.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ Requester = (*Client)(nil)

// Request sends body as JSON when non-nil. A non-2xx answer is returned as
// *HTTPError with the body consumed; a failure to get any answer is an
// unavailable application error. On success the caller owns resp.Body.
func (c *Client) Request(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "encode request body failed")
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInvalid, "build request failed")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.L().Debug("api unreachable", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, appErr.Wrap(err, appErr.CodeUnavailable, "api unreachable")
	}
	logger.L().Debug("api request",
		zap.String("id", reqID),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := string(text)
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, &HTTPError{Status: resp.StatusCode, Message: msg}
	}
	return resp, nil
}

// decodeJSON reads and closes resp.Body into v.
func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "decode response failed")
	}
	return nil
}
