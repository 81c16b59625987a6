// Package pipeline hands generation jobs to the external planner/architect/coder
// pipeline and authenticates its callbacks.
package pipeline

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

// Job is what the pipeline receives for one project.
type Job struct {
	ProjectID     uuid.UUID `json:"projectId"`
	Name          string    `json:"name"`
	Prompt        string    `json:"prompt"`
	CallbackURL   string    `json:"callbackUrl"`
	CallbackToken string    `json:"callbackToken"`
}

// Dispatcher submits jobs to the pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, job *Job) error
}

// HTTPDispatcher posts jobs as JSON to the pipeline endpoint.
type HTTPDispatcher struct {
	endpoint  string
	publicURL string
	secret    []byte
	tokenTTL  time.Duration
	client    *http.Client
}

// NewHTTPDispatcher builds a dispatcher posting to endpoint. publicURL is the
// base of this server as seen from the pipeline.
func NewHTTPDispatcher(endpoint, publicURL string, secret []byte) *HTTPDispatcher {
	return &HTTPDispatcher{
		endpoint:  endpoint,
		publicURL: strings.TrimRight(publicURL, "/"),
		secret:    secret,
		tokenTTL:  6 * time.Hour,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

var _ Dispatcher = (*HTTPDispatcher)(nil)

// Dispatch fills in the callback URL and token when missing and submits job.
// Any non-2xx answer is an error; 4xx answers are marked invalid so callers
// can stop retrying.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, job *Job) error {
	if job.CallbackURL == "" {
		job.CallbackURL = fmt.Sprintf("%s/api/pipeline/projects/%s", d.publicURL, job.ProjectID)
	}
	if job.CallbackToken == "" {
		tok, err := IssueCallbackToken(d.secret, job.ProjectID, d.tokenTTL)
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "sign callback token failed")
		}
		job.CallbackToken = tok
	}

	body, err := json.Marshal(job)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "marshal job failed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInvalid, "build pipeline request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(req)
	if err != nil {
		return appErr.Wrap(err, appErr.CodeUnavailable, "pipeline unreachable")
	}
	defer resp.Body.Close()

	logger.L().Info("pipeline dispatch",
		zap.String("project_id", job.ProjectID.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	code := appErr.CodeUnavailable
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		code = appErr.CodeInvalid
	}
	return appErr.Newf(code, "pipeline rejected job: %d %s", resp.StatusCode, strings.TrimSpace(string(msg)))
}
