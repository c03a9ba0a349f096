// Package quota reports assessment consumption to the external billing
// collaborator. Recording is an observable side effect outside the engine's
// own responsibility: failures are logged and never surface into decisions.
package quota

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Recorder consumes quota units for successful assessments.
type Recorder interface {
	Consume(ctx context.Context, sessionKey string, units int) error
}

// Noop discards consumption records. Used when no quota endpoint is
// configured (self-hosted deployments).
type Noop struct{}

// Consume implements Recorder.
func (Noop) Consume(context.Context, string, int) error { return nil }

// HTTPRecorder posts consumption units to the quota endpoint.
type HTTPRecorder struct {
	endpoint   string
	headers    map[string]string
	httpClient *http.Client
}

// NewHTTP creates a quota recorder for the given endpoint.
func NewHTTP(endpoint string, headers map[string]string) *HTTPRecorder {
	return &HTTPRecorder{
		endpoint:   endpoint,
		headers:    headers,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type consumeRequest struct {
	SessionKey string `json:"sessionKey"`
	Units      int    `json:"units"`
	ConsumedAt string `json:"consumedAt"`
}

// Consume posts one consumption record.
func (r *HTTPRecorder) Consume(ctx context.Context, sessionKey string, units int) error {
	body, err := json.Marshal(consumeRequest{
		SessionKey: sessionKey,
		Units:      units,
		ConsumedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("quota: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("quota: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quota: post: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("quota: endpoint returned HTTP %d", resp.StatusCode)
	}
	return nil
}
