// Package assess is the async transport to the remote risk scorer. The
// client is bounded by a configurable timeout and fails open: on expiry or
// any transport error the tool call proceeds and the outcome is recorded as
// indeterminate. Availability is explicitly prioritized over blocking on
// transient remote failure.
package assess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openguardrails/agentwatch/internal/model"
)

// DefaultTimeout bounds one assessment round trip.
const DefaultTimeout = 2 * time.Second

// Duration wraps time.Duration so YAML configs can say "2s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("assess: invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config holds assessment client configuration.
type Config struct {
	Endpoint string            `yaml:"endpoint"`
	Timeout  Duration          `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers"`
}

// Outcome is the engine-side result of one assessment attempt.
// Indeterminate means the remote scorer could not be consulted (timeout,
// transport error, or a failed response envelope); the caller treats that
// as allow and must not retry.
type Outcome struct {
	Result        *model.AssessmentResult
	Indeterminate bool
	Reason        string
}

// Action returns the effective action: the scorer's verdict, or allow when
// the outcome is indeterminate.
func (o Outcome) Action() model.Action {
	if o.Indeterminate || o.Result == nil {
		return model.ActionAllow
	}
	return o.Result.Action
}

// envelope is the response wrapper: {success, data} or {success:false, error}.
type envelope struct {
	Success bool                    `json:"success"`
	Data    *model.AssessmentResult `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// Client posts assessment requests to the remote scorer.
type Client struct {
	cfg        Config
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an assessment client. A zero timeout uses DefaultTimeout.
func New(cfg Config, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Assess sends one assessment request. A validation failure is returned as
// an error with no network attempt. Transport failures, timeouts, and
// failed response envelopes all fail open: the returned outcome is
// indeterminate and err is nil.
func (c *Client) Assess(ctx context.Context, req *Request) (Outcome, error) {
	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("assess: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("assess: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Fail open. No retry: an abandoned assessment is indeterminate.
		c.logger.Warn("assessment transport failure, failing open",
			"session_key", req.SessionKey, "error", err)
		return Outcome{Indeterminate: true, Reason: fmt.Sprintf("transport: %v", err)}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("assessment endpoint rejected request, failing open",
			"session_key", req.SessionKey, "status", resp.StatusCode)
		return Outcome{Indeterminate: true, Reason: fmt.Sprintf("http %d", resp.StatusCode)}, nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.logger.Warn("assessment response unreadable, failing open",
			"session_key", req.SessionKey, "error", err)
		return Outcome{Indeterminate: true, Reason: fmt.Sprintf("read: %v", err)}, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Warn("assessment response malformed, failing open",
			"session_key", req.SessionKey, "error", err)
		return Outcome{Indeterminate: true, Reason: fmt.Sprintf("decode: %v", err)}, nil
	}

	if !env.Success || env.Data == nil {
		c.logger.Warn("assessment unsuccessful, failing open",
			"session_key", req.SessionKey, "remote_error", env.Error)
		return Outcome{Indeterminate: true, Reason: env.Error}, nil
	}

	// The risk→action table is a fixed contract; normalize in case the
	// scorer omitted or contradicted the action field.
	if env.Data.Action == "" || env.Data.Action != model.ActionFor(env.Data.RiskLevel) {
		env.Data.Action = model.ActionFor(env.Data.RiskLevel)
	}

	return Outcome{Result: env.Data}, nil
}
