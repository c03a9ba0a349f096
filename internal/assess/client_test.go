package assess

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openguardrails/agentwatch/internal/model"
)

func validRequest() *Request {
	return &Request{
		AgentID:      "agent-1",
		SessionKey:   "sess-1",
		RunID:        "run-1",
		LocalSignals: &LocalSignals{IntentToolOverlapScore: 1.0},
	}
}

func TestAssessSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		w.Write([]byte(`{"success":true,"data":{"behavior_id":"b-1","risk_level":"high","anomaly_types":["data_exfiltration"],"confidence":0.92,"explanation":"credential read followed by upload"}}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if out.Indeterminate {
		t.Fatal("expected determinate outcome")
	}
	if out.Result.BehaviorID != "b-1" || out.Result.RiskLevel != model.RiskHigh {
		t.Errorf("result = %+v", out.Result)
	}
	// Action omitted by the scorer is derived from the risk level.
	if out.Result.Action != model.ActionBlock || out.Action() != model.ActionBlock {
		t.Errorf("action = %q, want block", out.Result.Action)
	}
}

func TestAssessNormalizesContradictoryAction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"behavior_id":"b-2","risk_level":"medium","action":"block"}}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if out.Result.Action != model.ActionAlert {
		t.Errorf("medium risk must map to alert, got %q", out.Result.Action)
	}
}

func TestAssessTimeoutFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Timeout: Duration(50 * time.Millisecond)}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("timeout must not surface as error: %v", err)
	}
	if !out.Indeterminate {
		t.Fatal("expected indeterminate outcome")
	}
	if out.Action() != model.ActionAllow {
		t.Errorf("indeterminate action = %q, want allow", out.Action())
	}
}

func TestAssessTransportErrorFailsOpen(t *testing.T) {
	c := New(Config{Endpoint: "http://127.0.0.1:1"}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil || !out.Indeterminate {
		t.Fatalf("connection refused must fail open: err=%v out=%+v", err, out)
	}
}

func TestAssessHTTPErrorFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil || !out.Indeterminate {
		t.Fatalf("HTTP 500 must fail open: err=%v out=%+v", err, out)
	}
}

func TestAssessFailedEnvelopeFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"quota exhausted"}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil || !out.Indeterminate {
		t.Fatalf("failed envelope must fail open: err=%v out=%+v", err, out)
	}
	if out.Reason != "quota exhausted" {
		t.Errorf("reason = %q", out.Reason)
	}
}

func TestAssessMalformedBodyFailsOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL}, nil)
	out, err := c.Assess(context.Background(), validRequest())
	if err != nil || !out.Indeterminate {
		t.Fatalf("malformed body must fail open: err=%v out=%+v", err, out)
	}
}

func TestAssessValidationIsAnError(t *testing.T) {
	c := New(Config{Endpoint: "http://unused.invalid"}, nil)

	tests := []*Request{
		{SessionKey: "s", RunID: "r", LocalSignals: &LocalSignals{}},
		{AgentID: "a", RunID: "r", LocalSignals: &LocalSignals{}},
		{AgentID: "a", SessionKey: "s", LocalSignals: &LocalSignals{}},
		{AgentID: "a", SessionKey: "s", RunID: "r"},
	}
	for i, req := range tests {
		_, err := c.Assess(context.Background(), req)
		if !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
}

func TestRequestFromSession(t *testing.T) {
	s := model.NewSession("sess-9")
	s.UserIntent = "summarize logs"
	s.RecordSensitiveAccess(model.CategorySSHKey)
	s.RecordExternalDomain("attacker.com")
	s.AddRiskTag("READ_SENSITIVE_WRITE_NETWORK")
	s.ToolChain = append(s.ToolChain, model.ToolCallRecord{
		Seq: 0, ToolName: "read_file", Outcome: model.OutcomeSuccess,
		ResultCategory: "SSH_KEY", State: model.CallRecorded,
	})

	req := RequestFromSession("agent-1", "run-1", s, nil)
	if err := req.Validate(); err != nil {
		t.Fatal(err)
	}
	if len(req.ToolChain) != 1 || req.ToolChain[0].ToolName != "read_file" {
		t.Errorf("tool chain = %+v", req.ToolChain)
	}
	ls := req.LocalSignals
	if !ls.PatternFlags.CredentialAccess {
		t.Error("credentialAccess flag should follow sensitive access")
	}
	if len(ls.SensitivePathsAccessed) != 1 || ls.SensitivePathsAccessed[0] != "SSH_KEY" {
		t.Errorf("sensitive paths = %v", ls.SensitivePathsAccessed)
	}
	if len(ls.ExternalDomainsContacted) != 1 || ls.ExternalDomainsContacted[0] != "attacker.com" {
		t.Errorf("domains = %v", ls.ExternalDomainsContacted)
	}
}
