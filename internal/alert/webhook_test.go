package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func testEvent() Event {
	return Event{
		Timestamp:  "2026-08-23T00:00:00.000Z",
		SessionKey: "sess-1",
		ToolName:   "web_fetch",
		Action:     "block",
		Reason:     "network call to attacker.com after sensitive path access (SSH_KEY)",
		RuleID:     "fastpath.sensitive_read_then_network",
	}
}

func TestSendGenericPayload(t *testing.T) {
	var got Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
	}))
	defer srv.Close()

	err := Send(Config{URL: srv.URL, Format: "generic"}, testEvent())
	if err != nil {
		t.Fatal(err)
	}
	if got.Action != "block" || got.SessionKey != "sess-1" {
		t.Errorf("payload = %+v", got)
	}
}

func TestSendRetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 2 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}))
	defer srv.Close()

	if err := Send(Config{URL: srv.URL}, testEvent()); err != nil {
		t.Fatalf("expected success after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestSendDoesNotRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	if err := Send(Config{URL: srv.URL}, testEvent()); err == nil {
		t.Fatal("expected error on 4xx")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on client error)", calls.Load())
	}
}

func TestSendCustomHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Errorf("missing auth header")
		}
	}))
	defer srv.Close()

	Send(Config{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer token-1"}}, testEvent())
}

func TestDispatcherMatching(t *testing.T) {
	if NewDispatcher(nil) != nil {
		t.Error("empty configs should yield nil dispatcher")
	}

	cases := []struct {
		events []string
		event  Event
		want   bool
	}{
		{[]string{"block"}, Event{Action: "block"}, true},
		{[]string{"block"}, Event{Action: "alert"}, false},
		{[]string{"injection_detected"}, Event{Action: "alert", Type: "injection_detected"}, true},
		{[]string{"alert", "block"}, Event{Action: "alert"}, true},
		{[]string{}, Event{Action: "block"}, false},
	}
	for i, tc := range cases {
		if got := matches(tc.events, tc.event); got != tc.want {
			t.Errorf("case %d: matches(%v, %+v) = %v, want %v", i, tc.events, tc.event, got, tc.want)
		}
	}
}

func TestFormatSlack(t *testing.T) {
	body, err := FormatPayload("slack", testEvent())
	if err != nil {
		t.Fatal(err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if _, ok := payload["blocks"]; !ok {
		t.Error("slack payload missing blocks")
	}
}

func TestFormatPagerDutySeverity(t *testing.T) {
	tests := []struct {
		risk string
		want string
	}{
		{"critical", "critical"},
		{"high", "error"},
		{"medium", "warning"},
		{"", "info"},
	}
	for _, tt := range tests {
		ev := testEvent()
		ev.RiskLevel = tt.risk
		body, err := FormatPayload("pagerduty", ev)
		if err != nil {
			t.Fatal(err)
		}
		var payload struct {
			Payload struct {
				Severity string `json:"severity"`
			} `json:"payload"`
		}
		json.Unmarshal(body, &payload)
		if payload.Payload.Severity != tt.want {
			t.Errorf("risk %q: severity = %q, want %q", tt.risk, payload.Payload.Severity, tt.want)
		}
	}
}
