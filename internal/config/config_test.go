package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, hash, err := LoadWithHash(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AgentID != "agentwatch" || cfg.OverlapThreshold != 0.3 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	// SHA-256 of empty input.
	if hash != "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("hash = %q", hash)
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `agent_id: prod-agent
assessment:
  endpoint: https://scorer.example.com/v1/assess
  timeout: 250ms
alerts:
  - url: https://hooks.example.com/x
    format: slack
    events: [block]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, hash, err := LoadWithHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AgentID != "prod-agent" {
		t.Errorf("agent_id = %q", cfg.AgentID)
	}
	if cfg.OverlapThreshold != 0.3 {
		t.Errorf("unspecified threshold should keep default, got %v", cfg.OverlapThreshold)
	}
	if time.Duration(cfg.Assessment.Timeout) != 250*time.Millisecond {
		t.Errorf("timeout = %v", cfg.Assessment.Timeout)
	}
	if len(cfg.Alerts) != 1 || cfg.Alerts[0].Format != "slack" {
		t.Errorf("alerts = %+v", cfg.Alerts)
	}
	if hash == "" {
		t.Error("hash missing")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("agent_id: [unclosed"), 0644)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold-range", "overlap_threshold: 1.5\n"},
		{"empty-agent", "agent_id: \"\"\n"},
		{"alert-without-url", "alerts:\n  - format: slack\n"},
		{"bad-duration", "assessment:\n  timeout: soon\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			os.WriteFile(path, []byte(tt.yaml), 0644)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for:\n%s", tt.yaml)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("audit:\n  path: ~/.agentwatch/audit.jsonl\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audit.Path == "~/.agentwatch/audit.jsonl" {
		t.Error("tilde not expanded")
	}
	if filepath.Base(cfg.Audit.Path) != "audit.jsonl" {
		t.Errorf("path = %q", cfg.Audit.Path)
	}
}

func TestDefaultConfigYAMLRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(DefaultConfigYAML()), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.AgentID != "agentwatch" {
		t.Errorf("agent_id = %q", cfg.AgentID)
	}
	if time.Duration(cfg.Assessment.Timeout) != 2*time.Second {
		t.Errorf("timeout = %v", cfg.Assessment.Timeout)
	}
}
