// Package config loads engine configuration from YAML with built-in
// defaults. Loading is explicit: the caller constructs everything from the
// returned value, nothing reads configuration through globals.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/openguardrails/agentwatch/internal/alert"
	"github.com/openguardrails/agentwatch/internal/assess"
)

// QuotaConfig points at the external consumption collector. An empty
// endpoint disables quota tracking.
type QuotaConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Headers  map[string]string `yaml:"headers"`
}

// AuditConfig controls the hash-chained decision log. An empty path
// disables audit.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// Config holds all engine parameters.
type Config struct {
	AgentID          string         `yaml:"agent_id"`
	OverlapThreshold float64        `yaml:"overlap_threshold"`
	PatternsPath     string         `yaml:"patterns_path"`
	Assessment       assess.Config  `yaml:"assessment"`
	Quota            QuotaConfig    `yaml:"quota"`
	Audit            AuditConfig    `yaml:"audit"`
	Alerts           []alert.Config `yaml:"alerts"`
}

// Default returns the built-in configuration: local-only operation with
// audit under the user's home directory and no remote scorer.
func Default() *Config {
	home, err := os.UserHomeDir()
	auditPath := ""
	if err == nil {
		auditPath = filepath.Join(home, ".agentwatch", "audit.jsonl")
	}
	return &Config{
		AgentID:          "agentwatch",
		OverlapThreshold: 0.3,
		Audit:            AuditConfig{Path: auditPath},
	}
}

// DefaultPath returns ~/.agentwatch/config.yaml, or "" when the home
// directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".agentwatch", "config.yaml")
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.agentwatch/config.yaml. Missing file returns defaults. Invalid YAML
// returns an error.
func Load(path string) (*Config, error) {
	cfg, _, err := LoadWithHash(path)
	return cfg, err
}

// LoadWithHash loads configuration and returns the SHA-256 of the raw YAML
// bytes, for audit and startup logging. When no file exists the hash is the
// SHA-256 of empty input.
func LoadWithHash(path string) (*Config, string, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if path == "" || os.IsNotExist(err) {
			h := sha256.Sum256(nil)
			return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
		}
		return nil, "", fmt.Errorf("config: read %q: %w", path, err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Defaults first; YAML overwrites only the fields it specifies.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.Audit.Path = expandHome(cfg.Audit.Path)
	cfg.PatternsPath = expandHome(cfg.PatternsPath)
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, hash, nil
}

// expandHome resolves a leading "~/" against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Validate rejects configurations that would misbehave silently.
func (c *Config) Validate() error {
	if c.AgentID == "" {
		return fmt.Errorf("config: agent_id must not be empty")
	}
	if c.OverlapThreshold < 0 || c.OverlapThreshold > 1 {
		return fmt.Errorf("config: overlap_threshold %v out of range [0,1]", c.OverlapThreshold)
	}
	if c.Assessment.Timeout < 0 {
		return fmt.Errorf("config: assessment timeout must not be negative")
	}
	for i, a := range c.Alerts {
		if a.URL == "" {
			return fmt.Errorf("config: alerts[%d] missing url", i)
		}
	}
	return nil
}

// DefaultConfigYAML returns a commented YAML string for agentwatch init.
func DefaultConfigYAML() string {
	return `# agentwatch engine configuration
# Generated by: agentwatch init

# Identifier sent with assessment requests.
agent_id: agentwatch

# Sessions whose intent/tool-usage overlap drops below this are flagged
# for assessment. Range [0,1]; 0 disables the check.
overlap_threshold: 0.3

# Optional injection pattern table override. Empty uses the built-in set.
# Generate a starting point with: agentwatch init --patterns
patterns_path: ""

# Remote risk scorer. Empty endpoint disables remote assessment; all
# decisions then come from the local fast path and scanner.
# The client fails open: on timeout or transport error calls proceed.
assessment:
  endpoint: ""
  timeout: 2s
  headers: {}
  # headers:
  #   Authorization: "Bearer <token>"

# Consumption reporting for successful assessments. Empty disables.
quota:
  endpoint: ""
  headers: {}

# Hash-chained JSONL decision log. Empty path disables audit.
audit:
  path: ~/.agentwatch/audit.jsonl

# Webhook alerts. Each entry matches on action ("block", "alert") or
# event type ("injection_detected", "assessment").
alerts: []
# alerts:
#   - url: https://hooks.slack.com/services/XXX
#     format: slack
#     events: [block, injection_detected]
`
}
