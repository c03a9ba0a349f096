package alert

// Config defines a webhook alert destination.
type Config struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // ["block", "alert", "injection_detected"]
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp  string `json:"timestamp"`
	SessionKey string `json:"session_key"`
	ToolName   string `json:"tool,omitempty"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
	RiskLevel  string `json:"risk_level,omitempty"`
	RuleID     string `json:"rule_id,omitempty"`
	BehaviorID string `json:"behavior_id,omitempty"`
	Type       string `json:"type,omitempty"` // "injection_detected" etc.
}
