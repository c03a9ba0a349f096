package audit

// Entry is one line in the hash-chained JSONL audit log: a single lifecycle
// decision for one tool call (including fast-blocked attempts that never
// executed). All fields are flat (no map[string]any) so json.Marshal
// field order stays deterministic for reproducible hashing.
type Entry struct {
	Timestamp   string   `json:"ts"`
	SessionKey  string   `json:"session_key"`
	Seq         int      `json:"seq"`
	ToolName    string   `json:"tool"`
	Event       string   `json:"event"` // before_tool_call | tool_result | after_tool_call | assessment | session_end
	Action      string   `json:"action"`
	Reason      string   `json:"reason,omitempty"`
	RuleID      string   `json:"rule_id,omitempty"`
	BehaviorID  string   `json:"behavior_id,omitempty"`
	RiskLevel   string   `json:"risk_level,omitempty"`
	RiskTags    []string `json:"risk_tags,omitempty"`
	PatternsVer string   `json:"patterns_version,omitempty"`
	PrevHash    string   `json:"prev_hash"`
}
