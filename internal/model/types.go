package model

// RiskLevel classifies the severity of an assessed behavior.
type RiskLevel string

const (
	RiskNone     RiskLevel = "no_risk"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskRank maps risk levels to comparable integers for monotonic escalation.
var RiskRank = map[RiskLevel]int{
	RiskNone:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Action is the verdict surfaced for a tool call or a remote assessment.
type Action string

const (
	ActionAllow Action = "allow"
	ActionAlert Action = "alert"
	ActionBlock Action = "block"
)

// ActionFor maps a risk level to its action. This table is a fixed external
// contract shared with the remote scorer and the dashboard collaborators:
// critical|high → block, medium → alert, low|no_risk → allow.
func ActionFor(level RiskLevel) Action {
	switch level {
	case RiskCritical, RiskHigh:
		return ActionBlock
	case RiskMedium:
		return ActionAlert
	default:
		return ActionAllow
	}
}

// Outcome is the completion status of a tool call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// CallState tracks a tool call through its lifecycle:
// PENDING → (FAST_BLOCKED | SCANNED_OK) → EXECUTING → (COMPLETED | FAILED) → RECORDED.
type CallState string

const (
	CallPending     CallState = "PENDING"
	CallFastBlocked CallState = "FAST_BLOCKED"
	CallScannedOK   CallState = "SCANNED_OK"
	CallExecuting   CallState = "EXECUTING"
	CallCompleted   CallState = "COMPLETED"
	CallFailed      CallState = "FAILED"
	CallRecorded    CallState = "RECORDED"
)

// SensitiveCategory is one of the 8 fixed taxonomy tags assigned to
// filesystem paths recognized as credentials or secrets. The tag values are
// part of the wire contract consumed by audit and dashboard collaborators.
type SensitiveCategory string

const (
	CategorySSHKey        SensitiveCategory = "SSH_KEY"
	CategoryAWSCreds      SensitiveCategory = "AWS_CREDS"
	CategoryGPGKey        SensitiveCategory = "GPG_KEY"
	CategoryEnvFile       SensitiveCategory = "ENV_FILE"
	CategoryCryptoCert    SensitiveCategory = "CRYPTO_CERT"
	CategorySystemAuth    SensitiveCategory = "SYSTEM_AUTH"
	CategoryBrowserCookie SensitiveCategory = "BROWSER_COOKIE"
	CategoryKeychain      SensitiveCategory = "KEYCHAIN"
)

// PatternFlags are the per-session behavioral booleans accumulated from
// local signals. They feed both the fast path and the assessment request.
type PatternFlags struct {
	ReadThenExfil      bool `json:"read_then_exfil"`
	CredentialAccess   bool `json:"credential_access"`
	ShellEscapeAttempt bool `json:"shell_escape_attempt"`
	CrossAgentDataFlow bool `json:"cross_agent_data_flow"`
}

// ToolCallRecord is one completed (or fast-blocked) tool call in a session's
// chain. Seq is monotonically increasing per session, starting at 0.
type ToolCallRecord struct {
	Seq             int               `json:"seq"`
	ToolName        string            `json:"tool_name"`
	SanitizedParams map[string]string `json:"sanitized_params,omitempty"`
	Outcome         Outcome           `json:"outcome"`
	DurationMs      int64             `json:"duration_ms"`
	ResultCategory  string            `json:"result_category,omitempty"`
	ResultSizeBytes int               `json:"result_size_bytes"`
	State           CallState         `json:"state"`
}

// AssessmentResult is the remote scorer's verdict for one assessment.
type AssessmentResult struct {
	BehaviorID    string    `json:"behavior_id"`
	RiskLevel     RiskLevel `json:"risk_level"`
	AnomalyTypes  []string  `json:"anomaly_types,omitempty"`
	Action        Action    `json:"action"`
	Confidence    float64   `json:"confidence"`
	Explanation   string    `json:"explanation,omitempty"`
	AffectedTools []string  `json:"affected_tools,omitempty"`
}

// BlockDecision is the synchronous answer to a before_tool_call event.
type BlockDecision struct {
	Block       bool   `json:"block"`
	BlockReason string `json:"block_reason,omitempty"`
	RuleID      string `json:"rule_id,omitempty"`
}

// Allowed returns true if the call may proceed.
func (d BlockDecision) Allowed() bool { return !d.Block }
