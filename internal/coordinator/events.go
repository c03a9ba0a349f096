package coordinator

// ToolCallEvent is the host's before_tool_call notification: a candidate
// tool call that has not started executing yet.
type ToolCallEvent struct {
	SessionKey string
	ToolName   string
	Params     map[string]any
}

// ToolResultEvent carries tool output on its way back into the agent's
// context window, before the model sees it.
type ToolResultEvent struct {
	SessionKey string
	ToolName   string
	Content    string
}

// ResultDecision is the answer to a ToolResultEvent. Content is what the
// host hands downstream: the original text, or the sanitized version when
// injection patterns were detected.
type ResultDecision struct {
	Content    string
	Sanitized  bool
	Categories []string
	MatchCount int
}

// ToolDoneEvent is the host's after_tool_call notification for a call that
// finished executing (successfully or not).
type ToolDoneEvent struct {
	SessionKey      string
	ToolName        string
	Params          map[string]any
	Failed          bool
	DurationMs      int64
	ResultSizeBytes int
}

// Risk tags accumulated on sessions. Tags are evidence for the remote
// scorer and for audit; they never block by themselves.
const (
	TagReadSensitiveWriteNetwork = "READ_SENSITIVE_WRITE_NETWORK"
	TagShellEscapeBlocked        = "SHELL_ESCAPE_BLOCKED"
	TagContentInjection          = "CONTENT_INJECTION"
	TagLowIntentOverlap          = "LOW_INTENT_OVERLAP"
	TagCrossAgentDataFlow        = "CROSS_AGENT_DATA_FLOW"
)
