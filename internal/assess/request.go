package assess

import (
	"errors"
	"fmt"

	"github.com/openguardrails/agentwatch/internal/model"
)

// ErrValidation marks a request rejected before any network or session
// mutation happened.
var ErrValidation = errors.New("assess: invalid request")

// PatternFlags mirrors model.PatternFlags with the wire contract's field
// names. The remote scorer and the engine version these independently, so
// the wire shape is kept separate from the internal one.
type PatternFlags struct {
	ReadThenExfil      bool `json:"readThenExfil"`
	CredentialAccess   bool `json:"credentialAccess"`
	ShellEscapeAttempt bool `json:"shellEscapeAttempt"`
	CrossAgentDataFlow bool `json:"crossAgentDataFlow"`
}

// LocalSignals carries the session's accumulated local evidence.
type LocalSignals struct {
	SensitivePathsAccessed   []string     `json:"sensitivePathsAccessed"`
	ExternalDomainsContacted []string     `json:"externalDomainsContacted"`
	PatternFlags             PatternFlags `json:"patternFlags"`
	IntentToolOverlapScore   float64      `json:"intentToolOverlapScore"`
	RiskTags                 []string     `json:"riskTags"`
}

// ToolCallEntry is one chain entry in wire form.
type ToolCallEntry struct {
	Seq             int               `json:"seq"`
	ToolName        string            `json:"toolName"`
	SanitizedParams map[string]string `json:"sanitizedParams,omitempty"`
	Outcome         string            `json:"outcome"`
	DurationMs      int64             `json:"durationMs"`
	ResultCategory  string            `json:"resultCategory,omitempty"`
	ResultSizeBytes int               `json:"resultSizeBytes"`
}

// Context carries conversation-shape hints for the scorer.
type Context struct {
	MessageHistoryLength int      `json:"messageHistoryLength"`
	RecentUserMessages   []string `json:"recentUserMessages,omitempty"`
}

// Request is the assessment request body. AgentID, SessionKey, RunID and
// LocalSignals are required; the rest is optional context.
type Request struct {
	AgentID      string          `json:"agentId"`
	SessionKey   string          `json:"sessionKey"`
	RunID        string          `json:"runId"`
	UserIntent   string          `json:"userIntent,omitempty"`
	ToolChain    []ToolCallEntry `json:"toolChain,omitempty"`
	LocalSignals *LocalSignals   `json:"localSignals"`
	Context      *Context        `json:"context,omitempty"`
	Meta         map[string]any  `json:"meta,omitempty"`
}

// Validate checks the required fields. A validation failure is surfaced to
// the caller before any session state is touched.
func (r *Request) Validate() error {
	switch {
	case r.AgentID == "":
		return fmt.Errorf("%w: missing agentId", ErrValidation)
	case r.SessionKey == "":
		return fmt.Errorf("%w: missing sessionKey", ErrValidation)
	case r.RunID == "":
		return fmt.Errorf("%w: missing runId", ErrValidation)
	case r.LocalSignals == nil:
		return fmt.Errorf("%w: missing localSignals", ErrValidation)
	}
	return nil
}

// RequestFromSession builds the wire request from a live session snapshot.
func RequestFromSession(agentID, runID string, s *model.Session, ctx *Context) *Request {
	chain := make([]ToolCallEntry, len(s.ToolChain))
	for i, rec := range s.ToolChain {
		chain[i] = ToolCallEntry{
			Seq:             rec.Seq,
			ToolName:        rec.ToolName,
			SanitizedParams: rec.SanitizedParams,
			Outcome:         string(rec.Outcome),
			DurationMs:      rec.DurationMs,
			ResultCategory:  rec.ResultCategory,
			ResultSizeBytes: rec.ResultSizeBytes,
		}
	}

	return &Request{
		AgentID:    agentID,
		SessionKey: s.SessionKey,
		RunID:      runID,
		UserIntent: s.UserIntent,
		ToolChain:  chain,
		LocalSignals: &LocalSignals{
			SensitivePathsAccessed:   s.SensitiveCategoryList(),
			ExternalDomainsContacted: s.ExternalDomainList(),
			PatternFlags: PatternFlags{
				ReadThenExfil:      s.PatternFlags.ReadThenExfil,
				CredentialAccess:   s.PatternFlags.CredentialAccess,
				ShellEscapeAttempt: s.PatternFlags.ShellEscapeAttempt,
				CrossAgentDataFlow: s.PatternFlags.CrossAgentDataFlow,
			},
			IntentToolOverlapScore: s.IntentToolOverlapScore,
			RiskTags:               s.RiskTagList(),
		},
		Context: ctx,
	}
}
