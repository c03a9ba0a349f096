// Package coordinator ties the lifecycle hooks together: fast-path rules
// before a call, injection scanning on results, chain recording and deferred
// risk assessment after. Decisions are synchronous and local; everything
// observable (audit, alerts, quota) runs async on a sidecar worker.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/openguardrails/agentwatch/internal/alert"
	"github.com/openguardrails/agentwatch/internal/assess"
	"github.com/openguardrails/agentwatch/internal/audit"
	"github.com/openguardrails/agentwatch/internal/fastpath"
	"github.com/openguardrails/agentwatch/internal/inject"
	"github.com/openguardrails/agentwatch/internal/model"
	"github.com/openguardrails/agentwatch/internal/overlap"
	"github.com/openguardrails/agentwatch/internal/quota"
	"github.com/openguardrails/agentwatch/internal/sensitive"
	"github.com/openguardrails/agentwatch/internal/session"
)

// RuleStandingBlock marks blocks enforced from an earlier remote verdict.
// The verdict arrived after its own triggering call finished, so it can only
// apply to calls that start later.
const RuleStandingBlock = "assessment.standing_block"

// defaultOverlapThreshold flags sessions whose tool usage has drifted from
// the stated user intent.
const defaultOverlapThreshold = 0.3

// maxParamLen bounds stringified parameter values kept in the chain.
const maxParamLen = 256

// Config holds coordinator tunables.
type Config struct {
	AgentID          string
	OverlapThreshold float64
}

// Coordinator is the engine's lifecycle entry point. One instance serves
// all sessions; per-session events are delivered serially by the host.
type Coordinator struct {
	cfg    Config
	store  *session.Store
	logger *slog.Logger
	runID  string

	// Hot-swappable collaborators, replaced on config reload.
	mu         sync.RWMutex
	scanner    *inject.Scanner
	assessor   *assess.Client
	dispatcher *alert.Dispatcher

	auditLog *audit.Log
	quota    quota.Recorder
	sidecar  *sidecar

	// assessMu guards the per-session signal signature used to avoid
	// re-assessing identical evidence.
	assessMu      sync.Mutex
	lastAssessSig map[string]string
}

// New wires a coordinator. assessor, dispatcher and auditLog may be nil
// (remote scoring, alerting or audit disabled); a nil recorder means quota
// is not tracked.
func New(cfg Config, store *session.Store, scanner *inject.Scanner, assessor *assess.Client, dispatcher *alert.Dispatcher, auditLog *audit.Log, recorder quota.Recorder, logger *slog.Logger) *Coordinator {
	if cfg.OverlapThreshold <= 0 {
		cfg.OverlapThreshold = defaultOverlapThreshold
	}
	if recorder == nil {
		recorder = quota.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		cfg:           cfg,
		store:         store,
		logger:        logger,
		runID:         uuid.NewString(),
		scanner:       scanner,
		assessor:      assessor,
		dispatcher:    dispatcher,
		auditLog:      auditLog,
		quota:         recorder,
		sidecar:       newSidecar(logger),
		lastAssessSig: make(map[string]string),
	}
}

// Reload swaps the hot-reloadable collaborators. In-flight decisions keep
// the instances they already hold.
func (c *Coordinator) Reload(scanner *inject.Scanner, assessor *assess.Client, dispatcher *alert.Dispatcher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scanner != nil {
		c.scanner = scanner
	}
	c.assessor = assessor
	c.dispatcher = dispatcher
}

// Close drains pending side effects. The audit log is owned by the caller
// and closed separately.
func (c *Coordinator) Close() {
	c.sidecar.close()
}

// Scanner returns the active injection scanner.
func (c *Coordinator) Scanner() *inject.Scanner {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scanner
}

// SetUserIntent records the session's stated user goal. Last write wins.
func (c *Coordinator) SetUserIntent(sessionKey, intent string) {
	c.store.SetUserIntent(sessionKey, intent)
}

// BeforeToolCall decides synchronously whether the candidate call may
// execute. Fast-path rules run first and are final; a standing block verdict
// from an earlier assessment is checked next. Allowed calls enter EXECUTING.
func (c *Coordinator) BeforeToolCall(ctx context.Context, ev ToolCallEvent) model.BlockDecision {
	tool := model.NormalizeToolName(ev.ToolName)
	s := c.store.Get(ev.SessionKey)

	if d := fastpath.Evaluate(s, fastpath.Call{ToolName: tool, Params: ev.Params}); d.Block {
		c.applyBlockSignals(s, d)
		rec := c.store.RecordBlocked(ev.SessionKey, tool, sanitizeParams(ev.Params))
		c.logger.Warn("fast path blocked tool call",
			"session_key", ev.SessionKey, "tool", tool, "rule_id", d.RuleID, "reason", d.BlockReason)
		c.audit(audit.Entry{
			SessionKey: ev.SessionKey,
			Seq:        rec.Seq,
			ToolName:   tool,
			Event:      "before_tool_call",
			Action:     string(model.ActionBlock),
			Reason:     d.BlockReason,
			RuleID:     d.RuleID,
			RiskTags:   sortedTags(s),
		})
		c.alert(alert.Event{
			SessionKey: ev.SessionKey,
			ToolName:   tool,
			Action:     string(model.ActionBlock),
			Reason:     d.BlockReason,
			RuleID:     d.RuleID,
		})
		return d
	}

	if v := c.store.Verdict(ev.SessionKey); v != nil && v.Action == model.ActionBlock {
		d := model.BlockDecision{
			Block:       true,
			BlockReason: fmt.Sprintf("standing block from risk assessment %s: %s", v.BehaviorID, v.Explanation),
			RuleID:      RuleStandingBlock,
		}
		rec := c.store.RecordBlocked(ev.SessionKey, tool, sanitizeParams(ev.Params))
		c.logger.Warn("standing assessment verdict blocked tool call",
			"session_key", ev.SessionKey, "tool", tool, "behavior_id", v.BehaviorID, "risk_level", v.RiskLevel)
		c.audit(audit.Entry{
			SessionKey: ev.SessionKey,
			Seq:        rec.Seq,
			ToolName:   tool,
			Event:      "before_tool_call",
			Action:     string(model.ActionBlock),
			Reason:     d.BlockReason,
			RuleID:     d.RuleID,
			BehaviorID: v.BehaviorID,
			RiskLevel:  string(v.RiskLevel),
		})
		c.alert(alert.Event{
			SessionKey: ev.SessionKey,
			ToolName:   tool,
			Action:     string(model.ActionBlock),
			Reason:     d.BlockReason,
			RuleID:     d.RuleID,
			BehaviorID: v.BehaviorID,
			RiskLevel:  string(v.RiskLevel),
		})
		return d
	}

	rec := c.store.RecordToolStart(ev.SessionKey, tool, sanitizeParams(ev.Params))
	c.audit(audit.Entry{
		SessionKey: ev.SessionKey,
		Seq:        rec.Seq,
		ToolName:   tool,
		Event:      "before_tool_call",
		Action:     string(model.ActionAllow),
	})
	return model.BlockDecision{}
}

// ToolResult scans content-ingress output for injection patterns before it
// reaches the agent's context window. Non-ingress tools pass through
// untouched. On detection the matched spans are replaced with category
// markers and the session accrues injection evidence.
func (c *Coordinator) ToolResult(ctx context.Context, ev ToolResultEvent) ResultDecision {
	tool := model.NormalizeToolName(ev.ToolName)
	if !model.IsContentIngress(tool) {
		return ResultDecision{Content: ev.Content}
	}

	c.mu.RLock()
	sc := c.scanner
	c.mu.RUnlock()

	res := sc.Scan(ev.Content)
	if !res.Detected {
		return ResultDecision{Content: ev.Content}
	}

	red := sc.Redact(ev.Content)
	s := c.store.Get(ev.SessionKey)
	s.AddRiskTag(TagContentInjection)

	cats := categoryStrings(res.Categories)
	c.logger.Warn("injection patterns detected in tool result",
		"session_key", ev.SessionKey, "tool", tool,
		"matches", len(red.Findings), "categories", len(cats))
	c.audit(audit.Entry{
		SessionKey:  ev.SessionKey,
		ToolName:    tool,
		Event:       "tool_result",
		Action:      "sanitize",
		Reason:      fmt.Sprintf("injection patterns redacted (%d matches, %d categories)", len(red.Findings), len(cats)),
		RiskTags:    sortedTags(s),
		PatternsVer: sc.Version(),
	})
	c.alert(alert.Event{
		SessionKey: ev.SessionKey,
		ToolName:   tool,
		Action:     string(model.ActionAlert),
		Reason:     fmt.Sprintf("injection patterns in tool result: %v", cats),
		Type:       "injection_detected",
	})

	return ResultDecision{
		Content:    red.Redacted,
		Sanitized:  true,
		Categories: cats,
		MatchCount: len(red.Findings),
	}
}

// AfterToolCall records the finished call into the session chain, updates
// accumulated signals and, when the evidence warrants, schedules a deferred
// risk assessment. Nothing here can retroactively affect the finished call.
func (c *Coordinator) AfterToolCall(ctx context.Context, ev ToolDoneEvent) {
	tool := model.NormalizeToolName(ev.ToolName)
	s := c.store.Get(ev.SessionKey)

	outcome := model.OutcomeSuccess
	if ev.Failed {
		outcome = model.OutcomeError
	}

	// Sensitive classification counts only for completed reads; a failed
	// call never touched the path.
	cats := sensitive.ClassifyParams(ev.Params)
	resultCategory := ""
	if !ev.Failed && len(cats) > 0 {
		for _, cat := range cats {
			s.RecordSensitiveAccess(cat)
		}
		resultCategory = string(cats[0])
	}

	rec := c.store.RecordToolEnd(ev.SessionKey, tool, outcome, ev.DurationMs, resultCategory, ev.ResultSizeBytes)

	// An attempted contact signals intent even when the call failed.
	domains := sensitive.ExtractDomains(ev.Params)
	for _, d := range domains {
		s.RecordExternalDomain(d)
	}
	if s.HasSensitiveRead() && len(domains) > 0 {
		s.PatternFlags.ReadThenExfil = true
		s.AddRiskTag(TagReadSensitiveWriteNetwork)
	}
	if model.IsCrossAgentTool(tool) {
		s.PatternFlags.CrossAgentDataFlow = true
		if s.HasSensitiveRead() {
			s.AddRiskTag(TagCrossAgentDataFlow)
		}
	}

	s.IntentToolOverlapScore = overlap.Score(s.UserIntent, s.ToolChain)
	if s.UserIntent != "" && s.IntentToolOverlapScore < c.cfg.OverlapThreshold {
		s.AddRiskTag(TagLowIntentOverlap)
	}

	rec.State = model.CallRecorded
	c.audit(audit.Entry{
		SessionKey: ev.SessionKey,
		Seq:        rec.Seq,
		ToolName:   tool,
		Event:      "after_tool_call",
		Action:     "record",
		RiskTags:   sortedTags(s),
	})

	c.maybeAssess(ev.SessionKey, s)
}

// SessionEnd discards all state for the session after a final audit entry.
func (c *Coordinator) SessionEnd(ctx context.Context, sessionKey string) {
	calls := 0
	if s, ok := c.store.Peek(sessionKey); ok {
		calls = len(s.ToolChain)
	}
	c.audit(audit.Entry{
		SessionKey: sessionKey,
		Event:      "session_end",
		Action:     "clear",
		Reason:     fmt.Sprintf("%d calls recorded", calls),
	})
	c.store.Clear(sessionKey)

	c.assessMu.Lock()
	delete(c.lastAssessSig, sessionKey)
	c.assessMu.Unlock()
}

// maybeAssess schedules a deferred assessment when accumulated signals
// warrant one and the evidence has changed since the last attempt.
func (c *Coordinator) maybeAssess(sessionKey string, s *model.Session) {
	c.mu.RLock()
	assessor := c.assessor
	c.mu.RUnlock()
	if assessor == nil || !warrantsAssessment(s) {
		return
	}

	sig := assessSignature(s)
	c.assessMu.Lock()
	if c.lastAssessSig[sessionKey] == sig {
		c.assessMu.Unlock()
		return
	}
	c.lastAssessSig[sessionKey] = sig
	c.assessMu.Unlock()

	// Snapshot on the event goroutine; the session must not be read from
	// the assessment goroutine.
	req := assess.RequestFromSession(c.cfg.AgentID, c.runID, s, nil)
	go c.runAssessment(assessor, sessionKey, req)
}

func (c *Coordinator) runAssessment(assessor *assess.Client, sessionKey string, req *assess.Request) {
	out, err := assessor.Assess(context.Background(), req)
	if err != nil {
		c.logger.Warn("assessment request rejected", "session_key", sessionKey, "error", err)
		return
	}
	if out.Indeterminate {
		c.audit(audit.Entry{
			SessionKey: sessionKey,
			Event:      "assessment",
			Action:     string(model.ActionAllow),
			Reason:     "indeterminate: " + out.Reason,
		})
		return
	}

	r := out.Result
	c.audit(audit.Entry{
		SessionKey: sessionKey,
		Event:      "assessment",
		Action:     string(r.Action),
		Reason:     r.Explanation,
		BehaviorID: r.BehaviorID,
		RiskLevel:  string(r.RiskLevel),
	})
	c.sidecar.submit(func() {
		if err := c.quota.Consume(context.Background(), sessionKey, 1); err != nil {
			c.logger.Warn("quota consumption failed", "session_key", sessionKey, "error", err)
		}
	})

	switch r.Action {
	case model.ActionBlock:
		c.store.SetVerdict(sessionKey, r)
		c.logger.Warn("assessment verdict blocks subsequent calls",
			"session_key", sessionKey, "behavior_id", r.BehaviorID, "risk_level", r.RiskLevel)
		c.alert(alert.Event{
			SessionKey: sessionKey,
			Action:     string(model.ActionBlock),
			Reason:     r.Explanation,
			BehaviorID: r.BehaviorID,
			RiskLevel:  string(r.RiskLevel),
			Type:       "assessment",
		})
	case model.ActionAlert:
		c.logger.Warn("assessment flagged session",
			"session_key", sessionKey, "behavior_id", r.BehaviorID, "risk_level", r.RiskLevel)
		c.alert(alert.Event{
			SessionKey: sessionKey,
			Action:     string(model.ActionAlert),
			Reason:     r.Explanation,
			BehaviorID: r.BehaviorID,
			RiskLevel:  string(r.RiskLevel),
			Type:       "assessment",
		})
	}
}

// warrantsAssessment reports whether the session has accumulated enough
// local evidence to be worth a remote round trip.
func warrantsAssessment(s *model.Session) bool {
	f := s.PatternFlags
	if f.CredentialAccess || f.ReadThenExfil || f.ShellEscapeAttempt || f.CrossAgentDataFlow {
		return true
	}
	if len(s.ExternalDomainsContacted) > 0 {
		return true
	}
	return len(s.RiskTags) > 0
}

// assessSignature summarizes the evidence an assessment would be based on.
// Identical signatures mean a repeat assessment would tell us nothing new.
func assessSignature(s *model.Session) string {
	tags := sortedTags(s)
	cats := s.SensitiveCategoryList()
	sort.Strings(cats)
	domains := s.ExternalDomainList()
	sort.Strings(domains)
	return fmt.Sprintf("%v|%v|%v|%+v", tags, cats, domains, s.PatternFlags)
}

func (c *Coordinator) applyBlockSignals(s *model.Session, d model.BlockDecision) {
	switch d.RuleID {
	case fastpath.RuleShellEscape:
		s.PatternFlags.ShellEscapeAttempt = true
		s.AddRiskTag(TagShellEscapeBlocked)
	case fastpath.RuleSensitiveReadThenNetwork:
		s.PatternFlags.ReadThenExfil = true
		s.AddRiskTag(TagReadSensitiveWriteNetwork)
	}
}

// audit submits an entry to the sidecar. With no audit log configured the
// entry is dropped.
func (c *Coordinator) audit(entry audit.Entry) {
	if c.auditLog == nil {
		return
	}
	c.sidecar.submit(func() {
		if err := c.auditLog.Record(entry); err != nil {
			c.logger.Error("audit write failed", "session_key", entry.SessionKey, "error", err)
		}
	})
}

// alert submits an event to the dispatcher via the sidecar. The dispatcher
// itself fans out per-webhook goroutines; going through the sidecar keeps
// the decision path free of even that work.
func (c *Coordinator) alert(event alert.Event) {
	c.mu.RLock()
	d := c.dispatcher
	c.mu.RUnlock()
	if d == nil {
		return
	}
	c.sidecar.submit(func() { d.Dispatch(event) })
}

func sortedTags(s *model.Session) []string {
	tags := s.RiskTagList()
	sort.Strings(tags)
	return tags
}

func categoryStrings(cats []inject.Category) []string {
	out := make([]string, len(cats))
	for i, cat := range cats {
		out[i] = string(cat)
	}
	return out
}

// sanitizeParams stringifies and bounds parameter values for chain storage.
// Raw values never persist beyond this truncated form.
func sanitizeParams(params map[string]any) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		s := fmt.Sprintf("%v", v)
		if len(s) > maxParamLen {
			s = s[:maxParamLen] + "..."
		}
		out[k] = s
	}
	return out
}
