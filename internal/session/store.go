// Package session owns per-session mutable state, keyed by the opaque
// session identifier the host runtime attaches to every lifecycle event.
package session

import (
	"sync"

	"github.com/openguardrails/agentwatch/internal/model"
)

// Store maps session keys to live sessions. The map itself is guarded so
// that independent sessions proceed fully concurrently. State inside one
// session is not locked: the host runtime delivers lifecycle events for a
// given session serially, and the store documents that as an assumption
// rather than enforcing it.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*model.Session

	// verdicts holds the standing remote assessment per session. Unlike
	// session state, a verdict arrives from an async assessment goroutine,
	// so it lives under the store lock rather than inside the session.
	verdicts map[string]*model.AssessmentResult
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*model.Session),
		verdicts: make(map[string]*model.AssessmentResult),
	}
}

// Get returns the session for the key, creating an empty one on first use.
func (st *Store) Get(key string) *model.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if s, ok := st.sessions[key]; ok {
		return s
	}
	s := model.NewSession(key)
	st.sessions[key] = s
	return s
}

// Peek returns the session for the key without creating one.
func (st *Store) Peek(key string) (*model.Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[key]
	return s, ok
}

// Clear removes all state for the key. A subsequent Get returns a fresh,
// empty session; no value leaks across the clear boundary.
func (st *Store) Clear(key string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, key)
	delete(st.verdicts, key)
}

// SetVerdict records the standing remote assessment for the session. A
// verdict can only affect decisions for calls that start after it lands.
func (st *Store) SetVerdict(key string, result *model.AssessmentResult) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[key]; !ok {
		// Session ended while the assessment was in flight; drop it.
		return
	}
	st.verdicts[key] = result
}

// Verdict returns the standing remote assessment for the session, if any.
func (st *Store) Verdict(key string) *model.AssessmentResult {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.verdicts[key]
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// SetUserIntent overwrites the session's stated user goal. Last write wins;
// intents are never appended.
func (st *Store) SetUserIntent(key, intent string) {
	st.Get(key).UserIntent = intent
}

// RecordToolStart appends a pending record for a call that passed the fast
// path and is about to execute, and returns it for completion by
// RecordToolEnd.
func (st *Store) RecordToolStart(key, toolName string, params map[string]string) *model.ToolCallRecord {
	s := st.Get(key)
	s.ToolChain = append(s.ToolChain, model.ToolCallRecord{
		Seq:             s.NextSeq(),
		ToolName:        toolName,
		SanitizedParams: params,
		State:           model.CallExecuting,
	})
	return &s.ToolChain[len(s.ToolChain)-1]
}

// RecordBlocked appends a record for a call the fast path rejected. The
// call never entered EXECUTING but is still part of the chain for audit.
func (st *Store) RecordBlocked(key, toolName string, params map[string]string) *model.ToolCallRecord {
	s := st.Get(key)
	s.ToolChain = append(s.ToolChain, model.ToolCallRecord{
		Seq:             s.NextSeq(),
		ToolName:        toolName,
		SanitizedParams: params,
		Outcome:         model.OutcomeError,
		State:           model.CallFastBlocked,
	})
	return &s.ToolChain[len(s.ToolChain)-1]
}

// RecordToolEnd completes the most recent executing record for the tool.
// If no matching record exists (the host skipped before_tool_call), a
// completed record is appended instead so the chain stays whole.
func (st *Store) RecordToolEnd(key, toolName string, outcome model.Outcome, durationMs int64, resultCategory string, resultSizeBytes int) *model.ToolCallRecord {
	s := st.Get(key)

	var rec *model.ToolCallRecord
	for i := len(s.ToolChain) - 1; i >= 0; i-- {
		r := &s.ToolChain[i]
		if r.ToolName == toolName && r.State == model.CallExecuting {
			rec = r
			break
		}
	}
	if rec == nil {
		s.ToolChain = append(s.ToolChain, model.ToolCallRecord{
			Seq:             s.NextSeq(),
			ToolName:        toolName,
			SanitizedParams: map[string]string{},
		})
		rec = &s.ToolChain[len(s.ToolChain)-1]
	}

	rec.Outcome = outcome
	rec.DurationMs = durationMs
	rec.ResultCategory = resultCategory
	rec.ResultSizeBytes = resultSizeBytes
	if outcome == model.OutcomeError {
		rec.State = model.CallFailed
	} else {
		rec.State = model.CallCompleted
	}
	return rec
}
