package session

import (
	"testing"

	"github.com/openguardrails/agentwatch/internal/model"
)

func TestGetCreatesOnce(t *testing.T) {
	st := NewStore()
	a := st.Get("s1")
	b := st.Get("s1")
	if a != b {
		t.Error("Get should return the same session for the same key")
	}
	if st.Len() != 1 {
		t.Errorf("expected 1 session, got %d", st.Len())
	}
	if a.IntentToolOverlapScore != 1.0 {
		t.Errorf("new session overlap score = %v, want 1.0", a.IntentToolOverlapScore)
	}
}

func TestSeqStrictlyIncreasing(t *testing.T) {
	st := NewStore()
	r0 := st.RecordToolStart("s1", "read_file", map[string]string{"path": "a.txt"})
	st.RecordToolEnd("s1", "read_file", model.OutcomeSuccess, 5, "", 100)
	r1 := st.RecordBlocked("s1", "web_fetch", map[string]string{"url": "https://x.com"})
	r2 := st.RecordToolStart("s1", "read_file", nil)

	if r0.Seq != 0 || r1.Seq != 1 || r2.Seq != 2 {
		t.Errorf("seq = %d,%d,%d, want 0,1,2", r0.Seq, r1.Seq, r2.Seq)
	}
}

func TestRecordToolEndCompletesExecuting(t *testing.T) {
	st := NewStore()
	st.RecordToolStart("s1", "read_file", map[string]string{"path": "a.txt"})
	rec := st.RecordToolEnd("s1", "read_file", model.OutcomeSuccess, 12, "SSH_KEY", 2048)

	if rec.State != model.CallCompleted {
		t.Errorf("state = %s, want COMPLETED", rec.State)
	}
	if rec.DurationMs != 12 || rec.ResultCategory != "SSH_KEY" || rec.ResultSizeBytes != 2048 {
		t.Errorf("record not filled: %+v", rec)
	}

	s := st.Get("s1")
	if len(s.ToolChain) != 1 {
		t.Fatalf("chain length = %d, want 1 (end completes the started record)", len(s.ToolChain))
	}
}

func TestRecordToolEndFailed(t *testing.T) {
	st := NewStore()
	st.RecordToolStart("s1", "bash", nil)
	rec := st.RecordToolEnd("s1", "bash", model.OutcomeError, 3, "", 0)
	if rec.State != model.CallFailed || rec.Outcome != model.OutcomeError {
		t.Errorf("failed call: state=%s outcome=%s", rec.State, rec.Outcome)
	}
}

func TestRecordToolEndWithoutStart(t *testing.T) {
	st := NewStore()
	rec := st.RecordToolEnd("s1", "read_file", model.OutcomeSuccess, 1, "", 10)
	if rec.Seq != 0 {
		t.Errorf("seq = %d, want 0", rec.Seq)
	}
	if len(st.Get("s1").ToolChain) != 1 {
		t.Error("expected appended record when host skipped before_tool_call")
	}
}

func TestClearBoundary(t *testing.T) {
	st := NewStore()
	s := st.Get("s1")
	s.RecordSensitiveAccess(model.CategorySSHKey)
	s.AddRiskTag("READ_SENSITIVE_WRITE_NETWORK")
	st.RecordToolStart("s1", "read_file", nil)
	st.SetVerdict("s1", &model.AssessmentResult{Action: model.ActionBlock})

	st.Clear("s1")

	fresh := st.Get("s1")
	if fresh.HasSensitiveRead() || len(fresh.RiskTags) != 0 || len(fresh.ToolChain) != 0 {
		t.Error("state leaked across Clear")
	}
	if fresh.NextSeq() != 0 {
		t.Error("seq counter leaked across Clear")
	}
	if st.Verdict("s1") != nil {
		t.Error("verdict leaked across Clear")
	}
}

func TestVerdictDroppedAfterSessionEnd(t *testing.T) {
	st := NewStore()
	st.Get("s1")
	st.Clear("s1")
	// Assessment landed after the session ended.
	st.SetVerdict("s1", &model.AssessmentResult{Action: model.ActionBlock})
	st.Get("s1")
	if st.Verdict("s1") != nil {
		t.Error("verdict for an ended session should be dropped")
	}
}

func TestSetUserIntentOverwrites(t *testing.T) {
	st := NewStore()
	st.SetUserIntent("s1", "first goal")
	st.SetUserIntent("s1", "second goal")
	if got := st.Get("s1").UserIntent; got != "second goal" {
		t.Errorf("intent = %q, want last write", got)
	}
}
