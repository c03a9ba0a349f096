package model

// Session is the evolving per-agent-run state that rules and assessments
// reason about. All fields are owned by the sequence of lifecycle events
// referencing the session key; the host delivers those events serially.
type Session struct {
	SessionKey               string                     `json:"session_key"`
	UserIntent               string                     `json:"user_intent,omitempty"`
	ToolChain                []ToolCallRecord           `json:"tool_chain"`
	SensitivePathsAccessed   map[SensitiveCategory]bool `json:"sensitive_paths_accessed"`
	ExternalDomainsContacted map[string]bool            `json:"external_domains_contacted"`
	PatternFlags             PatternFlags               `json:"pattern_flags"`
	IntentToolOverlapScore   float64                    `json:"intent_tool_overlap_score"`
	RiskTags                 map[string]bool            `json:"risk_tags"`

	nextSeq int
}

// NewSession creates an empty session with safe defaults. The overlap score
// starts neutral (1.0): with no evidence yet, tool usage is presumed to
// match intent.
func NewSession(key string) *Session {
	return &Session{
		SessionKey:               key,
		ToolChain:                []ToolCallRecord{},
		SensitivePathsAccessed:   make(map[SensitiveCategory]bool),
		ExternalDomainsContacted: make(map[string]bool),
		IntentToolOverlapScore:   1.0,
		RiskTags:                 make(map[string]bool),
	}
}

// NextSeq returns the next sequence number and advances the counter.
// Seq values reflect arrival order from the host and are never reused.
func (s *Session) NextSeq() int {
	seq := s.nextSeq
	s.nextSeq++
	return seq
}

// AddRiskTag records a risk tag. Duplicate tags are a no-op.
func (s *Session) AddRiskTag(tag string) {
	s.RiskTags[tag] = true
}

// HasRiskTag reports whether the tag has been recorded this session.
func (s *Session) HasRiskTag(tag string) bool {
	return s.RiskTags[tag]
}

// RecordSensitiveAccess marks a sensitive-path category as accessed.
// Any access also sets the credential-access pattern flag.
func (s *Session) RecordSensitiveAccess(cat SensitiveCategory) {
	s.SensitivePathsAccessed[cat] = true
	s.PatternFlags.CredentialAccess = true
}

// RecordExternalDomain marks an outbound destination domain as contacted.
func (s *Session) RecordExternalDomain(domain string) {
	if domain == "" {
		return
	}
	s.ExternalDomainsContacted[domain] = true
}

// HasSensitiveRead reports whether any completed call in the chain read a
// sensitive-category path.
func (s *Session) HasSensitiveRead() bool {
	return len(s.SensitivePathsAccessed) > 0
}

// RiskTagList returns the accumulated risk tags as a slice. Order is not
// guaranteed; callers that need determinism sort the result.
func (s *Session) RiskTagList() []string {
	tags := make([]string, 0, len(s.RiskTags))
	for t := range s.RiskTags {
		tags = append(tags, t)
	}
	return tags
}

// SensitiveCategoryList returns the accessed taxonomy tags as strings.
func (s *Session) SensitiveCategoryList() []string {
	cats := make([]string, 0, len(s.SensitivePathsAccessed))
	for c := range s.SensitivePathsAccessed {
		cats = append(cats, string(c))
	}
	return cats
}

// ExternalDomainList returns the contacted domains as a slice.
func (s *Session) ExternalDomainList() []string {
	domains := make([]string, 0, len(s.ExternalDomainsContacted))
	for d := range s.ExternalDomainsContacted {
		domains = append(domains, d)
	}
	return domains
}
