package inject

import (
	"fmt"
	"strings"
)

// Marker returns the fixed-format placeholder substituted for a matched
// span. Downstream consumers rely on this exact format to recognize
// sanitized content, so it must not change shape.
func Marker(cat Category) string {
	return fmt.Sprintf("[SANITIZED:%s]", cat)
}

// Redaction is the outcome of redacting one text block.
type Redaction struct {
	Redacted string  `json:"redacted"`
	Findings []Match `json:"findings,omitempty"`
}

// maxRedactPasses bounds fixpoint iteration. One pass suffices in practice;
// the loop only re-runs when replacing a span brings two previously distant
// fragments within a single detector's reach.
const maxRedactPasses = 5

// Redact replaces every matched span in text with the category marker.
// Overlapping spans collapse into the earliest match's marker. The result
// is a fixpoint: redacting already-redacted text returns it unchanged.
func (s *Scanner) Redact(text string) Redaction {
	first := s.Scan(text)
	if len(first.Matches) == 0 {
		return Redaction{Redacted: text}
	}

	redacted := replaceSpans(text, first.Matches)
	for i := 1; i < maxRedactPasses; i++ {
		again := s.Scan(redacted)
		if len(again.Matches) == 0 {
			break
		}
		redacted = replaceSpans(redacted, again.Matches)
	}

	return Redaction{Redacted: redacted, Findings: first.Matches}
}

// replaceSpans substitutes markers for the given matches. Matches must be
// sorted by start position (ascending) as Scan returns them.
func replaceSpans(text string, matches []Match) string {
	// Merge overlapping spans, keeping the earliest (and on ties, widest)
	// match as the span owner.
	var spans []Match
	for _, m := range matches {
		if len(spans) > 0 && m.Start < spans[len(spans)-1].End {
			if m.End > spans[len(spans)-1].End {
				spans[len(spans)-1].End = m.End
			}
			continue
		}
		spans = append(spans, m)
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(text[last:sp.Start])
		b.WriteString(Marker(sp.Category))
		last = sp.End
	}
	b.WriteString(text[last:])
	return b.String()
}
