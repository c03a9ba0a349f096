// Package overlap estimates how well a session's tool usage matches the
// user's stated goal. Low scores raise suspicion of task hijacking.
package overlap

import (
	"strings"

	"github.com/openguardrails/agentwatch/internal/model"
)

// stopwords are intent words too common to carry signal.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "into": true, "can": true, "you": true,
	"please": true, "want": true, "need": true, "would": true, "like": true,
	"help": true, "make": true, "all": true, "then": true, "some": true,
}

// Score returns a [0,1] estimate of intent/tool agreement: the fraction of
// chain entries sharing at least one content token with the stated intent.
// With no intent or no evidence the score stays neutral (1.0), so that
// suspicion only ever comes from observed divergence.
func Score(intent string, chain []model.ToolCallRecord) float64 {
	intentTokens := tokenize(intent)
	if len(intentTokens) == 0 || len(chain) == 0 {
		return 1.0
	}

	matched := 0
	scored := 0
	for _, rec := range chain {
		tokens := callTokens(rec)
		if len(tokens) == 0 {
			continue
		}
		scored++
		if intersects(intentTokens, tokens) {
			matched++
		}
	}
	if scored == 0 {
		return 1.0
	}
	return float64(matched) / float64(scored)
}

// callTokens derives comparable tokens from a tool name and its sanitized
// parameter values.
func callTokens(rec model.ToolCallRecord) map[string]bool {
	tokens := tokenize(rec.ToolName)
	for _, v := range rec.SanitizedParams {
		for t := range tokenize(v) {
			tokens[t] = true
		}
	}
	return tokens
}

// tokenize lowercases and splits on anything that is not a letter or digit,
// dropping short tokens and stopwords.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	var b strings.Builder

	flush := func() {
		t := b.String()
		b.Reset()
		if len(t) >= 3 && !stopwords[t] {
			tokens[t] = true
		}
	}

	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func intersects(a, b map[string]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for t := range a {
		if b[t] {
			return true
		}
	}
	return false
}
