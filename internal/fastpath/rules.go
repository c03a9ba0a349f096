// Package fastpath holds the synchronous, zero-latency blocking rules
// evaluated against accumulated session state before a tool call starts.
// Evaluation is a pure function of (session state, candidate call): no
// network, no clock, no randomness. A fast-path block is final for the
// call; no remote assessment result can override it.
package fastpath

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openguardrails/agentwatch/internal/model"
	"github.com/openguardrails/agentwatch/internal/sensitive"
)

// Rule IDs surfaced in block decisions and audit entries.
const (
	RuleSensitiveReadThenNetwork = "fastpath.sensitive_read_then_network"
	RuleShellEscape              = "fastpath.shell_escape"
)

// Call is the candidate tool call under evaluation.
type Call struct {
	ToolName string
	Params   map[string]any
}

// shellMetaPatterns indicate command substitution or chaining inside a
// shell parameter. Embedded newlines count: they chain commands too.
var shellMetaPatterns = []string{"`", "$(", ";", "&&", "|", "\n"}

// Evaluate runs the fast-path rules in order and returns the first block,
// or an allow decision when no rule fires.
//
// Rule order (must not be changed):
//  1. Shell escape: call-local, cheapest, independent of history
//  2. Sensitive-read-then-network: needs accumulated session state
func Evaluate(s *model.Session, call Call) model.BlockDecision {
	if d := checkShellEscape(call); d.Block {
		return d
	}
	if d := checkSensitiveReadThenNetwork(s, call); d.Block {
		return d
	}
	return model.BlockDecision{}
}

// checkShellEscape blocks shell-tool calls whose parameters contain shell
// metacharacters indicating command substitution or chaining. Fires
// regardless of prior session history.
func checkShellEscape(call Call) model.BlockDecision {
	if !model.IsShellTool(call.ToolName) {
		return model.BlockDecision{}
	}

	for _, v := range call.Params {
		s, ok := v.(string)
		if !ok {
			continue
		}
		for _, meta := range shellMetaPatterns {
			if strings.Contains(s, meta) {
				return model.BlockDecision{
					Block:       true,
					BlockReason: "shell parameter contains metacharacters indicating command substitution or chaining",
					RuleID:      RuleShellEscape,
				}
			}
		}
	}
	return model.BlockDecision{}
}

// checkSensitiveReadThenNetwork blocks network-capable calls once the
// session chain contains a completed read of a sensitive-category path.
// The reason names the destination domain.
func checkSensitiveReadThenNetwork(s *model.Session, call Call) model.BlockDecision {
	if !s.HasSensitiveRead() {
		return model.BlockDecision{}
	}

	if !model.IsNetworkTool(call.ToolName) && !model.IsShellTool(call.ToolName) {
		return model.BlockDecision{}
	}

	domains := sensitive.ExtractDomains(call.Params)
	if len(domains) == 0 {
		return model.BlockDecision{}
	}
	sort.Strings(domains)

	return model.BlockDecision{
		Block: true,
		BlockReason: fmt.Sprintf(
			"network call to %s after sensitive path access (%s)",
			strings.Join(domains, ", "),
			strings.Join(sortedCategories(s), ", "),
		),
		RuleID: RuleSensitiveReadThenNetwork,
	}
}

// sortedCategories returns the accessed taxonomy tags in stable order so
// identical state always yields an identical reason string.
func sortedCategories(s *model.Session) []string {
	cats := s.SensitiveCategoryList()
	sort.Strings(cats)
	return cats
}
