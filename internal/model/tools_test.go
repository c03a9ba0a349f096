package model

import "testing"

func TestNormalizeToolName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bash", "bash"},
		{"  WebFetch  ", "webfetch"},
		{"mcp__filesystem__read_file", "read_file"},
		{"mcp__shell__exec", "exec"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := NormalizeToolName(tt.in); got != tt.want {
			t.Errorf("NormalizeToolName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestToolClassification(t *testing.T) {
	if !IsShellTool("mcp__host__bash") {
		t.Error("bash via MCP prefix should classify as shell")
	}
	if !IsContentIngress("Read") {
		t.Error("Read should be content ingress")
	}
	if !IsNetworkTool("web_fetch") {
		t.Error("web_fetch should be a network tool")
	}
	if !IsCrossAgentTool("dispatch_agent") {
		t.Error("dispatch_agent should be cross-agent")
	}
	if IsNetworkTool("read_file") {
		t.Error("read_file is not a network tool")
	}
	if IsContentIngress("http_post") {
		t.Error("http_post output is not scanned ingress")
	}
}

func TestActionForRiskLevel(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  Action
	}{
		{RiskCritical, ActionBlock},
		{RiskHigh, ActionBlock},
		{RiskMedium, ActionAlert},
		{RiskLow, ActionAllow},
		{RiskNone, ActionAllow},
		{"unknown", ActionAllow},
	}
	for _, tt := range tests {
		if got := ActionFor(tt.level); got != tt.want {
			t.Errorf("ActionFor(%q) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
