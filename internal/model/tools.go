package model

import "strings"

// Tool-name classification tables. Matching is case-insensitive on the
// normalized name; MCP-style "mcp__server__tool" names are reduced to the
// trailing tool segment first.

// shellTools execute arbitrary commands through a shell.
var shellTools = map[string]bool{
	"bash":              true,
	"sh":                true,
	"zsh":               true,
	"shell":             true,
	"exec":              true,
	"execute":           true,
	"execute_command":   true,
	"run_command":       true,
	"run_shell_command": true,
	"terminal":          true,
}

// contentIngressTools produce untrusted narrative text: file reads and web
// fetches. Structured/API-typed tool outputs are exempt by design.
var contentIngressTools = map[string]bool{
	"read":       true,
	"read_file":  true,
	"readfile":   true,
	"file_read":  true,
	"cat":        true,
	"view":       true,
	"webfetch":   true,
	"web_fetch":  true,
	"fetch":      true,
	"fetch_url":  true,
	"http_get":   true,
	"browse":     true,
	"open_url":   true,
	"websearch":  true,
	"web_search": true,
}

// networkTools can reach an external destination directly.
var networkTools = map[string]bool{
	"webfetch":     true,
	"web_fetch":    true,
	"fetch":        true,
	"fetch_url":    true,
	"http_get":     true,
	"http_post":    true,
	"http_request": true,
	"browse":       true,
	"open_url":     true,
	"download":     true,
	"upload":       true,
}

// crossAgentTools hand data to another agent or run.
var crossAgentTools = map[string]bool{
	"task":           true,
	"agent":          true,
	"subagent":       true,
	"dispatch_agent": true,
	"send_to_agent":  true,
	"handoff":        true,
}

// NormalizeToolName lowercases the tool name and strips MCP server prefixes.
func NormalizeToolName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if idx := strings.LastIndex(n, "__"); idx >= 0 {
		n = n[idx+2:]
	}
	return n
}

// IsShellTool reports whether the tool executes shell commands.
func IsShellTool(name string) bool {
	return shellTools[NormalizeToolName(name)]
}

// IsContentIngress reports whether the tool's output is untrusted narrative
// text subject to injection scanning.
func IsContentIngress(name string) bool {
	return contentIngressTools[NormalizeToolName(name)]
}

// IsNetworkTool reports whether the tool contacts external destinations
// directly. Shell tools may still resolve to a network action; the fast
// path inspects their parameters separately.
func IsNetworkTool(name string) bool {
	return networkTools[NormalizeToolName(name)]
}

// IsCrossAgentTool reports whether the tool moves data to another agent.
func IsCrossAgentTool(name string) bool {
	return crossAgentTools[NormalizeToolName(name)]
}
