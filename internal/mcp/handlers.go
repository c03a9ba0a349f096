package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openguardrails/agentwatch/internal/coordinator"
)

// --- Input/Output types ---

// BeforeToolCallInput describes a candidate tool call.
type BeforeToolCallInput struct {
	SessionKey string         `json:"session_key" jsonschema:"opaque session identifier"`
	ToolName   string         `json:"tool_name" jsonschema:"tool about to be invoked"`
	Params     map[string]any `json:"params,omitempty" jsonschema:"tool call parameters"`
	UserIntent string         `json:"user_intent,omitempty" jsonschema:"latest stated user goal, if it changed"`
}

// BeforeToolCallOutput is the synchronous decision.
type BeforeToolCallOutput struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	RuleID  string `json:"rule_id,omitempty"`
}

// ToolResultInput carries tool output headed for the agent's context.
type ToolResultInput struct {
	SessionKey string `json:"session_key" jsonschema:"opaque session identifier"`
	ToolName   string `json:"tool_name" jsonschema:"tool that produced the content"`
	Content    string `json:"content" jsonschema:"tool output text"`
}

// ToolResultOutput returns the content the host should hand downstream.
type ToolResultOutput struct {
	Content    string   `json:"content"`
	Sanitized  bool     `json:"sanitized"`
	Categories []string `json:"categories,omitempty"`
	MatchCount int      `json:"match_count,omitempty"`
}

// AfterToolCallInput describes a finished tool call.
type AfterToolCallInput struct {
	SessionKey      string         `json:"session_key" jsonschema:"opaque session identifier"`
	ToolName        string         `json:"tool_name" jsonschema:"tool that was invoked"`
	Params          map[string]any `json:"params,omitempty" jsonschema:"tool call parameters"`
	Failed          bool           `json:"failed,omitempty" jsonschema:"true when the call returned an error"`
	DurationMs      int64          `json:"duration_ms,omitempty" jsonschema:"call duration in milliseconds"`
	ResultSizeBytes int            `json:"result_size_bytes,omitempty" jsonschema:"size of the result payload"`
}

// AfterToolCallOutput confirms the chain update.
type AfterToolCallOutput struct {
	Recorded bool `json:"recorded"`
}

// SessionEndInput names the session to discard.
type SessionEndInput struct {
	SessionKey string `json:"session_key" jsonschema:"opaque session identifier"`
}

// SessionEndOutput confirms the clear.
type SessionEndOutput struct {
	Cleared bool `json:"cleared"`
}

// ScanInput is arbitrary text to check.
type ScanInput struct {
	Content string `json:"content" jsonschema:"text to scan for injection patterns"`
}

// ScanOutput reports detection without mutating any session.
type ScanOutput struct {
	Detected   bool     `json:"detected"`
	Categories []string `json:"categories,omitempty"`
	MatchCount int      `json:"match_count"`
	Redacted   string   `json:"redacted,omitempty"`
}

// --- Handlers ---

func (s *Server) handleBeforeToolCall(ctx context.Context, req *mcpsdk.CallToolRequest, input BeforeToolCallInput) (*mcpsdk.CallToolResult, BeforeToolCallOutput, error) {
	if input.UserIntent != "" {
		s.coord.SetUserIntent(input.SessionKey, input.UserIntent)
	}

	d := s.coord.BeforeToolCall(ctx, coordinator.ToolCallEvent{
		SessionKey: input.SessionKey,
		ToolName:   input.ToolName,
		Params:     input.Params,
	})
	if d.Block {
		out := BeforeToolCallOutput{
			Allowed: false,
			Reason:  d.BlockReason,
			RuleID:  d.RuleID,
		}
		return &mcpsdk.CallToolResult{IsError: true}, out, nil
	}
	return nil, BeforeToolCallOutput{Allowed: true}, nil
}

func (s *Server) handleToolResult(ctx context.Context, req *mcpsdk.CallToolRequest, input ToolResultInput) (*mcpsdk.CallToolResult, ToolResultOutput, error) {
	d := s.coord.ToolResult(ctx, coordinator.ToolResultEvent{
		SessionKey: input.SessionKey,
		ToolName:   input.ToolName,
		Content:    input.Content,
	})
	return nil, ToolResultOutput{
		Content:    d.Content,
		Sanitized:  d.Sanitized,
		Categories: d.Categories,
		MatchCount: d.MatchCount,
	}, nil
}

func (s *Server) handleAfterToolCall(ctx context.Context, req *mcpsdk.CallToolRequest, input AfterToolCallInput) (*mcpsdk.CallToolResult, AfterToolCallOutput, error) {
	s.coord.AfterToolCall(ctx, coordinator.ToolDoneEvent{
		SessionKey:      input.SessionKey,
		ToolName:        input.ToolName,
		Params:          input.Params,
		Failed:          input.Failed,
		DurationMs:      input.DurationMs,
		ResultSizeBytes: input.ResultSizeBytes,
	})
	return nil, AfterToolCallOutput{Recorded: true}, nil
}

func (s *Server) handleSessionEnd(ctx context.Context, req *mcpsdk.CallToolRequest, input SessionEndInput) (*mcpsdk.CallToolResult, SessionEndOutput, error) {
	s.coord.SessionEnd(ctx, input.SessionKey)
	return nil, SessionEndOutput{Cleared: true}, nil
}

func (s *Server) handleScan(ctx context.Context, req *mcpsdk.CallToolRequest, input ScanInput) (*mcpsdk.CallToolResult, ScanOutput, error) {
	sc := s.coord.Scanner()
	res := sc.Scan(input.Content)
	out := ScanOutput{
		Detected:   res.Detected,
		MatchCount: len(res.Matches),
	}
	for _, cat := range res.Categories {
		out.Categories = append(out.Categories, string(cat))
	}
	if res.Detected {
		out.Redacted = sc.Redact(input.Content).Redacted
	}
	return nil, out, nil
}
