// Package mcp exposes the guardrail lifecycle hooks as MCP tools over stdio,
// so agent hosts integrate by calling tools instead of linking the engine.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/openguardrails/agentwatch/internal/alert"
	"github.com/openguardrails/agentwatch/internal/assess"
	"github.com/openguardrails/agentwatch/internal/audit"
	"github.com/openguardrails/agentwatch/internal/config"
	"github.com/openguardrails/agentwatch/internal/coordinator"
	"github.com/openguardrails/agentwatch/internal/inject"
	"github.com/openguardrails/agentwatch/internal/quota"
	"github.com/openguardrails/agentwatch/internal/session"
)

// Version is the engine version reported to MCP clients.
const Version = "0.1.0"

// Server wraps the MCP SDK server around the lifecycle coordinator.
type Server struct {
	mcpServer  *mcpsdk.Server
	coord      *coordinator.Coordinator
	auditLog   *audit.Log
	logger     *slog.Logger
	configPath string

	mu         sync.RWMutex
	configHash string
}

// New builds a server from the config file at configPath (empty uses the
// default location). All collaborators are constructed here once; handlers
// receive them through the coordinator, never through globals.
func New(configPath string, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, hash, err := config.LoadWithHash(configPath)
	if err != nil {
		return nil, err
	}

	scanner, err := inject.LoadScanner(cfg.PatternsPath)
	if err != nil {
		return nil, err
	}

	var auditLog *audit.Log
	if cfg.Audit.Path != "" {
		auditLog, err = audit.Open(cfg.Audit.Path)
		if err != nil {
			return nil, err
		}
	}

	coord := coordinator.New(
		coordinator.Config{AgentID: cfg.AgentID, OverlapThreshold: cfg.OverlapThreshold},
		session.NewStore(),
		scanner,
		buildAssessor(cfg, logger),
		alert.NewDispatcher(cfg.Alerts),
		auditLog,
		buildQuota(cfg),
		logger,
	)

	s := &Server{
		coord:      coord,
		auditLog:   auditLog,
		logger:     logger,
		configPath: configPath,
		configHash: hash,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "agentwatch",
			Version: Version,
		},
		nil,
	)
	s.registerTools()

	logger.Info("engine initialized",
		"config_hash", hash,
		"patterns_version", scanner.Version(),
		"audit", cfg.Audit.Path != "",
		"assessment", cfg.Assessment.Endpoint != "")
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close drains pending side effects and closes the audit log.
func (s *Server) Close() error {
	s.coord.Close()
	if s.auditLog != nil {
		return s.auditLog.Close()
	}
	return nil
}

// ConfigHash returns the hash of the currently loaded configuration.
func (s *Server) ConfigHash() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configHash
}

// Reload re-reads configuration and pattern tables and swaps them into the
// coordinator. On any error the previous configuration stays active. The
// audit log path cannot change at runtime; a changed path takes effect on
// restart.
func (s *Server) Reload() error {
	cfg, hash, err := config.LoadWithHash(s.configPath)
	if err != nil {
		return err
	}
	scanner, err := inject.LoadScanner(cfg.PatternsPath)
	if err != nil {
		return err
	}

	s.coord.Reload(scanner, buildAssessor(cfg, s.logger), alert.NewDispatcher(cfg.Alerts))

	s.mu.Lock()
	s.configHash = hash
	s.mu.Unlock()

	s.logger.Info("configuration reloaded",
		"config_hash", hash, "patterns_version", scanner.Version())
	return nil
}

// ReloadPaths returns the files a hot-reload watcher should track.
func (s *Server) ReloadPaths() ([]string, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("mcp: resolve reload paths: %w", err)
	}
	path := s.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	return []string{path, cfg.PatternsPath}, nil
}

func buildAssessor(cfg *config.Config, logger *slog.Logger) *assess.Client {
	if cfg.Assessment.Endpoint == "" {
		return nil
	}
	return assess.New(cfg.Assessment, logger)
}

func buildQuota(cfg *config.Config) quota.Recorder {
	if cfg.Quota.Endpoint == "" {
		return quota.Noop{}
	}
	return quota.NewHTTP(cfg.Quota.Endpoint, cfg.Quota.Headers)
}

// registerTools adds the lifecycle hook tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guard_before_tool_call",
		Description: "Evaluate a candidate tool call before execution. Blocked calls return the reason and rule; the host must not execute them.",
	}, s.handleBeforeToolCall)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guard_tool_result",
		Description: "Scan tool output for injection patterns before it enters the agent's context. Returns sanitized content when patterns are detected.",
	}, s.handleToolResult)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guard_after_tool_call",
		Description: "Record a finished tool call into the session chain and update accumulated risk signals.",
	}, s.handleAfterToolCall)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guard_session_end",
		Description: "Discard all accumulated state for a session.",
	}, s.handleSessionEnd)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "guard_scan",
		Description: "Scan arbitrary text for injection patterns without touching session state (dry-run).",
	}, s.handleScan)
}
