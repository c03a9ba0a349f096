package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/openguardrails/agentwatch/internal/config"
	guardmcp "github.com/openguardrails/agentwatch/internal/mcp"
)

var (
	serveConfig   string
	serveLogLevel string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to config YAML (default ~/.agentwatch/config.yaml)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guardrail engine as an MCP server on stdio",
	Long: "Runs agentwatch as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes lifecycle hook tools: guard_before_tool_call, guard_tool_result,\n" +
		"guard_after_tool_call, guard_session_end, guard_scan.\n" +
		"Config and pattern files are hot-reloaded on change.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(serveLogLevel)

	srv, err := guardmcp.New(serveConfig, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	if paths, err := srv.ReloadPaths(); err == nil {
		reloader, err := config.NewReloader(paths, srv.Reload, logger)
		if err != nil {
			logger.Warn("hot-reload disabled", "error", err)
		} else {
			go reloader.Run(ctx)
		}
	}

	logger.Info("agentwatch MCP server running on stdio", "config_hash", srv.ConfigHash())
	return srv.Run(ctx)
}

// newLogger builds the engine logger. MCP owns stdout, so logs go to stderr.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
