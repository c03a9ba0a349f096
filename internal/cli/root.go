// Package cli implements the agentwatch command-line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentwatch",
	Short: "Behavioral guardrail engine for AI agent tool calls",
	Long: "Observes agent tool-call lifecycles, blocks exfiltration and shell-escape\n" +
		"patterns synchronously, sanitizes injected tool output, and escalates\n" +
		"suspicious sessions to a remote risk scorer.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
