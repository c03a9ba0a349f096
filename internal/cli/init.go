package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openguardrails/agentwatch/internal/config"
	"github.com/openguardrails/agentwatch/internal/inject"
)

var initPatterns bool

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initPatterns, "patterns", false, "Also write patterns.yaml with the built-in detector tables")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate default config.yaml with comments",
	Long: "Creates ~/.agentwatch/config.yaml with commented defaults. With\n" +
		"--patterns, also writes ~/.agentwatch/patterns.yaml so the injection\n" +
		"detector tables can be customized.",
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("cannot determine home directory: %w", err)
	}

	dir := filepath.Join(home, ".agentwatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	if err := writeNew(filepath.Join(dir, "config.yaml"), config.DefaultConfigYAML()); err != nil {
		return err
	}
	if initPatterns {
		if err := writeNew(filepath.Join(dir, "patterns.yaml"), inject.DefaultPatternYAML()); err != nil {
			return err
		}
	}
	return nil
}

func writeNew(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Printf("Created %s\n", path)
	return nil
}
