package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/openguardrails/agentwatch/internal/inject"
)

var (
	scanPatterns string
	scanRedact   bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&scanPatterns, "patterns", "", "Path to pattern table YAML (default built-in set)")
	scanCmd.Flags().BoolVar(&scanRedact, "redact", false, "Print sanitized content instead of the JSON report")
}

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Scan text for injection patterns",
	Long: "Scans a file (or stdin when no file is given) against the injection\n" +
		"pattern tables and prints a JSON report. Exits 1 when patterns are\n" +
		"detected, 0 otherwise.",
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		data, err = os.ReadFile(args[0])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	scanner, err := inject.LoadScanner(scanPatterns)
	if err != nil {
		return err
	}

	if scanRedact {
		fmt.Print(scanner.Redact(string(data)).Redacted)
		return nil
	}

	res := scanner.Scan(string(data))
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))

	if res.Detected {
		os.Exit(1)
	}
	return nil
}
