package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openguardrails/agentwatch/internal/model"
	"github.com/openguardrails/agentwatch/internal/sensitive"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <value>",
	Short: "Classify a path, URL, or tool name the way the engine would",
	Long: "Diagnostic for the engine's classifiers: reports the sensitive-path\n" +
		"category, extracted external domain, and tool capability class for the\n" +
		"given value.",
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	value := args[0]

	report := map[string]any{"value": value}

	if cat, ok := sensitive.ClassifyPath(value); ok {
		report["sensitive_category"] = string(cat)
	}
	if domain := sensitive.ExtractDomain(value); domain != "" {
		report["external_domain"] = domain
	}

	tool := model.NormalizeToolName(value)
	var classes []string
	if model.IsShellTool(tool) {
		classes = append(classes, "shell")
	}
	if model.IsNetworkTool(tool) {
		classes = append(classes, "network")
	}
	if model.IsContentIngress(tool) {
		classes = append(classes, "content_ingress")
	}
	if model.IsCrossAgentTool(tool) {
		classes = append(classes, "cross_agent")
	}
	if classes != nil {
		report["tool_classes"] = classes
	}

	out, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(out))
	return nil
}
