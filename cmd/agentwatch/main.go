package main

import "github.com/openguardrails/agentwatch/internal/cli"

func main() {
	cli.Execute()
}
