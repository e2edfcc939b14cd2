package main

import (
	"os"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
