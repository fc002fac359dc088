// Package main provides the entry point for the grimoire CLI tool.
package main

import (
	"context"
	"os"

	"github.com/agentstation/grimoire/cmd/grimoire/app"
	"github.com/agentstation/grimoire/internal/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	if err := cmd.Execute(ctx, version, commit); err != nil {
		os.Exit(1)
	}
}
