// Package cli implements the lliam-memory CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/memory"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

var (
	dbPath  string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "lliam-memory",
	Short: "Hybrid memory search for AI agents",
	Long:  "Persistent agent memory with hybrid keyword + semantic search. Single JSON file on disk, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Store path (default: $LLIAM_MEMORY_DB or ~/.lliam/memory.json)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("LLIAM_MEMORY_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".lliam", "memory.json")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, getDBPath(), newLogger())
}

func openEngine(ctx context.Context) (*store.Store, *memory.Engine, error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s, memory.New(s, embedding.NewFromEnv(), newLogger()), nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
