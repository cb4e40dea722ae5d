// Package main implements the engram CLI - a thin command surface over the
// Knowledge Engine (spec.md §1 scope note: "the CLI is a thin shell; the
// planner and sync orchestrator own the logic").
//
// This file is the entry point and command registration hub. Individual
// commands live in their own cmd_*.go files, one group per concern.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/logging"
)

var (
	// Global flags
	verbose   bool
	workspace string
	timeout   time.Duration

	// logger is the structured stderr diagnostics logger, distinct from the
	// categorized per-cortex file logger in internal/logging.
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "engram",
	Short: "engram - a typed, weighted knowledge graph for ALM and notes",
	Long: `Engram manages a Cortex: a directory of Markdown+YAML-frontmatter
files forming a typed, weighted, bidirectional knowledge graph.

Run "engram init" to create a cortex, "engram new" to add Neuronas, and
"engram sync" to rebuild the derived graph/search indices.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose diagnostics")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "cortex or workspace directory (default: current directory)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "operation timeout")

	rootCmd.AddCommand(
		initCmd,
		newCmd,
		showCmd,
		linkCmd,
		deleteCmd,
		updateCmd,
		syncCmd,
		statusCmd,
		traceCmd,
		impactCmd,
		queryCmd,
		linkArtifactCmd,
		releaseStatusCmd,
	)
}

// startDir resolves the directory a command should search for a cortex
// from: --workspace if given, else the process's current directory.
func startDir() (string, error) {
	if workspace == "" {
		return os.Getwd()
	}
	return filepath.Abs(workspace)
}

// exitCode extracts the spec.md §6 exit code convention from err: an
// *engramerr.Error carries its own code, anything else is a generic
// user-visible failure.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*engramerr.Error); ok {
		return ee.ExitCode()
	}
	return 1
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}
