package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	enginesync "github.com/engram-cortex/engram/internal/sync"
)

var (
	syncForce         bool
	syncWatch         bool
	syncWatchDebounce time.Duration
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild the graph, LLM caches, and vector index from the Neurona files",
	Args:  cobra.NoArgs,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&syncForce, "force", false, "rebuild the vector index even if it looks fresh")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep running, resyncing whenever neuronas/ changes")
	syncCmd.Flags().DurationVar(&syncWatchDebounce, "watch-debounce", 1500*time.Millisecond, "coalesce bursts of file events within this window (only with --watch)")
}

func runSync(cmd *cobra.Command, args []string) error {
	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}

	if syncWatch {
		return runSyncWatch(cc)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := enginesync.SyncAt(ctx, cc.Dir, cc.Config, syncForce)
	if err != nil {
		return err
	}
	printSyncReport(report)
	return nil
}

func runSyncWatch(cc *cortexContext) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nstopping watch")
		cancel()
	}()

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", cc.NeuronasDir)
	err := enginesync.WatchAt(ctx, cc.Dir, cc.Config, syncWatchDebounce, func(wr enginesync.WatchReport) {
		if wr.Err != nil {
			fmt.Printf("resync failed: %v\n", wr.Err)
			return
		}
		printSyncReport(wr.Report)
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

func printSyncReport(report *enginesync.Report) {
	for _, stage := range report.Stages {
		if stage.Skipped {
			fmt.Printf("%-14s skipped (%s)\n", stage.Name, stage.SkipWhy)
			continue
		}
		fmt.Printf("%-14s %v\n", stage.Name, stage.Duration)
		for _, w := range stage.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	}
}
