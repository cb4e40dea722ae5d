package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/model"
)

var (
	statusType   string
	statusStatus string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List Neuronas, optionally filtered by type and/or context.status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusType, "type", "", "filter by Neurona type")
	statusCmd.Flags().StringVar(&statusStatus, "status", "", "filter by context.status")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	neuronas, warnings := store.ScanNeuronas()
	for _, w := range warnings {
		fmt.Printf("warning: %s\n", w)
	}

	count := 0
	for _, n := range neuronas {
		if statusType != "" && string(n.Type) != statusType {
			continue
		}
		if statusStatus != "" {
			st, ok := n.Context.Status()
			if !ok || st != statusStatus {
				continue
			}
		}
		count++
		fmt.Printf("%-28s %-14s %s\n", n.ID, n.Type, statusLine(n))
	}
	fmt.Printf("\n%d neurona(s)\n", count)
	return nil
}

func statusLine(n *model.Neurona) string {
	if st, ok := n.Context.Status(); ok {
		return st
	}
	return n.Title
}
