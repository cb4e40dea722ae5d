package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/model"
	"github.com/engram-cortex/engram/internal/validator"
)

var linkWeight int

var linkCmd = &cobra.Command{
	Use:   "link <src> <tgt> <conn-type>",
	Short: "Create a directed, weighted connection from src to tgt",
	Args:  cobra.ExactArgs(3),
	RunE:  runLink,
}

func init() {
	linkCmd.Flags().IntVar(&linkWeight, "weight", model.DefaultWeight, "connection weight (0-100)")
}

func runLink(cmd *cobra.Command, args []string) error {
	srcID, tgtID, connTypeStr := args[0], args[1], args[2]
	connType := model.ConnectionType(connTypeStr)

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	src, err := store.ReadNeurona(srcID)
	if err != nil {
		return err
	}
	tgt, err := store.ReadNeurona(tgtID)
	if err != nil {
		return err
	}

	currentCount := 0
	for _, gc := range src.AllConnections() {
		if gc.Type == connType {
			currentCount++
		}
	}

	if err := validator.ValidateConnection(src.Type, tgt.Type, connType, currentCount); err != nil {
		return err
	}

	src.AddConnection(string(connType), model.Connection{
		TargetID: tgt.ID,
		Type:     connType,
		Weight:   linkWeight,
	})

	if err := store.WriteNeurona(src, true); err != nil {
		return err
	}

	log.Info("linked %s -[%s:%d]-> %s", src.ID, connType, linkWeight, tgt.ID)
	fmt.Printf("%s -[%s:%d]-> %s\n", src.ID, connType, linkWeight, tgt.ID)
	return nil
}
