package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a Neurona",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	id := args[0]

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.ReadNeurona(id)
	if err != nil {
		return err
	}
	if err := store.DeleteNeurona(n.ID); err != nil {
		return err
	}

	log.Info("deleted neurona %s", n.ID)
	fmt.Printf("deleted %s\n", n.ID)
	return nil
}
