package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/model"
)

var newTags string

var newCmd = &cobra.Command{
	Use:   "new <type> <title>",
	Short: "Create a new Neurona of the given type",
	Args:  cobra.ExactArgs(2),
	RunE:  runNew,
}

func init() {
	newCmd.Flags().StringVar(&newTags, "tags", "", "comma-separated tags")
}

func runNew(cmd *cobra.Command, args []string) error {
	typeStr, title := args[0], args[1]
	t := model.Type(typeStr)
	if !t.IsValid() {
		return engramerr.New(engramerr.KindSchema, engramerr.IDUnknownType, typeStr,
			fmt.Sprintf("valid types: %v", model.ValidTypes))
	}

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	existing, _ := store.ListNeuronaFiles()
	existingIDs := make(map[string]bool, len(existing))
	for _, path := range existing {
		existingIDs[strings.TrimSuffix(filepath.Base(path), ".md")] = true
	}

	id := model.GenerateID(model.TypePrefix(t), title, existingIDs)

	n := model.NewNeurona(id, title)
	n.Type = t
	n.Context = model.DefaultContextForType(t)
	if newTags != "" {
		for _, tag := range strings.Split(newTags, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				n.Tags = append(n.Tags, tag)
			}
		}
	}

	if err := store.WriteNeurona(n, false); err != nil {
		return err
	}

	log.Info("created neurona %s (%s)", id, t)
	fmt.Println(id)
	return nil
}
