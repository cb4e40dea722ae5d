package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/validator"
)

var updateSet string

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update one editable frontmatter field on a Neurona",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateSet, "set", "", "field=value to update, e.g. --set tags=a,b")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	if updateSet == "" {
		return engramerr.New(engramerr.KindUser, engramerr.IDMissingArguments, "",
			"--set <field>=<value> is required")
	}
	field, value, ok := strings.Cut(updateSet, "=")
	if !ok {
		return engramerr.New(engramerr.KindUser, engramerr.IDInvalidFlagValue, updateSet,
			"expected field=value")
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

	n, err := store.ReadNeurona(id)
	if err != nil {
		return err
	}

	switch field {
	case "title":
		n.Title = value
	case "language":
		n.Language = value
	case "tags":
		n.Tags = nil
		for _, tag := range strings.Split(value, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				n.Tags = append(n.Tags, tag)
			}
		}
	case "context.status":
		if err := validator.ApplyTransition(n, value); err != nil {
			return err
		}
	case "context.priority":
		if !n.Context.SetPriority(value) {
			return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidNeuronaType, string(n.Type),
				"this type has no context.priority field")
		}
	case "context.assignee":
		if !n.Context.SetAssignee(value) {
			return engramerr.New(engramerr.KindValidation, engramerr.IDInvalidNeuronaType, string(n.Type),
				"this type has no context.assignee field")
		}
	default:
		return engramerr.New(engramerr.KindUser, engramerr.IDInvalidFlagValue, field,
			"editable fields: title, language, tags, context.status, context.priority, context.assignee")
	}

	if err := store.WriteNeurona(n, true); err != nil {
		return err
	}

	log.Info("updated %s.%s = %q", n.ID, field, value)
	fmt.Printf("%s: %s = %s\n", n.ID, field, value)
	return nil
}
