package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/model"
	"github.com/engram-cortex/engram/internal/validator"
)

var linkArtifactRuntime string

var linkArtifactCmd = &cobra.Command{
	Use:   "link-artifact <src-file> <requirement-id>",
	Short: "Create an artifact Neurona for src-file and link it as implementing requirement-id",
	Args:  cobra.ExactArgs(2),
	RunE:  runLinkArtifact,
}

func init() {
	linkArtifactCmd.Flags().StringVar(&linkArtifactRuntime, "runtime", "", "runtime/language the artifact runs under")
}

func runLinkArtifact(cmd *cobra.Command, args []string) error {
	srcFile, reqID := args[0], args[1]

	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	req, err := store.ReadNeurona(reqID)
	if err != nil {
		return err
	}

	existing, _ := store.ListNeuronaFiles()
	existingIDs := make(map[string]bool, len(existing))

	id := model.GenerateID(model.TypePrefix(model.TypeArtifact), srcFile, existingIDs)
	artifact := model.NewNeurona(id, srcFile)
	artifact.Type = model.TypeArtifact
	artifact.Context = model.DefaultContextForType(model.TypeArtifact)
	artifact.Context.Artifact.FilePath = srcFile
	artifact.Context.Artifact.Runtime = linkArtifactRuntime

	if err := store.WriteNeurona(artifact, false); err != nil {
		return err
	}

	if err := validator.ValidateConnection(artifact.Type, req.Type, model.ConnImplements, 0); err != nil {
		return err
	}
	artifact.AddConnection(string(model.ConnImplements), model.Connection{
		TargetID: req.ID,
		Type:     model.ConnImplements,
		Weight:   model.DefaultWeight,
	})
	if err := store.WriteNeurona(artifact, true); err != nil {
		return err
	}

	log.Info("linked artifact %s -[implements]-> %s", artifact.ID, req.ID)
	fmt.Printf("%s -[implements]-> %s\n", artifact.ID, req.ID)
	return nil
}

var releaseStatusCmd = &cobra.Command{
	Use:   "release-status",
	Short: "Report completion (implemented/total) for every requirement, and blockers",
	Args:  cobra.NoArgs,
	RunE:  runReleaseStatus,
}

type requirementStatus struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Implemented bool     `json:"implemented"`
	Blocked     bool     `json:"blocked"`
	BlockedBy   []string `json:"blocked_by,omitempty"`
}

func runReleaseStatus(cmd *cobra.Command, args []string) error {
	cc, err := resolveCortexContext()
	if err != nil {
		return err
	}
	store, err := cc.newStore()
	if err != nil {
		return err
	}
	defer store.Close()

	neuronas, _ := store.ScanNeuronas()
	byID := make(map[string]*model.Neurona, len(neuronas))
	for _, n := range neuronas {
		byID[n.ID] = n
	}

	var statuses []requirementStatus
	implementedCount := 0

	for _, n := range neuronas {
		if n.Type != model.TypeRequirement {
			continue
		}
		rs := requirementStatus{ID: n.ID, Title: n.Title}

		for _, other := range neuronas {
			for _, gc := range other.AllConnections() {
				if gc.TargetID != n.ID {
					continue
				}
				switch gc.Type {
				case model.ConnImplements:
					rs.Implemented = true
				case model.ConnBlocks:
					if blocker, ok := byID[other.ID]; ok {
						if st, ok := blocker.Context.Status(); !ok || st != "closed" {
							rs.Blocked = true
							rs.BlockedBy = append(rs.BlockedBy, other.ID)
						}
					}
				}
			}
		}

		if rs.Implemented {
			implementedCount++
		}
		statuses = append(statuses, rs)
	}

	completion := 0.0
	if len(statuses) > 0 {
		completion = float64(implementedCount) / float64(len(statuses))
	}

	fmt.Printf("%d/%d requirements implemented (%.1f%%)\n", implementedCount, len(statuses), completion*100)
	for _, rs := range statuses {
		flag := " "
		if rs.Blocked {
			flag = "B"
		} else if rs.Implemented {
			flag = "I"
		}
		fmt.Printf("[%s] %-28s %s\n", flag, rs.ID, rs.Title)
	}
	return nil
}
