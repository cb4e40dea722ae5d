package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/engram-cortex/engram/internal/engramerr"
	"github.com/engram-cortex/engram/internal/filestore"
	"github.com/engram-cortex/engram/internal/model"
)

var (
	initType     string
	initLanguage string
	initForce    bool
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new cortex in the current (or --workspace) directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().StringVar(&initType, "type", "knowledge", "cortex type (alm|zettelkasten|knowledge)")
	initCmd.Flags().StringVar(&initLanguage, "language", "en", "default language")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "reinitialize an existing cortex")
}

func runInit(cmd *cobra.Command, args []string) error {
	name := args[0]

	dir, err := startDir()
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(dir, filestore.CortexManifestFile)
	if _, err := os.Stat(manifestPath); err == nil && !initForce {
		return engramerr.New(engramerr.KindUser, engramerr.IDInvalidFlagValue, dir,
			"a cortex already exists here; pass --force to reinitialize")
	}

	neuronasDir := filepath.Join(dir, "neuronas")
	if err := os.MkdirAll(neuronasDir, 0755); err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, neuronasDir, "check directory permissions", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, ".activations", "cache"), 0755); err != nil {
		return engramerr.Wrap(engramerr.KindIO, engramerr.IDIoError, dir, "check directory permissions", err)
	}

	manifest := model.NewCortex(name, name)
	manifest.Capabilities.Type = initType
	manifest.Capabilities.DefaultLanguage = initLanguage

	if err := filestore.WriteCortexManifest(dir, manifest); err != nil {
		return err
	}

	log.Info("initialized cortex %s at %s", name, dir)
	fmt.Printf("initialized cortex %q at %s\n", name, dir)
	return nil
}
