package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new folio site",
	Long: `Initialize a new folio site in the current directory.

Creates:
  folio.yml         # Default config (edit bib, keywords, topology)
  .folio/cache/     # Search cache (gitignore it)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}
	if dir := os.Getenv(config.SiteEnv); dir != "" {
		root = config.ExpandPath(dir)
	}

	if config.IsSite(root) {
		exitWithError(ExitError, "directory already contains a folio site")
	}

	if err := os.MkdirAll(config.FolioPath(root), 0755); err != nil {
		exitWithError(ExitError, "creating %s directory: %v", config.FolioDir, err)
	}

	if err := config.Default().Save(root); err != nil {
		exitWithError(ExitError, "creating %s: %v", config.SiteFile, err)
	}

	if humanOutput {
		fmt.Printf("Initialized folio site in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
