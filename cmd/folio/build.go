package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the publication list and knowledge graph",
	Long: `Build the site's pages into the output directory.

Writes publications.html, graph.html and graph.json (plus graph.svg when
graph.snapshot is set), embeds the list into embed_page when configured,
and refreshes the search cache.

Unavailable sources never fail a build: the list degrades to keyword index
titles and the graph to the previously embedded copy or a placeholder.`,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()

	report, err := s.Build(cmd.Context())
	if err != nil {
		exitWithError(ExitError, "building site: %v", err)
	}

	if humanOutput {
		fmt.Printf("Publications: %s (%s)\n", report.Status, report.Mode)
		fmt.Printf("Graph: %d nodes, %d links", report.Nodes, report.Links)
		if report.Dropped > 0 {
			fmt.Printf(" (%d links to unknown nodes dropped)", report.Dropped)
		}
		fmt.Println()
		if report.Embedded != "" {
			fmt.Printf("Embedded list into %s\n", report.Embedded)
		}
		for _, path := range report.Written {
			fmt.Printf("  wrote %s\n", path)
		}
	} else {
		outputJSON(report)
	}

	return nil
}
