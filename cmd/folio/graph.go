package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/graph"
	"github.com/mdasilveira/folio/internal/viz"
)

var (
	graphSnapshot string
	graphHTML     string
)

func init() {
	graphCmd.Flags().StringVar(&graphSnapshot, "snapshot", "", "Also write a static SVG snapshot to this file")
	graphCmd.Flags().StringVarP(&graphHTML, "output", "o", "", "Also write the interactive HTML page to this file")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the enriched knowledge graph",
	Long: `Load the keyword topology and keyword index concurrently, enrich node
sizes with keyword frequencies, and print the graph.

JSON output is the graph document itself ({"nodes": [...], "links": [...]}).
--human prints a summary with the connected cluster count.

Examples:
  folio graph > graph.json
  folio graph --snapshot graph.svg --human
  folio graph --output preview.html`,
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()

	res := s.LoadGraph(cmd.Context())
	g := res.Graph

	if graphSnapshot != "" {
		if err := writeSnapshot(graphSnapshot, g, s.SnapshotOptions()); err != nil {
			exitWithError(ExitError, "%v", err)
		}
	}
	if graphHTML != "" {
		page, err := viz.GenerateHTML(g, s.HTMLOptions())
		if err != nil {
			exitWithError(ExitError, "generating HTML: %v", err)
		}
		if err := os.WriteFile(graphHTML, []byte(page), 0644); err != nil {
			exitWithError(ExitError, "writing output file: %v", err)
		}
	}

	if humanOutput {
		if g.IsEmpty() {
			fmt.Println("No graph data")
			return nil
		}
		fmt.Printf("Graph from %s\n", res.Source)
		fmt.Printf("%d nodes, %d links, %d clusters\n", len(g.Nodes), len(g.Links), viz.Clusters(g))
		for _, l := range res.Dropped {
			fmt.Printf("  [WARN] dropped link %s -> %s (unknown node)\n", l.Source, l.Target)
		}
		for _, n := range g.Nodes {
			if n.Frequency > 0 {
				fmt.Printf("  %-30s size %5.1f  (%d publications)\n", n.ID, n.Size, n.Frequency)
			}
		}
		return nil
	}

	data, err := g.Encode()
	if err != nil {
		exitWithError(ExitError, "encoding graph: %v", err)
	}
	fmt.Println(string(data))
	return nil
}

func writeSnapshot(path string, g *graph.Graph, opts viz.SnapshotOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	if err := viz.WriteSnapshot(f, g, opts); err != nil {
		f.Close()
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	return f.Close()
}
