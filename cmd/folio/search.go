package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/store"
)

var (
	searchLimit int
	searchFTS   bool
	searchYears bool
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().BoolVar(&searchFTS, "fts", false, "Full-text token search ranked by relevance")
	searchCmd.Flags().BoolVar(&searchYears, "years", false, "Print publication counts per year instead of searching")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the cached publication list",
	Long: `Search the publications cached by the last build.

By default the query is a case-insensitive substring over title, authors,
venue and year, the same match the page filter uses. --fts switches to
full-text token search ranked by relevance.

The cache lives in .folio/cache and is rebuilt from its JSONL snapshot
whenever the snapshot changes.

Examples:
  folio search ontology
  folio search "semantic annotation" --fts
  folio search --years --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()
	db, err := s.OpenCache()
	if err != nil {
		exitWithError(ExitError, "opening cache: %v", err)
	}
	defer db.Close()

	if searchYears {
		counts, err := db.YearCounts()
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if counts == nil {
			counts = []store.YearCount{}
		}
		if humanOutput {
			for _, c := range counts {
				fmt.Printf("%-6s %d\n", c.Year, c.Count)
			}
		} else {
			outputJSON(counts)
		}
		return nil
	}

	if len(args) == 0 {
		exitWithError(ExitError, "must specify a query (or --years)")
	}
	query := args[0]

	var records []store.Record
	if searchFTS {
		records, err = db.SearchFTS(query, searchLimit)
	} else {
		records, err = db.Search(query, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	results := make([]PublicationResult, 0, len(records))
	for _, r := range records {
		results = append(results, PublicationResult{
			Key:     r.Key,
			Type:    r.Type,
			Year:    r.Year,
			Title:   r.Title,
			Authors: r.Authors,
			Venue:   r.Venue,
			Link:    r.Link,
		})
	}

	if humanOutput {
		if len(results) == 0 {
			fmt.Println("No publications found")
			return nil
		}
		fmt.Printf("Found %d publications:\n\n", len(results))
		for i, p := range results {
			printPublication(i+1, p)
		}
	} else {
		outputJSON(results)
	}

	return nil
}
