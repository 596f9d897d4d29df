package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/citation"
	"github.com/mdasilveira/folio/internal/publist"
)

var (
	pubsQuery string
	pubsYear  string
)

func init() {
	pubsCmd.Flags().StringVarP(&pubsQuery, "query", "q", "", "Filter by title, author, venue or year (substring)")
	pubsCmd.Flags().StringVar(&pubsYear, "year", "", "Show only this year section (e.g. 2021 or n.d.)")
	rootCmd.AddCommand(pubsCmd)
}

var pubsCmd = &cobra.Command{
	Use:   "pubs",
	Short: "List publications grouped by year",
	Long: `Load the publication list the way build does and print it grouped by
year, newest first, with undated entries last.

The filter behaves like the one on the rendered page: a case-insensitive
substring match over title, authors, venue and year.

Examples:
  folio pubs
  folio pubs --query ontology
  folio pubs --year 2021 --human`,
	RunE: runPubs,
}

// PubsResult is the response for the pubs command.
type PubsResult struct {
	Mode         string       `json:"mode"`
	Status       string       `json:"status"`
	Source       string       `json:"source,omitempty"`
	Query        string       `json:"query,omitempty"`
	FilterStatus string       `json:"filter_status,omitempty"`
	Shown        int          `json:"shown"`
	Groups       []YearResult `json:"groups"`
}

// YearResult is one year section.
type YearResult struct {
	Year         string              `json:"year"`
	Count        int                 `json:"count"`
	Publications []PublicationResult `json:"publications"`
}

func runPubs(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()

	res := s.LoadPublications(cmd.Context())
	view := s.NewView(res)
	if pubsQuery != "" {
		view.Dispatch(publist.FilterChanged{Query: pubsQuery})
	}

	result := buildPubsResult(res, view, pubsYear)

	if humanOutput {
		fmt.Println(result.Status)
		if result.FilterStatus != "" {
			fmt.Println(result.FilterStatus)
		}
		n := 0
		for _, g := range result.Groups {
			fmt.Printf("\n== %s (%d)\n\n", g.Year, g.Count)
			for _, p := range g.Publications {
				n++
				printPublication(n, p)
			}
		}
	} else {
		outputJSON(result)
	}

	if res.Mode == publist.ModeFailed {
		os.Exit(ExitDataError)
	}
	return nil
}

// buildPubsResult lists the groups visible in view, optionally restricted to
// one year.
func buildPubsResult(res publist.LoadResult, view *publist.View, year string) PubsResult {
	result := PubsResult{
		Mode:         res.Mode.String(),
		Status:       res.Status,
		Source:       res.Source,
		Query:        view.Query(),
		FilterStatus: view.Status(),
		Groups:       []YearResult{},
	}
	for _, g := range view.VisibleGroups() {
		if year != "" && g.Year != year {
			continue
		}
		yr := YearResult{Year: g.Year, Count: g.Count()}
		for _, c := range g.Citations {
			yr.Publications = append(yr.Publications, publicationResult(c))
		}
		result.Shown += yr.Count
		result.Groups = append(result.Groups, yr)
	}
	return result
}

func publicationResult(c citation.Citation) PublicationResult {
	return PublicationResult{
		Key:     c.Key,
		Type:    c.Type,
		Year:    c.Year,
		Title:   c.Title,
		Authors: c.Authors,
		Venue:   c.Venue,
		Link:    c.Link,
	}
}
