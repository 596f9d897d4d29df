package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/bibtex"
	"github.com/mdasilveira/folio/internal/citation"
	"github.com/mdasilveira/folio/internal/config"
	"github.com/mdasilveira/folio/internal/pdf"
	"github.com/mdasilveira/folio/internal/source"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Lint the configured bibliographies",
	Long: `Lint every configured bibliography, reporting duplicate citation keys,
duplicate DOIs, entries without a title or year, and (when pdf_root is set)
file attachments that cannot be found.

Exits with code 3 when issues are found.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status  string        `json:"status"`
	Sources []CheckSource `json:"sources"`
	Issues  []CheckIssue  `json:"issues"`
}

// CheckSource reports one bibliography.
type CheckSource struct {
	Source  string `json:"source"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string   `json:"type"`
	Source   string   `json:"source,omitempty"`
	Key      string   `json:"key,omitempty"`
	Keys     []string `json:"keys,omitempty"`
	DOI      string   `json:"doi,omitempty"`
	Expected string   `json:"expected,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()

	var resolve func(string) (string, error)
	if s.Config.PDFRoot != "" {
		resolve = pdf.NewBackfiller(config.Resolve(s.Root, s.Config.PDFRoot), logger).ResolvePath
	}

	result := CheckResult{Sources: []CheckSource{}, Issues: []CheckIssue{}}
	for _, loc := range s.Config.Bib {
		src := source.FromLocation(config.Resolve(s.Root, loc), s.Client)
		fetched := source.Fetch(cmd.Context(), src)
		if !fetched.OK() {
			result.Sources = append(result.Sources, CheckSource{Source: src.Name(), Error: fetched.Err.Error()})
			result.Issues = append(result.Issues, CheckIssue{Type: "unreadable_source", Source: src.Name()})
			continue
		}
		entries := bibtex.Parse(string(fetched.Data))
		result.Sources = append(result.Sources, CheckSource{Source: src.Name(), Entries: len(entries)})
		for _, issue := range lintEntries(entries, resolve) {
			issue.Source = src.Name()
			result.Issues = append(result.Issues, issue)
		}
	}

	result.Status = "ok"
	if len(result.Issues) > 0 {
		result.Status = "issues"
	}

	if humanOutput {
		printCheckHuman(result)
	} else {
		outputJSON(result)
	}

	if len(result.Issues) > 0 {
		os.Exit(ExitDataError)
	}
	return nil
}

// lintEntries finds problems in one bibliography. resolve, when non-nil,
// locates file attachments.
func lintEntries(entries []bibtex.Entry, resolve func(string) (string, error)) []CheckIssue {
	var issues []CheckIssue

	idx := bibtex.NewIndex(entries)
	for _, key := range idx.DuplicateKeys() {
		issues = append(issues, CheckIssue{Type: "duplicate_key", Key: key})
	}

	dups := idx.DuplicateDOIs()
	dois := make([]string, 0, len(dups))
	for doi := range dups {
		dois = append(dois, doi)
	}
	sort.Strings(dois)
	for _, doi := range dois {
		issues = append(issues, CheckIssue{Type: "duplicate_doi", DOI: doi, Keys: dups[doi]})
	}

	for _, e := range entries {
		if citation.CleanLaTeX(e.Get("title")) == "" {
			issues = append(issues, CheckIssue{Type: "missing_title", Key: e.Key})
		}
		if citation.Year(e.Get("year")) == citation.NoDate {
			issues = append(issues, CheckIssue{Type: "missing_year", Key: e.Key})
		}
		if resolve == nil {
			continue
		}
		for _, path := range pdf.FilePaths(e.Get("file")) {
			if _, err := resolve(path); err != nil {
				issues = append(issues, CheckIssue{Type: "missing_pdf", Key: e.Key, Expected: path})
			}
		}
	}
	return issues
}

func printCheckHuman(result CheckResult) {
	total := 0
	for _, src := range result.Sources {
		total += src.Entries
	}
	if len(result.Issues) == 0 {
		fmt.Printf("Bibliography check: OK\n\n%d entries checked\n", total)
		return
	}

	fmt.Printf("Bibliography check: %d issues found\n\n", len(result.Issues))
	for _, issue := range result.Issues {
		switch issue.Type {
		case "unreadable_source":
			fmt.Printf("  [ERROR] Cannot read %s\n\n", issue.Source)
		case "duplicate_key":
			fmt.Printf("  [WARN] Duplicate key %s\n\n", issue.Key)
		case "duplicate_doi":
			fmt.Printf("  [WARN] Duplicate DOI %s\n", issue.DOI)
			fmt.Printf("         Found in: %s\n\n", formatList(issue.Keys))
		case "missing_title":
			fmt.Printf("  [WARN] %s has no title (it will not be listed)\n\n", issue.Key)
		case "missing_year":
			fmt.Printf("  [WARN] %s has no year (listed under %s)\n\n", issue.Key, citation.NoDate)
		case "missing_pdf":
			fmt.Printf("  [WARN] Missing PDF for %s\n", issue.Key)
			fmt.Printf("         Expected: %s\n\n", issue.Expected)
		}
	}
	fmt.Printf("%d entries checked\n", total)
}
