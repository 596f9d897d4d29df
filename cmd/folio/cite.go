package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdasilveira/folio/internal/citation"
	"github.com/mdasilveira/folio/internal/clipboard"
)

// clipboardUnavailableMsg is the standard warning when clipboard is not available.
const clipboardUnavailableMsg = "clipboard unavailable (install wl-copy, xclip or xsel on Linux)"

var (
	citeCopyFlag bool
	citeLinkFlag bool
)

func init() {
	citeCmd.Flags().BoolVarP(&citeCopyFlag, "copy", "c", false, "Copy the result to the clipboard")
	citeCmd.Flags().BoolVar(&citeLinkFlag, "link", false, "Output the publication link instead of its BibTeX")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite <key>",
	Short: "Print the BibTeX of one publication",
	Long: `Print the BibTeX snippet shown under a publication on the rendered page.

Examples:
  folio cite silveira2021
  folio cite silveira2021 --copy
  folio cite silveira2021 --link --human`,
	Args: cobra.ExactArgs(1),
	RunE: runCite,
}

// CiteResult is the response for the cite command.
type CiteResult struct {
	Key    string `json:"key"`
	Text   string `json:"text"`
	Copied bool   `json:"copied"`
}

func runCite(cmd *cobra.Command, args []string) error {
	s := mustOpenSite()
	res := s.LoadPublications(cmd.Context())

	c, ok := findCitation(res.Citations, args[0])
	if !ok {
		exitWithError(ExitError, "publication %s: not found", args[0])
	}
	text, err := citeText(c, citeLinkFlag)
	if err != nil {
		exitWithError(ExitDataError, "publication %s: %v", c.Key, err)
	}

	copied := false
	var clipboardWarning string
	if citeCopyFlag {
		if err := clipboard.Copy(text); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				clipboardWarning = clipboardUnavailableMsg
			} else {
				clipboardWarning = fmt.Sprintf("clipboard error: %v", err)
			}
		} else {
			copied = true
		}
	}

	if humanOutput {
		fmt.Println(text)
		if copied {
			fmt.Fprintln(os.Stderr, "Copied to clipboard")
		} else if clipboardWarning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", clipboardWarning)
		}
	} else {
		outputJSON(CiteResult{Key: c.Key, Text: text, Copied: copied})
	}
	return nil
}

func findCitation(cs []citation.Citation, key string) (citation.Citation, bool) {
	for _, c := range cs {
		if c.Key == key {
			return c, true
		}
	}
	return citation.Citation{}, false
}

// citeText returns the BibTeX snippet, or the link when link is set.
// Titles recovered from the keyword index carry neither.
func citeText(c citation.Citation, link bool) (string, error) {
	if link {
		if c.Link == "" {
			return "", errors.New("no DOI or URL")
		}
		return c.Link, nil
	}
	if c.BibTeX == "" {
		return "", errors.New("no BibTeX available (list loaded from the keyword index)")
	}
	return c.BibTeX, nil
}
