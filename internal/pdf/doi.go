// Package pdf recovers DOIs from the PDFs a bibliography links to, so entries
// without a url or doi can still be linked.
package pdf

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxPages is how many leading pages ExtractDOI searches.
const MaxPages = 3

// A DOI is "10.", a 4-9 digit registrant, "/", and a suffix running to the
// next space or markup character. The optional group captures a "doi:" or
// doi.org label just before it.
var doiPattern = regexp.MustCompile(`(?i)(doi\s*:?\s*|doi\.org/)?(10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+)`)

// ExtractDOI returns the first DOI printed on the leading pages of the PDF at
// path, or "" when there is none. Pages whose text cannot be extracted are
// skipped.
func ExtractDOI(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	last := min(r.NumPage(), MaxPages)
	for n := 1; n <= last; n++ {
		p := r.Page(n)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

// findDOI picks the DOI of the paper itself out of page text. A labelled
// DOI wins over bare ones, which on a first page usually belong to the
// reference list.
func findDOI(text string) string {
	var bare string
	for _, m := range doiPattern.FindAllStringSubmatch(text, -1) {
		doi := trimDOI(m[2])
		if !strings.Contains(doi, "/") || strings.HasSuffix(doi, "/") {
			continue
		}
		if m[1] != "" {
			return doi
		}
		if bare == "" {
			bare = doi
		}
	}
	return bare
}

// trimDOI drops sentence punctuation after a DOI. A closing parenthesis is
// kept when the DOI opened it, as in 10.1002/(SICI)1097-4571.
func trimDOI(doi string) string {
	for doi != "" {
		last := doi[len(doi)-1]
		switch {
		case strings.IndexByte(".,;:'", last) >= 0:
			doi = doi[:len(doi)-1]
		case last == ')' && strings.Count(doi, ")") > strings.Count(doi, "("):
			doi = doi[:len(doi)-1]
		default:
			return doi
		}
	}
	return doi
}
