// Package citation turns parsed bibliography entries into display-ready citations.
package citation

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
)

// NoDate is the year label for entries without a usable year.
const NoDate = "n.d."

// Citation is the display form of one bibliography entry.
type Citation struct {
	Key         string
	Type        string
	Badge       string        // short type label (Journal, Conf., ...)
	Title       string        // LaTeX grouping and escapes removed
	Authors     string        // joined author list, plain text
	AuthorsHTML template.HTML // joined author list, escaped, owner emphasized
	Venue       string
	Details     string // volume/number/pages clause
	Year        string // four-digit year or NoDate
	Link        string
	LinkKind    string // "url" or "doi"
	BibTeX      string // reconstructed .bib source, unescaped
	Filter      FilterAttrs
}

// FilterAttrs are the lowercased attributes the list filter matches against.
type FilterAttrs struct {
	Year    string `json:"year"`
	Authors string `json:"authors"`
	Venue   string `json:"venue"`
	Title   string `json:"title"`
}

// Haystack is the text a free-text filter query is matched against.
func (f FilterAttrs) Haystack() string {
	return f.Title + " " + f.Authors + " " + f.Venue + " " + f.Year
}

// BibTeXHTML returns the BibTeX snippet escaped for embedding in markup.
func (c Citation) BibTeXHTML() template.HTML {
	return template.HTML(EscapeSnippet(c.BibTeX))
}

// DOMID is the element id used for this citation's markup.
func (c Citation) DOMID() string {
	return "pub-" + idUnsafe.ReplaceAllString(c.Key, "-")
}

var idUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// EscapeSnippet escapes ampersands and angle brackets.
func EscapeSnippet(s string) string {
	return snippetEscaper.Replace(s)
}

var snippetEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// FragmentState is the interaction state a fragment is rendered in.
type FragmentState struct {
	Expanded bool // BibTeX disclosure open
	Hidden   bool // filtered out
}

// Fragment renders the citation as a list item.
func (c Citation) Fragment(state FragmentState) (template.HTML, error) {
	var buf bytes.Buffer
	err := fragmentTemplate.Execute(&buf, struct {
		Citation
		FragmentState
		ID string
	}{c, state, c.DOMID()})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// HTML renders the citation with its BibTeX disclosure closed. Rendering a
// fully populated Citation cannot fail; on error the result is empty.
func (c Citation) HTML() template.HTML {
	h, _ := c.Fragment(FragmentState{})
	return h
}

var fragmentTemplate = template.Must(template.New("citation").Parse(`<li class="pub" id="{{.ID}}" data-year="{{.Filter.Year}}" data-authors="{{.Filter.Authors}}" data-venue="{{.Filter.Venue}}" data-title="{{.Filter.Title}}"{{if .Hidden}} hidden{{end}}>
  <span class="badge badge-{{.Type}}">{{.Badge}}</span>
  <span class="pub-title">{{if .Link}}<a href="{{.Link}}" target="_blank" rel="noopener">{{.Title}}</a>{{else}}{{.Title}}{{end}}</span>
  {{- with .AuthorsHTML}}
  <span class="pub-authors">{{.}}</span>{{end}}
  {{- with .Venue}}
  <span class="pub-venue">{{.}}</span>{{end}}
  {{- with .Details}}
  <span class="pub-details">{{.}}</span>{{end}}
  <span class="pub-year">{{.Year}}</span>
  {{- if .BibTeX}}
  <button type="button" class="bib-toggle" aria-expanded="{{.Expanded}}" aria-controls="{{.ID}}-bib">BibTeX</button>
  <pre class="bib" id="{{.ID}}-bib"{{if not .Expanded}} hidden{{end}}>{{.BibTeXHTML}}</pre>{{end}}
</li>`))
