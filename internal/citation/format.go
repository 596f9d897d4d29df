package citation

import (
	"html"
	"html/template"
	"regexp"
	"sort"
	"strings"

	"github.com/mdasilveira/folio/internal/bibtex"
)

// DefaultOwnerSurnames are emphasized in author lists unless configured otherwise.
var DefaultOwnerSurnames = []string{"da silveira", "silveira"}

// venueFields are consulted in order; the first present wins.
var venueFields = []string{"journal", "booktitle", "school", "publisher", "organization"}

// badges maps entry types to their short labels. Unknown types use the raw type.
var badges = map[string]string{
	"article":       "Journal",
	"inproceedings": "Conf.",
	"conference":    "Conf.",
	"proceedings":   "Proceedings",
	"phdthesis":     "PhD Thesis",
	"mastersthesis": "MSc Thesis",
	"book":          "Book",
	"inbook":        "Chapter",
	"incollection":  "Chapter",
	"techreport":    "Report",
	"unpublished":   "Preprint",
	"misc":          "Misc",
}

var yearPattern = regexp.MustCompile(`\b(\d{4})\b`)

// Options configures a Formatter.
type Options struct {
	OwnerSurnames []string
}

// Formatter converts entries to citations.
type Formatter struct {
	owner *regexp.Regexp
}

// NewFormatter creates a formatter. An empty surname list disables emphasis.
func NewFormatter(opts Options) *Formatter {
	return &Formatter{owner: ownerPattern(opts.OwnerSurnames)}
}

// ownerPattern matches any of the surnames as whole words, case-insensitively,
// preferring the longest.
func ownerPattern(surnames []string) *regexp.Regexp {
	var alts []string
	for _, s := range surnames {
		words := strings.Fields(s)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alts = append(alts, strings.Join(words, `\s+`))
	}
	if len(alts) == 0 {
		return nil
	}
	sort.SliceStable(alts, func(i, j int) bool { return len(alts[i]) > len(alts[j]) })
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// FormatAll formats entries, dropping those without a title.
func (f *Formatter) FormatAll(entries []bibtex.Entry) []Citation {
	out := make([]Citation, 0, len(entries))
	for _, e := range entries {
		c := f.Format(e)
		if c.Title == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Format converts one entry. Missing fields leave their clause empty; a
// missing year becomes NoDate.
func (f *Formatter) Format(e bibtex.Entry) Citation {
	names := SplitAuthors(e.Get("author"))
	for i, n := range names {
		names[i] = CleanLaTeX(n)
	}

	c := Citation{
		Key:         e.Key,
		Type:        e.Type,
		Badge:       Badge(e.Type),
		Title:       CleanLaTeX(e.Get("title")),
		Authors:     JoinAuthors(names),
		AuthorsHTML: f.authorsHTML(names),
		Venue:       CleanLaTeX(Venue(e)),
		Details:     details(e),
		Year:        Year(e.Get("year")),
		BibTeX:      e.BibTeX(),
	}
	c.Link, c.LinkKind = Link(e)
	c.Filter = FilterAttrs{
		Year:    strings.ToLower(c.Year),
		Authors: strings.ToLower(c.Authors),
		Venue:   strings.ToLower(c.Venue),
		Title:   strings.ToLower(c.Title),
	}
	return c
}

// authorsHTML escapes each name, emphasizes the owner and joins them.
func (f *Formatter) authorsHTML(names []string) template.HTML {
	escaped := make([]string, len(names))
	for i, n := range names {
		escaped[i] = f.Emphasize(html.EscapeString(n))
	}
	return template.HTML(joinWith(escaped, ", ", " &amp; "))
}

// Emphasize wraps owner surname matches in s with <strong class="owner">.
// s must already be escaped.
func (f *Formatter) Emphasize(s string) string {
	if f.owner == nil {
		return s
	}
	return f.owner.ReplaceAllStringFunc(s, func(m string) string {
		return `<strong class="owner">` + m + `</strong>`
	})
}

// SplitAuthors splits a BibTeX author field on the word "and". Separators
// inside braces are ignored; trailing punctuation is trimmed from each name.
func SplitAuthors(field string) []string {
	var names []string
	depth := 0
	start := 0
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case '{':
			depth++
			continue
		case '}':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && isAndAt(field, i) {
			names = appendName(names, field[start:i])
			start = i + 3
			i += 2
		}
	}
	return appendName(names, field[start:])
}

// isAndAt reports whether a standalone "and" begins at i.
func isAndAt(s string, i int) bool {
	if i+3 > len(s) || !strings.EqualFold(s[i:i+3], "and") {
		return false
	}
	before := i == 0 || isBoundary(s[i-1])
	after := i+3 == len(s) || isBoundary(s[i+3])
	return before && after
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ','
}

func appendName(names []string, name string) []string {
	name = strings.TrimSpace(name)
	name = strings.TrimRight(name, ".,;: ")
	if name == "" {
		return names
	}
	return append(names, name)
}

// JoinAuthors joins names as "A", "A & B" or "A, B & C".
func JoinAuthors(names []string) string {
	return joinWith(names, ", ", " & ")
}

func joinWith(names []string, sep, last string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + last + names[1]
	}
	return strings.Join(names[:len(names)-1], sep) + last + names[len(names)-1]
}

// Venue returns the first present venue-like field.
func Venue(e bibtex.Entry) string {
	for _, name := range venueFields {
		if v := e.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Badge returns the short label for an entry type.
func Badge(entryType string) string {
	if b, ok := badges[strings.ToLower(entryType)]; ok {
		return b
	}
	return entryType
}

// Year extracts a four-digit year, or NoDate.
func Year(field string) string {
	if m := yearPattern.FindStringSubmatch(field); m != nil {
		return m[1]
	}
	return NoDate
}

// Link derives the citation link: explicit url first, then a DOI resolver link.
func Link(e bibtex.Entry) (href, kind string) {
	if u := strings.TrimSpace(e.Get("url")); u != "" {
		return u, "url"
	}
	if doi := bibtex.TrimDOI(e.Get("doi")); doi != "" {
		return "https://doi.org/" + doi, "doi"
	}
	return "", ""
}

func details(e bibtex.Entry) string {
	var parts []string
	if v := e.Get("volume"); v != "" {
		parts = append(parts, "vol. "+CleanLaTeX(v))
	}
	if n := e.Get("number"); n != "" {
		parts = append(parts, "no. "+CleanLaTeX(n))
	}
	if p := e.Get("pages"); p != "" {
		parts = append(parts, "pp. "+CleanLaTeX(p))
	}
	return strings.Join(parts, ", ")
}
