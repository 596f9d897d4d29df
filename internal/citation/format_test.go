package citation

import (
	"strings"
	"testing"

	"github.com/mdasilveira/folio/internal/bibtex"
	"pgregory.net/rapid"
)

func TestJoinAuthors(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"A and B and C", "A, B & C"},
		{"A and B", "A & B"},
		{"A", "A"},
		{"", ""},
		{"Ann Lee AND Bo Chen and Cy Diaz and Di Evans", "Ann Lee, Bo Chen, Cy Diaz & Di Evans"},
		{"Smith, J. and Anderson, K.", "Smith, J & Anderson, K"},
		{"{Barnes and Noble} and Band, X", "{Barnes and Noble} & Band, X"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got := JoinAuthors(SplitAuthors(tt.field))
			if got != tt.want {
				t.Errorf("JoinAuthors(SplitAuthors(%q)) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

// Joining any list of names and splitting the BibTeX form again yields the
// same display string.
func TestJoinAuthors_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Z][a-z]{1,8}`).Filter(func(s string) bool {
			return !strings.EqualFold(s, "and")
		})
		names := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) string {
			return word.Draw(t, "first") + " " + word.Draw(t, "last")
		}), 1, 6).Draw(t, "names")

		got := JoinAuthors(SplitAuthors(strings.Join(names, " and ")))

		if n := strings.Count(got, " & "); n != 1 && len(names) > 1 {
			t.Fatalf("%q has %d ampersands, want 1", got, n)
		}
		if len(names) >= 3 && strings.Count(got, ", ") != len(names)-2 {
			t.Fatalf("%q has wrong comma count for %d names", got, len(names))
		}
		if !strings.HasSuffix(got, names[len(names)-1]) {
			t.Fatalf("%q does not end with the last author %q", got, names[len(names)-1])
		}
	})
}

func TestFormat_FullArticle(t *testing.T) {
	e := bibtex.NewEntry("article", "DaSilveira2020", []bibtex.Field{
		{Name: "author", Value: "Marcos Da Silveira and C{\\'e}dric Pruski and Reinhard Schneider."},
		{Name: "title", Value: "Change Management in {Ontology} Mappings"},
		{Name: "journal", Value: "Journal of Web Semantics"},
		{Name: "booktitle", Value: "ignored"},
		{Name: "volume", Value: "12"},
		{Name: "number", Value: "3"},
		{Name: "pages", Value: "1--20"},
		{Name: "year", Value: "2020"},
		{Name: "doi", Value: "10.1016/j.websem.2020.1"},
	}...)

	c := NewFormatter(Options{OwnerSurnames: DefaultOwnerSurnames}).Format(e)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"badge", c.Badge, "Journal"},
		{"title", c.Title, "Change Management in Ontology Mappings"},
		{"authors", c.Authors, "Marcos Da Silveira, Cédric Pruski & Reinhard Schneider"},
		{"venue", c.Venue, "Journal of Web Semantics"},
		{"details", c.Details, "vol. 12, no. 3, pp. 1–20"},
		{"year", c.Year, "2020"},
		{"link", c.Link, "https://doi.org/10.1016/j.websem.2020.1"},
		{"link kind", c.LinkKind, "doi"},
		{"filter title", c.Filter.Title, "change management in ontology mappings"},
		{"filter venue", c.Filter.Venue, "journal of web semantics"},
	}
	for _, tt := range checks {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}

	wantHTML := `Marcos <strong class="owner">Da Silveira</strong>, Cédric Pruski &amp; Reinhard Schneider`
	if string(c.AuthorsHTML) != wantHTML {
		t.Errorf("AuthorsHTML = %q, want %q", c.AuthorsHTML, wantHTML)
	}
}

func TestFormat_MissingFields(t *testing.T) {
	c := NewFormatter(Options{}).Format(bibtex.NewEntry("misc", "bare", bibtex.Field{Name: "title", Value: "Just a title"}))

	if c.Year != NoDate {
		t.Errorf("Year = %q, want %q", c.Year, NoDate)
	}
	if c.Authors != "" || c.Venue != "" || c.Details != "" || c.Link != "" {
		t.Errorf("missing fields should render empty, got %+v", c)
	}
	frag := string(c.HTML())
	if strings.Contains(frag, "pub-authors") || strings.Contains(frag, "pub-venue") {
		t.Errorf("fragment should omit empty clauses, got:\n%s", frag)
	}
	if strings.Contains(strings.ToLower(frag), "undefined") || strings.Contains(frag, "<no value>") {
		t.Errorf("fragment contains a placeholder, got:\n%s", frag)
	}
}

func TestVenueOrder(t *testing.T) {
	tests := []struct {
		name   string
		fields []bibtex.Field
		want   string
	}{
		{"journal wins", []bibtex.Field{{Name: "publisher", Value: "P"}, {Name: "journal", Value: "J"}}, "J"},
		{"booktitle before school", []bibtex.Field{{Name: "school", Value: "S"}, {Name: "booktitle", Value: "B"}}, "B"},
		{"school before publisher", []bibtex.Field{{Name: "publisher", Value: "P"}, {Name: "school", Value: "S"}}, "S"},
		{"publisher before organization", []bibtex.Field{{Name: "organization", Value: "O"}, {Name: "publisher", Value: "P"}}, "P"},
		{"organization last", []bibtex.Field{{Name: "organization", Value: "O"}}, "O"},
		{"none", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Venue(bibtex.NewEntry("misc", "k", tt.fields...)); got != tt.want {
				t.Errorf("Venue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBadge(t *testing.T) {
	tests := []struct {
		entryType string
		want      string
	}{
		{"article", "Journal"},
		{"inproceedings", "Conf."},
		{"phdthesis", "PhD Thesis"},
		{"patent", "patent"},
	}
	for _, tt := range tests {
		t.Run(tt.entryType, func(t *testing.T) {
			if got := Badge(tt.entryType); got != tt.want {
				t.Errorf("Badge(%q) = %q, want %q", tt.entryType, got, tt.want)
			}
		})
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name     string
		fields   []bibtex.Field
		wantHref string
		wantKind string
	}{
		{"url wins over doi", []bibtex.Field{{Name: "doi", Value: "10.1/x"}, {Name: "url", Value: "https://example.org/p"}}, "https://example.org/p", "url"},
		{"doi resolver", []bibtex.Field{{Name: "doi", Value: "https://doi.org/10.1/X"}}, "https://doi.org/10.1/X", "doi"},
		{"no link", nil, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			href, kind := Link(bibtex.NewEntry("misc", "k", tt.fields...))
			if href != tt.wantHref || kind != tt.wantKind {
				t.Errorf("Link() = %q, %q, want %q, %q", href, kind, tt.wantHref, tt.wantKind)
			}
		})
	}
}

func TestYear(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"2019", "2019"},
		{"{2019}", "2019"},
		{"in press, 2024", "2024"},
		{"", NoDate},
		{"forthcoming", NoDate},
		{"99", NoDate},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			if got := Year(tt.field); got != tt.want {
				t.Errorf("Year(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestEmphasize(t *testing.T) {
	f := NewFormatter(Options{OwnerSurnames: DefaultOwnerSurnames})
	tests := []struct {
		input string
		want  string
	}{
		{"Marcos da Silveira", `Marcos <strong class="owner">da Silveira</strong>`},
		{"M. SILVEIRA", `M. <strong class="owner">SILVEIRA</strong>`},
		{"Silveirado Costa", "Silveirado Costa"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := f.Emphasize(tt.input); got != tt.want {
				t.Errorf("Emphasize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if got := NewFormatter(Options{}).Emphasize("da Silveira"); got != "da Silveira" {
		t.Errorf("no surnames should disable emphasis, got %q", got)
	}
}

func TestBibTeXSnippetEscaped(t *testing.T) {
	e := bibtex.NewEntry("article", "k", []bibtex.Field{
		{Name: "title", Value: "Q&A <tags>"},
		{Name: "file", Value: "secret.pdf"},
	}...)
	c := NewFormatter(Options{}).Format(e)

	got := string(c.BibTeXHTML())
	if !strings.Contains(got, "Q&amp;A &lt;tags&gt;") {
		t.Errorf("BibTeXHTML() = %q, want escaped snippet", got)
	}
	if strings.Contains(got, "secret.pdf") {
		t.Errorf("BibTeXHTML() leaked a bookkeeping field: %q", got)
	}
}

func TestFormatAll_DropsUntitled(t *testing.T) {
	entries := []bibtex.Entry{
		bibtex.NewEntry("misc", "a", bibtex.Field{Name: "title", Value: "Kept"}),
		bibtex.NewEntry("misc", "b"),
		bibtex.NewEntry("misc", "c", bibtex.Field{Name: "title", Value: "{}"}),
	}
	got := NewFormatter(Options{}).FormatAll(entries)
	if len(got) != 1 || got[0].Key != "a" {
		t.Errorf("FormatAll() = %+v, want only entry a", got)
	}
}

func TestFragment_ExpandedState(t *testing.T) {
	c := NewFormatter(Options{}).Format(bibtex.NewEntry("misc", "x:1", bibtex.Field{Name: "title", Value: "T"}))

	closed, err := c.Fragment(FragmentState{})
	if err != nil {
		t.Fatalf("Fragment(closed) error = %v", err)
	}
	if !strings.Contains(string(closed), `aria-expanded="false"`) || !strings.Contains(string(closed), " hidden>") {
		t.Errorf("closed fragment should be collapsed, got:\n%s", closed)
	}

	open, err := c.Fragment(FragmentState{Expanded: true})
	if err != nil {
		t.Fatalf("Fragment(open) error = %v", err)
	}
	if !strings.Contains(string(open), `aria-expanded="true"`) || strings.Contains(string(open), " hidden>") {
		t.Errorf("open fragment should be expanded, got:\n%s", open)
	}
	if !strings.Contains(string(open), `id="pub-x-1"`) {
		t.Errorf("fragment id should be sanitized, got:\n%s", open)
	}
}
