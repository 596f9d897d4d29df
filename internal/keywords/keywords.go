// Package keywords reads the publication keyword index that sizes graph nodes
// and backs the publication list when the bibliography is unavailable.
package keywords

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mdasilveira/folio/internal/bibtex"
)

// FallbackType is the entry type given to titles recovered from the index.
const FallbackType = "misc"

// Publication is one title with its extracted keywords.
type Publication struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// Index is the keyword index document.
type Index struct {
	Publications      []Publication `json:"publications"`
	GeneratedFrom     string        `json:"generatedFrom,omitempty"`
	TotalPublications int           `json:"totalPublications,omitempty"`
}

// Decode parses an index document.
func Decode(data []byte) (*Index, error) {
	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing keyword index: %w", err)
	}
	return &idx, nil
}

// Frequencies counts, per keyword, the publications listing it.
func (idx *Index) Frequencies() map[string]int {
	freq := make(map[string]int)
	if idx == nil {
		return freq
	}
	for _, p := range idx.Publications {
		for _, k := range p.Keywords {
			freq[k]++
		}
	}
	return freq
}

// FallbackEntries converts titled publications to minimal entries: type
// FallbackType, a synthetic key unique within the result, and a title.
func (idx *Index) FallbackEntries() []bibtex.Entry {
	if idx == nil {
		return nil
	}
	entries := make([]bibtex.Entry, 0, len(idx.Publications))
	for _, p := range idx.Publications {
		if p.Title == "" {
			continue
		}
		key := "kw-" + strconv.Itoa(len(entries)+1)
		entries = append(entries, bibtex.NewEntry(FallbackType, key, bibtex.Field{Name: "title", Value: p.Title}))
	}
	return entries
}
