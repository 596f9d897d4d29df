package bibtex

import (
	"sort"
	"strings"
)

// Index tracks citation keys and DOIs of a set of entries for duplicate detection.
type Index struct {
	// Keys maps citation keys to the number of entries using them
	Keys map[string]int
	// DOIs maps normalized DOI values to the citation keys carrying them
	DOIs map[string][]string
}

// NewIndex builds an index over entries.
func NewIndex(entries []Entry) *Index {
	idx := &Index{
		Keys: make(map[string]int),
		DOIs: make(map[string][]string),
	}
	for _, e := range entries {
		idx.Keys[e.Key]++
		if doi := NormalizeDOI(e.Get("doi")); doi != "" {
			idx.DOIs[doi] = append(idx.DOIs[doi], e.Key)
		}
	}
	return idx
}

// HasEntry returns true if the entry already exists (by DOI or key).
// DOI is the primary match; citation key is the fallback if no DOI.
func (idx *Index) HasEntry(key, doi string) bool {
	if doi != "" {
		if _, exists := idx.DOIs[NormalizeDOI(doi)]; exists {
			return true
		}
	}
	return idx.Keys[key] > 0
}

// DuplicateKeys returns keys used by more than one entry.
func (idx *Index) DuplicateKeys() []string {
	var dups []string
	for k, n := range idx.Keys {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sort.Strings(dups)
	return dups
}

// DuplicateDOIs maps each DOI shared by several entries to their keys.
func (idx *Index) DuplicateDOIs() map[string][]string {
	dups := make(map[string][]string)
	for doi, keys := range idx.DOIs {
		if len(keys) > 1 {
			dups[doi] = keys
		}
	}
	return dups
}

// TrimDOI removes resolver prefixes from a DOI, keeping its case.
func TrimDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi.org/", "DOI:", "doi:"} {
		if strings.HasPrefix(doi, prefix) {
			return strings.TrimSpace(doi[len(prefix):])
		}
	}
	return doi
}

// NormalizeDOI normalizes a DOI for comparison: prefixes removed, lowercased.
func NormalizeDOI(doi string) string {
	return strings.ToLower(TrimDOI(doi))
}
