// Package store keeps a searchable cache of the rendered publication list:
// a JSONL snapshot as the source of truth and an ephemeral SQLite index
// rebuilt from it.
package store

import (
	"path/filepath"

	"github.com/mdasilveira/folio/internal/citation"
)

// CacheDir is the cache location relative to the site root.
const CacheDir = ".folio/cache"

// Record is one cached publication.
type Record struct {
	Key      string               `json:"key"`
	Type     string               `json:"type"`
	Year     string               `json:"year"`
	Title    string               `json:"title"`
	Authors  string               `json:"authors,omitempty"`
	Venue    string               `json:"venue,omitempty"`
	Link     string               `json:"link,omitempty"`
	Filter   citation.FilterAttrs `json:"filter"`
	Degraded bool                 `json:"degraded,omitempty"` // recovered from the keyword index
}

// FromCitations converts citations to records.
func FromCitations(cs []citation.Citation, degraded bool) []Record {
	records := make([]Record, len(cs))
	for i, c := range cs {
		records[i] = Record{
			Key:      c.Key,
			Type:     c.Type,
			Year:     c.Year,
			Title:    c.Title,
			Authors:  c.Authors,
			Venue:    c.Venue,
			Link:     c.Link,
			Filter:   c.Filter,
			Degraded: degraded,
		}
	}
	return records
}

// Paths returns the JSONL snapshot and database paths under siteRoot.
func Paths(siteRoot string) (jsonlPath, dbPath string) {
	dir := filepath.Join(siteRoot, CacheDir)
	return filepath.Join(dir, "pubs.jsonl"), filepath.Join(dir, "pubs.db")
}
