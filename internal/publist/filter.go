package publist

import (
	"fmt"
	"strings"

	"github.com/mdasilveira/folio/internal/citation"
)

// NormalizeQuery trims and lowercases a filter query.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Match reports whether the citation's title, authors, venue or year contain
// query, case-insensitively on both sides. An empty query matches everything.
func Match(c citation.Citation, query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Filter.Haystack()), q)
}

// MatchStatus is the status line for a filter: empty for an empty query,
// otherwise the pluralized match count.
func MatchStatus(query string, n int) string {
	if NormalizeQuery(query) == "" {
		return ""
	}
	if n == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", n)
}
