// Package publist groups, filters and renders the publication list.
package publist

import (
	"sort"
	"strconv"

	"github.com/mdasilveira/folio/internal/citation"
)

// Group is the set of citations sharing a year label.
type Group struct {
	Year      string
	Citations []citation.Citation
}

// Count is the number of citations in the group.
func (g Group) Count() int {
	return len(g.Citations)
}

// GroupByYear buckets citations by year, newest first. Within a group the
// input order is kept. The NoDate group sorts after every numeric year.
func GroupByYear(cs []citation.Citation) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, c := range cs {
		year := c.Year
		if year == "" {
			year = citation.NoDate
		}
		i, ok := index[year]
		if !ok {
			i = len(groups)
			index[year] = i
			groups = append(groups, Group{Year: year})
		}
		groups[i].Citations = append(groups[i].Citations, c)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return yearBefore(groups[i].Year, groups[j].Year)
	})
	return groups
}

// yearBefore orders year labels descending: numeric years by value, then
// other labels alphabetically, then NoDate.
func yearBefore(a, b string) bool {
	if a == citation.NoDate || b == citation.NoDate {
		return b == citation.NoDate && a != citation.NoDate
	}
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na > nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}
