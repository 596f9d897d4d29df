package publist

import "github.com/mdasilveira/folio/internal/citation"

// Event is a discrete interaction with the publication list.
type Event interface {
	isEvent()
}

// SectionToggled flips the visibility of one year section.
type SectionToggled struct {
	Year string
}

// BibTeXToggled flips the BibTeX disclosure of one citation.
type BibTeXToggled struct {
	Key string
}

// FilterChanged replaces the free-text filter query.
type FilterChanged struct {
	Query string
}

func (SectionToggled) isEvent() {}
func (BibTeXToggled) isEvent()  {}
func (FilterChanged) isEvent()  {}

// Observer is notified after an event has been applied.
type Observer func(Event, *View)

// ViewOptions sets the initial state of a View.
type ViewOptions struct {
	// ExpandYears is the number of newest sections that start open; zero
	// opens every section.
	ExpandYears int
}

// View is the interaction state of one rendered list. It is not persisted;
// a new View starts from ViewOptions every time.
type View struct {
	groups    []Group
	collapsed map[string]bool
	expanded  map[string]bool
	query     string
	hidden    [][]bool // by group, then position; keys may repeat
	shown     int
	observers []Observer
}

// NewView creates the state for groups.
func NewView(groups []Group, opts ViewOptions) *View {
	v := &View{
		groups:    groups,
		collapsed: make(map[string]bool),
		expanded:  make(map[string]bool),
		hidden:    make([][]bool, len(groups)),
	}
	for i, g := range groups {
		if opts.ExpandYears > 0 && i >= opts.ExpandYears {
			v.collapsed[g.Year] = true
		}
	}
	v.applyFilter("")
	return v
}

// Subscribe registers an observer for subsequent events.
func (v *View) Subscribe(fn Observer) {
	v.observers = append(v.observers, fn)
}

// Dispatch applies ev and notifies observers.
func (v *View) Dispatch(ev Event) {
	switch e := ev.(type) {
	case SectionToggled:
		v.collapsed[e.Year] = !v.collapsed[e.Year]
	case BibTeXToggled:
		v.expanded[e.Key] = !v.expanded[e.Key]
	case FilterChanged:
		v.applyFilter(e.Query)
	}
	for _, fn := range v.observers {
		fn(ev, v)
	}
}

func (v *View) applyFilter(query string) {
	v.query = query
	v.shown = 0
	for gi, g := range v.groups {
		hidden := make([]bool, len(g.Citations))
		for ci, c := range g.Citations {
			if Match(c, query) {
				v.shown++
			} else {
				hidden[ci] = true
			}
		}
		v.hidden[gi] = hidden
	}
}

// Groups returns every group, regardless of filtering.
func (v *View) Groups() []Group {
	return v.groups
}

// Collapsed reports whether the year section is closed.
func (v *View) Collapsed(year string) bool {
	return v.collapsed[year]
}

// Expanded reports whether a citation's BibTeX disclosure is open.
func (v *View) Expanded(key string) bool {
	return v.expanded[key]
}

// VisibleAt reports whether the citation at position ci of group gi passes
// the current filter.
func (v *View) VisibleAt(gi, ci int) bool {
	if gi < 0 || gi >= len(v.hidden) || ci < 0 || ci >= len(v.hidden[gi]) {
		return false
	}
	return !v.hidden[gi][ci]
}

// Visible reports whether any citation with key passes the current filter.
func (v *View) Visible(key string) bool {
	for gi, g := range v.groups {
		for ci, c := range g.Citations {
			if c.Key == key && v.VisibleAt(gi, ci) {
				return true
			}
		}
	}
	return false
}

// Query returns the current filter query.
func (v *View) Query() string {
	return v.query
}

// Shown is the number of citations passing the filter.
func (v *View) Shown() int {
	return v.shown
}

// Status is the filter status line.
func (v *View) Status() string {
	return MatchStatus(v.query, v.shown)
}

// VisibleGroups returns the groups restricted to visible citations, dropping
// groups left empty.
func (v *View) VisibleGroups() []Group {
	var out []Group
	for gi, g := range v.groups {
		var cs []citation.Citation
		for ci, c := range g.Citations {
			if v.VisibleAt(gi, ci) {
				cs = append(cs, c)
			}
		}
		if len(cs) > 0 {
			out = append(out, Group{Year: g.Year, Citations: cs})
		}
	}
	return out
}
