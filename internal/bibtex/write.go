package bibtex

import (
	"fmt"
	"strings"
)

// BibTeX renders the entry back into .bib syntax. Bookkeeping fields are left
// out; everything else is written brace-delimited in source order.
func (e Entry) BibTeX() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", e.Type, e.Key))
	for _, f := range e.fields {
		if IsBookkeeping(f.Name) || f.Value == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", f.Name, balanceBraces(f.Value)))
	}
	b.WriteString("}\n")

	return b.String()
}

// balanceBraces drops unmatched braces so a quote-delimited value can be
// written brace-delimited without closing the field early.
func balanceBraces(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}
	var b strings.Builder
	var opens []int
	keep := make([]bool, len(s))
	for i := 0; i < len(s); i++ {
		keep[i] = true
		switch s[i] {
		case '{':
			opens = append(opens, i)
		case '}':
			if len(opens) == 0 {
				keep[i] = false
				continue
			}
			opens = opens[:len(opens)-1]
		}
	}
	for _, i := range opens {
		keep[i] = false
	}
	for i := 0; i < len(s); i++ {
		if keep[i] {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
