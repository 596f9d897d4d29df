// Package bibtex parses .bib sources into entries and writes entries back out as BibTeX.
package bibtex

import "strings"

// Field is a single name/value pair of an entry, in source order.
type Field struct {
	Name  string
	Value string
}

// Entry is one parsed bibliography record. Type and Key are always set;
// every other field is optional. Entries are not modified after parsing.
type Entry struct {
	Type   string // article, inproceedings, phdthesis, ... (lowercase)
	Key    string // citation key
	fields []Field
}

// NewEntry builds an entry from fields. Field names are lowercased and later
// duplicates replace earlier ones in place.
func NewEntry(entryType, key string, fields ...Field) Entry {
	e := Entry{Type: strings.ToLower(entryType), Key: key}
	for _, f := range fields {
		e.fields = setField(e.fields, strings.ToLower(f.Name), f.Value)
	}
	return e
}

// Get returns the value of a field, or "" when absent.
func (e Entry) Get(name string) string {
	name = strings.ToLower(name)
	for _, f := range e.fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Has reports whether the field is present with a non-empty value.
func (e Entry) Has(name string) bool {
	return e.Get(name) != ""
}

// Fields returns a copy of the entry's fields in source order.
func (e Entry) Fields() []Field {
	out := make([]Field, len(e.fields))
	copy(out, e.fields)
	return out
}

// With returns a copy of the entry with the field set.
func (e Entry) With(name, value string) Entry {
	out := Entry{Type: e.Type, Key: e.Key, fields: e.Fields()}
	out.fields = setField(out.fields, strings.ToLower(name), value)
	return out
}

func setField(fields []Field, name, value string) []Field {
	for i := range fields {
		if fields[i].Name == name {
			fields[i].Value = value
			return fields
		}
	}
	return append(fields, Field{Name: name, Value: value})
}

// IsBookkeeping reports whether a field is internal to the site tooling rather
// than bibliographic data. Such fields never appear in rendered BibTeX.
func IsBookkeeping(name string) bool {
	switch name {
	case "type", "key", "file":
		return true
	}
	return strings.HasPrefix(name, "_")
}
