package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Parse splits raw .bib text into entries in a single pass.
//
// Anything that does not look like an entry (no type, no opening delimiter,
// no key, or no matching close) is skipped and scanning resumes after it.
// Braces may nest to any depth inside values.
func Parse(text string) []Entry {
	var entries []Entry
	pos := 0
	for pos < len(text) {
		at := strings.IndexByte(text[pos:], '@')
		if at < 0 {
			break
		}
		e, next, ok := parseEntry(text, pos+at)
		if ok {
			entries = append(entries, e)
		}
		pos = next
	}
	return entries
}

// ParseReader reads all of r and parses it. Only read errors are returned.
func ParseReader(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}
	return Parse(string(data)), nil
}

// ParseFile parses the .bib file at path.
func ParseFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// parseEntry parses the entry whose '@' is at start. It returns the position
// scanning should resume from and whether an entry was produced.
func parseEntry(text string, start int) (Entry, int, bool) {
	pos := start + 1
	typeEnd := pos
	for typeEnd < len(text) && isNameByte(text[typeEnd]) {
		typeEnd++
	}
	entryType := strings.ToLower(text[pos:typeEnd])
	if entryType == "" {
		return Entry{}, pos, false
	}

	open := skipSpace(text, typeEnd)
	if open >= len(text) || (text[open] != '{' && text[open] != '(') {
		return Entry{}, typeEnd, false
	}

	end := matchClose(text, open)
	if end < 0 {
		// Unterminated: let the scan find any later entries inside it.
		return Entry{}, open + 1, false
	}

	switch entryType {
	case "comment", "preamble", "string":
		return Entry{}, end + 1, false
	}

	body := text[open+1 : end]
	comma := strings.IndexByte(body, ',')
	rest := ""
	if comma >= 0 {
		rest = body[comma+1:]
		body = body[:comma]
	}
	key := strings.TrimSpace(body)
	if key == "" || strings.ContainsAny(key, "=\"{} \t\n") {
		return Entry{}, end + 1, false
	}

	e := Entry{Type: entryType, Key: key}
	for _, f := range parseFields(rest) {
		e.fields = setField(e.fields, f.Name, f.Value)
	}
	return e, end + 1, true
}

// matchClose returns the index of the delimiter closing the one at open,
// or -1 when the entry never closes.
func matchClose(text string, open int) int {
	closer := byte('}')
	if text[open] == '(' {
		closer = ')'
	}
	depth := 0
	for i := open + 1; i < len(text); i++ {
		switch c := text[i]; {
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == closer && depth == 0:
			return i
		}
	}
	return -1
}

// parseFields reads "name = value" pairs separated by commas. Malformed
// pairs are skipped up to the next comma or newline.
func parseFields(s string) []Field {
	var fields []Field
	p := 0
	for p < len(s) {
		for p < len(s) && (isSpace(s[p]) || s[p] == ',') {
			p++
		}
		if p >= len(s) {
			break
		}

		nameStart := p
		for p < len(s) && isNameByte(s[p]) {
			p++
		}
		name := strings.ToLower(s[nameStart:p])
		p = skipSpace(s, p)
		if name == "" || p >= len(s) || s[p] != '=' {
			p = skipPast(s, p)
			continue
		}
		p = skipSpace(s, p+1)

		var value strings.Builder
		for {
			part, next := readValue(s, p)
			value.WriteString(part)
			p = skipSpace(s, next)
			if p < len(s) && s[p] == '#' {
				p = skipSpace(s, p+1)
				continue
			}
			break
		}
		fields = append(fields, Field{Name: name, Value: collapseSpace(value.String())})
	}
	return fields
}

// readValue reads one value starting at p and returns it without its
// delimiters, plus the position just after it.
func readValue(s string, p int) (string, int) {
	if p >= len(s) {
		return "", p
	}
	switch s[p] {
	case '{':
		depth := 0
		for i := p; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return s[p+1 : i], i + 1
				}
			}
		}
		return s[p+1:], len(s)
	case '"':
		depth := 0
		for i := p + 1; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				if depth > 0 {
					depth--
				}
			case '"':
				if depth == 0 && s[i-1] != '\\' {
					return s[p+1 : i], i + 1
				}
			}
		}
		return s[p+1:], len(s)
	default:
		end := p
		for end < len(s) && s[end] != ',' && s[end] != '\n' && s[end] != '#' {
			end++
		}
		return strings.TrimSpace(s[p:end]), end
	}
}

func skipPast(s string, p int) int {
	for p < len(s) && s[p] != ',' && s[p] != '\n' {
		p++
	}
	return p
}

func skipSpace(s string, p int) int {
	for p < len(s) && isSpace(s[p]) {
		p++
	}
	return p
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == ':' || c == '.'
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
