package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// UnknownKeyError is returned by Get and Set for keys not in Keys.
type UnknownKeyError struct {
	Key string
}

func (e UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown configuration key: %s", e.Key)
}

type accessor struct {
	get func(*Site) string
	set func(*Site, string) error
}

func stringKey(field func(*Site) *string) accessor {
	return accessor{
		get: func(s *Site) string { return *field(s) },
		set: func(s *Site, v string) error { *field(s) = v; return nil },
	}
}

func listKey(field func(*Site) *[]string) accessor {
	return accessor{
		get: func(s *Site) string { return strings.Join(*field(s), ", ") },
		set: func(s *Site, v string) error {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			*field(s) = items
			return nil
		},
	}
}

func boolKey(field func(*Site) *bool) accessor {
	return accessor{
		get: func(s *Site) string { return strconv.FormatBool(*field(s)) },
		set: func(s *Site, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q", v)
			}
			*field(s) = b
			return nil
		},
	}
}

func intKey(field func(*Site) *int) accessor {
	return accessor{
		get: func(s *Site) string { return strconv.Itoa(*field(s)) },
		set: func(s *Site, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer %q", v)
			}
			*field(s) = n
			return nil
		},
	}
}

func floatKey(field func(*Site) *float64) accessor {
	return accessor{
		get: func(s *Site) string { return strconv.FormatFloat(*field(s), 'g', -1, 64) },
		set: func(s *Site, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number %q", v)
			}
			*field(s) = f
			return nil
		},
	}
}

var accessors = map[string]accessor{
	"bib":          listKey(func(s *Site) *[]string { return &s.Bib }),
	"keywords":     stringKey(func(s *Site) *string { return &s.Keywords }),
	"topology":     stringKey(func(s *Site) *string { return &s.Topology }),
	"inline-page":  stringKey(func(s *Site) *string { return &s.InlinePage }),
	"output-dir":   stringKey(func(s *Site) *string { return &s.OutputDir }),
	"embed-page":   stringKey(func(s *Site) *string { return &s.EmbedPage }),
	"owners":       listKey(func(s *Site) *[]string { return &s.Owners }),
	"expand-years": intKey(func(s *Site) *int { return &s.ExpandYears }),
	"pdf-root":     stringKey(func(s *Site) *string { return &s.PDFRoot }),

	"graph.element-id": stringKey(func(s *Site) *string { return &s.Graph.ElementID }),
	"graph.source":     stringKey(func(s *Site) *string { return &s.Graph.Source }),
	"graph.legend":     boolKey(func(s *Site) *bool { return &s.Graph.Legend }),
	"graph.lazy":       boolKey(func(s *Site) *bool { return &s.Graph.Lazy }),
	"graph.multiplier": floatKey(func(s *Site) *float64 { return &s.Graph.Multiplier }),
	"graph.max-size":   floatKey(func(s *Site) *float64 { return &s.Graph.MaxSize }),
	"graph.width":      intKey(func(s *Site) *int { return &s.Graph.Width }),
	"graph.height":     intKey(func(s *Site) *int { return &s.Graph.Height }),
	"graph.snapshot":   boolKey(func(s *Site) *bool { return &s.Graph.Snapshot }),
}

// NormalizeKey converts key formats (pdf-root, pdf_root, PDF_ROOT) to the
// form used by Keys.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "_", "-")
}

// Keys returns every settable key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(accessors))
	for k := range accessors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value of key as a string. Lists are comma-separated.
func (s *Site) Get(key string) (string, error) {
	a, ok := accessors[NormalizeKey(key)]
	if !ok {
		return "", UnknownKeyError{Key: key}
	}
	return a.get(s), nil
}

// Set parses value and stores it under key.
func (s *Site) Set(key, value string) error {
	a, ok := accessors[NormalizeKey(key)]
	if !ok {
		return UnknownKeyError{Key: key}
	}
	if err := a.set(s, value); err != nil {
		return fmt.Errorf("%s: %w", NormalizeKey(key), err)
	}
	return nil
}

// Values returns every key with its current value.
func (s *Site) Values() map[string]string {
	out := make(map[string]string, len(accessors))
	for k, a := range accessors {
		out[k] = a.get(s)
	}
	return out
}
