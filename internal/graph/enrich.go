package graph

import "strings"

// Enrichment defaults.
const (
	DefaultMultiplier = 2
	DefaultMaxSize    = 40
)

// EnrichOptions controls how keyword frequency grows node sizes.
type EnrichOptions struct {
	Multiplier float64 // size added per publication
	MaxSize    float64 // upper bound on any node size; zero disables
}

// DefaultEnrichOptions returns the standard sizing.
func DefaultEnrichOptions() EnrichOptions {
	return EnrichOptions{Multiplier: DefaultMultiplier, MaxSize: DefaultMaxSize}
}

// Enrich returns a copy of nodes with frequencies merged in. A node whose id
// names a keyword (exactly, or failing that case-insensitively) with nonzero
// frequency gets size + freq*Multiplier and its raw frequency recorded. Every
// returned size is at most MaxSize.
func Enrich(nodes []Node, freq map[string]int, opts EnrichOptions) []Node {
	folded := make(map[string]int, len(freq))
	for k, v := range freq {
		folded[strings.ToLower(k)] += v
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		f := freq[n.ID]
		if f == 0 {
			f = folded[strings.ToLower(n.ID)]
		}
		if f > 0 {
			n.Size += float64(f) * opts.Multiplier
			n.Frequency = f
		}
		if opts.MaxSize > 0 && n.Size > opts.MaxSize {
			n.Size = opts.MaxSize
		}
		out[i] = n
	}
	return out
}
