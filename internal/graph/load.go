package graph

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mdasilveira/folio/internal/keywords"
	"github.com/mdasilveira/folio/internal/source"
)

// Options configures Load.
type Options struct {
	Topology source.Source // primary topology document
	Inline   source.Source // embedded copy tried when Topology fails; optional
	Keywords source.Source // keyword index; optional
	Enrich   EnrichOptions // zero value means DefaultEnrichOptions
	Logger   *zap.Logger
}

// Result is the outcome of Load.
type Result struct {
	Graph       *Graph
	Source      string // source that supplied the topology; empty for the empty graph
	Frequencies map[string]int
	Dropped     []Link // links naming unknown nodes
	Attempts    []source.Result
}

// Load fetches the topology and the keyword index concurrently, waits for
// both, and returns the enriched graph. It never fails: a missing topology
// yields an empty graph and a missing index yields zero frequencies.
func Load(ctx context.Context, opts Options) Result {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var (
		topo      *Graph
		topoRes   source.Result
		topoTries []source.Result
		freq      map[string]int
		kwTries   []source.Result
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var srcs []source.Source
		if opts.Topology != nil {
			srcs = append(srcs, opts.Topology)
		}
		if opts.Inline != nil {
			srcs = append(srcs, opts.Inline)
		}
		topoRes, topoTries = source.First(gctx, func(data []byte) error {
			parsed, err := Decode(data)
			if err != nil {
				return err
			}
			topo = parsed
			return nil
		}, srcs...)
		return nil
	})

	g.Go(func() error {
		if opts.Keywords == nil {
			return nil
		}
		var res source.Result
		res, kwTries = source.First(gctx, func(data []byte) error {
			idx, err := keywords.Decode(data)
			if err != nil {
				return err
			}
			freq = idx.Frequencies()
			return nil
		}, opts.Keywords)
		if !res.OK() {
			log.Warn("keyword index unavailable, using zero frequencies",
				zap.String("source", res.Source), zap.Error(res.Err))
		}
		return nil
	})

	// Both goroutines report through their results.
	_ = g.Wait()

	if freq == nil {
		freq = map[string]int{}
	}
	out := Result{
		Frequencies: freq,
		Attempts:    append(topoTries, kwTries...),
	}

	if !topoRes.OK() {
		for _, a := range topoTries {
			log.Warn("topology source unavailable", zap.String("source", a.Source), zap.Error(a.Err))
		}
		out.Graph = &Graph{Nodes: []Node{}, Links: []Link{}}
		return out
	}

	out.Source = topoRes.Source
	out.Dropped = topo.Resolve()
	for _, l := range out.Dropped {
		log.Warn("dropping link to unknown node", zap.String("source", l.Source), zap.String("target", l.Target))
	}
	enrich := opts.Enrich
	if enrich == (EnrichOptions{}) {
		enrich = DefaultEnrichOptions()
	}
	if opts.Inline != nil && topoRes.Source == opts.Inline.Name() {
		// Embedded copies are written after enrichment.
		enrich.Multiplier = 0
	}
	topo.Nodes = Enrich(topo.Nodes, freq, enrich)
	out.Graph = topo
	return out
}
