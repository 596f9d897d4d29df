// Package site wires configuration, loaders and renderers into a build of
// one academic site.
package site

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mdasilveira/folio/internal/citation"
	"github.com/mdasilveira/folio/internal/config"
	"github.com/mdasilveira/folio/internal/graph"
	"github.com/mdasilveira/folio/internal/pdf"
	"github.com/mdasilveira/folio/internal/publist"
	"github.com/mdasilveira/folio/internal/source"
	"github.com/mdasilveira/folio/internal/store"
	"github.com/mdasilveira/folio/internal/viz"
)

// Site is a configured site rooted at Root.
type Site struct {
	Root   string
	Config *config.Site
	Client *source.HTTPClient
	Logger *zap.Logger
}

// New returns a Site with a default HTTP client.
func New(root string, cfg *config.Site, logger *zap.Logger) *Site {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts []source.ClientOption
	if ua := config.GetUserAgent(); ua != "" {
		opts = append(opts, source.WithUserAgent(ua))
	}
	return &Site{Root: root, Config: cfg, Client: source.NewHTTPClient(opts...), Logger: logger}
}

// Report summarizes a build.
type Report struct {
	Publications int      `json:"publications"`
	Mode         string   `json:"mode"`
	Status       string   `json:"status"`
	PubSource    string   `json:"pub_source,omitempty"`
	Nodes        int      `json:"nodes"`
	Links        int      `json:"links"`
	Dropped      int      `json:"dropped_links,omitempty"`
	GraphSource  string   `json:"graph_source,omitempty"`
	Embedded     string   `json:"embedded,omitempty"` // page the list was embedded into
	Written      []string `json:"written"`
	CacheRebuilt bool     `json:"cache_rebuilt"`
}

func (s *Site) path(loc string) string {
	return config.Resolve(s.Root, loc)
}

// OutputPath returns the path of name inside the output directory.
func (s *Site) OutputPath(name string) string {
	return filepath.Join(s.path(s.Config.OutputDir), name)
}

func (s *Site) locate(loc string) source.Source {
	if loc == "" {
		return nil
	}
	return source.FromLocation(s.path(loc), s.Client)
}

// Formatter returns the citation formatter for the configured owners.
func (s *Site) Formatter() *citation.Formatter {
	return citation.NewFormatter(citation.Options{OwnerSurnames: s.Config.Owners})
}

// Loader returns the publication loader. When pdf_root is set, DOIs are
// recovered from local PDFs before formatting.
func (s *Site) Loader() *publist.Loader {
	l := &publist.Loader{
		Primary:   source.FromLocations(resolveAll(s.Root, s.Config.Bib), s.Client),
		Fallback:  s.locate(s.Config.Keywords),
		Formatter: s.Formatter(),
		Logger:    s.Logger,
	}
	if s.Config.PDFRoot != "" {
		l.Transform = pdf.NewBackfiller(s.path(s.Config.PDFRoot), s.Logger).Backfill
	}
	return l
}

// LoadPublications runs the publication loader.
func (s *Site) LoadPublications(ctx context.Context) publist.LoadResult {
	return s.Loader().Load(ctx)
}

// GraphOptions returns the graph loader options. The inline fallback is the
// configured inline page, or else the graph page written by the last build.
func (s *Site) GraphOptions() graph.Options {
	g := s.Config.Graph
	inlinePage := s.Config.InlinePage
	if inlinePage == "" {
		inlinePage = s.OutputPath(config.GraphPageFile)
	}
	return graph.Options{
		Topology: s.locate(s.Config.Topology),
		Inline:   source.Inline{Page: s.locate(inlinePage), ElementID: viz.DataElementID(s.elementID())},
		Keywords: s.locate(s.Config.Keywords),
		Enrich:   graph.EnrichOptions{Multiplier: g.Multiplier, MaxSize: g.MaxSize},
		Logger:   s.Logger,
	}
}

// LoadGraph runs the graph loader.
func (s *Site) LoadGraph(ctx context.Context) graph.Result {
	return graph.Load(ctx, s.GraphOptions())
}

func (s *Site) elementID() string {
	if id := s.Config.Graph.ElementID; id != "" {
		return id
	}
	return viz.DefaultElementID
}

// HTMLOptions returns the graph page options.
func (s *Site) HTMLOptions() viz.HTMLOptions {
	g := s.Config.Graph
	opts := viz.DefaultOptions()
	opts.ElementID = s.elementID()
	opts.Source = g.Source
	opts.Legend = g.Legend
	opts.Lazy = g.Lazy
	if g.Width > 0 {
		opts.Width = g.Width
	}
	if g.Height > 0 {
		opts.Height = g.Height
	}
	return opts
}

// SnapshotOptions returns the static SVG options.
func (s *Site) SnapshotOptions() viz.SnapshotOptions {
	opts := viz.DefaultSnapshotOptions()
	opts.Legend = s.Config.Graph.Legend
	if w := s.Config.Graph.Width; w > 0 {
		opts.Width = w
	}
	if h := s.Config.Graph.Height; h > 0 {
		opts.Height = h
	}
	return opts
}

// NewView returns the initial interaction state for res.
func (s *Site) NewView(res publist.LoadResult) *publist.View {
	return publist.NewView(publist.GroupByYear(res.Citations), publist.ViewOptions{ExpandYears: s.Config.ExpandYears})
}

// Build loads everything, writes the pages and refreshes the search cache.
// Load failures never fail a build; they show up in the report.
func (s *Site) Build(ctx context.Context) (*Report, error) {
	if err := os.MkdirAll(s.path(s.Config.OutputDir), 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	// The graph loads first: its inline fallback reads the previous page.
	gres := s.LoadGraph(ctx)
	pubs := s.LoadPublications(ctx)

	report := &Report{
		Publications: len(pubs.Citations),
		Mode:         pubs.Mode.String(),
		Status:       pubs.Status,
		PubSource:    pubs.Source,
		Nodes:        len(gres.Graph.Nodes),
		Links:        len(gres.Graph.Links),
		Dropped:      len(gres.Dropped),
		GraphSource:  gres.Source,
		Written:      []string{},
	}

	if err := s.writePublications(pubs, report); err != nil {
		return nil, err
	}
	if err := s.writeGraph(gres.Graph, report); err != nil {
		return nil, err
	}

	rebuilt, err := s.refreshCache(pubs)
	if err != nil {
		return nil, err
	}
	report.CacheRebuilt = rebuilt

	s.Logger.Info("build finished",
		zap.String("mode", report.Mode),
		zap.Int("publications", report.Publications),
		zap.Int("nodes", report.Nodes),
		zap.Strings("written", report.Written))
	return report, nil
}

func (s *Site) writePublications(pubs publist.LoadResult, report *Report) error {
	view := s.NewView(pubs)

	page, err := publist.GenerateHTML(pubs, view, publist.PageOptions{})
	if err != nil {
		return fmt.Errorf("rendering publications: %w", err)
	}
	if err := s.write(config.PublicationsFile, []byte(page), report); err != nil {
		return err
	}

	if s.Config.EmbedPage == "" {
		return nil
	}
	target := s.path(s.Config.EmbedPage)
	existing, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("reading embed page: %w", err)
	}
	fragment, err := publist.GenerateFragment(pubs, view)
	if err != nil {
		return fmt.Errorf("rendering publications: %w", err)
	}
	updated, ok := publist.Embed(string(existing), fragment)
	if !ok {
		s.Logger.Warn("embed page has no publications container, left unchanged",
			zap.String("page", target), zap.String("container", publist.ContainerID))
		return nil
	}
	if err := os.WriteFile(target, []byte(updated), 0644); err != nil {
		return fmt.Errorf("writing embed page: %w", err)
	}
	report.Embedded = target
	return nil
}

func (s *Site) writeGraph(g *graph.Graph, report *Report) error {
	page, err := viz.GenerateHTML(g, s.HTMLOptions())
	if err != nil {
		return fmt.Errorf("rendering graph: %w", err)
	}
	if err := s.write(config.GraphPageFile, []byte(page), report); err != nil {
		return err
	}

	data, err := g.Encode()
	if err != nil {
		return fmt.Errorf("encoding graph: %w", err)
	}
	if err := s.write(config.GraphDataFile, data, report); err != nil {
		return err
	}

	if !s.Config.Graph.Snapshot {
		return nil
	}
	var buf bytes.Buffer
	if err := viz.WriteSnapshot(&buf, g, s.SnapshotOptions()); err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	return s.write(config.SnapshotFile, buf.Bytes(), report)
}

func (s *Site) write(name string, data []byte, report *Report) error {
	path := s.OutputPath(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	report.Written = append(report.Written, path)
	return nil
}

// refreshCache snapshots the list to JSONL and syncs the search database.
// A failed load keeps the previous snapshot.
func (s *Site) refreshCache(pubs publist.LoadResult) (bool, error) {
	jsonlPath, dbPath := store.Paths(s.Root)
	if pubs.Mode != publist.ModeFailed {
		records := store.FromCitations(pubs.Citations, pubs.Mode == publist.ModeDegraded)
		if err := store.WriteAll(jsonlPath, records); err != nil {
			return false, fmt.Errorf("writing cache snapshot: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return false, err
	}
	defer db.Close()

	rebuilt, err := db.Sync(jsonlPath)
	if err != nil {
		return false, fmt.Errorf("syncing cache: %w", err)
	}
	return rebuilt, nil
}

// OpenCache syncs and opens the search database.
func (s *Site) OpenCache() (*store.DB, error) {
	jsonlPath, dbPath := store.Paths(s.Root)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Sync(jsonlPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("syncing cache: %w", err)
	}
	return db, nil
}

// Inputs returns the local files a build reads, for watching.
func (s *Site) Inputs() []string {
	var locs []string
	locs = append(locs, s.Config.Bib...)
	locs = append(locs, s.Config.Keywords, s.Config.Topology, config.SiteFile)
	if s.Config.InlinePage != "" {
		locs = append(locs, s.Config.InlinePage)
	}

	var files []string
	seen := make(map[string]bool)
	for _, loc := range locs {
		if loc == "" || config.IsURL(loc) {
			continue
		}
		p := s.path(loc)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}
	return files
}

func resolveAll(root string, locs []string) []string {
	out := make([]string, len(locs))
	for i, loc := range locs {
		out[i] = config.Resolve(root, loc)
	}
	return out
}
