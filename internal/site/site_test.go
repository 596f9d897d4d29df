package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mdasilveira/folio/internal/config"
)

const testBib = `
@article{silveira2021,
  author = {Marcos Da Silveira and Ana Costa},
  title = {Ontology Evolution in Practice},
  journal = {Journal of Biomedical Semantics},
  year = {2021},
  doi = {10.1186/s13326-021-00001}
}

@inproceedings{costa2019,
  author = {Ana Costa and Marcos Da Silveira},
  title = {Semantic Annotation Drift},
  booktitle = {Proceedings of KEOD},
  year = {2019}
}
`

const testKeywords = `{
  "publications": [
    {"title": "Ontology Evolution in Practice", "keywords": ["Ontology", "AI"]},
    {"title": "Semantic Annotation Drift", "keywords": ["Ontology"]}
  ]
}`

const testTopology = `{
  "nodes": [
    {"id": "AI", "group": "methods", "size": 10},
    {"id": "Ontology", "group": "knowledge", "size": 12},
    {"id": "Semantic Web", "group": "knowledge", "size": 8}
  ],
  "links": [
    {"source": "AI", "target": "Ontology"},
    {"source": "Ontology", "target": "Missing"}
  ]
}`

func newTestSite(t *testing.T) *Site {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"publications.bib":    testBib,
		"keywords.json":       testKeywords,
		"graph-topology.json": testTopology,
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	cfg := config.Default()
	cfg.Graph.Snapshot = true
	return New(root, cfg, nil)
}

func readOutput(t *testing.T, s *Site, name string) string {
	t.Helper()
	data, err := os.ReadFile(s.OutputPath(name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}

func TestBuild(t *testing.T) {
	s := newTestSite(t)

	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if report.Mode != "full" || report.Publications != 2 {
		t.Errorf("report = %+v, want 2 publications in full mode", report)
	}
	if report.Nodes != 3 || report.Links != 1 || report.Dropped != 1 {
		t.Errorf("graph counts = %d nodes, %d links, %d dropped; want 3, 1, 1", report.Nodes, report.Links, report.Dropped)
	}
	if len(report.Written) != 4 {
		t.Errorf("Written = %v, want 4 files", report.Written)
	}
	if !report.CacheRebuilt {
		t.Error("first build should rebuild the cache")
	}

	pubs := readOutput(t, s, config.PublicationsFile)
	for _, want := range []string{"Ontology Evolution in Practice", "Semantic Annotation Drift", `<strong class="owner">Da Silveira</strong>`, "Loaded 2 publications."} {
		if !strings.Contains(pubs, want) {
			t.Errorf("publications page missing %q", want)
		}
	}

	data := readOutput(t, s, config.GraphDataFile)
	// AI: 10 + 1*2; Ontology: 12 + 2*2.
	if !strings.Contains(data, `"size":12`) || !strings.Contains(data, `"size":16`) {
		t.Errorf("graph.json not enriched: %s", data)
	}
	if !strings.Contains(readOutput(t, s, config.SnapshotFile), "<svg") {
		t.Error("snapshot is not an SVG")
	}
}

func TestBuild_SecondBuildSkipsCache(t *testing.T) {
	s := newTestSite(t)
	ctx := context.Background()

	if _, err := s.Build(ctx); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	report, err := s.Build(ctx)
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if report.CacheRebuilt {
		t.Error("unchanged publications should not rebuild the cache")
	}
}

func TestBuild_GraphFallsBackToPreviousPage(t *testing.T) {
	s := newTestSite(t)
	ctx := context.Background()

	if _, err := s.Build(ctx); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	if err := os.Remove(filepath.Join(s.Root, "graph-topology.json")); err != nil {
		t.Fatal(err)
	}

	report, err := s.Build(ctx)
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}
	if report.Nodes != 3 {
		t.Errorf("Nodes = %d, want 3 recovered from the embedded copy", report.Nodes)
	}
	if !strings.HasSuffix(report.GraphSource, "#knowledge-graph-data") {
		t.Errorf("GraphSource = %q, want the inline page", report.GraphSource)
	}
	if data := readOutput(t, s, config.GraphDataFile); !strings.Contains(data, `"size":16`) {
		t.Errorf("recovered graph was enriched twice: %s", data)
	}
}

func TestBuild_DegradedAndEmptyGraph(t *testing.T) {
	s := newTestSite(t)
	for _, name := range []string{"publications.bib", "graph-topology.json"} {
		if err := os.Remove(filepath.Join(s.Root, name)); err != nil {
			t.Fatal(err)
		}
	}

	report, err := s.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.Mode != "degraded" || report.Publications != 2 {
		t.Errorf("report = %+v, want 2 degraded publications", report)
	}
	if report.Nodes != 0 {
		t.Errorf("Nodes = %d, want 0", report.Nodes)
	}
	if !strings.Contains(readOutput(t, s, config.GraphPageFile), "No graph data") {
		t.Error("graph page should show the placeholder")
	}

	db, err := s.OpenCache()
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	defer db.Close()
	records, err := db.Search("drift", 0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 1 || !records[0].Degraded || records[0].Authors != "" {
		t.Errorf("Search() = %+v, want one degraded title-only record", records)
	}
}

func TestBuild_Embed(t *testing.T) {
	s := newTestSite(t)
	page := filepath.Join(s.Root, "index.html")
	if err := os.WriteFile(page, []byte(`<html><body><div id="publications"></div></body></html>`), 0644); err != nil {
		t.Fatal(err)
	}
	s.Config.EmbedPage = "index.html"
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		report, err := s.Build(ctx)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if report.Embedded != page {
			t.Errorf("Embedded = %q, want %q", report.Embedded, page)
		}
	}

	data, err := os.ReadFile(page)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), `id="pub-list"`); n != 1 {
		t.Errorf("list embedded %d times after two builds, want 1", n)
	}
}

func TestInputs(t *testing.T) {
	s := newTestSite(t)
	s.Config.Bib = append(s.Config.Bib, "https://example.org/pubs.bib", "publications.bib")

	got := s.Inputs()
	want := []string{"publications.bib", "keywords.json", "graph-topology.json", config.SiteFile}
	if len(got) != len(want) {
		t.Fatalf("Inputs() = %v, want %d local files", got, len(want))
	}
	for i, name := range want {
		if got[i] != filepath.Join(s.Root, name) {
			t.Errorf("Inputs()[%d] = %q, want %q", i, got[i], filepath.Join(s.Root, name))
		}
	}
}
