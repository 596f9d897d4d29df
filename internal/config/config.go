// Package config handles site and global configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site represents site configuration stored in folio.yml at the site root.
// Relative paths are resolved against the site root.
type Site struct {
	Bib         []string `yaml:"bib"`                    // bibliography locations, highest priority first
	Keywords    string   `yaml:"keywords,omitempty"`     // keyword index location
	Topology    string   `yaml:"topology,omitempty"`     // graph topology location
	InlinePage  string   `yaml:"inline_page,omitempty"`  // page carrying an embedded copy of the graph
	OutputDir   string   `yaml:"output_dir"`             // where build writes its pages
	EmbedPage   string   `yaml:"embed_page,omitempty"`   // page whose publications container receives the list
	Owners      []string `yaml:"owners,omitempty"`       // surnames emphasized in author lists
	ExpandYears int      `yaml:"expand_years,omitempty"` // newest year sections open by default; 0 opens all
	PDFRoot     string   `yaml:"pdf_root,omitempty"`     // folder PDFs named by file fields live under
	Graph       Graph    `yaml:"graph"`
}

// Graph holds knowledge-graph options.
type Graph struct {
	ElementID  string  `yaml:"element_id"`
	Source     string  `yaml:"source,omitempty"` // URL the page fetches graph JSON from
	Legend     bool    `yaml:"legend"`
	Lazy       bool    `yaml:"lazy"`
	Multiplier float64 `yaml:"multiplier"`
	MaxSize    float64 `yaml:"max_size"`
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Snapshot   bool    `yaml:"snapshot"` // also write a static SVG
}

const (
	SiteFile         = "folio.yml"
	FolioDir         = ".folio"
	DefaultOutputDir = "public"

	PublicationsFile = "publications.html"
	GraphPageFile    = "graph.html"
	GraphDataFile    = "graph.json"
	SnapshotFile     = "graph.svg"
)

// ErrNoSite is returned when no folio.yml is found.
var ErrNoSite = errors.New("not in a folio site (no folio.yml found)")

// Default returns the configuration written by folio init.
func Default() *Site {
	return &Site{
		Bib:       []string{"publications.bib"},
		Keywords:  "keywords.json",
		Topology:  "graph-topology.json",
		OutputDir: DefaultOutputDir,
		Owners:    []string{"da silveira", "silveira"},
		Graph: Graph{
			ElementID:  "knowledge-graph",
			Legend:     true,
			Lazy:       true,
			Multiplier: 2,
			MaxSize:    40,
			Width:      960,
			Height:     600,
		},
	}
}

// SitePath returns the path to folio.yml from a root path.
func SitePath(root string) string {
	return filepath.Join(root, SiteFile)
}

// FolioPath returns the path to the .folio directory from a root path.
func FolioPath(root string) string {
	return filepath.Join(root, FolioDir)
}

// IsSite checks if the given path contains a folio.yml file.
func IsSite(root string) bool {
	info, err := os.Stat(SitePath(root))
	return err == nil && !info.IsDir()
}

// FindSite walks up from the given path to find a folio site.
// Returns the site root path or ErrNoSite if not found.
func FindSite(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsSite(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoSite
		}
		abs = parent
	}
}

// Load reads configuration from the site at the given root. Keys missing
// from the file keep their Default values.
func Load(root string) (*Site, error) {
	data, err := os.ReadFile(SitePath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the site at the given root.
func (s *Site) Save(root string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(SitePath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks values that would make a build of the site at root fail.
func (s *Site) Validate(root string) error {
	var errs []error
	if len(s.Bib) == 0 && s.Keywords == "" {
		errs = append(errs, errors.New("no publication source: set bib or keywords"))
	}
	if s.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is empty"))
	}
	if s.ExpandYears < 0 {
		errs = append(errs, fmt.Errorf("expand_years must not be negative: %d", s.ExpandYears))
	}
	if s.Graph.Multiplier < 0 {
		errs = append(errs, fmt.Errorf("graph.multiplier must not be negative: %g", s.Graph.Multiplier))
	}
	if s.Graph.MaxSize < 0 {
		errs = append(errs, fmt.Errorf("graph.max_size must not be negative: %g", s.Graph.MaxSize))
	}
	if s.Graph.Width < 0 || s.Graph.Height < 0 {
		errs = append(errs, fmt.Errorf("graph size must not be negative: %dx%d", s.Graph.Width, s.Graph.Height))
	}
	if err := ValidatePDFRoot(Resolve(root, s.PDFRoot)); err != nil {
		errs = append(errs, fmt.Errorf("pdf_root: %w", err))
	}
	return errors.Join(errs...)
}

// Resolve returns loc resolved against root. URLs and absolute paths are
// returned as is; "~" is expanded.
func Resolve(root, loc string) string {
	if loc == "" || IsURL(loc) {
		return loc
	}
	loc = ExpandPath(loc)
	if filepath.IsAbs(loc) {
		return loc
	}
	return filepath.Join(root, loc)
}

// IsURL reports whether loc is an http(s) URL.
func IsURL(loc string) bool {
	return strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://")
}

// ValidatePDFRoot checks that the PDF root path exists and is a directory.
func ValidatePDFRoot(path string) error {
	if path == "" {
		return nil // Empty is allowed (backfill disabled)
	}

	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}

	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
