package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mdasilveira/folio/internal/bibtex"
)

// Backfiller fills in the doi field of entries that carry neither url nor
// doi but reference a local PDF through their file field.
type Backfiller struct {
	Root    string // directory relative file paths resolve against
	Extract func(path string) (string, error)
	Logger  *zap.Logger
}

// NewBackfiller returns a Backfiller reading PDFs under root.
func NewBackfiller(root string, logger *zap.Logger) *Backfiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backfiller{Root: root, Extract: ExtractDOI, Logger: logger}
}

// Backfill is shorthand for NewBackfiller(root, nil).Backfill(entries).
func Backfill(entries []bibtex.Entry, root string) []bibtex.Entry {
	return NewBackfiller(root, nil).Backfill(entries)
}

// Backfill returns entries with recovered DOIs added. Entries are never
// dropped; a PDF that cannot be read leaves its entry unchanged.
func (b *Backfiller) Backfill(entries []bibtex.Entry) []bibtex.Entry {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}
	extract := b.Extract
	if extract == nil {
		extract = ExtractDOI
	}

	out := make([]bibtex.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if e.Get("url") != "" || e.Get("doi") != "" {
			continue
		}
		for _, rel := range FilePaths(e.Get("file")) {
			path, err := b.ResolvePath(rel)
			if err != nil {
				log.Debug("skipping attachment", zap.String("key", e.Key), zap.Error(err))
				continue
			}
			doi, err := extract(path)
			if err != nil {
				log.Warn("reading PDF failed", zap.String("key", e.Key), zap.String("path", path), zap.Error(err))
				continue
			}
			if doi != "" {
				log.Debug("recovered DOI", zap.String("key", e.Key), zap.String("doi", doi))
				out[i] = e.With("doi", doi)
				break
			}
		}
	}
	return out
}

// ResolvePath resolves a file field path against Root and checks that it
// exists.
func (b *Backfiller) ResolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no PDF path specified")
	}
	fullPath := path
	if !filepath.IsAbs(path) {
		if b.Root == "" {
			return "", fmt.Errorf("pdf root not configured for relative path %s", path)
		}
		fullPath = filepath.Join(b.Root, path)
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("PDF not found: %s", fullPath)
		}
		return "", fmt.Errorf("checking PDF: %w", err)
	}
	return fullPath, nil
}

// FilePaths extracts the PDF paths from a BibTeX file field. It accepts a
// bare path and the "description:path:type" form used by JabRef and Zotero,
// with multiple attachments separated by semicolons.
func FilePaths(field string) []string {
	var paths []string
	for _, part := range strings.Split(field, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		path := part
		if segs := strings.Split(part, ":"); len(segs) == 3 {
			path = segs[1]
		} else if len(segs) > 3 {
			// Windows drive letters add a colon to the path.
			path = strings.Join(segs[1:len(segs)-1], ":")
		}
		path = strings.TrimSpace(path)
		if strings.HasSuffix(strings.ToLower(path), ".pdf") {
			paths = append(paths, path)
		}
	}
	return paths
}
