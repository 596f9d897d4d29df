package publist

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mdasilveira/folio/internal/bibtex"
	"github.com/mdasilveira/folio/internal/citation"
	"github.com/mdasilveira/folio/internal/keywords"
	"github.com/mdasilveira/folio/internal/source"
)

// Mode says which data a load ended up with.
type Mode int

const (
	ModeFailed   Mode = iota // nothing usable
	ModeFull                 // parsed from the bibliography
	ModeDegraded             // titles only, from the keyword index
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeDegraded:
		return "degraded"
	default:
		return "failed"
	}
}

// FailedStatus is shown when neither source produced publications.
const FailedStatus = "Publications could not be loaded. Please try again later."

// ErrNoEntries is returned for documents that yield no titled publications.
var ErrNoEntries = errors.New("no publications found")

// LoadResult is the outcome of one load cycle.
type LoadResult struct {
	Citations []citation.Citation
	Mode      Mode
	Status    string
	Source    string          // source that supplied the data
	Attempts  []source.Result // every fetch attempt, in order
}

// Loader loads the publication list: bibliography sources first, in priority
// order, then the keyword index. Sources are tried one at a time.
type Loader struct {
	Primary   []source.Source
	Fallback  source.Source
	Formatter *citation.Formatter
	// Transform, when set, rewrites parsed bibliography entries before
	// formatting (for example to backfill DOIs).
	Transform func([]bibtex.Entry) []bibtex.Entry
	Logger    *zap.Logger
}

// Load never returns an error; failures become fallback data or a
// FailedStatus result.
func (l *Loader) Load(ctx context.Context) LoadResult {
	log := l.Logger
	if log == nil {
		log = zap.NewNop()
	}
	formatter := l.Formatter
	if formatter == nil {
		formatter = citation.NewFormatter(citation.Options{OwnerSurnames: citation.DefaultOwnerSurnames})
	}

	var cites []citation.Citation
	acceptBib := func(data []byte) error {
		entries := bibtex.Parse(string(data))
		if l.Transform != nil {
			entries = l.Transform(entries)
		}
		cites = formatter.FormatAll(entries)
		if len(cites) == 0 {
			return ErrNoEntries
		}
		return nil
	}

	res, attempts := source.First(ctx, acceptBib, l.Primary...)
	if res.OK() {
		return LoadResult{
			Citations: cites,
			Mode:      ModeFull,
			Status:    fullStatus(len(cites)),
			Source:    res.Source,
			Attempts:  attempts,
		}
	}
	for _, a := range attempts {
		log.Warn("bibliography source unavailable", zap.String("source", a.Source), zap.Error(a.Err))
	}

	if l.Fallback == nil {
		return LoadResult{Mode: ModeFailed, Status: FailedStatus, Attempts: attempts}
	}

	acceptIndex := func(data []byte) error {
		idx, err := keywords.Decode(data)
		if err != nil {
			return err
		}
		cites = formatter.FormatAll(idx.FallbackEntries())
		if len(cites) == 0 {
			return ErrNoEntries
		}
		return nil
	}
	fb, fbAttempts := source.First(ctx, acceptIndex, l.Fallback)
	attempts = append(attempts, fbAttempts...)
	if !fb.OK() {
		log.Warn("keyword index unavailable", zap.String("source", fb.Source), zap.Error(fb.Err))
		return LoadResult{Mode: ModeFailed, Status: FailedStatus, Attempts: attempts}
	}

	return LoadResult{
		Citations: cites,
		Mode:      ModeDegraded,
		Status:    degradedStatus(len(cites)),
		Source:    fb.Source,
		Attempts:  attempts,
	}
}

func fullStatus(n int) string {
	if n == 1 {
		return "Loaded 1 publication."
	}
	return fmt.Sprintf("Loaded %d publications.", n)
}

func degradedStatus(n int) string {
	noun := "titles"
	if n == 1 {
		noun = "title"
	}
	return fmt.Sprintf("Full bibliography unavailable; showing %d %s from the keyword index.", n, noun)
}
