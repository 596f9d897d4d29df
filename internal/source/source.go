// Package source fetches input documents from files, HTTP endpoints and
// inline blocks of HTML pages, with priority-ordered fallback.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmpty is returned when a source yields no bytes.
var ErrEmpty = errors.New("source is empty")

// Source is one place a document can be read from.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]byte, error)
}

// Result is the outcome of one fetch attempt.
type Result struct {
	Source string
	Data   []byte
	Err    error
}

// OK reports whether the attempt produced usable data.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fetch performs a single attempt against src.
func Fetch(ctx context.Context, src Source) Result {
	data, err := src.Fetch(ctx)
	if err == nil && len(data) == 0 {
		err = ErrEmpty
	}
	return Result{Source: src.Name(), Data: data, Err: err}
}

// First tries sources in order and returns the first result accepted by
// accept (nil accepts any data), along with every attempt made. Each source
// is tried once. When nothing is accepted the returned result carries the
// last failure.
func First(ctx context.Context, accept func([]byte) error, srcs ...Source) (Result, []Result) {
	var attempts []Result
	for _, src := range srcs {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Result{Source: src.Name(), Err: err})
			break
		}
		r := Fetch(ctx, src)
		if r.OK() && accept != nil {
			if err := accept(r.Data); err != nil {
				r = Result{Source: r.Source, Err: fmt.Errorf("rejected: %w", err)}
			}
		}
		attempts = append(attempts, r)
		if r.OK() {
			return r, attempts
		}
	}
	if len(attempts) == 0 {
		return Result{Err: errors.New("no sources configured")}, nil
	}
	return attempts[len(attempts)-1], attempts
}

// File reads a local file.
type File struct {
	Path string
}

func (f File) Name() string { return f.Path }

func (f File) Fetch(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Path, err)
	}
	return data, nil
}

// FromLocation returns an HTTP source for http(s) URLs and a File otherwise.
func FromLocation(loc string, client *HTTPClient) Source {
	if strings.HasPrefix(loc, "http://") || strings.HasPrefix(loc, "https://") {
		return client.Source(loc)
	}
	return File{Path: loc}
}

// FromLocations maps FromLocation over locs, skipping blanks.
func FromLocations(locs []string, client *HTTPClient) []Source {
	srcs := make([]Source, 0, len(locs))
	for _, loc := range locs {
		if strings.TrimSpace(loc) == "" {
			continue
		}
		srcs = append(srcs, FromLocation(loc, client))
	}
	return srcs
}
