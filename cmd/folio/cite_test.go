package main

import (
	"testing"

	"github.com/mdasilveira/folio/internal/citation"
)

func TestCiteText(t *testing.T) {
	full := citation.Citation{
		Key:    "silveira2021",
		Link:   "https://doi.org/10.1186/x",
		BibTeX: "@article{silveira2021,\n  title = {Ontology}\n}",
	}
	titleOnly := citation.Citation{Key: "kw-1", Title: "Ontology"}

	tests := []struct {
		name    string
		c       citation.Citation
		link    bool
		want    string
		wantErr bool
	}{
		{"bibtex", full, false, full.BibTeX, false},
		{"link", full, true, full.Link, false},
		{"title only bibtex", titleOnly, false, "", true},
		{"title only link", titleOnly, true, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := citeText(tt.c, tt.link)
			if (err != nil) != tt.wantErr {
				t.Fatalf("citeText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("citeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFindCitation(t *testing.T) {
	cs := []citation.Citation{{Key: "a"}, {Key: "b", Title: "B"}}
	if c, ok := findCitation(cs, "b"); !ok || c.Title != "B" {
		t.Errorf("findCitation(b) = %+v, %v", c, ok)
	}
	if _, ok := findCitation(cs, "missing"); ok {
		t.Error("findCitation(missing) should fail")
	}
}
