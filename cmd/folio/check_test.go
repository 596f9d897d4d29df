package main

import (
	"errors"
	"testing"

	"github.com/mdasilveira/folio/internal/bibtex"
)

func TestLintEntries(t *testing.T) {
	entries := []bibtex.Entry{
		bibtex.NewEntry("article", "a2021",
			bibtex.Field{Name: "title", Value: "First"},
			bibtex.Field{Name: "year", Value: "2021"},
			bibtex.Field{Name: "doi", Value: "10.1000/X"}),
		bibtex.NewEntry("article", "a2021",
			bibtex.Field{Name: "title", Value: "Second"},
			bibtex.Field{Name: "year", Value: "2021"}),
		bibtex.NewEntry("misc", "b2020",
			bibtex.Field{Name: "title", Value: "{}"},
			bibtex.Field{Name: "year", Value: "2020"},
			bibtex.Field{Name: "doi", Value: "https://doi.org/10.1000/x"}),
		bibtex.NewEntry("misc", "undated",
			bibtex.Field{Name: "title", Value: "Undated"},
			bibtex.Field{Name: "file", Value: "Full Text:papers/undated.pdf:application/pdf"}),
	}

	issues := lintEntries(entries, nil)

	want := []CheckIssue{
		{Type: "duplicate_key", Key: "a2021"},
		{Type: "duplicate_doi", DOI: "10.1000/x"},
		{Type: "missing_title", Key: "b2020"},
		{Type: "missing_year", Key: "undated"},
	}
	if len(issues) != len(want) {
		t.Fatalf("lintEntries() = %+v, want %d issues", issues, len(want))
	}
	for i, w := range want {
		got := issues[i]
		if got.Type != w.Type || got.Key != w.Key || got.DOI != w.DOI {
			t.Errorf("issue %d = %+v, want %+v", i, got, w)
		}
	}
	if keys := issues[1].Keys; len(keys) != 2 || keys[0] != "a2021" || keys[1] != "b2020" {
		t.Errorf("duplicate_doi keys = %v, want [a2021 b2020]", keys)
	}
}

func TestLintEntries_MissingPDF(t *testing.T) {
	entries := []bibtex.Entry{
		bibtex.NewEntry("article", "present",
			bibtex.Field{Name: "title", Value: "Present"},
			bibtex.Field{Name: "year", Value: "2022"},
			bibtex.Field{Name: "file", Value: "present.pdf"}),
		bibtex.NewEntry("article", "absent",
			bibtex.Field{Name: "title", Value: "Absent"},
			bibtex.Field{Name: "year", Value: "2022"},
			bibtex.Field{Name: "file", Value: ":absent.pdf:PDF;notes.txt"}),
	}
	resolve := func(path string) (string, error) {
		if path == "present.pdf" {
			return "/papers/" + path, nil
		}
		return "", errors.New("PDF not found")
	}

	issues := lintEntries(entries, resolve)
	if len(issues) != 1 {
		t.Fatalf("lintEntries() = %+v, want 1 issue", issues)
	}
	if got := issues[0]; got.Type != "missing_pdf" || got.Key != "absent" || got.Expected != "absent.pdf" {
		t.Errorf("issue = %+v, want missing_pdf for absent.pdf", got)
	}
}

func TestLintEntries_Clean(t *testing.T) {
	entries := []bibtex.Entry{
		bibtex.NewEntry("book", "clean",
			bibtex.Field{Name: "title", Value: "Clean"},
			bibtex.Field{Name: "year", Value: "2018"},
			bibtex.Field{Name: "file", Value: "clean.pdf"}),
	}
	// Attachments are not checked without a resolver.
	if issues := lintEntries(entries, nil); len(issues) != 0 {
		t.Errorf("lintEntries() = %+v, want none", issues)
	}
}
