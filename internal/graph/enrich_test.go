package graph

import (
	"testing"

	"pgregory.net/rapid"
)

func TestEnrich(t *testing.T) {
	nodes := []Node{
		{ID: "AI", Group: "g", Size: 10},
		{ID: "Ontology", Group: "g", Size: 30},
		{ID: "Semantics", Group: "g", Size: 8},
		{ID: "Huge", Group: "g", Size: 55},
	}
	freq := map[string]int{"AI": 3, "ontology": 9}

	got := Enrich(nodes, freq, DefaultEnrichOptions())

	tests := []struct {
		id       string
		wantSize float64
		wantFreq int
	}{
		{"AI", 16, 3},
		{"Ontology", 40, 9},
		{"Semantics", 8, 0},
		{"Huge", 40, 0},
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got[i].Size != tt.wantSize || got[i].Frequency != tt.wantFreq {
				t.Errorf("%s: size %v freq %d, want size %v freq %d",
					tt.id, got[i].Size, got[i].Frequency, tt.wantSize, tt.wantFreq)
			}
		})
	}

	if nodes[0].Size != 10 {
		t.Errorf("Enrich modified its input")
	}
}

func TestEnrich_NoFrequencies(t *testing.T) {
	nodes := []Node{{ID: "AI", Size: 10}}
	got := Enrich(nodes, nil, DefaultEnrichOptions())
	if got[0].Size != 10 || got[0].Frequency != 0 {
		t.Errorf("Enrich with no frequencies = %+v", got[0])
	}
}

func TestEnrich_NeverExceedsCap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.Float64Range(0, 100).Draw(t, "size")
		f := rapid.IntRange(0, 1000).Draw(t, "freq")
		max := rapid.Float64Range(1, 80).Draw(t, "max")

		got := Enrich([]Node{{ID: "k", Size: size}}, map[string]int{"k": f}, EnrichOptions{Multiplier: 2, MaxSize: max})

		if got[0].Size > max {
			t.Fatalf("size %v exceeds cap %v", got[0].Size, max)
		}
		if f > 0 && size+float64(f)*2 <= max && got[0].Size != size+float64(f)*2 {
			t.Fatalf("size %v, want %v", got[0].Size, size+float64(f)*2)
		}
	})
}
