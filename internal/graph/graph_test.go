package graph

import (
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	data := `{
	  "nodes": [
	    {"id": "AI", "group": "methods", "size": 10},
	    {"id": "Ontology", "group": 2, "size": 12},
	    {"id": "", "group": "x", "size": 1},
	    {"id": "AI", "group": "dup", "size": 99}
	  ],
	  "links": [{"source": "AI", "target": "Ontology"}]
	}`

	g, err := Decode([]byte(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(g.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(g.Nodes))
	}
	if g.Nodes[0].Group != "methods" || g.Nodes[0].Size != 10 {
		t.Errorf("first node = %+v, want the first AI entry", g.Nodes[0])
	}
	if g.Nodes[1].Group != "2" {
		t.Errorf("numeric group = %q, want %q", g.Nodes[1].Group, "2")
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{"nodes": [`},
		{"no nodes", `{"nodes": [], "links": []}`},
		{"only blank ids", `{"nodes": [{"id": ""}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); err == nil {
				t.Errorf("Decode(%s) error = nil, want error", tt.data)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	g := &Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Links: []Link{{"a", "b"}, {"a", "ghost"}, {"nobody", "b"}},
	}
	dropped := g.Resolve()
	if len(g.Links) != 1 || g.Links[0] != (Link{"a", "b"}) {
		t.Errorf("Links = %+v, want only a-b", g.Links)
	}
	if len(dropped) != 2 {
		t.Errorf("dropped %d links, want 2", len(dropped))
	}
}

func TestGroups(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "a", Group: "y"}, {ID: "b", Group: "x"}, {ID: "c", Group: "y"}}}
	got := strings.Join(g.Groups(), ",")
	if got != "y,x" {
		t.Errorf("Groups() = %q, want %q", got, "y,x")
	}
}

func TestEncode_EmptyGraph(t *testing.T) {
	data, err := (&Graph{}).Encode()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"nodes":[],"links":[]}` {
		t.Errorf("Encode() = %s", data)
	}
}
