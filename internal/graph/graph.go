// Package graph loads the knowledge-graph topology and sizes its nodes from
// the publication keyword index.
package graph

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// ErrNoNodes is returned when a topology document has no usable nodes.
var ErrNoNodes = errors.New("topology has no nodes")

// Node is one keyword or topic in the graph.
type Node struct {
	ID        string  `json:"id"`
	Group     string  `json:"group"`
	Size      float64 `json:"size"`
	Frequency int     `json:"frequency,omitempty"` // publications listing this keyword
}

// UnmarshalJSON accepts numeric groups, as produced by common D3 datasets.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Group     json.RawMessage `json:"group"`
		Size      float64         `json:"size"`
		Frequency int             `json:"frequency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n.ID, n.Size, n.Frequency = raw.ID, raw.Size, raw.Frequency
	n.Group = ""
	g := bytes.TrimSpace(raw.Group)
	switch {
	case len(g) == 0 || string(g) == "null":
	case g[0] == '"':
		if err := json.Unmarshal(g, &n.Group); err != nil {
			return fmt.Errorf("node %q group: %w", raw.ID, err)
		}
	default:
		f, err := strconv.ParseFloat(string(g), 64)
		if err != nil {
			return fmt.Errorf("node %q group: %w", raw.ID, err)
		}
		n.Group = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return nil
}

// Link connects two nodes by id.
type Link struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the topology document.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Groups returns the distinct node groups in order of first appearance.
func (g *Graph) Groups() []string {
	if g == nil {
		return nil
	}
	seen := make(map[string]bool)
	var groups []string
	for _, n := range g.Nodes {
		if !seen[n.Group] {
			seen[n.Group] = true
			groups = append(groups, n.Group)
		}
	}
	return groups
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Decode parses a topology document. Nodes without an id and repeated ids
// are dropped; the returned links are unresolved.
func Decode(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing topology: %w", err)
	}
	seen := make(map[string]bool, len(g.Nodes))
	nodes := g.Nodes[:0]
	for _, n := range g.Nodes {
		if n.ID == "" || seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		nodes = append(nodes, n)
	}
	g.Nodes = nodes
	if len(g.Nodes) == 0 {
		return nil, ErrNoNodes
	}
	return &g, nil
}

// Resolve drops links whose endpoints are not nodes of g and returns them.
func (g *Graph) Resolve() []Link {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	var kept, dropped []Link
	for _, l := range g.Links {
		if ids[l.Source] && ids[l.Target] {
			kept = append(kept, l)
		} else {
			dropped = append(dropped, l)
		}
	}
	g.Links = kept
	return dropped
}

// Encode serializes the graph with empty slices rather than nulls.
func (g *Graph) Encode() ([]byte, error) {
	out := Graph{Nodes: []Node{}, Links: []Link{}}
	if g != nil {
		if g.Nodes != nil {
			out.Nodes = g.Nodes
		}
		if g.Links != nil {
			out.Links = g.Links
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshaling graph: %w", err)
	}
	return data, nil
}
