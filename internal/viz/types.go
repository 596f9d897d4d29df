// Package viz renders the knowledge graph as an interactive D3 page and as a
// static SVG snapshot.
package viz

import "fmt"

// Defaults for the rendered canvas.
const (
	DefaultElementID = "knowledge-graph"
	DefaultWidth     = 960
	DefaultHeight    = 600
	DefaultD3URL     = "https://cdn.jsdelivr.net/npm/d3@7"
)

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	ElementID string // id of the <svg> element the graph is drawn into
	Source    string // URL of the graph JSON; empty uses the embedded copy only
	Legend    bool   // draw the group legend
	Lazy      bool   // defer loading until the element scrolls into view
	Width     int    // viewBox width
	Height    int    // viewBox height
	Title     string
	D3URL     string
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{
		ElementID: DefaultElementID,
		Legend:    true,
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Title:     "Knowledge Graph",
		D3URL:     DefaultD3URL,
	}
}

// DataElementID is the id of the <script> block holding the embedded graph
// for a graph element id.
func DataElementID(elementID string) string {
	return elementID + "-data"
}

// withDefaults fills unset fields from DefaultOptions.
func (o HTMLOptions) withDefaults() HTMLOptions {
	def := DefaultOptions()
	if o.ElementID == "" {
		o.ElementID = def.ElementID
	}
	if o.Width == 0 {
		o.Width = def.Width
	}
	if o.Height == 0 {
		o.Height = def.Height
	}
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.D3URL == "" {
		o.D3URL = def.D3URL
	}
	return o
}

func (o HTMLOptions) validate() error {
	if o.Width < 0 || o.Height < 0 {
		return fmt.Errorf("invalid canvas %dx%d: dimensions must be positive", o.Width, o.Height)
	}
	return nil
}
