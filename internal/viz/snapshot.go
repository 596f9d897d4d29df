package viz

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/mdasilveira/folio/internal/graph"
)

// SnapshotOptions controls static SVG export.
type SnapshotOptions struct {
	Width   int
	Height  int
	Updates int  // force-layout iterations
	Legend  bool // draw the group legend
}

// DefaultSnapshotOptions returns the standard snapshot settings.
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{Width: DefaultWidth, Height: DefaultHeight, Updates: 200, Legend: true}
}

const snapshotMargin = 48

// Layout is the computed position of each node, keyed by node id.
type Layout map[string]r2.Vec

// ComputeLayout positions g's nodes with a force-directed (Eades) layout and
// scales the result to fit the canvas, leaving a margin.
func ComputeLayout(g *graph.Graph, width, height, updates int) Layout {
	pos := make(Layout, len(g.Nodes))
	if g.IsEmpty() {
		return pos
	}

	ug, _ := undirected(g)

	eades := layout.EadesR2{Updates: updates, Repulsion: 1, Rate: 0.05, Theta: 0.2}
	opt := layout.NewOptimizerR2(ug, eades.Update)
	for opt.Update() {
	}

	raw := make([]r2.Vec, len(g.Nodes))
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range g.Nodes {
		v := opt.Coord2(int64(i))
		raw[i] = v
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}

	innerW := float64(width - 2*snapshotMargin)
	innerH := float64(height - 2*snapshotMargin)
	spanX, spanY := maxX-minX, maxY-minY
	for i, n := range g.Nodes {
		p := r2.Vec{X: float64(width) / 2, Y: float64(height) / 2}
		if spanX > 0 && !math.IsNaN(raw[i].X) {
			p.X = snapshotMargin + (raw[i].X-minX)/spanX*innerW
		}
		if spanY > 0 && !math.IsNaN(raw[i].Y) {
			p.Y = snapshotMargin + (raw[i].Y-minY)/spanY*innerH
		}
		pos[n.ID] = p
	}
	return pos
}

// undirected builds the gonum view of g. Node i of g has gonum id i.
func undirected(g *graph.Graph) (*simple.UndirectedGraph, map[string]int64) {
	ug := simple.NewUndirectedGraph()
	index := make(map[string]int64, len(g.Nodes))
	for i, n := range g.Nodes {
		index[n.ID] = int64(i)
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, l := range g.Links {
		from, okF := index[l.Source]
		to, okT := index[l.Target]
		if !okF || !okT || from == to || ug.HasEdgeBetween(from, to) {
			continue
		}
		ug.SetEdge(ug.NewEdge(ug.Node(from), ug.Node(to)))
	}
	return ug, index
}

// Clusters counts the connected components of g.
func Clusters(g *graph.Graph) int {
	if g.IsEmpty() {
		return 0
	}
	ug, _ := undirected(g)
	return len(topo.ConnectedComponents(ug))
}

// WriteSnapshot draws g as a static SVG. An empty graph draws the
// "No graph data" placeholder.
func WriteSnapshot(w io.Writer, g *graph.Graph, opts SnapshotOptions) error {
	def := DefaultSnapshotOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.Updates <= 0 {
		opts.Updates = def.Updates
	}
	if opts.Width <= 2*snapshotMargin || opts.Height <= 2*snapshotMargin {
		return fmt.Errorf("snapshot canvas %dx%d is too small", opts.Width, opts.Height)
	}

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:#0f1420")

	if g.IsEmpty() {
		canvas.Text(opts.Width/2, opts.Height/2, "No graph data", "fill:#8896ab;font-size:18px;font-family:sans-serif;text-anchor:middle")
		canvas.End()
		return nil
	}

	pos := ComputeLayout(g, opts.Width, opts.Height, opts.Updates)
	colors := Palette(g.Groups())

	canvas.Def()
	canvas.Filter("glow")
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceGraphic", Result: "blur"}, 3, 3)
	canvas.FeMerge([]string{"blur", "SourceGraphic"})
	canvas.Fend()
	canvas.DefEnd()

	canvas.Gstyle("stroke:#8896ab;stroke-opacity:0.5;stroke-width:1.2")
	for _, l := range g.Links {
		a, okA := pos[l.Source]
		b, okB := pos[l.Target]
		if !okA || !okB {
			continue
		}
		canvas.Line(round(a.X), round(a.Y), round(b.X), round(b.Y))
	}
	canvas.Gend()

	for _, n := range g.Nodes {
		p := pos[n.ID]
		r := int(math.Max(3, math.Round(n.Size)))
		canvas.Circle(round(p.X), round(p.Y), r,
			fmt.Sprintf("fill:%s;stroke:#fff;stroke-width:1;filter:url(#glow)", colors[n.Group]))
		canvas.Text(round(p.X), round(p.Y)+r+12, n.ID, "fill:#e6ebf5;font-size:11px;font-family:sans-serif;text-anchor:middle")
	}

	if opts.Legend {
		drawLegendSVG(canvas, g.Groups(), colors)
	}
	canvas.Text(opts.Width-16, opts.Height-16,
		fmt.Sprintf("%d nodes, %d links, %d clusters", len(g.Nodes), len(g.Links), Clusters(g)),
		"fill:#8896ab;font-size:11px;font-family:sans-serif;text-anchor:end")

	canvas.End()
	return nil
}

func drawLegendSVG(canvas *svg.SVG, groups []string, colors map[string]string) {
	for i, group := range groups {
		y := 24 + i*20
		canvas.Circle(22, y-4, 6, "fill:"+colors[group])
		label := group
		if label == "" {
			label = "other"
		}
		canvas.Text(34, y, label, "fill:#e6ebf5;font-size:12px;font-family:sans-serif")
	}
}

func round(f float64) int {
	return int(math.Round(f))
}
