package viz

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/goccy/go-json"

	"github.com/mdasilveira/folio/internal/graph"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
	template.Must(compiledTemplate.New("empty").Parse(emptyTemplate))
}

// pageConfig is handed to the page script as initKnowledgeGraph's argument.
type pageConfig struct {
	Element     string            `json:"element"`
	DataElement string            `json:"dataElement"`
	Source      string            `json:"source,omitempty"`
	Legend      bool              `json:"legend"`
	Lazy        bool              `json:"lazy"`
	Palette     map[string]string `json:"palette"`
	Groups      []string          `json:"groups"`
}

// templateData holds data for the HTML template.
type templateData struct {
	Title     string
	ElementID string
	DataID    string
	Width     int
	Height    int
	D3URL     string
	GraphJSON template.JS
	Config    template.JS
}

// GenerateHTML generates a self-contained page drawing g with D3. The graph
// is embedded in the page, where a later load can recover it. An empty graph
// renders the "No graph data" placeholder.
func GenerateHTML(g *graph.Graph, opts HTMLOptions) (string, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return "", err
	}

	graphJSON, err := g.Encode()
	if err != nil {
		return "", err
	}

	groups := g.Groups()
	if groups == nil {
		groups = []string{}
	}
	cfg, err := json.Marshal(pageConfig{
		Element:     opts.ElementID,
		DataElement: DataElementID(opts.ElementID),
		Source:      opts.Source,
		Legend:      opts.Legend,
		Lazy:        opts.Lazy,
		Palette:     Palette(groups),
		Groups:      groups,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling page config: %w", err)
	}

	data := templateData{
		Title:     opts.Title,
		ElementID: opts.ElementID,
		DataID:    DataElementID(opts.ElementID),
		Width:     opts.Width,
		Height:    opts.Height,
		D3URL:     opts.D3URL,
		GraphJSON: template.JS(graphJSON),
		Config:    template.JS(cfg),
	}

	name := "viz"
	if g.IsEmpty() && opts.Source == "" {
		name = "empty"
	}

	var buf bytes.Buffer
	if err := compiledTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// emptyTemplate keeps the element and data ids so the page still serves as
// an inline source, one that yields nothing.
const emptyTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    svg { display: block; width: 100%; height: 100vh; }
    .empty-state { fill: #666; font-size: 18px; }
  </style>
</head>
<body>
  <svg id="{{.ElementID}}" viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="{{.Title}}">
    <text class="empty-state" x="50%" y="50%" text-anchor="middle">No graph data</text>
  </svg>
  <script type="application/json" id="{{.DataID}}">{{.GraphJSON}}</script>
</body>
</html>`

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <script src="{{.D3URL}}"></script>
  <style>
    * {
      box-sizing: border-box;
    }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      padding: 0;
      background: #0f1420;
    }
    #{{.ElementID}} {
      display: block;
      width: 100%;
      height: 100vh;
    }
    .kg-link {
      stroke: #8896ab;
      stroke-opacity: 0.5;
      stroke-width: 1.2;
      transition: stroke-opacity 0.15s, stroke-width 0.15s;
    }
    .kg-node {
      cursor: grab;
      stroke: #fff;
      stroke-width: 1;
      transition: opacity 0.15s;
    }
    .kg-node:focus {
      outline: none;
      stroke-width: 3;
    }
    .kg-label {
      fill: #e6ebf5;
      font-size: 11px;
      pointer-events: none;
      transition: opacity 0.15s;
    }
    .kg-dim {
      opacity: 0.15;
    }
    .kg-link.kg-active {
      stroke-opacity: 1;
      stroke-width: 2.5;
    }
    .kg-link.kg-dim {
      stroke-opacity: 0.05;
    }
    .kg-legend text {
      fill: #e6ebf5;
      font-size: 12px;
      cursor: pointer;
    }
    .kg-legend .kg-off {
      opacity: 0.35;
    }
    .kg-empty {
      fill: #8896ab;
      font-size: 18px;
    }
  </style>
</head>
<body>
  <svg id="{{.ElementID}}" viewBox="0 0 {{.Width}} {{.Height}}" role="img" aria-label="{{.Title}}"></svg>
  <script type="application/json" id="{{.DataID}}">{{.GraphJSON}}</script>
  <script>
    (function() {
      function initKnowledgeGraph(cfg) {
        var svgEl = document.getElementById(cfg.element);
        if (!svgEl || typeof d3 === 'undefined') return;

        var vb = (svgEl.getAttribute('viewBox') || '0 0 960 600').split(/[\s,]+/).map(Number);
        var width = vb[2], height = vb[3];
        var svg = d3.select(svgEl);

        function embedded() {
          var el = document.getElementById(cfg.dataElement);
          if (!el) return null;
          try {
            return JSON.parse(el.textContent);
          } catch (e) {
            return null;
          }
        }

        function load() {
          if (!cfg.source) return Promise.resolve(embedded());
          return fetch(cfg.source)
            .then(function(r) {
              if (!r.ok) throw new Error('HTTP ' + r.status);
              return r.json();
            })
            .catch(function() { return embedded(); });
        }

        function placeholder() {
          svg.selectAll('*').remove();
          svg.append('text')
            .attr('class', 'kg-empty')
            .attr('x', width / 2)
            .attr('y', height / 2)
            .attr('text-anchor', 'middle')
            .text('No graph data');
        }

        function color(group) {
          return cfg.palette[group] || '#7F8C8D';
        }

        function render(data) {
          if (!data || !data.nodes || data.nodes.length === 0) {
            placeholder();
            return;
          }
          svg.selectAll('*').remove();

          var ids = new Set(data.nodes.map(function(n) { return n.id; }));
          var nodes = data.nodes.map(function(n) { return Object.assign({}, n); });
          var links = (data.links || [])
            .filter(function(l) { return ids.has(l.source) && ids.has(l.target); })
            .map(function(l) { return Object.assign({}, l); });

          var glow = svg.append('defs').append('filter').attr('id', cfg.element + '-glow');
          glow.append('feGaussianBlur').attr('stdDeviation', 3).attr('result', 'blur');
          var merge = glow.append('feMerge');
          merge.append('feMergeNode').attr('in', 'blur');
          merge.append('feMergeNode').attr('in', 'SourceGraphic');

          var link = svg.append('g').selectAll('line')
            .data(links).join('line')
            .attr('class', 'kg-link');

          var node = svg.append('g').selectAll('circle')
            .data(nodes).join('circle')
            .attr('class', 'kg-node')
            .attr('r', function(d) { return d.size || 5; })
            .attr('fill', function(d) { return color(d.group); })
            .attr('filter', 'url(#' + cfg.element + '-glow)')
            .attr('tabindex', 0)
            .attr('role', 'button')
            .attr('aria-label', function(d) { return d.id; });

          var label = svg.append('g').selectAll('text')
            .data(nodes).join('text')
            .attr('class', 'kg-label')
            .attr('text-anchor', 'middle')
            .text(function(d) { return d.id; });

          var sim = d3.forceSimulation(nodes)
            .force('link', d3.forceLink(links).id(function(d) { return d.id; }).distance(80))
            .force('charge', d3.forceManyBody().strength(-220))
            .force('center', d3.forceCenter(width / 2, height / 2))
            .force('collide', d3.forceCollide().radius(function(d) { return (d.size || 5) + 4; }));

          sim.on('tick', function() {
            link
              .attr('x1', function(d) { return d.source.x; })
              .attr('y1', function(d) { return d.source.y; })
              .attr('x2', function(d) { return d.target.x; })
              .attr('y2', function(d) { return d.target.y; });
            node
              .attr('cx', function(d) { return d.x; })
              .attr('cy', function(d) { return d.y; });
            label
              .attr('x', function(d) { return d.x; })
              .attr('y', function(d) { return d.y + (d.size || 5) + 12; });
          });

          function highlight(d) {
            var near = new Set([d.id]);
            links.forEach(function(l) {
              if (l.source.id === d.id) near.add(l.target.id);
              if (l.target.id === d.id) near.add(l.source.id);
            });
            node.classed('kg-dim', function(n) { return !near.has(n.id); });
            label.classed('kg-dim', function(n) { return !near.has(n.id); });
            link
              .classed('kg-active', function(l) { return l.source.id === d.id || l.target.id === d.id; })
              .classed('kg-dim', function(l) { return l.source.id !== d.id && l.target.id !== d.id; });
          }

          function reset() {
            node.classed('kg-dim', false);
            label.classed('kg-dim', false);
            link.classed('kg-active', false).classed('kg-dim', false);
          }

          node
            .on('mouseenter', function(evt, d) { highlight(d); })
            .on('mouseleave', reset)
            .on('focus', function(evt, d) { highlight(d); })
            .on('blur', reset);

          node.call(d3.drag()
            .on('start', function(evt, d) {
              if (!evt.active) sim.alphaTarget(0.3).restart();
              d.fx = d.x;
              d.fy = d.y;
            })
            .on('drag', function(evt, d) {
              d.fx = evt.x;
              d.fy = evt.y;
            })
            .on('end', function(evt, d) {
              if (!evt.active) sim.alphaTarget(0);
              d.fx = null;
              d.fy = null;
            }));

          if (cfg.legend) {
            var hidden = new Set();
            var groups = cfg.groups.length ? cfg.groups : Array.from(new Set(nodes.map(function(n) { return n.group; })));
            var legend = svg.append('g').attr('class', 'kg-legend').attr('transform', 'translate(16,20)');
            var item = legend.selectAll('g').data(groups).join('g')
              .attr('transform', function(d, i) { return 'translate(0,' + i * 20 + ')'; })
              .on('click', function(evt, g) {
                if (hidden.has(g)) hidden.delete(g); else hidden.add(g);
                d3.select(this).classed('kg-off', hidden.has(g));
                node.style('display', function(n) { return hidden.has(n.group) ? 'none' : null; });
                label.style('display', function(n) { return hidden.has(n.group) ? 'none' : null; });
                link.style('display', function(l) {
                  return hidden.has(l.source.group) || hidden.has(l.target.group) ? 'none' : null;
                });
              });
            item.append('circle').attr('r', 6).attr('cx', 6).attr('cy', -4).attr('fill', color);
            item.append('text').attr('x', 18).text(function(d) { return d || 'other'; });
          }
        }

        function start() {
          load().then(render, placeholder);
        }

        if (cfg.lazy && 'IntersectionObserver' in window) {
          var observer = new IntersectionObserver(function(entries) {
            if (entries.some(function(e) { return e.isIntersecting; })) {
              observer.disconnect();
              start();
            }
          });
          observer.observe(svgEl);
        } else {
          start();
        }
      }

      window.initKnowledgeGraph = initKnowledgeGraph;
      initKnowledgeGraph({{.Config}});
    })();
  </script>
</body>
</html>`
