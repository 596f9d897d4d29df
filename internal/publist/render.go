package publist

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/mdasilveira/folio/internal/citation"
)

// Element ids the list script relies on.
const (
	ContainerID = "publications"
	ListID      = "pub-list"
	FilterID    = "pub-filter"
	StatusID    = "pub-status"
)

// Markers delimiting the list inside an embedding page, so a rebuild replaces
// the previous list instead of stacking another one.
const (
	embedStart = "<!-- folio:publications:start -->"
	embedEnd   = "<!-- folio:publications:end -->"
)

var (
	fragmentTmpl = template.Must(template.New("list").Parse(listTemplate))
	pageTmpl     = template.Must(template.Must(fragmentTmpl.Clone()).New("page").Parse(pageTemplate))
)

// PageOptions configures standalone page generation.
type PageOptions struct {
	Title string
}

type sectionData struct {
	Year      string
	ID        string
	Count     int
	Collapsed bool
	Hidden    bool
	Items     []template.HTML
}

type listData struct {
	Sections []sectionData
	Status   string
	Mode     string
	Query    string
	Script   template.JS
}

type pageData struct {
	List  listData
	Title string
}

var sectionUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func sectionID(year string) string {
	return "year-" + strings.Trim(sectionUnsafe.ReplaceAllString(year, "-"), "-")
}

// buildListData renders every citation in the state view holds. status is
// the load status, used while no filter is active.
func buildListData(res LoadResult, view *View) (listData, error) {
	data := listData{
		Status: res.Status,
		Mode:   res.Mode.String(),
		Query:  view.Query(),
		Script: template.JS(listScript),
	}
	if s := view.Status(); s != "" {
		data.Status = s
	}

	for gi, g := range view.Groups() {
		sec := sectionData{
			Year:      g.Year,
			ID:        sectionID(g.Year),
			Count:     g.Count(),
			Collapsed: view.Collapsed(g.Year),
		}
		visible := 0
		for ci, c := range g.Citations {
			state := citation.FragmentState{
				Expanded: view.Expanded(c.Key),
				Hidden:   !view.VisibleAt(gi, ci),
			}
			if !state.Hidden {
				visible++
			}
			item, err := c.Fragment(state)
			if err != nil {
				return listData{}, fmt.Errorf("rendering %s: %w", c.Key, err)
			}
			sec.Items = append(sec.Items, item)
		}
		sec.Hidden = visible == 0
		data.Sections = append(data.Sections, sec)
	}
	return data, nil
}

// GenerateFragment renders the list container (filter, status line, year
// sections and script) for embedding in a page.
func GenerateFragment(res LoadResult, view *View) (string, error) {
	data, err := buildListData(res, view)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := fragmentTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// GenerateHTML renders a standalone publications page.
func GenerateHTML(res LoadResult, view *View, opts PageOptions) (string, error) {
	data, err := buildListData(res, view)
	if err != nil {
		return "", err
	}
	title := opts.Title
	if title == "" {
		title = "Publications"
	}
	var buf bytes.Buffer
	if err := pageTmpl.ExecuteTemplate(&buf, "page", pageData{List: data, Title: title}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var containerTag = regexp.MustCompile(`(?is)<[a-z][a-z0-9]*\s(?:[^>]*\s)?id\s*=\s*["']` + ContainerID + `["'][^>]*>`)

// Embed places fragment inside the page's publications container. A list
// from an earlier build is replaced. Pages without the container are
// returned unchanged with ok false.
func Embed(page, fragment string) (string, bool) {
	wrapped := embedStart + "\n" + fragment + "\n" + embedEnd

	if start := strings.Index(page, embedStart); start >= 0 {
		if end := strings.Index(page[start:], embedEnd); end >= 0 {
			end += start + len(embedEnd)
			return page[:start] + wrapped + page[end:], true
		}
	}

	loc := containerTag.FindStringIndex(page)
	if loc == nil {
		return page, false
	}
	return page[:loc[1]] + "\n" + wrapped + page[loc[1]:], true
}

const listTemplate = `<div class="pub-controls">
  <input type="search" id="` + FilterID + `" placeholder="Filter by title, author, venue or year" aria-label="Filter publications" value="{{.Query}}">
  <p id="` + StatusID + `" class="pub-status" role="status" aria-live="polite" data-mode="{{.Mode}}">{{.Status}}</p>
</div>
<div id="` + ListID + `">
{{- range .Sections}}
  <section class="year-group" data-year="{{.Year}}"{{if .Hidden}} hidden{{end}}>
    <h3 class="year-header" role="button" tabindex="0" aria-expanded="{{not .Collapsed}}" aria-controls="{{.ID}}">{{.Year}} <span class="count">({{.Count}})</span></h3>
    <ul class="year-body" id="{{.ID}}"{{if .Collapsed}} hidden{{end}}>
    {{- range .Items}}
    {{.}}
    {{- end}}
    </ul>
  </section>
{{- end}}
</div>
<script>{{.Script}}</script>`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 920px; margin: 0 auto; padding: 1rem; color: #222; }
    .pub-controls input { width: 100%; padding: 0.5rem; font-size: 1rem; }
    .pub-status { color: #666; min-height: 1.2em; }
    .year-header { cursor: pointer; border-bottom: 1px solid #ddd; padding: 0.3rem 0; }
    .year-header .count { color: #888; font-weight: normal; }
    .year-body { list-style: none; padding: 0; }
    .pub { padding: 0.5rem 0; border-bottom: 1px solid #f0f0f0; }
    .pub span { margin-right: 0.4rem; }
    .badge { display: inline-block; background: #e8eef7; color: #234; padding: 0 0.4rem; border-radius: 3px; font-size: 0.8rem; }
    .pub-title { font-weight: 600; }
    .pub-authors, .pub-details { color: #444; }
    .pub-venue { font-style: italic; }
    .owner { color: #000; }
    .bib-toggle { font-size: 0.75rem; cursor: pointer; }
    .bib { background: #f6f6f6; padding: 0.75rem; overflow-x: auto; font-size: 0.8rem; }
  </style>
</head>
<body>
  <h1>{{.Title}}</h1>
  <div id="` + ContainerID + `">
{{template "list" .List}}
  </div>
</body>
</html>`

// listScript mirrors View: section toggles, BibTeX disclosure and filtering.
// It does nothing on pages without the container.
const listScript = `
(function() {
  var root = document.getElementById('` + ContainerID + `');
  var list = document.getElementById('` + ListID + `');
  var filter = document.getElementById('` + FilterID + `');
  var status = document.getElementById('` + StatusID + `');
  if (!root || !list || !filter || !status) return;

  function toggleSection(header) {
    var body = document.getElementById(header.getAttribute('aria-controls'));
    if (!body) return;
    var open = header.getAttribute('aria-expanded') === 'true';
    header.setAttribute('aria-expanded', open ? 'false' : 'true');
    body.hidden = open;
  }

  function toggleBib(button) {
    var pre = document.getElementById(button.getAttribute('aria-controls'));
    if (!pre) return;
    var open = button.getAttribute('aria-expanded') === 'true';
    button.setAttribute('aria-expanded', open ? 'false' : 'true');
    pre.hidden = open;
  }

  list.addEventListener('click', function(evt) {
    var header = evt.target.closest('.year-header');
    if (header) { toggleSection(header); return; }
    var button = evt.target.closest('.bib-toggle');
    if (button) toggleBib(button);
  });

  list.addEventListener('keydown', function(evt) {
    if (evt.key !== 'Enter' && evt.key !== ' ') return;
    var header = evt.target.closest('.year-header');
    if (!header) return;
    evt.preventDefault();
    toggleSection(header);
  });

  function applyFilter() {
    var q = filter.value.trim().toLowerCase();
    var shown = 0;
    list.querySelectorAll('.year-group').forEach(function(group) {
      var visible = 0;
      group.querySelectorAll('.pub').forEach(function(item) {
        var d = item.dataset;
        var hay = [d.title, d.authors, d.venue, d.year].join(' ').toLowerCase();
        var match = q === '' || hay.indexOf(q) !== -1;
        item.hidden = !match;
        if (match) visible++;
      });
      group.hidden = visible === 0;
      shown += visible;
    });
    if (q === '') {
      status.textContent = '';
    } else {
      status.textContent = shown === 1 ? '1 match' : shown + ' matches';
    }
  }

  filter.addEventListener('input', applyFilter);
})();
`
