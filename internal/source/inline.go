package source

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
)

// Inline extracts the body of a <script> element with the given id from an
// HTML page. Pages embed their graph data this way so a later build can
// recover it when the primary document is unavailable.
type Inline struct {
	Page      Source
	ElementID string
}

func (s Inline) Name() string {
	return fmt.Sprintf("%s#%s", s.Page.Name(), s.ElementID)
}

func (s Inline) Fetch(ctx context.Context) ([]byte, error) {
	page, err := s.Page.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	body, ok := ExtractScript(string(page), s.ElementID)
	if !ok {
		return nil, fmt.Errorf("no inline element %q in %s", s.ElementID, s.Page.Name())
	}
	return []byte(body), nil
}

var scriptOpen = regexp.MustCompile(`(?is)<script\b([^>]*)>`)
var idAttr = regexp.MustCompile(`(?i)\bid\s*=\s*["']([^"']*)["']`)

// ExtractScript returns the trimmed text content of the first <script>
// element whose id attribute equals id.
func ExtractScript(page, id string) (string, bool) {
	for _, loc := range scriptOpen.FindAllStringSubmatchIndex(page, -1) {
		attrs := page[loc[2]:loc[3]]
		m := idAttr.FindStringSubmatch(attrs)
		if m == nil || html.UnescapeString(m[1]) != id {
			continue
		}
		rest := page[loc[1]:]
		end := strings.Index(strings.ToLower(rest), "</script")
		if end < 0 {
			return "", false
		}
		return strings.TrimSpace(rest[:end]), true
	}
	return "", false
}
