package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

type stubSource struct {
	name  string
	data  []byte
	err   error
	calls *int
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(ctx context.Context) ([]byte, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.data, s.err
}

func TestFirst_PriorityOrder(t *testing.T) {
	var thirdCalls int
	srcs := []Source{
		stubSource{name: "a", err: errors.New("down")},
		stubSource{name: "b", data: []byte("ok")},
		stubSource{name: "c", data: []byte("later"), calls: &thirdCalls},
	}

	got, attempts := First(context.Background(), nil, srcs...)
	if !got.OK() || got.Source != "b" || string(got.Data) != "ok" {
		t.Errorf("First() = %+v, want data from b", got)
	}
	if len(attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(attempts))
	}
	if thirdCalls != 0 {
		t.Errorf("source after the first success was fetched %d times", thirdCalls)
	}
}

func TestFirst_AcceptRejects(t *testing.T) {
	srcs := []Source{
		stubSource{name: "a", data: []byte("bad")},
		stubSource{name: "b", data: []byte("good")},
	}
	accept := func(b []byte) error {
		if string(b) != "good" {
			return errors.New("not good")
		}
		return nil
	}

	got, attempts := First(context.Background(), accept, srcs...)
	if got.Source != "b" {
		t.Errorf("First() source = %q, want b", got.Source)
	}
	if attempts[0].OK() {
		t.Error("rejected attempt should be recorded as a failure")
	}
}

func TestFirst_AllFail(t *testing.T) {
	got, attempts := First(context.Background(), nil,
		stubSource{name: "a", err: errors.New("x")},
		stubSource{name: "b"},
	)
	if got.OK() {
		t.Error("First() should fail when every source fails")
	}
	if !errors.Is(got.Err, ErrEmpty) {
		t.Errorf("last error = %v, want ErrEmpty", got.Err)
	}
	if len(attempts) != 2 {
		t.Errorf("got %d attempts, want 2", len(attempts))
	}

	none, _ := First(context.Background(), nil)
	if none.OK() {
		t.Error("First() with no sources should fail")
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/refs.bib":
			w.Write([]byte("@misc{a, title={A}}"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(WithHTTPClient(srv.Client()), WithRateLimit(0))

	data, err := client.Source(srv.URL + "/refs.bib").Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "@misc{a, title={A}}" {
		t.Errorf("Fetch() = %q", data)
	}

	_, err = client.Source(srv.URL + "/missing.bib").Fetch(context.Background())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("Fetch() error = %v, want 404 StatusError", err)
	}
}

func TestFromLocation(t *testing.T) {
	client := NewHTTPClient()
	if _, ok := FromLocation("https://example.org/a.bib", client).(HTTP); !ok {
		t.Error("https location should give an HTTP source")
	}
	if _, ok := FromLocation("data/a.bib", client).(File); !ok {
		t.Error("path location should give a File source")
	}
	if got := FromLocations([]string{"a.bib", " ", ""}, client); len(got) != 1 {
		t.Errorf("FromLocations() returned %d sources, want 1", len(got))
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(`{"nodes":[]}`), 0644); err != nil {
		t.Fatal(err)
	}
	r := Fetch(context.Background(), File{Path: path})
	if !r.OK() || string(r.Data) != `{"nodes":[]}` {
		t.Errorf("Fetch(File) = %+v", r)
	}

	r = Fetch(context.Background(), File{Path: filepath.Join(t.TempDir(), "missing.json")})
	if r.OK() {
		t.Error("missing file should fail")
	}
}

func TestExtractScript(t *testing.T) {
	page := `<html><body>
<script src="d3.js"></script>
<script type="application/json" id="graph-data">
  {"nodes":[{"id":"AI"}]}
</script>
<script id='other'>x</script>
</body></html>`

	tests := []struct {
		id     string
		want   string
		wantOK bool
	}{
		{"graph-data", `{"nodes":[{"id":"AI"}]}`, true},
		{"other", "x", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := ExtractScript(page, tt.id)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractScript(%q) = %q, %v, want %q, %v", tt.id, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInlineSource(t *testing.T) {
	page := stubSource{name: "index.html", data: []byte(`<script type="application/json" id="kg">{"nodes":[]}</script>`)}

	data, err := Inline{Page: page, ElementID: "kg"}.Fetch(context.Background())
	if err != nil || string(data) != `{"nodes":[]}` {
		t.Errorf("Inline.Fetch() = %q, %v", data, err)
	}

	if _, err := (Inline{Page: page, ElementID: "absent"}).Fetch(context.Background()); err == nil {
		t.Error("Inline.Fetch() should fail for a missing element")
	}
}
