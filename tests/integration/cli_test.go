// Package integration provides integration tests for folio commands.
package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	folioBinary     string
	folioBinaryOnce sync.Once
	folioBinaryErr  error
)

// getFolioBinary builds the folio binary once and returns its path.
func getFolioBinary(t *testing.T) string {
	t.Helper()
	folioBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			folioBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "folio-test-*")
		if err != nil {
			folioBinaryErr = err
			return
		}
		folioBinary = filepath.Join(tmpDir, "folio")

		cmd := exec.Command("go", "build", "-o", folioBinary, "./cmd/folio")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			folioBinaryErr = &buildError{output: string(output), err: err}
			return
		}
	})
	if folioBinaryErr != nil {
		t.Fatalf("failed to build folio: %v", folioBinaryErr)
	}
	return folioBinary
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

const siteBib = `@article{silveira2021,
  author = {Marcos Da Silveira and Ana Costa},
  title = {Ontology Evolution in Practice},
  journal = {Journal of Biomedical Semantics},
  year = {2021}
}

@inproceedings{costa2019,
  author = {Ana Costa and Marcos Da Silveira},
  title = {Semantic Annotation Drift},
  booktitle = {Proceedings of KEOD},
  year = {2019}
}
`

const siteKeywords = `{"publications": [
  {"title": "Ontology Evolution in Practice", "keywords": ["Ontology"]},
  {"title": "Semantic Annotation Drift", "keywords": ["Ontology", "AI"]}
]}`

const siteTopology = `{
  "nodes": [{"id": "AI", "group": "methods", "size": 10}, {"id": "Ontology", "group": "knowledge", "size": 12}],
  "links": [{"source": "AI", "target": "Ontology"}]
}`

// setupTestSite writes the input files and runs folio init.
func setupTestSite(t *testing.T) string {
	t.Helper()
	siteDir := t.TempDir()
	for name, content := range map[string]string{
		"publications.bib":    siteBib,
		"keywords.json":       siteKeywords,
		"graph-topology.json": siteTopology,
	} {
		if err := os.WriteFile(filepath.Join(siteDir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if output, err := runFolio(t, siteDir, "init"); err != nil {
		t.Fatalf("init failed: %v\nOutput: %s", err, output)
	}
	return siteDir
}

// runFolio executes folio with args in siteDir, isolated from the user's
// global config.
func runFolio(t *testing.T, siteDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getFolioBinary(t), args...)
	cmd.Dir = siteDir
	cmd.Env = append(os.Environ(),
		"XDG_CONFIG_HOME="+filepath.Join(siteDir, "config"),
		"FOLIO_SITE=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func TestInitTwice(t *testing.T) {
	siteDir := setupTestSite(t)

	if _, err := os.Stat(filepath.Join(siteDir, "folio.yml")); err != nil {
		t.Fatalf("folio.yml not created: %v", err)
	}
	if _, err := runFolio(t, siteDir, "init"); err == nil {
		t.Error("second init should fail")
	}
}

func TestBuild(t *testing.T) {
	siteDir := setupTestSite(t)

	output, err := runFolio(t, siteDir, "build")
	if err != nil {
		t.Fatalf("build failed: %v\nOutput: %s", err, output)
	}

	var report struct {
		Publications int      `json:"publications"`
		Mode         string   `json:"mode"`
		Nodes        int      `json:"nodes"`
		Written      []string `json:"written"`
	}
	if err := json.Unmarshal([]byte(output), &report); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if report.Publications != 2 || report.Mode != "full" || report.Nodes != 2 {
		t.Errorf("report = %+v, want 2 full publications and 2 nodes", report)
	}

	page, err := os.ReadFile(filepath.Join(siteDir, "public", "publications.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "Semantic Annotation Drift") {
		t.Error("publications.html missing a title")
	}
}

func TestPubsQuery(t *testing.T) {
	siteDir := setupTestSite(t)

	output, err := runFolio(t, siteDir, "pubs", "--query", "drift")
	if err != nil {
		t.Fatalf("pubs failed: %v\nOutput: %s", err, output)
	}

	var result struct {
		FilterStatus string `json:"filter_status"`
		Shown        int    `json:"shown"`
		Groups       []struct {
			Year string `json:"year"`
		} `json:"groups"`
	}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if result.Shown != 1 || result.FilterStatus != "1 match" {
		t.Errorf("shown %d with status %q, want 1 and \"1 match\"", result.Shown, result.FilterStatus)
	}
	if len(result.Groups) != 1 || result.Groups[0].Year != "2019" {
		t.Errorf("groups = %+v, want only 2019", result.Groups)
	}
}

func TestSearchAfterBuild(t *testing.T) {
	siteDir := setupTestSite(t)
	if output, err := runFolio(t, siteDir, "build"); err != nil {
		t.Fatalf("build failed: %v\nOutput: %s", err, output)
	}

	output, err := runFolio(t, siteDir, "search", "ontology")
	if err != nil {
		t.Fatalf("search failed: %v\nOutput: %s", err, output)
	}
	var results []struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal([]byte(output), &results); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if len(results) != 1 || results[0].Key != "silveira2021" {
		t.Errorf("results = %+v, want silveira2021", results)
	}
}

func TestConfigSetGet(t *testing.T) {
	siteDir := setupTestSite(t)

	if output, err := runFolio(t, siteDir, "config", "expand_years", "2"); err != nil {
		t.Fatalf("config set failed: %v\nOutput: %s", err, output)
	}
	output, err := runFolio(t, siteDir, "config", "expand-years")
	if err != nil {
		t.Fatalf("config get failed: %v\nOutput: %s", err, output)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("failed to parse JSON output: %v\nOutput: %s", err, output)
	}
	if got["expand-years"] != "2" {
		t.Errorf("expand-years = %q, want 2", got["expand-years"])
	}

	if _, err := runFolio(t, siteDir, "config", "--", "expand-years", "-1"); exitCode(err) != 2 {
		t.Errorf("negative expand-years: exit code %d, want 2", exitCode(err))
	}
	if _, err := runFolio(t, siteDir, "config", "nexus-path", "x"); exitCode(err) != 1 {
		t.Errorf("unknown key: exit code %d, want 1", exitCode(err))
	}
}

func TestCheck(t *testing.T) {
	siteDir := setupTestSite(t)

	if output, err := runFolio(t, siteDir, "check"); err != nil {
		t.Fatalf("check on a clean bibliography failed: %v\nOutput: %s", err, output)
	}

	dup := siteBib + "\n@misc{costa2019, title = {Again}, year = {2020}}\n"
	if err := os.WriteFile(filepath.Join(siteDir, "publications.bib"), []byte(dup), 0644); err != nil {
		t.Fatal(err)
	}
	output, err := runFolio(t, siteDir, "check")
	if exitCode(err) != 3 {
		t.Fatalf("check with a duplicate key: exit code %d, want 3\nOutput: %s", exitCode(err), output)
	}
	if !strings.Contains(output, `"duplicate_key"`) {
		t.Errorf("output missing duplicate_key issue: %s", output)
	}
}
