package testutil

import (
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/tremorview/pkg/model"
)

// Tolerance is the default float comparison slack.
const Tolerance = 1e-9

// AssertNear fails when got and want differ by more than tol.
func AssertNear(t testing.TB, what string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (±%g)", what, got, want, tol)
	}
}

// AssertKeys compares two ordered key lists.
func AssertKeys(t testing.TB, got, want []string) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
}

// AssertSummary checks a summary's key, mean, max and count.
func AssertSummary(t testing.TB, s model.GroupSummary, cond string, mean, max float64, count int) {
	t.Helper()
	if s.Condition != cond {
		t.Errorf("condition = %q, want %q", s.Condition, cond)
	}
	AssertNear(t, cond+" mean", s.MeanSeverity, mean, Tolerance)
	AssertNear(t, cond+" max", s.MaxSeverity, max, Tolerance)
	if s.Count != count {
		t.Errorf("%s count = %d, want %d", cond, s.Count, count)
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
// Useful for comparing structs that may have different Go representations
// but equivalent JSON forms.
func AssertJSONEqual(t testing.TB, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}
	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}
	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      testing.TB
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t testing.TB, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
// If GENERATE_GOLDEN is set, updates the golden file instead.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0o755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0o644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}
	if string(expected) == actual {
		return
	}

	expectedLines := strings.Split(string(expected), "\n")
	actualLines := strings.Split(actual, "\n")
	for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
		var expLine, actLine string
		if i < len(expectedLines) {
			expLine = expectedLines[i]
		}
		if i < len(actualLines) {
			actLine = actualLines[i]
		}
		if expLine != actLine {
			g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
			return
		}
	}
	g.t.Errorf("golden file mismatch (length differs)")
}
