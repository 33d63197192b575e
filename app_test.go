package main

import (
	"os"
	"strings"
	"testing"
)

// TestE2EGardenExample exercises the full pipeline: script → engine →
// scene → pipeline → meshes. This is the same path that the Wails Evaluate
// binding takes, but without the Wails runtime.
func TestE2EGardenExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/garden.landform")
	if err != nil {
		t.Fatalf("failed to read garden.landform: %v", err)
	}

	result := app.Evaluate(string(source))

	// No errors expected.
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	if result.Terrain == nil || len(result.Terrain.Indices) == 0 {
		t.Fatal("expected a terrain mesh")
	}
	if len(result.Meshes) == 0 {
		t.Fatal("expected feature meshes")
	}

	colors := map[string]string{"hedge": "#2f5d2a", "boundary": "#a0522d"}
	seen := map[string]int{}
	for _, m := range result.Meshes {
		want, ok := colors[m.Feature]
		if !ok {
			t.Errorf("unexpected feature: %q", m.Feature)
			continue
		}
		seen[m.Feature]++
		if m.Color != want {
			t.Errorf("%s: color %q, want material color %q", m.PartName, m.Color, want)
		}
		if !strings.HasPrefix(m.PartName, m.Feature+" ") {
			t.Errorf("part name %q does not name feature %q", m.PartName, m.Feature)
		}

		// Each mesh must have non-empty geometry.
		if len(m.Vertices) == 0 || len(m.Normals) != len(m.Vertices) || len(m.Indices)%3 != 0 {
			t.Errorf("part %q: malformed geometry (%d vertices, %d normals, %d indices)",
				m.PartName, len(m.Vertices), len(m.Normals), len(m.Indices))
		}
	}
	if seen["hedge"] != 7 {
		t.Errorf("hedge produced %d meshes, want 7", seen["hedge"])
	}
	// A dropped fence strip must be reported on its declaring line.
	if seen["boundary"] != 1 && !hasWarningOnLine(result.Warnings, 16) {
		t.Errorf("boundary produced %d meshes and no warning", seen["boundary"])
	}

	if len(result.Strokes) != 1 {
		t.Fatalf("expected 1 stroke, got %d", len(result.Strokes))
	}
	st := result.Strokes[0]
	if st.Brush != "bed" || st.Color != "#9e9e9e" {
		t.Errorf("stroke brush %q color %q", st.Brush, st.Color)
	}
	if len(st.Points) == 0 || len(st.Points)%3 != 0 {
		t.Errorf("stroke has %d coordinates", len(st.Points))
	}
	if len(st.Zone) == 0 {
		t.Error("stroke has no zone outline")
	}
}

// TestE2EMeadowExample checks the second example evaluates cleanly.
func TestE2EMeadowExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/meadow.landform")
	if err != nil {
		t.Fatalf("failed to read meadow.landform: %v", err)
	}
	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) == 0 {
		t.Error("expected shrub meshes")
	}
	for _, m := range result.Meshes {
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
	if len(result.Strokes) != 1 || len(result.Strokes[0].Points) == 0 {
		t.Errorf("expected one non-empty wildflower stroke, got %+v", result.Strokes)
	}
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for empty source: %v", result.Errors)
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if result.Terrain == nil {
		t.Error("expected the default terrain for empty source")
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("(vegetation \"test\"")

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on error, got %d", len(result.Meshes))
	}
}

// TestE2ESingleShrubRow ensures a minimal point-mode row renders one mesh
// per sample.
func TestE2ESingleShrubRow(t *testing.T) {
	app := NewApp()
	source := `(vegetation "row" (path :points (list (vec3 0.37 7.3 0) (vec3 90.37 7.3 0))) :thickness 10 :gap 5 :height 2)`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error: %s", e.Message)
		}
		t.FailNow()
	}
	if len(result.Meshes) != 7 {
		t.Fatalf("expected 7 meshes, got %d", len(result.Meshes))
	}
	if result.Meshes[0].PartName != "row {0}[0]" {
		t.Errorf("expected part name 'row {0}[0]', got %q", result.Meshes[0].PartName)
	}
	if result.Meshes[0].Color != colorPalette[0] {
		t.Errorf("expected palette color %q, got %q", colorPalette[0], result.Meshes[0].Color)
	}
}

func hasWarningOnLine(ws []EvalErrorData, line int) bool {
	for _, w := range ws {
		if w.Line == line {
			return true
		}
	}
	return false
}
