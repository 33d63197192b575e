package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/pipeline"
	"github.com/chazu/landform/pkg/sampler"
	"github.com/chazu/landform/pkg/scene"
	"github.com/chazu/landform/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// result runs a small scene: a row of four shrubs and one brush.
func result(t *testing.T) pipeline.Result {
	t.Helper()
	s := scene.New()
	s.AddMaterial(scene.Material{Name: "boxwood", Color: "#2f5d2a"})
	s.AddFeature(&scene.Feature{
		Kind:     scene.KindVegetation,
		Name:     "front hedge",
		Paths:    []scene.Path{{Group: "{0}", Points: curve.Polyline{{}, {X: 30}}}},
		Params:   sampler.Params{Thickness: 4, Gap: 6, Height: 3, Depth: 1},
		Mode:     sampler.ModePoint,
		Material: "boxwood",
	})
	s.AddBrush(&scene.Brush{
		Name:   "gravel",
		Center: v3.Vec{X: 15, Y: 20},
		Params: brush.Params{Radius: 5, Diameter: 2, Sparsity: 1},
	})
	m, err := terrain.Flat(200, 0)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	tr, err := terrain.New(m)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	res, err := pipeline.Run(context.Background(), s, tr, pipeline.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OutputCount() != 4 || len(res.Strokes) != 1 || len(res.Strokes[0].Stroke.Points) == 0 {
		t.Fatalf("unexpected result: %d outputs, %d strokes", res.OutputCount(), len(res.Strokes))
	}
	return res
}

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hedge", "hedge"},
		{"front hedge", "front_hedge"},
		{"  a/b:c ", "a_b_c"},
		{"", "unnamed"},
		{"row-2_b", "row-2_b"},
	}
	for _, tt := range tests {
		if got := FileName(tt.in); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteSTL(t *testing.T) {
	res := result(t)
	path := filepath.Join(t.TempDir(), "hedge.stl")
	vols := res.Features[0].Volumes()
	if err := WriteSTL(path, vols...); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	tris := 0
	for _, v := range vols {
		tris += v.TriangleCount()
	}
	// Binary STL: 80-byte header, uint32 count, 50 bytes per triangle.
	if want := 84 + 50*tris; len(data) != want {
		t.Errorf("STL size = %d bytes, want %d", len(data), want)
	}

	err = WriteSTL(filepath.Join(t.TempDir(), "empty.stl"), &kernel.Mesh{})
	if !errors.Is(err, geomerr.ErrDegenerateInput) {
		t.Errorf("empty mesh err = %v, want ErrDegenerateInput", err)
	}
}

func TestWriteDXF(t *testing.T) {
	res := result(t)
	path := filepath.Join(t.TempDir(), "plan.dxf")
	if err := WriteDXF(path, res); err != nil {
		t.Fatalf("WriteDXF: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	text := string(data)
	for _, want := range []string{"front_hedge", LayerZones, LayerStrokes, "LINE", "CIRCLE"} {
		if !strings.Contains(text, want) {
			t.Errorf("DXF missing %q", want)
		}
	}
}

func TestWriteSVG(t *testing.T) {
	res := result(t)
	var buf bytes.Buffer
	if err := WriteSVG(&buf, res, 400); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, `width="400"`) {
		t.Fatalf("not an svg document of width 400:\n%s", out[:min(len(out), 300)])
	}
	if got := strings.Count(out, "<polygon"); got != 4 {
		t.Errorf("got %d polygons, want 4", got)
	}
	if got, want := strings.Count(out, "<circle"), len(res.Strokes[0].Stroke.Points); got != want {
		t.Errorf("got %d circles, want %d", got, want)
	}
	if !strings.Contains(out, "#2f5d2a") {
		t.Error("material color not used")
	}
}

func TestWriteSVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, pipeline.Result{}, 0); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	if !strings.Contains(buf.String(), "</svg>") {
		t.Error("empty plan is not a complete svg document")
	}
}

func TestAll(t *testing.T) {
	res := result(t)
	dir := filepath.Join(t.TempDir(), "out")
	written, err := All(dir, res, Options{STL: true, DXF: true, SVG: true})
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []string{"front_hedge.stl", "plan.dxf", "plan.svg"}
	if len(written) != len(want) {
		t.Fatalf("wrote %v, want %v", written, want)
	}
	for i, name := range want {
		if filepath.Base(written[i]) != name {
			t.Errorf("file %d = %s, want %s", i, filepath.Base(written[i]), name)
		}
		if _, err := os.Stat(written[i]); err != nil {
			t.Errorf("stat %s: %v", written[i], err)
		}
	}

	none, err := All(dir, res, Options{})
	if err != nil || len(none) != 0 {
		t.Errorf("All with nothing selected = %v, %v", none, err)
	}
}
