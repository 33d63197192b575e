package conform

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/kernel/ruled"
	"github.com/chazu/landform/pkg/kernel/sdfx"
	"github.com/chazu/landform/pkg/terrain"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

const tol = 1e-6

// square is a 10x10 profile away from terrain grid lines.
func square(z float64) curve.Polyline {
	return curve.Polyline{
		{X: 1.5, Y: 2.5, Z: z}, {X: 11.5, Y: 2.5, Z: z}, {X: 11.5, Y: 12.5, Z: z},
		{X: 1.5, Y: 12.5, Z: z}, {X: 1.5, Y: 2.5, Z: z},
	}
}

func volume(t *testing.T, k kernel.Kernel) *kernel.Mesh {
	t.Helper()
	m, err := k.Extrude(square(0), 20, 5, 5)
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	return m
}

func flatTerrain(t *testing.T, z float64) *terrain.Terrain {
	t.Helper()
	m, err := terrain.Flat(100, z)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	tr, err := terrain.New(m)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	return tr
}

func slopedTerrain(t *testing.T) *terrain.Terrain {
	t.Helper()
	m, err := terrain.Plane(100, -2, v2.Vec{X: 0.1, Y: 0.05}, 10)
	if err != nil {
		t.Fatalf("Plane: %v", err)
	}
	tr, err := terrain.New(m)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	return tr
}

func TestConformTerrainAboveVolume(t *testing.T) {
	k := ruled.New(tol)
	_, err := Conform(volume(t, k), flatTerrain(t, 30), tol)
	if !errors.Is(err, geomerr.ErrNoIntersection) {
		t.Fatalf("err = %v, want ErrNoIntersection", err)
	}
}

func TestConformVolumeAboveTerrain(t *testing.T) {
	k := ruled.New(tol)
	vol := volume(t, k)
	if b := vol.Box(); b.Min.Z <= -30 {
		t.Fatalf("volume bottom %v is not above the terrain", b.Min.Z)
	}
	_, err := Conform(vol, flatTerrain(t, -30), tol)
	if !errors.Is(err, geomerr.ErrNoIntersection) {
		t.Fatalf("err = %v, want ErrNoIntersection", err)
	}
	got, _, err := Attach(k, vol, flatTerrain(t, -30), 20, 5, tol)
	if !errors.Is(err, geomerr.ErrNoIntersection) || got != vol {
		t.Errorf("Attach = %p, %v, want the un-conformed volume and ErrNoIntersection", got, err)
	}
}

func TestConformFlatCrossing(t *testing.T) {
	k := ruled.New(tol)
	p, err := Conform(volume(t, k), flatTerrain(t, 3), tol)
	if err != nil {
		t.Fatalf("Conform: %v", err)
	}
	if p.IsEmpty() {
		t.Fatal("conformed profile is empty")
	}
	if p.Winding != curve.Clockwise {
		t.Errorf("winding = %v, want clockwise", p.Winding)
	}
	if !p.Boundary.IsClosed(tol) {
		t.Error("boundary is not closed")
	}
	for _, v := range p.Boundary {
		if math.Abs(v.Z-3) > 1e-9 {
			t.Fatalf("boundary vertex %v not on the terrain", v)
		}
	}
	if got := p.Area(); math.Abs(got-100) > 1e-6 {
		t.Errorf("Area() = %v, want 100", got)
	}
}

func TestRoundTripSitsOnTerrain(t *testing.T) {
	k := ruled.New(tol)
	tr := slopedTerrain(t)
	p, err := Conform(volume(t, k), tr, tol)
	if err != nil {
		t.Fatalf("Conform: %v", err)
	}
	fitted, err := Refit(k, p, 20, 5)
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}
	if !fitted.IsClosed() {
		t.Error("refit volume is not closed")
	}

	lowestGap := math.Inf(1)
	for i := 0; i < fitted.VertexCount(); i++ {
		v := fitted.Vertex(i)
		z, ok := tr.HeightAt(v.X, v.Y)
		if !ok {
			t.Fatalf("vertex %v off the terrain", v)
		}
		if v.Z < z-1e-6 {
			t.Errorf("vertex %v below terrain height %v", v, z)
		}
		lowestGap = math.Min(lowestGap, v.Z-z)
	}
	if lowestGap > 1e-6 {
		t.Errorf("lowest vertex floats %v above the terrain, want contact", lowestGap)
	}
}

func TestRoundTripSitsOnTerrainSdfx(t *testing.T) {
	tr := slopedTerrain(t)
	p, err := Conform(volume(t, ruled.New(tol)), tr, tol)
	if err != nil {
		t.Fatalf("Conform: %v", err)
	}
	k := sdfx.New(0)
	const accuracy = 5
	fitted, err := Refit(k, p, 20, accuracy)
	if err != nil {
		t.Fatalf("Refit: %v", err)
	}

	// Marching cubes places vertices to within a cell of the surface.
	b := fitted.Box()
	cell := math.Max(b.Max.Z-b.Min.Z, math.Max(b.Max.X-b.Min.X, b.Max.Y-b.Min.Y)) /
		float64(k.CellsPerAccuracy*accuracy)
	for i := 0; i < fitted.VertexCount(); i++ {
		v := fitted.Vertex(i)
		z, ok := tr.HeightAt(v.X, v.Y)
		if !ok {
			t.Fatalf("vertex %v off the terrain", v)
		}
		if v.Z < z-1.5*cell {
			t.Fatalf("vertex %v is %v below terrain height %v", v, z-v.Z, z)
		}
	}
}

func TestAttachFallsBack(t *testing.T) {
	k := ruled.New(tol)
	vol := volume(t, k)
	got, _, err := Attach(k, vol, flatTerrain(t, 30), 20, 5, tol)
	if !errors.Is(err, geomerr.ErrNoIntersection) {
		t.Fatalf("err = %v, want ErrNoIntersection", err)
	}
	if got != vol {
		t.Error("Attach did not return the un-conformed volume")
	}

	fitted, p, err := Attach(k, vol, flatTerrain(t, 3), 20, 5, tol)
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if p.IsEmpty() {
		t.Error("Attach returned an empty profile")
	}
	if b := fitted.Box(); math.Abs(b.Min.Z-3) > 1e-9 || math.Abs(b.Max.Z-23) > 1e-9 {
		t.Errorf("fitted Z extent = [%v, %v], want [3, 23]", b.Min.Z, b.Max.Z)
	}
}

func TestConformDegenerate(t *testing.T) {
	if _, err := Conform(nil, flatTerrain(t, 0), tol); !errors.Is(err, geomerr.ErrDegenerateInput) {
		t.Errorf("nil volume err = %v, want ErrDegenerateInput", err)
	}
	if _, err := Conform(volume(t, ruled.New(tol)), nil, tol); !errors.Is(err, geomerr.ErrDegenerateInput) {
		t.Errorf("nil terrain err = %v, want ErrDegenerateInput", err)
	}
}
