package brush

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const tol = 1e-3

func flat(t *testing.T, z float64) *terrain.Terrain {
	t.Helper()
	m, err := terrain.Flat(400, z)
	if err != nil {
		t.Fatalf("Flat: %v", err)
	}
	tr, err := terrain.New(m)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	return tr
}

func TestCircleSegments(t *testing.T) {
	tests := []struct {
		name   string
		r, tol float64
		want   int
	}{
		{"coarse tolerance", 10, 5, MinSegments},
		{"tolerance beyond radius", 10, 50, MinSegments},
		{"fine tolerance", 1000, 1e-6, MaxSegments},
		{"zero radius", 0, 1, MinSegments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CircleSegments(tt.r, tt.tol); got != tt.want {
				t.Errorf("CircleSegments(%v, %v) = %d, want %d", tt.r, tt.tol, got, tt.want)
			}
		})
	}
	n := CircleSegments(100, 0.01)
	if sag := 100 * (1 - math.Cos(math.Pi/float64(n))); sag > 0.01+1e-12 {
		t.Errorf("chord error %v with %d segments exceeds tolerance", sag, n)
	}
}

func TestGridCount(t *testing.T) {
	tests := []struct {
		name                string
		r, diameter, sparse float64
		want                int
	}{
		{"packed", 100, 2, 1, 100},
		{"sparse", 100, 2, 2.5, 40},
		{"sparsity floored", 100, 2, 0.25, 100},
		{"capped", 1e6, 1, 1, MaxGrid},
		{"zero diameter", 100, 0, 1, 0},
		{"particle wider than zone", 1, 5, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GridCount(tt.r, tt.diameter, tt.sparse); got != tt.want {
				t.Errorf("GridCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpdateZone(t *testing.T) {
	b := New(flat(t, 5), Params{Radius: 50, Diameter: 2, Sparsity: 1, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{X: 10, Y: -20, Z: 999}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	z, ok := b.Zone()
	if !ok {
		t.Fatal("no zone after UpdateZone")
	}
	if !z.Closed() || !z.Boundary.IsClosed(1e-9) {
		t.Error("zone over full terrain is not closed")
	}
	if z.Center != (v3.Vec{X: 10, Y: -20}) {
		t.Errorf("zone center = %v, want (10, -20, 0)", z.Center)
	}
	for _, p := range z.Boundary {
		if math.Abs(p.Z-5) > 1e-9 {
			t.Fatalf("boundary point %v not on terrain", p)
		}
		if d := math.Hypot(p.X-10, p.Y+20); math.Abs(d-50) > 1e-9 {
			t.Fatalf("boundary point %v at distance %v, want 50", p, d)
		}
	}
}

func TestUpdateZoneOffTerrain(t *testing.T) {
	b := New(flat(t, 0), Params{Radius: 10, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	err := b.UpdateZone(v3.Vec{X: 5000})
	if !errors.Is(err, geomerr.ErrProjectionFailure) {
		t.Fatalf("err = %v, want ErrProjectionFailure", err)
	}
	if _, ok := b.Zone(); ok {
		t.Error("failed update kept the previous zone")
	}
	s, err := b.UpdateStroke(tol)
	if err != nil || len(s.Points) != 0 {
		t.Errorf("stroke without zone = %d points, %v; want empty, nil", len(s.Points), err)
	}
}

func TestUpdateZonePartiallyOffTerrain(t *testing.T) {
	b := New(flat(t, 0), Params{Radius: 50, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{X: 200}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	z, _ := b.Zone()
	if z.Closed() || z.Misses == 0 {
		t.Errorf("zone straddling the terrain edge reported closed (misses %d)", z.Misses)
	}
}

func TestUpdateZoneRadiusLifts(t *testing.T) {
	b := New(flat(t, 5), Params{Radius: 10, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{X: 3, Y: 4}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	if err := b.UpdateZoneRadius(20); err != nil {
		t.Fatalf("UpdateZoneRadius: %v", err)
	}
	z, _ := b.Zone()
	if z.Radius != 20 || z.Center != (v3.Vec{X: 3, Y: 4}) {
		t.Errorf("zone radius %v center %v, want 20 at (3, 4)", z.Radius, z.Center)
	}
	for _, p := range z.Boundary {
		if math.Abs(p.Z-(5+DisplayLift)) > 1e-9 {
			t.Fatalf("boundary point %v, want z %v", p, 5+DisplayLift)
		}
	}
}

func TestUpdateStrokeGrid(t *testing.T) {
	const (
		radius   = 40.0
		diameter = 2.0
	)
	b := New(flat(t, 5), Params{Radius: radius, Diameter: diameter, Sparsity: 1, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{X: 7, Y: 9}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	s, err := b.UpdateStroke(tol)
	if err != nil {
		t.Fatalf("UpdateStroke: %v", err)
	}
	if s.Grid != 40 {
		t.Errorf("grid = %d, want 40", s.Grid)
	}
	if s.Candidates != s.Grid*s.Grid {
		t.Errorf("candidates = %d, want %d", s.Candidates, s.Grid*s.Grid)
	}
	if len(s.Points) == 0 || len(s.Points) > s.Grid*s.Grid {
		t.Fatalf("got %d points for a %dx%d grid", len(s.Points), s.Grid, s.Grid)
	}
	// The disc covers about pi/4 of its bounding square.
	frac := float64(len(s.Points)) / float64(s.Candidates)
	if math.Abs(frac-math.Pi/4) > 0.08 {
		t.Errorf("inside fraction = %v, want about %v", frac, math.Pi/4)
	}
	for _, p := range s.Points {
		if d := math.Hypot(p.X-7, p.Y-9); d >= radius {
			t.Fatalf("point %v not strictly inside the zone (distance %v)", p, d)
		}
		if math.Abs(p.Z-(5+diameter)) > 1e-9 {
			t.Fatalf("point %v not lifted one diameter above the terrain", p)
		}
	}
}

func TestUpdateStrokeFollowsTerrain(t *testing.T) {
	m, err := terrain.Bump(400, 80, v3.Vec{}, 60, 25)
	if err != nil {
		t.Fatalf("Bump: %v", err)
	}
	tr, err := terrain.New(m)
	if err != nil {
		t.Fatalf("terrain.New: %v", err)
	}
	b := New(tr, Params{Radius: 30, Diameter: 3, Sparsity: 2, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	s, err := b.UpdateStroke(tol)
	if err != nil {
		t.Fatalf("UpdateStroke: %v", err)
	}
	if len(s.Points) == 0 {
		t.Fatal("empty stroke")
	}
	for _, p := range s.Points {
		z, _ := tr.HeightAt(p.X, p.Y)
		if math.Abs(p.Z-(z+3)) > 1e-9 {
			t.Fatalf("point %v, want z %v", p, z+3)
		}
	}
}

func TestUpdateStrokeDegenerate(t *testing.T) {
	b := New(flat(t, 0), Params{Radius: 1, Diameter: 10, Sparsity: 1, Tolerance: tol})
	if err := b.UpdateZone(v3.Vec{}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	s, err := b.UpdateStroke(tol)
	if err != nil || len(s.Points) != 0 {
		t.Errorf("UpdateStroke = %d points, %v; want empty, nil", len(s.Points), err)
	}
}

func TestUpdateStrokePoisson(t *testing.T) {
	p := Params{Radius: 30, Diameter: 2, Sparsity: 1.5, Tolerance: tol, Mode: ModePoisson, Seed: 42}
	tr := flat(t, 0)
	run := func() Stroke {
		b := New(tr, p)
		if err := b.UpdateZone(v3.Vec{X: -5, Y: 5}); err != nil {
			t.Fatalf("UpdateZone: %v", err)
		}
		s, err := b.UpdateStroke(tol)
		if err != nil {
			t.Fatalf("UpdateStroke: %v", err)
		}
		return s
	}
	a, c := run(), run()
	if len(a.Points) == 0 {
		t.Fatal("empty poisson stroke")
	}
	if len(a.Points) != len(c.Points) {
		t.Fatalf("same seed gave %d and %d points", len(a.Points), len(c.Points))
	}
	spacing := p.Diameter * p.Sparsity
	for i := range a.Points {
		if a.Points[i] != c.Points[i] {
			t.Fatalf("point %d differs between runs: %v vs %v", i, a.Points[i], c.Points[i])
		}
		if d := math.Hypot(a.Points[i].X+5, a.Points[i].Y-5); d >= p.Radius {
			t.Fatalf("point %v outside the zone", a.Points[i])
		}
		for j := i + 1; j < len(a.Points); j++ {
			if d := math.Hypot(a.Points[i].X-a.Points[j].X, a.Points[i].Y-a.Points[j].Y); d < spacing-1e-9 {
				t.Fatalf("points %d and %d are %v apart, want >= %v", i, j, d, spacing)
			}
		}
	}
}

func TestParseSampleMode(t *testing.T) {
	for _, m := range []SampleMode{ModeGrid, ModePoisson} {
		got, err := ParseSampleMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseSampleMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseSampleMode("hex"); err == nil {
		t.Error("ParseSampleMode(hex) error = nil")
	}
}

func TestUpdateZoneRadiusCustomLift(t *testing.T) {
	b := New(flat(t, 5), Params{Radius: 10, Tolerance: tol, Lift: 2.5})
	if err := b.UpdateZone(v3.Vec{}); err != nil {
		t.Fatalf("UpdateZone: %v", err)
	}
	if err := b.UpdateZoneRadius(12); err != nil {
		t.Fatalf("UpdateZoneRadius: %v", err)
	}
	z, _ := b.Zone()
	if z.Lift != 2.5 {
		t.Errorf("lift = %v, want 2.5", z.Lift)
	}
}
