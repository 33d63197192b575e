package sampler

import (
	"math"
	"testing"

	"github.com/chazu/landform/pkg/curve"
)

const tol = 1e-6

func straight(length float64) curve.Polyline {
	return curve.Polyline{{}, {X: length}}
}

func TestPointModeOnKnownLine(t *testing.T) {
	p := Params{Thickness: 100, Gap: 50, Height: 200, Depth: 30}
	got := Samples(straight(1000), p, ModePoint, tol)
	if len(got) != 7 {
		t.Fatalf("got %d samples, want 7", len(got))
	}
	for k, s := range got {
		if s.Index != k {
			t.Errorf("sample %d has index %d", k, s.Index)
		}
		if math.Abs(s.Point.X-float64(k)*150) > 1e-6 {
			t.Errorf("sample %d at x=%v, want %v", k, s.Point.X, float64(k)*150)
		}
		if s.Tangent.X != 1 {
			t.Errorf("sample %d tangent %v, want +X", k, s.Tangent)
		}
		if s.Params != p.Base() {
			t.Errorf("sample %d params %+v, want base %+v (no randomness)", k, s.Params, p.Base())
		}
	}
}

func TestPointModeShortPath(t *testing.T) {
	p := Params{Thickness: 100, Gap: 50}
	if got := Samples(straight(149), p, ModePoint, tol); len(got) != 0 {
		t.Errorf("got %d samples on a short path, want 0", len(got))
	}
}

func TestPointModeCountMatchesFloor(t *testing.T) {
	p := Params{Thickness: 7, Gap: 3}
	for _, l := range []float64{10, 25, 99.5, 1000} {
		got := len(Samples(straight(l), p, ModePoint, tol))
		want := int(math.Floor(l/10)) + 1
		if got != want {
			t.Errorf("length %v: got %d samples, want %d", l, got, want)
		}
	}
}

func TestLinearMode(t *testing.T) {
	p := Params{Thickness: 40, Height: 120, Randomness: Randomness{Thickness: 0.5, Height: 0.5}}
	path := curve.Polyline{{}, {X: 100}, {X: 100, Y: 100}}
	got := Samples(path, p, ModeLinear, tol)
	if len(got) != 1 {
		t.Fatalf("got %d samples, want 1", len(got))
	}
	if got[0].Params != p.Base() {
		t.Errorf("linear sample params %+v, want unjittered %+v", got[0].Params, p.Base())
	}
	if Samples(curve.Polyline{{}}, p, ModeLinear, tol) != nil {
		t.Error("degenerate path produced a linear sample")
	}
}

func TestJitterDeterministic(t *testing.T) {
	p := Params{
		Thickness: 100, Height: 200, Depth: 50, Gap: 25,
		Randomness: Randomness{Thickness: 0.3, Height: 0.2, Depth: 0.1, Gap: 0.4},
	}
	for idx := 0; idx < 20; idx++ {
		a := Jitter(idx, p)
		b := Jitter(idx, p)
		if math.Float64bits(a.Thickness) != math.Float64bits(b.Thickness) ||
			math.Float64bits(a.Height) != math.Float64bits(b.Height) ||
			math.Float64bits(a.Depth) != math.Float64bits(b.Depth) ||
			math.Float64bits(a.Gap) != math.Float64bits(b.Gap) {
			t.Fatalf("index %d: %+v != %+v", idx, a, b)
		}
	}
	if Jitter(1, p) == Jitter(2, p) {
		t.Error("different indices produced identical jitter")
	}
}

func TestJitterBounds(t *testing.T) {
	p := Params{
		Thickness: 100, Height: 200, Depth: 50, Gap: 25,
		Randomness: Randomness{Thickness: 0.3, Height: 0.2, Depth: 0.1, Gap: 0.4},
	}
	for idx := 0; idx < 200; idx++ {
		s := Jitter(idx, p)
		check := func(name string, v, base, r float64) {
			if v < base*(1-r)-1e-9 || v > base*(1+r)+1e-9 {
				t.Errorf("index %d %s = %v outside [%v, %v]", idx, name, v, base*(1-r), base*(1+r))
			}
		}
		check("thickness", s.Thickness, 100, 0.3)
		check("height", s.Height, 200, 0.2)
		check("depth", s.Depth, 50, 0.1)
		check("gap", s.Gap, 25, 0.4)
	}

	wild := Params{Thickness: 10, Randomness: Randomness{Thickness: 5}}
	for idx := 0; idx < 50; idx++ {
		if v := Jitter(idx, wild).Thickness; v < 0 {
			t.Fatalf("index %d thickness %v < 0", idx, v)
		}
	}
}

func TestJitterZeroRandomness(t *testing.T) {
	p := Params{Thickness: 1, Height: 2, Depth: 3, Gap: 4}
	if got := Jitter(7, p); got != p.Base() {
		t.Errorf("Jitter with zero randomness = %+v, want %+v", got, p.Base())
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModePoint, ModeLinear} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("spiral"); err == nil {
		t.Error("ParseMode(spiral) error = nil")
	}
}
