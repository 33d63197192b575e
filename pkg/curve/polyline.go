// Package curve is the polyline kernel used by the landform pipeline.
//
// A Polyline is an ordered list of 3D vertices. Parameters are normalized
// arc length on [0,1], so PointAt(0.5) is always halfway along the curve
// regardless of how the vertices are spaced. Planar operations (offsetting,
// winding, containment) work on the XY projection; Z is carried along.
package curve

import (
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Zeroish is the distance below which two vertices are considered the same
// point when no explicit tolerance applies.
const Zeroish = 1e-9

// Polyline is an ordered list of vertices. A closed polyline repeats its
// first vertex at the end.
type Polyline []v3.Vec

// Winding is the orientation of a closed polyline seen from +Z.
type Winding int

const (
	WindingNone Winding = iota // open or zero-area curve
	Clockwise
	CounterClockwise
)

func (w Winding) String() string {
	switch w {
	case Clockwise:
		return "clockwise"
	case CounterClockwise:
		return "counter-clockwise"
	default:
		return "none"
	}
}

// Clone returns an independent copy of the polyline.
func (p Polyline) Clone() Polyline {
	if p == nil {
		return nil
	}
	c := make(Polyline, len(p))
	copy(c, p)
	return c
}

// Start returns the first vertex. The polyline must not be empty.
func (p Polyline) Start() v3.Vec { return p[0] }

// End returns the last vertex. The polyline must not be empty.
func (p Polyline) End() v3.Vec { return p[len(p)-1] }

// Length returns the total arc length.
func (p Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(p); i++ {
		l += p[i].Sub(p[i-1]).Length()
	}
	return l
}

// IsClosed reports whether the polyline has at least three distinct
// vertices and ends where it starts, within tol.
func (p Polyline) IsClosed(tol float64) bool {
	if len(p) < 4 {
		return false
	}
	return p.Start().Sub(p.End()).Length() <= tol
}

// Close returns the polyline with its first vertex appended when it does not
// already end there.
func (p Polyline) Close() Polyline {
	if len(p) == 0 {
		return nil
	}
	c := p.Clone()
	if c.Start().Sub(c.End()).Length() > Zeroish {
		c = append(c, c.Start())
	} else {
		c[len(c)-1] = c.Start()
	}
	return c
}

// Reverse returns a copy with the vertex order reversed.
func (p Polyline) Reverse() Polyline {
	c := make(Polyline, len(p))
	for i, v := range p {
		c[len(p)-1-i] = v
	}
	return c
}

// Translate returns a copy moved by d.
func (p Polyline) Translate(d v3.Vec) Polyline {
	c := make(Polyline, len(p))
	for i, v := range p {
		c[i] = v.Add(d)
	}
	return c
}

// Dedupe drops consecutive vertices closer than tol.
func (p Polyline) Dedupe(tol float64) Polyline {
	if len(p) == 0 {
		return nil
	}
	out := Polyline{p[0]}
	for _, v := range p[1:] {
		if v.Sub(out[len(out)-1]).Length() > tol {
			out = append(out, v)
		}
	}
	return out
}

// Box returns the axis-aligned bounding box.
func (p Polyline) Box() sdf.Box3 {
	if len(p) == 0 {
		return sdf.Box3{}
	}
	lo, hi := p[0], p[0]
	for _, v := range p[1:] {
		lo = v3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = v3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// cumulative returns the arc length at each vertex.
func (p Polyline) cumulative() []float64 {
	acc := make([]float64, len(p))
	for i := 1; i < len(p); i++ {
		acc[i] = acc[i-1] + p[i].Sub(p[i-1]).Length()
	}
	return acc
}

// locate finds the segment containing arc length s and the local fraction
// along it. Vertices belong to the segment that starts there, except the
// final vertex.
func (p Polyline) locate(acc []float64, s float64) (int, float64) {
	n := len(p)
	if s <= 0 {
		return 0, 0
	}
	if s >= acc[n-1] {
		return n - 2, 1
	}
	i := sort.SearchFloat64s(acc, s)
	if i < n && acc[i] == s {
		// exactly on vertex i: start of segment i
		if i == n-1 {
			return n - 2, 1
		}
		return i, 0
	}
	seg := i - 1
	l := acc[i] - acc[seg]
	if l <= 0 {
		return seg, 0
	}
	return seg, (s - acc[seg]) / l
}

// PointAt returns the point at normalized arc-length parameter t, clamped to
// [0,1].
func (p Polyline) PointAt(t float64) v3.Vec {
	switch len(p) {
	case 0:
		return v3.Vec{}
	case 1:
		return p[0]
	}
	acc := p.cumulative()
	t = clamp01(t)
	seg, f := p.locate(acc, t*acc[len(acc)-1])
	return p[seg].Add(p[seg+1].Sub(p[seg]).MulScalar(f))
}

// TangentAt returns the unit tangent at parameter t. The tangent at an
// interior vertex is that of the segment starting there.
func (p Polyline) TangentAt(t float64) v3.Vec {
	if len(p) < 2 {
		return v3.Vec{}
	}
	acc := p.cumulative()
	seg, _ := p.locate(acc, clamp01(t)*acc[len(acc)-1])
	d := p[seg+1].Sub(p[seg])
	for d.Length() <= Zeroish && seg+1 < len(p)-1 {
		seg++
		d = p[seg+1].Sub(p[seg])
	}
	if d.Length() <= Zeroish {
		return v3.Vec{}
	}
	return d.Normalize()
}

// ParameterAtLength converts an arc length from the start into a normalized
// parameter.
func (p Polyline) ParameterAtLength(s float64) float64 {
	l := p.Length()
	if l <= 0 {
		return 0
	}
	return clamp01(s / l)
}

// DivideByLength returns the parameters of division points spaced segment
// apart along the curve, starting at the curve start. The division count is
// floor(L/segment), allowing tol of slack at the end, so a curve shorter
// than one segment yields nil.
func (p Polyline) DivideByLength(segment, tol float64) []float64 {
	l := p.Length()
	if segment <= 0 || l <= 0 {
		return nil
	}
	n := int(math.Floor((l + tol) / segment))
	if n <= 0 {
		return nil
	}
	params := make([]float64, 0, n+1)
	for k := 0; k <= n; k++ {
		params = append(params, clamp01(float64(k)*segment/l))
	}
	return params
}

// SignedArea returns the signed area of the XY projection, treating the
// polyline as closed. Counter-clockwise loops are positive.
func (p Polyline) SignedArea() float64 {
	n := len(p)
	if n < 3 {
		return 0
	}
	var a float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

// Winding returns the orientation of the XY projection.
func (p Polyline) Winding() Winding {
	a := p.SignedArea()
	switch {
	case a > Zeroish:
		return CounterClockwise
	case a < -Zeroish:
		return Clockwise
	default:
		return WindingNone
	}
}

// WithWinding returns the polyline reversed if needed so that it has the
// requested winding. Zero-area curves are returned unchanged.
func (p Polyline) WithWinding(w Winding) Polyline {
	cur := p.Winding()
	if cur == WindingNone || w == WindingNone || cur == w {
		return p.Clone()
	}
	return p.Reverse()
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
