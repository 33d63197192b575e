package curve

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/geomerr"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// cuspCosine is the tangent dot product below which a corner is treated as
// the path doubling back on itself.
const cuspCosine = -0.999

// Offset offsets an open polyline in the XY plane with sharp (mitered)
// corners. Positive distances move to the left of the direction of travel.
// Vertex Z values are kept.
//
// A sharp offset of a polyline is a single curve unless a corner folds it:
// a cusp, a segment whose offset runs backwards, or offset segments that
// cross each other. Those cases would split the result, so they are reported
// as ErrOffsetFailure.
func (p Polyline) Offset(distance, tol float64) ([]Polyline, error) {
	pts := dedupeXY(p, tol)
	if len(pts) < 2 {
		return nil, fmt.Errorf("curve: offset: %w: fewer than two distinct vertices", geomerr.ErrDegenerateInput)
	}
	if distance == 0 {
		return []Polyline{pts}, nil
	}

	n := len(pts)
	tangents := make([]v2.Vec, n-1)
	for i := 0; i < n-1; i++ {
		tangents[i] = unitXY(pts[i+1].Sub(pts[i]))
	}

	out := make(Polyline, n)
	out[0] = shiftXY(pts[0], leftNormal(tangents[0]), distance)
	out[n-1] = shiftXY(pts[n-1], leftNormal(tangents[n-2]), distance)
	for i := 1; i < n-1; i++ {
		t1, t2 := tangents[i-1], tangents[i]
		if t1.Dot(t2) < cuspCosine {
			return nil, fmt.Errorf("curve: offset: %w: cusp at vertex %d", geomerr.ErrOffsetFailure, i)
		}
		n1, n2 := leftNormal(t1), leftNormal(t2)
		bis := n1.Add(n2)
		bl := bis.Length()
		if bl <= Zeroish {
			return nil, fmt.Errorf("curve: offset: %w: cusp at vertex %d", geomerr.ErrOffsetFailure, i)
		}
		bis = bis.MulScalar(1 / bl)
		// cos of the half angle between the normals
		cosHalf := bl / 2
		out[i] = shiftXY(pts[i], bis, distance/cosHalf)
	}

	for i := 0; i < n-1; i++ {
		d := out[i+1].Sub(out[i])
		if d.X*tangents[i].X+d.Y*tangents[i].Y <= 0 {
			return nil, fmt.Errorf("curve: offset: %w: segment %d collapses at distance %g",
				geomerr.ErrOffsetFailure, i, distance)
		}
	}
	if i, j, ok := selfIntersection(out); ok {
		return nil, fmt.Errorf("curve: offset: %w: segments %d and %d cross",
			geomerr.ErrOffsetFailure, i, j)
	}
	return []Polyline{out}, nil
}

// dedupeXY drops consecutive vertices whose XY projections coincide.
func dedupeXY(p Polyline, tol float64) Polyline {
	if tol <= 0 {
		tol = Zeroish
	}
	if len(p) == 0 {
		return nil
	}
	out := Polyline{p[0]}
	for _, v := range p[1:] {
		last := out[len(out)-1]
		if math.Hypot(v.X-last.X, v.Y-last.Y) > tol {
			out = append(out, v)
		}
	}
	return out
}

func unitXY(d v3.Vec) v2.Vec {
	v := v2.Vec{X: d.X, Y: d.Y}
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1 / l)
}

func leftNormal(t v2.Vec) v2.Vec { return v2.Vec{X: -t.Y, Y: t.X} }

func shiftXY(p v3.Vec, dir v2.Vec, d float64) v3.Vec {
	return v3.Vec{X: p.X + dir.X*d, Y: p.Y + dir.Y*d, Z: p.Z}
}

// selfIntersection reports the first pair of non-adjacent segments whose XY
// projections properly cross.
func selfIntersection(p Polyline) (int, int, bool) {
	n := len(p) - 1
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if SegmentsCrossXY(p[i], p[i+1], p[j], p[j+1]) {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// SegmentsCrossXY reports whether segments ab and cd properly cross in the
// XY plane. Touching endpoints do not count.
func SegmentsCrossXY(a, b, c, d v3.Vec) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// orient is twice the signed area of triangle abc in XY.
func orient(a, b, c v3.Vec) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}
