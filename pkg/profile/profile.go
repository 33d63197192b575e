// Package profile builds the closed cross-section curves that the volume
// extruder lofts into solids.
package profile

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Profile is a closed boundary curve and its tracked winding. Boundary
// always repeats its first vertex at the end.
type Profile struct {
	Boundary curve.Polyline
	Winding  curve.Winding
}

// New wraps a closed boundary, recording its winding.
func New(boundary curve.Polyline) Profile {
	b := boundary.Close()
	return Profile{Boundary: b, Winding: b.Winding()}
}

// IsEmpty reports whether the profile has no usable boundary.
func (p Profile) IsEmpty() bool {
	return len(p.Boundary) < 4
}

// Oriented returns the profile with its boundary rewound to w.
func (p Profile) Oriented(w curve.Winding) Profile {
	b := p.Boundary.WithWinding(w)
	return Profile{Boundary: b, Winding: b.Winding()}
}

// Area returns the unsigned XY area enclosed by the boundary.
func (p Profile) Area() float64 {
	return math.Abs(p.Boundary.SignedArea())
}

// BuildPointProfile returns a regular polygon of the given number of sides
// around center. Vertex i sits at angle 2*pi*i/sides, so the polygon runs
// counter-clockwise, and the first vertex is repeated at the end. All
// vertices share center.Z.
func BuildPointProfile(center v3.Vec, radius float64, sides int) (Profile, error) {
	if sides < 3 {
		return Profile{}, fmt.Errorf("profile: %w: polygon needs at least 3 sides, got %d", geomerr.ErrDegenerateInput, sides)
	}
	if !(radius > 0) {
		return Profile{}, fmt.Errorf("profile: %w: radius %g", geomerr.ErrDegenerateInput, radius)
	}

	b := make(curve.Polyline, sides+1)
	step := 2 * math.Pi / float64(sides)
	for i := 0; i < sides; i++ {
		a := step * float64(i)
		b[i] = v3.Vec{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
			Z: center.Z,
		}
	}
	b[sides] = b[0]
	return Profile{Boundary: b, Winding: curve.CounterClockwise}, nil
}

// BuildOffsetProfile turns a path into a strip of the given thickness: the
// path is offset by thickness/2 to each side with sharp corners, the two
// ends are capped with straight segments and the four pieces are joined
// into one closed curve. Any failure wraps geomerr.ErrOffsetFailure; the
// caller should skip the sample.
func BuildOffsetProfile(path curve.Polyline, thickness, tolerance float64) (Profile, error) {
	if !(thickness > 0) {
		return Profile{}, fmt.Errorf("profile: %w: thickness %g", geomerr.ErrDegenerateInput, thickness)
	}
	half := thickness / 2

	left, err := path.Offset(half, tolerance)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: left side: %w", err)
	}
	right, err := path.Offset(-half, tolerance)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: right side: %w", err)
	}
	if len(left) != 1 || len(right) != 1 {
		return Profile{}, fmt.Errorf("profile: %w: offset produced %d/%d curves",
			geomerr.ErrOffsetFailure, len(left), len(right))
	}

	l, r := left[0], right[0]
	pieces := []curve.Polyline{
		l,
		{l.End(), r.End()},
		r.Reverse(),
		{r.Start(), l.Start()},
	}
	joined := curve.Join(pieces, tolerance)
	if len(joined) != 1 || !joined[0].IsClosed(tolerance) {
		return Profile{}, fmt.Errorf("profile: %w: capped offsets joined into %d curves",
			geomerr.ErrOffsetFailure, len(joined))
	}
	return New(joined[0]), nil
}
