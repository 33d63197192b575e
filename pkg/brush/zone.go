// Package brush places particle strokes on the terrain. A Brush holds a
// circular Zone draped over the ground; each stroke update samples points
// inside the zone, projects them onto the terrain and lifts them by one
// particle diameter.
package brush

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Circle segment bounds for zone boundaries.
const (
	MinSegments = 16
	MaxSegments = 1024
)

// DisplayLift raises a zone rebuilt by UpdateZoneRadius so viewers do not
// z-fight it with the terrain.
const DisplayLift = 100.0

// Zone is a circular footprint draped onto the terrain.
type Zone struct {
	Center   v3.Vec
	Radius   float64
	Boundary curve.Polyline // projected circle, lifted by Lift
	Lift     float64
	Misses   int // circle vertices with no terrain beneath
}

// Closed reports whether every circle vertex landed on the terrain.
func (z Zone) Closed() bool { return z.Misses == 0 }

// CircleSegments returns the number of segments that keeps the chord
// error of a circle of radius r within tol.
func CircleSegments(r, tol float64) int {
	if r <= 0 || tol <= 0 || tol >= r {
		return MinSegments
	}
	n := int(math.Ceil(math.Pi / math.Acos(1-tol/r)))
	return max(MinSegments, min(MaxSegments, n))
}

// Circle returns a closed counter-clockwise circle in the plane z=center.Z.
func Circle(center v3.Vec, r float64, segments int) curve.Polyline {
	c := make(curve.Polyline, segments+1)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		c[i] = v3.Vec{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a), Z: center.Z}
	}
	c[segments] = c[0]
	return c
}

// BuildZone projects a circle of radius r around (center.X, center.Y, 0)
// vertically onto t. Vertices that miss the terrain are dropped; if all of
// them miss, the error wraps geomerr.ErrProjectionFailure.
func BuildZone(t *terrain.Terrain, center v3.Vec, r, tol float64) (Zone, error) {
	if t == nil || r <= 0 {
		return Zone{}, fmt.Errorf("brush: zone radius %g: %w", r, geomerr.ErrDegenerateInput)
	}
	base := v3.Vec{X: center.X, Y: center.Y}
	circle := Circle(base, r, CircleSegments(r, tol))
	draped, misses, err := t.ProjectPolyline(circle)
	if err != nil {
		return Zone{}, fmt.Errorf("brush: zone at (%g, %g): %w", center.X, center.Y, err)
	}
	return Zone{Center: base, Radius: r, Boundary: draped, Misses: misses}, nil
}

// Lifted returns the zone with its boundary raised by dz.
func (z Zone) Lifted(dz float64) Zone {
	z.Boundary = z.Boundary.Translate(v3.Vec{Z: dz})
	z.Lift += dz
	return z
}
