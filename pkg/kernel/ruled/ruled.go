// Package ruled implements the exact extrusion backend: a profile is swept
// vertically into a ruled prism whose caps are ear-clipped copies of the
// boundary. Z extents are exact, which the conform round trip relies on.
package ruled

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// maxDivisions caps subdivision per boundary edge and per wall.
const maxDivisions = 256

// Kernel is the ruled-prism extruder.
type Kernel struct {
	// Tolerance is the weld distance for coincident vertices.
	Tolerance float64
}

// New returns a ruled Kernel welding within tol.
func New(tol float64) *Kernel {
	if tol <= 0 {
		tol = 1e-6
	}
	return &Kernel{Tolerance: tol}
}

// Name implements kernel.Kernel.
func (k *Kernel) Name() string { return "ruled" }

// Extrude implements kernel.Kernel. Every boundary vertex p yields a wall
// column from p.Z-depth to p.Z+height; target edge length is
// height/accuracy.
func (k *Kernel) Extrude(boundary curve.Polyline, height, depth float64, accuracy int) (*kernel.Mesh, error) {
	accuracy = kernel.ClampAccuracy(accuracy)
	span := height + depth
	if span <= k.Tolerance {
		return nil, fmt.Errorf("ruled: extrusion span %g: %w", span, geomerr.ErrDegenerateInput)
	}
	ring := boundary.Dedupe(k.Tolerance)
	if ring.IsClosed(k.Tolerance) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 || math.Abs(ring.SignedArea()) <= k.Tolerance*k.Tolerance {
		return nil, fmt.Errorf("ruled: boundary with %d distinct vertices: %w", len(ring), geomerr.ErrDegenerateInput)
	}
	if ring.Winding() == curve.Clockwise {
		ring = ring.Reverse()
	}

	edge := height / float64(accuracy)
	if edge <= 0 {
		edge = span / float64(accuracy)
	}
	loop := subdivide(ring, edge)
	bands := divisions(span, edge)

	b := kernel.NewBuilder(k.Tolerance)
	at := func(p v3.Vec, band int) v3.Vec {
		if band == bands {
			return v3.Vec{X: p.X, Y: p.Y, Z: p.Z + height}
		}
		return v3.Vec{X: p.X, Y: p.Y, Z: p.Z - depth + span*float64(band)/float64(bands)}
	}

	n := len(loop)
	for i := 0; i < n; i++ {
		p, q := loop[i], loop[(i+1)%n]
		for j := 0; j < bands; j++ {
			a, c := at(p, j), at(q, j)
			d, e := at(q, j+1), at(p, j+1)
			b.AddTriangle(a, c, d)
			b.AddTriangle(a, d, e)
		}
	}

	for _, tri := range kernel.TriangulateXY(loop) {
		b.AddTriangle(at(loop[tri[0]], bands), at(loop[tri[1]], bands), at(loop[tri[2]], bands))
		b.AddTriangle(at(loop[tri[2]], 0), at(loop[tri[1]], 0), at(loop[tri[0]], 0))
	}
	return b.Mesh(""), nil
}

// subdivide splits each edge of the open ring so no piece exceeds edge.
func subdivide(ring curve.Polyline, edge float64) curve.Polyline {
	n := len(ring)
	out := make(curve.Polyline, 0, n)
	for i := 0; i < n; i++ {
		p, q := ring[i], ring[(i+1)%n]
		m := divisions(q.Sub(p).Length(), edge)
		for j := 0; j < m; j++ {
			out = append(out, p.Add(q.Sub(p).MulScalar(float64(j)/float64(m))))
		}
	}
	return out
}

func divisions(length, edge float64) int {
	if edge <= 0 {
		return 1
	}
	n := int(math.Ceil(length/edge - 1e-9))
	if n < 1 {
		return 1
	}
	if n > maxDivisions {
		return maxDivisions
	}
	return n
}
