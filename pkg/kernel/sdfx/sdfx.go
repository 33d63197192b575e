// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library. The profile becomes a
// Polygon2D, is extruded as an implicit solid and tessellated with marching
// cubes, so the result approximates the exact ruled prism to within a cell.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultCellsPerAccuracy controls marching cubes resolution: accuracy 10
// renders at 200 cells along the longest axis.
const DefaultCellsPerAccuracy = 20

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	CellsPerAccuracy int
}

// New returns a new SdfxKernel. A non-positive cellsPerAccuracy selects
// DefaultCellsPerAccuracy.
func New(cellsPerAccuracy int) *SdfxKernel {
	if cellsPerAccuracy <= 0 {
		cellsPerAccuracy = DefaultCellsPerAccuracy
	}
	return &SdfxKernel{CellsPerAccuracy: cellsPerAccuracy}
}

// Name implements kernel.Kernel.
func (k *SdfxKernel) Name() string { return "sdfx" }

// Solid builds the implicit prism for boundary. The profile plane is the
// highest Z among its vertices, so a profile draped over the terrain is
// never cut into; the solid spans plane-depth to plane+height.
func (k *SdfxKernel) Solid(boundary curve.Polyline, height, depth float64) (sdf.SDF3, error) {
	ring := boundary.Dedupe(curve.Zeroish)
	if len(ring) > 1 && ring.IsClosed(curve.Zeroish) {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 || ring.Winding() == curve.WindingNone {
		return nil, fmt.Errorf("sdfx: boundary with %d distinct vertices: %w", len(ring), geomerr.ErrDegenerateInput)
	}
	span := height + depth
	if span <= 0 {
		return nil, fmt.Errorf("sdfx: extrusion span %g: %w", span, geomerr.ErrDegenerateInput)
	}

	verts := make([]v2.Vec, len(ring))
	plane := ring[0].Z
	for i, p := range ring {
		verts[i] = v2.Vec{X: p.X, Y: p.Y}
		plane = math.Max(plane, p.Z)
	}

	s2, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	// Extrude3D centers the solid on z=0.
	s3 := sdf.Extrude3D(s2, span)
	m := sdf.Translate3d(v3.Vec{Z: plane - depth + span/2})
	return sdf.Transform3D(s3, m), nil
}

// Extrude implements kernel.Kernel.
func (k *SdfxKernel) Extrude(boundary curve.Polyline, height, depth float64, accuracy int) (*kernel.Mesh, error) {
	s, err := k.Solid(boundary, height, depth)
	if err != nil {
		return nil, err
	}
	return k.ToMesh(s, kernel.ClampAccuracy(accuracy))
}

// ToMesh converts a solid to a welded triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s sdf.SDF3, accuracy int) (*kernel.Mesh, error) {
	cells := k.CellsPerAccuracy * accuracy
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: marching cubes produced no triangles: %w", geomerr.ErrDegenerateInput)
	}

	bb := s.BoundingBox()
	size := bb.Max.Sub(bb.Min)
	longest := size.X
	if size.Y > longest {
		longest = size.Y
	}
	if size.Z > longest {
		longest = size.Z
	}
	b := kernel.NewBuilder(longest / float64(cells) * 1e-3)
	for _, tri := range triangles {
		b.AddTriangle(tri[0], tri[1], tri[2])
	}
	return b.Mesh(""), nil
}
