// Package terrain wraps the ground mesh the pipeline places features on.
// A Terrain is immutable after construction and safe for concurrent reads.
package terrain

import (
	"fmt"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/logging"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Terrain is a triangulated ground surface with a triangle index.
type Terrain struct {
	mesh  *kernel.Mesh
	index *kernel.Index
}

// New indexes m. A nil or empty mesh is degenerate input.
func New(m *kernel.Mesh) (*Terrain, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("terrain: empty mesh: %w", geomerr.ErrDegenerateInput)
	}
	idx, err := kernel.NewIndex(m)
	if err != nil {
		return nil, fmt.Errorf("terrain: %w", err)
	}
	logging.Logger().Debug("terrain indexed",
		"vertices", m.VertexCount(), "triangles", m.TriangleCount())
	return &Terrain{mesh: m, index: idx}, nil
}

// Mesh returns the underlying mesh. Callers must not modify it.
func (t *Terrain) Mesh() *kernel.Mesh { return t.mesh }

// Index returns the triangle index used for intersection queries.
func (t *Terrain) Index() *kernel.Index { return t.index }

// Box returns the terrain bounds.
func (t *Terrain) Box() sdf.Box3 { return t.index.Box() }

// HeightAt returns the Z of the topmost surface above or below (x, y).
func (t *Terrain) HeightAt(x, y float64) (float64, bool) {
	zs := t.index.RayZ(x, y)
	if len(zs) == 0 {
		return 0, false
	}
	return zs[0], true
}

// ProjectPoint moves p vertically onto the terrain.
func (t *Terrain) ProjectPoint(p v3.Vec) (v3.Vec, bool) {
	z, ok := t.HeightAt(p.X, p.Y)
	if !ok {
		return p, false
	}
	return v3.Vec{X: p.X, Y: p.Y, Z: z}, true
}

// ProjectPolyline drapes pl onto the terrain vertex by vertex. Vertices with
// no terrain beneath them are dropped; misses counts them. When nothing
// projects, the error wraps geomerr.ErrProjectionFailure.
func (t *Terrain) ProjectPolyline(pl curve.Polyline) (curve.Polyline, int, error) {
	out := make(curve.Polyline, 0, len(pl))
	misses := 0
	for _, p := range pl {
		q, ok := t.ProjectPoint(p)
		if !ok {
			misses++
			continue
		}
		out = append(out, q)
	}
	if len(out) == 0 {
		return nil, misses, fmt.Errorf("terrain: no terrain under %d points: %w", len(pl), geomerr.ErrProjectionFailure)
	}
	return out, misses, nil
}
