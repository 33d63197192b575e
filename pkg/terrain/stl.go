package terrain

import (
	"fmt"

	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/logging"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
)

// stlWeld merges the per-facet copies of each STL vertex. Copies are
// bit-identical float32 values, so any small tolerance works.
const stlWeld = 1e-6

// LoadSTL reads a terrain mesh from an ASCII or binary STL file.
func LoadSTL(path string) (*kernel.Mesh, error) {
	tris, err := render.LoadSTL(path)
	if err != nil {
		return nil, fmt.Errorf("terrain: %s: %w", path, err)
	}
	m := FromTriangles(tris)
	if m.IsEmpty() {
		return nil, fmt.Errorf("terrain: %s: no facets: %w", path, geomerr.ErrDegenerateInput)
	}
	logging.Logger().Info("terrain loaded", "path", path, "facets", len(tris), "vertices", m.VertexCount())
	return m, nil
}

// FromTriangles welds a triangle soup into an indexed terrain mesh.
// Facets that collapse when welded are dropped.
func FromTriangles(tris []*sdf.Triangle3) *kernel.Mesh {
	b := kernel.NewBuilder(stlWeld)
	for _, t := range tris {
		if t == nil {
			continue
		}
		b.AddTriangle(t[0], t[1], t[2])
	}
	return b.Mesh("terrain")
}
