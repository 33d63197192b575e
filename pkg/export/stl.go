package export

import (
	"fmt"

	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	"github.com/samber/lo"
)

// WriteSTL writes the triangles of every mesh to one binary STL file.
func WriteSTL(path string, meshes ...*kernel.Mesh) error {
	tris := lo.FlatMap(meshes, func(m *kernel.Mesh, _ int) []*sdf.Triangle3 {
		if m.IsEmpty() {
			return nil
		}
		return m.Triangles()
	})
	if len(tris) == 0 {
		return fmt.Errorf("export: %s: no triangles: %w", path, geomerr.ErrDegenerateInput)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("export: %s: %w", path, err)
	}
	return nil
}
