package kernel

import (
	"fmt"
	"math"
	"sort"

	"github.com/deadsy/sdfx/sdf"
	"github.com/dhconnelly/rtreego"
)

// boxPad keeps R-tree rectangles non-degenerate; rtreego rejects zero
// extents, and axis-aligned triangles are flat along one axis.
const boxPad = 1e-9

// Index is an R-tree over the triangles of a mesh. The mesh must not change
// after indexing.
type Index struct {
	Mesh *Mesh
	tree *rtreego.Rtree
	box  sdf.Box3
}

type triEntry struct {
	id   int
	rect rtreego.Rect
}

func (e *triEntry) Bounds() rtreego.Rect { return e.rect }

// NewIndex builds a triangle index over m.
func NewIndex(m *Mesh) (*Index, error) {
	if m.IsEmpty() {
		return nil, fmt.Errorf("kernel: cannot index an empty mesh")
	}
	idx := &Index{Mesh: m, tree: rtreego.NewTree(3, 25, 50), box: m.Box()}
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		r, err := boxRect(triBox(tri))
		if err != nil {
			return nil, fmt.Errorf("kernel: indexing triangle %d: %w", t, err)
		}
		idx.tree.Insert(&triEntry{id: t, rect: r})
	}
	return idx, nil
}

// Box returns the bounds of the indexed mesh.
func (idx *Index) Box() sdf.Box3 { return idx.box }

// Query returns the ids of triangles whose bounds intersect b, ascending.
func (idx *Index) Query(b sdf.Box3) []int {
	r, err := boxRect(b)
	if err != nil {
		return nil
	}
	hits := idx.tree.SearchIntersect(r)
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*triEntry).id)
	}
	sort.Ints(out)
	return out
}

// RayZ intersects the vertical line through (x, y) with the mesh and
// returns the z of every hit, highest first.
func (idx *Index) RayZ(x, y float64) []float64 {
	probe := idx.box
	probe.Min.X, probe.Max.X = x, x
	probe.Min.Y, probe.Max.Y = y, y
	var zs []float64
	for _, t := range idx.Query(probe) {
		if z, ok := verticalHit(idx.Mesh.Triangle(t), x, y); ok {
			zs = append(zs, z)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(zs)))
	return dedupeSorted(zs, 1e-9)
}

func verticalHit(tri sdf.Triangle3, x, y float64) (float64, bool) {
	a, b, c := tri[0], tri[1], tri[2]
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if math.Abs(det) < 1e-14 {
		return 0, false
	}
	l1 := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	l2 := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	l3 := 1 - l1 - l2
	const eps = -1e-9
	if l1 < eps || l2 < eps || l3 < eps {
		return 0, false
	}
	return l1*a.Z + l2*b.Z + l3*c.Z, true
}

func dedupeSorted(zs []float64, tol float64) []float64 {
	if len(zs) < 2 {
		return zs
	}
	out := zs[:1]
	for _, z := range zs[1:] {
		if math.Abs(out[len(out)-1]-z) > tol {
			out = append(out, z)
		}
	}
	return out
}

func triBox(tri sdf.Triangle3) sdf.Box3 {
	b := sdf.Box3{Min: tri[0], Max: tri[0]}
	for _, v := range tri[1:] {
		b.Min.X, b.Max.X = math.Min(b.Min.X, v.X), math.Max(b.Max.X, v.X)
		b.Min.Y, b.Max.Y = math.Min(b.Min.Y, v.Y), math.Max(b.Max.Y, v.Y)
		b.Min.Z, b.Max.Z = math.Min(b.Min.Z, v.Z), math.Max(b.Max.Z, v.Z)
	}
	return b
}

func boxRect(b sdf.Box3) (rtreego.Rect, error) {
	p := rtreego.Point{b.Min.X - boxPad, b.Min.Y - boxPad, b.Min.Z - boxPad}
	lengths := []float64{
		b.Max.X - b.Min.X + 2*boxPad,
		b.Max.Y - b.Min.Y + 2*boxPad,
		b.Max.Z - b.Min.Z + 2*boxPad,
	}
	return rtreego.NewRect(p, lengths)
}
