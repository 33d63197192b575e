package kernel

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is an indexed triangle mesh.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
// Coordinates are float64 because terrain conformance intersects meshes at
// world scale; viewers convert to float32 at the boundary.
type Mesh struct {
	Vertices []float64 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float64 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	PartName string    `json:"partName"` // which feature output this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return m == nil || len(m.Vertices) == 0 || len(m.Indices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) v3.Vec {
	return v3.Vec{X: m.Vertices[i*3], Y: m.Vertices[i*3+1], Z: m.Vertices[i*3+2]}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) sdf.Triangle3 {
	return sdf.Triangle3{
		m.Vertex(int(m.Indices[i*3])),
		m.Vertex(int(m.Indices[i*3+1])),
		m.Vertex(int(m.Indices[i*3+2])),
	}
}

// Triangles returns the mesh as a triangle soup, the form sdfx renderers
// and writers consume.
func (m *Mesh) Triangles() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, m.TriangleCount())
	for i := range out {
		t := m.Triangle(i)
		out[i] = &t
	}
	return out
}

// Box returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Box() sdf.Box3 {
	if m.IsEmpty() {
		return sdf.Box3{}
	}
	lo, hi := m.Vertex(0), m.Vertex(0)
	for i := 1; i < m.VertexCount(); i++ {
		v := m.Vertex(i)
		lo = v3.Vec{X: math.Min(lo.X, v.X), Y: math.Min(lo.Y, v.Y), Z: math.Min(lo.Z, v.Z)}
		hi = v3.Vec{X: math.Max(hi.X, v.X), Y: math.Max(hi.Y, v.Y), Z: math.Max(hi.Z, v.Z)}
	}
	return sdf.Box3{Min: lo, Max: hi}
}

// Translate returns a copy of the mesh moved by d.
func (m *Mesh) Translate(d v3.Vec) *Mesh {
	c := &Mesh{
		Vertices: make([]float64, len(m.Vertices)),
		Normals:  append([]float64(nil), m.Normals...),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: m.PartName,
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		c.Vertices[i] = m.Vertices[i] + d.X
		c.Vertices[i+1] = m.Vertices[i+1] + d.Y
		c.Vertices[i+2] = m.Vertices[i+2] + d.Z
	}
	return c
}

// IsClosed reports whether every directed edge is matched by exactly one
// opposite edge, i.e. the mesh is a closed, consistently oriented manifold.
func (m *Mesh) IsClosed() bool {
	if m.IsEmpty() {
		return false
	}
	type edge struct{ a, b uint32 }
	count := make(map[edge]int, len(m.Indices))
	for t := 0; t < m.TriangleCount(); t++ {
		for k := 0; k < 3; k++ {
			a, b := m.Indices[t*3+k], m.Indices[t*3+(k+1)%3]
			count[edge{a, b}]++
		}
	}
	for e, n := range count {
		if n != 1 || count[edge{e.b, e.a}] != 1 {
			return false
		}
	}
	return true
}

// SignedVolume returns the enclosed volume. It is positive when the
// triangles wind counter-clockwise seen from outside.
func (m *Mesh) SignedVolume() float64 {
	var vol float64
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		vol += tri[0].Dot(tri[1].Cross(tri[2]))
	}
	return vol / 6
}

// ComputeNormals fills Normals with per-vertex normals averaged from the
// area-weighted face normals of incident triangles.
func (m *Mesh) ComputeNormals() {
	normals := make([]float64, len(m.Vertices))
	for t := 0; t < m.TriangleCount(); t++ {
		tri := m.Triangle(t)
		n := tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0]))
		for k := 0; k < 3; k++ {
			idx := m.Indices[t*3+k]
			normals[idx*3] += n.X
			normals[idx*3+1] += n.Y
			normals[idx*3+2] += n.Z
		}
	}
	for i := 0; i < len(normals); i += 3 {
		l := math.Sqrt(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])
		if l > 1e-12 {
			normals[i] /= l
			normals[i+1] /= l
			normals[i+2] /= l
		}
	}
	m.Normals = normals
}

// Builder assembles a welded Mesh from triangles. Vertices closer than the
// weld tolerance share an index.
type Builder struct {
	w       *Welder
	indices []uint32
}

// NewBuilder returns a Builder that welds vertices within tol.
func NewBuilder(tol float64) *Builder {
	return &Builder{w: NewWelder(tol)}
}

// Vertex returns the index of v, adding it if no vertex lies within the
// weld tolerance.
func (b *Builder) Vertex(v v3.Vec) uint32 {
	return uint32(b.w.ID(v))
}

// AddTriangle appends triangle abc. Triangles that collapse after welding
// are dropped.
func (b *Builder) AddTriangle(a, c, d v3.Vec) {
	ia, ic, id := b.Vertex(a), b.Vertex(c), b.Vertex(d)
	b.AddIndexed(ia, ic, id)
}

// AddIndexed appends a triangle by vertex index.
func (b *Builder) AddIndexed(a, c, d uint32) {
	if a == c || c == d || a == d {
		return
	}
	b.indices = append(b.indices, a, c, d)
}

// Mesh returns the assembled mesh with normals computed.
func (b *Builder) Mesh(name string) *Mesh {
	pts := b.w.Points()
	m := &Mesh{
		Vertices: make([]float64, 0, len(pts)*3),
		Indices:  append([]uint32(nil), b.indices...),
		PartName: name,
	}
	for _, p := range pts {
		m.Vertices = append(m.Vertices, p.X, p.Y, p.Z)
	}
	m.ComputeNormals()
	return m
}
