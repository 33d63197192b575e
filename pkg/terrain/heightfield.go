package terrain

import (
	"fmt"
	"math"

	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// HeightFunc returns the ground height at (x, y).
type HeightFunc func(x, y float64) float64

// Heightfield samples h on a cells x cells grid spanning lo..hi and
// triangulates it with upward-facing triangles.
func Heightfield(lo, hi v2.Vec, cells int, h HeightFunc) (*kernel.Mesh, error) {
	if cells < 1 || hi.X <= lo.X || hi.Y <= lo.Y {
		return nil, fmt.Errorf("terrain: heightfield %v-%v with %d cells: %w", lo, hi, cells, geomerr.ErrDegenerateInput)
	}
	dx := (hi.X - lo.X) / float64(cells)
	dy := (hi.Y - lo.Y) / float64(cells)
	m := &kernel.Mesh{PartName: "terrain"}
	for j := 0; j <= cells; j++ {
		for i := 0; i <= cells; i++ {
			x := lo.X + float64(i)*dx
			y := lo.Y + float64(j)*dy
			m.Vertices = append(m.Vertices, x, y, h(x, y))
		}
	}
	row := uint32(cells + 1)
	for j := uint32(0); j < uint32(cells); j++ {
		for i := uint32(0); i < uint32(cells); i++ {
			a := j*row + i
			b, c, d := a+1, a+row+1, a+row
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	m.ComputeNormals()
	return m, nil
}

// Flat returns a square plane of side size centered on the origin at height z.
func Flat(size, z float64) (*kernel.Mesh, error) {
	half := size / 2
	return Heightfield(v2.Vec{X: -half, Y: -half}, v2.Vec{X: half, Y: half}, 1,
		func(x, y float64) float64 { return z })
}

// Plane returns a square tilted plane z = base + slope.X*x + slope.Y*y.
func Plane(size, base float64, slope v2.Vec, cells int) (*kernel.Mesh, error) {
	half := size / 2
	return Heightfield(v2.Vec{X: -half, Y: -half}, v2.Vec{X: half, Y: half}, cells,
		func(x, y float64) float64 { return base + slope.X*x + slope.Y*y })
}

// Wave returns rolling ground: a product of sines with the given amplitude
// and wavelength, centered on the origin.
func Wave(size float64, cells int, amplitude, wavelength float64) (*kernel.Mesh, error) {
	if wavelength <= 0 {
		return Flat(size, 0)
	}
	half := size / 2
	k := 2 * math.Pi / wavelength
	return Heightfield(v2.Vec{X: -half, Y: -half}, v2.Vec{X: half, Y: half}, cells,
		func(x, y float64) float64 { return amplitude * math.Sin(k*x) * math.Cos(k*y) })
}

// Bump returns flat ground with a smooth dome of the given height and
// radius at center.
func Bump(size float64, cells int, center v3.Vec, radius, height float64) (*kernel.Mesh, error) {
	half := size / 2
	return Heightfield(v2.Vec{X: -half, Y: -half}, v2.Vec{X: half, Y: half}, cells,
		func(x, y float64) float64 {
			d := math.Hypot(x-center.X, y-center.Y)
			if d >= radius {
				return center.Z
			}
			return center.Z + height*0.5*(1+math.Cos(math.Pi*d/radius))
		})
}
