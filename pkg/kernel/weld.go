package kernel

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Welder assigns ids to points, merging any point within tol of an existing
// one. Points are bucketed in a uniform hash grid of cell size tol, so a
// lookup only inspects the 27 neighbouring cells.
type Welder struct {
	tol   float64
	cells map[[3]int64][]int
	pts   []v3.Vec
}

// NewWelder returns a Welder merging points within tol. A non-positive tol
// merges only identical points.
func NewWelder(tol float64) *Welder {
	if tol <= 0 {
		tol = 1e-12
	}
	return &Welder{tol: tol, cells: make(map[[3]int64][]int)}
}

func (w *Welder) cell(p v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}

// ID returns the id of p.
func (w *Welder) ID(p v3.Vec) int {
	c := w.cell(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, id := range w.cells[[3]int64{c[0] + dx, c[1] + dy, c[2] + dz}] {
					if w.pts[id].Sub(p).Length() <= w.tol {
						return id
					}
				}
			}
		}
	}
	id := len(w.pts)
	w.pts = append(w.pts, p)
	w.cells[c] = append(w.cells[c], id)
	return id
}

// Point returns the representative point of id.
func (w *Welder) Point(id int) v3.Vec { return w.pts[id] }

// Points returns all representative points in id order.
func (w *Welder) Points() []v3.Vec { return w.pts }

// Len returns the number of distinct points.
func (w *Welder) Len() int { return len(w.pts) }
