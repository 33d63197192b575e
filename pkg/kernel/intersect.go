package kernel

import (
	"math"

	"github.com/chazu/landform/pkg/curve"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Intersect computes the curves where mesh a crosses the indexed mesh b.
// Segments from every crossing triangle pair are welded within tol and
// chained; closed loops come back with their last point equal to the first.
// Open chains are returned first, then loops, in discovery order.
// Coplanar triangle pairs contribute nothing.
func Intersect(a *Mesh, b *Index, tol float64) []curve.Polyline {
	if a.IsEmpty() || b == nil {
		return nil
	}
	w := NewWelder(tol)
	type seg struct{ i, j int }
	seen := make(map[seg]bool)
	var segs []seg
	for t := 0; t < a.TriangleCount(); t++ {
		ta := a.Triangle(t)
		for _, u := range b.Query(triBox(ta)) {
			p, q, ok := triTri(ta, b.Mesh.Triangle(u), tol)
			if !ok {
				continue
			}
			i, j := w.ID(p), w.ID(q)
			if i == j {
				continue
			}
			k := seg{min(i, j), max(i, j)}
			if seen[k] {
				continue
			}
			seen[k] = true
			segs = append(segs, k)
		}
	}
	if len(segs) == 0 {
		return nil
	}

	adj := make(map[int][]int)
	for n, s := range segs {
		adj[s.i] = append(adj[s.i], n)
		adj[s.j] = append(adj[s.j], n)
	}
	used := make([]bool, len(segs))
	other := func(n, v int) int {
		if segs[n].i == v {
			return segs[n].j
		}
		return segs[n].i
	}
	walk := func(start int) curve.Polyline {
		ids := []int{start}
		cur := start
		for {
			next := -1
			for _, n := range adj[cur] {
				if !used[n] {
					next = n
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
			cur = other(next, cur)
			ids = append(ids, cur)
			if cur == start {
				break
			}
		}
		pl := make(curve.Polyline, len(ids))
		for k, id := range ids {
			pl[k] = w.Point(id)
		}
		return pl
	}

	var open, loops []curve.Polyline
	// Endpoints of open chains have odd degree; start there so each chain
	// is walked end to end.
	for _, s := range segs {
		for _, v := range []int{s.i, s.j} {
			if len(adj[v])%2 == 1 && hasUnused(adj[v], used) {
				open = append(open, walk(v))
			}
		}
	}
	for n, s := range segs {
		if used[n] {
			continue
		}
		pl := walk(s.i)
		if pl.IsClosed(tol) {
			loops = append(loops, pl)
		} else {
			open = append(open, pl)
		}
	}
	return append(open, loops...)
}

func hasUnused(edges []int, used []bool) bool {
	for _, n := range edges {
		if !used[n] {
			return true
		}
	}
	return false
}

// triTri returns the segment shared by triangles a and b.
func triTri(a, b sdf.Triangle3, tol float64) (v3.Vec, v3.Vec, bool) {
	na := a[1].Sub(a[0]).Cross(a[2].Sub(a[0]))
	nb := b[1].Sub(b[0]).Cross(b[2].Sub(b[0]))
	la, lb := na.Length(), nb.Length()
	if la < curve.Zeroish || lb < curve.Zeroish {
		return v3.Vec{}, v3.Vec{}, false
	}
	na, nb = na.DivScalar(la), nb.DivScalar(lb)

	var da, db [3]float64
	for k := 0; k < 3; k++ {
		da[k] = snap(nb.Dot(a[k].Sub(b[0])), tol)
		db[k] = snap(na.Dot(b[k].Sub(a[0])), tol)
	}
	if sameSide(da) || sameSide(db) {
		return v3.Vec{}, v3.Vec{}, false
	}

	pa, qa, ok := planeCut(a, da)
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}
	pb, qb, ok := planeCut(b, db)
	if !ok {
		return v3.Vec{}, v3.Vec{}, false
	}

	dir := na.Cross(nb)
	if dir.Length() < curve.Zeroish {
		return v3.Vec{}, v3.Vec{}, false
	}
	ta0, ta1 := dir.Dot(pa), dir.Dot(qa)
	if ta0 > ta1 {
		ta0, ta1 = ta1, ta0
		pa, qa = qa, pa
	}
	tb0, tb1 := dir.Dot(pb), dir.Dot(qb)
	if tb0 > tb1 {
		tb0, tb1 = tb1, tb0
		pb, qb = qb, pb
	}
	lo, hi := math.Max(ta0, tb0), math.Min(ta1, tb1)
	if lo > hi {
		return v3.Vec{}, v3.Vec{}, false
	}
	at := func(t float64) v3.Vec {
		span := ta1 - ta0
		if span < curve.Zeroish {
			return pa
		}
		return pa.Add(qa.Sub(pa).MulScalar((t - ta0) / span))
	}
	return at(lo), at(hi), true
}

func snap(d, tol float64) float64 {
	if math.Abs(d) <= tol*1e-3 {
		return 0
	}
	return d
}

// sameSide reports whether no plane crossing is possible: all distances
// share a strict sign, or all are zero (coplanar).
func sameSide(d [3]float64) bool {
	if d[0] > 0 && d[1] > 0 && d[2] > 0 {
		return true
	}
	if d[0] < 0 && d[1] < 0 && d[2] < 0 {
		return true
	}
	return d[0] == 0 && d[1] == 0 && d[2] == 0
}

// planeCut returns the segment where triangle t meets the plane its signed
// vertex distances d are measured against.
func planeCut(t sdf.Triangle3, d [3]float64) (v3.Vec, v3.Vec, bool) {
	pts := make([]v3.Vec, 0, 3)
	for k := 0; k < 3; k++ {
		j := (k + 1) % 3
		if d[k] == 0 {
			pts = append(pts, t[k])
		}
		if d[k]*d[j] < 0 {
			s := d[k] / (d[k] - d[j])
			pts = append(pts, t[k].Add(t[j].Sub(t[k]).MulScalar(s)))
		}
	}
	switch len(pts) {
	case 0:
		return v3.Vec{}, v3.Vec{}, false
	case 1:
		return pts[0], pts[0], true
	default:
		return pts[0], pts[1], true
	}
}
