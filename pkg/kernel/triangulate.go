package kernel

import (
	"github.com/chazu/landform/pkg/curve"
)

// TriangulateXY triangulates a simple polygon by ear clipping in the XY
// plane. The closing point of a closed ring is ignored. It returns index
// triples into ring (without its closing point), each wound
// counter-clockwise seen from +Z regardless of the ring's winding.
func TriangulateXY(ring curve.Polyline) [][3]int {
	n := len(ring)
	if n > 1 && ring[0].Sub(ring[n-1]).Length() < curve.Zeroish {
		n--
	}
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	if ring[:n].SignedArea() >= 0 {
		for i := range idx {
			idx[i] = i
		}
	} else {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	}

	out := make([][3]int, 0, n-2)
	guard := 0
	for len(idx) > 3 && guard < 2*n*n {
		guard++
		clipped := false
		for k := range idx {
			a := idx[(k+len(idx)-1)%len(idx)]
			b := idx[k]
			c := idx[(k+1)%len(idx)]
			if !isEar(ring, idx, a, b, c) {
				continue
			}
			out = append(out, [3]int{a, b, c})
			idx = append(idx[:k], idx[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// No ear found on a degenerate or self-touching ring; fan the
			// remainder so the cap still closes.
			for k := 1; k+1 < len(idx); k++ {
				out = append(out, [3]int{idx[0], idx[k], idx[k+1]})
			}
			return out
		}
	}
	if len(idx) == 3 {
		out = append(out, [3]int{idx[0], idx[1], idx[2]})
	}
	return out
}

func isEar(ring curve.Polyline, idx []int, a, b, c int) bool {
	pa, pb, pc := ring[a], ring[b], ring[c]
	if cross2(pa.X, pa.Y, pb.X, pb.Y, pc.X, pc.Y) <= curve.Zeroish {
		return false
	}
	for _, i := range idx {
		if i == a || i == b || i == c {
			continue
		}
		p := ring[i]
		if cross2(pa.X, pa.Y, pb.X, pb.Y, p.X, p.Y) >= 0 &&
			cross2(pb.X, pb.Y, pc.X, pc.Y, p.X, p.Y) >= 0 &&
			cross2(pc.X, pc.Y, pa.X, pa.Y, p.X, p.Y) >= 0 {
			return false
		}
	}
	return true
}

func cross2(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}
