package curve

import v3 "github.com/deadsy/sdfx/vec/v3"

// Join chains polylines whose ends meet within tol. Pieces are reversed as
// needed. The joined vertex at each seam is the end of the earlier piece.
// A chain that returns to its own start is closed exactly.
func Join(pieces []Polyline, tol float64) []Polyline {
	used := make([]bool, len(pieces))
	var out []Polyline

	for i, first := range pieces {
		if used[i] || len(first) == 0 {
			continue
		}
		used[i] = true
		chain := first.Clone()

		for grew := true; grew; {
			grew = false
			for j, next := range pieces {
				if used[j] || len(next) == 0 {
					continue
				}
				switch {
				case near(chain.End(), next.Start(), tol):
					chain = append(chain, next[1:]...)
				case near(chain.End(), next.End(), tol):
					chain = append(chain, next.Reverse()[1:]...)
				case near(chain.Start(), next.End(), tol):
					chain = append(next[:len(next)-1].Clone(), chain...)
				case near(chain.Start(), next.Start(), tol):
					chain = append(next.Reverse()[:len(next)-1], chain...)
				default:
					continue
				}
				used[j] = true
				grew = true
			}
		}

		if len(chain) > 2 && near(chain.Start(), chain.End(), tol) {
			chain[len(chain)-1] = chain[0]
		}
		out = append(out, chain)
	}
	return out
}

func near(a, b v3.Vec, tol float64) bool {
	return a.Sub(b).Length() <= tol
}
