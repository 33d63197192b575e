package brush

import (
	"fmt"
	"math"
	"math/rand"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/fogleman/poissondisc"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MaxGrid bounds the grid resolution along each axis.
const MaxGrid = 1000

// poissonAttempts is the rejection count per active sample (Bridson's k).
const poissonAttempts = 30

// SampleMode selects how stroke candidates are generated.
type SampleMode int

const (
	// ModeGrid samples a regular u x v grid over the zone's planar cap.
	ModeGrid SampleMode = iota
	// ModePoisson samples a blue-noise set with minimum spacing
	// diameter*sparsity.
	ModePoisson
)

func (m SampleMode) String() string {
	switch m {
	case ModeGrid:
		return "grid"
	case ModePoisson:
		return "poisson"
	default:
		return fmt.Sprintf("SampleMode(%d)", int(m))
	}
}

// ParseSampleMode converts "grid" or "poisson" into a SampleMode.
func ParseSampleMode(s string) (SampleMode, error) {
	switch s {
	case "", "grid":
		return ModeGrid, nil
	case "poisson":
		return ModePoisson, nil
	}
	return 0, fmt.Errorf("brush: unknown sample mode %q, expected grid or poisson", s)
}

// Stroke is the particle bed produced by one stroke update.
type Stroke struct {
	Points     []v3.Vec
	Grid       int // grid resolution per axis; 0 in poisson mode
	Candidates int // samples generated before containment and projection
	Misses     int // contained samples with no terrain beneath
}

// Sparsity returns s floored to 1 so particles never overlap.
func Sparsity(s float64) float64 {
	return math.Max(s, 1)
}

// GridCount returns the grid resolution for a zone of radius r filled with
// particles of the given diameter: floor(2r/(diameter*sparsity)), capped at
// MaxGrid. Non-positive sizes give 0.
func GridCount(r, diameter, sparsity float64) int {
	if r <= 0 || diameter <= 0 {
		return 0
	}
	n := math.Floor(2 * r / (diameter * Sparsity(sparsity)))
	if n > MaxGrid {
		return MaxGrid
	}
	return int(n)
}

// GridCandidates samples an n x n grid over the zone's bounding square,
// rows along +Y and columns along +X. Sample (i, j) sits at parameter
// (i/(n-1), j/(n-1)) of the square; a single sample sits at the center.
func GridCandidates(z Zone, n int) []orb.Point {
	if n <= 0 {
		return nil
	}
	x0, y0 := z.Center.X-z.Radius, z.Center.Y-z.Radius
	side := 2 * z.Radius
	param := func(i int) float64 {
		if n == 1 {
			return 0.5
		}
		return float64(i) / float64(n-1)
	}
	pts := make([]orb.Point, 0, n*n)
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			pts = append(pts, orb.Point{x0 + side*param(i), y0 + side*param(j)})
		}
	}
	return pts
}

// PoissonCandidates samples the zone's bounding square with minimum
// spacing. The generator is seeded so equal seeds give equal strokes.
func PoissonCandidates(z Zone, spacing float64, seed int64) []orb.Point {
	if spacing <= 0 {
		return nil
	}
	rnd := rand.New(rand.NewSource(seed))
	samples := poissondisc.Sample(
		z.Center.X-z.Radius, z.Center.Y-z.Radius,
		z.Center.X+z.Radius, z.Center.Y+z.Radius,
		spacing, poissonAttempts, rnd)
	pts := make([]orb.Point, len(samples))
	for i, s := range samples {
		pts[i] = orb.Point{s.X, s.Y}
	}
	return pts
}

// containment tests points against a zone boundary in plan view.
type containment struct {
	ring   orb.Ring
	tol    float64
	center orb.Point
	inner  float64 // points closer than this to center are inside
}

func newContainment(z Zone, tol float64) containment {
	ring := make(orb.Ring, 0, len(z.Boundary)+1)
	for _, p := range z.Boundary {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	c := containment{ring: ring, tol: tol, center: orb.Point{z.Center.X, z.Center.Y}}
	if z.Closed() && len(ring) > 1 {
		segments := float64(len(ring) - 1)
		c.inner = z.Radius*math.Cos(math.Pi/segments) - tol
	}
	return c
}

// strictlyInside reports whether p lies inside the ring and farther than
// tol from every boundary segment.
func (c containment) strictlyInside(p orb.Point) bool {
	if c.inner > 0 && planar.Distance(c.center, p) < c.inner {
		return true
	}
	if len(c.ring) < 4 || !planar.RingContains(c.ring, p) {
		return false
	}
	for i := 1; i < len(c.ring); i++ {
		if planar.DistanceFromSegment(c.ring[i-1], c.ring[i], p) <= c.tol {
			return false
		}
	}
	return true
}
