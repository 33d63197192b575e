package brush

import (
	"fmt"

	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/logging"
	"github.com/chazu/landform/pkg/terrain"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/paulmach/orb"
)

// Params configure a brush.
type Params struct {
	Radius    float64    `json:"radius" yaml:"radius"`
	Diameter  float64    `json:"diameter" yaml:"diameter"`
	Sparsity  float64    `json:"sparsity" yaml:"sparsity"`
	Tolerance float64    `json:"tolerance" yaml:"tolerance"`
	Mode      SampleMode `json:"mode" yaml:"-"`
	Seed      int64      `json:"seed" yaml:"seed"`
	Lift      float64    `json:"lift" yaml:"lift"` // 0 means DisplayLift
}

// Brush tracks a zone on the terrain and regenerates strokes inside it.
// It holds only its center, radius and current zone; every update rebuilds
// from scratch.
type Brush struct {
	terrain *terrain.Terrain
	params  Params
	center  v3.Vec
	zone    *Zone
}

// New returns a brush over t with no zone yet.
func New(t *terrain.Terrain, p Params) *Brush {
	return &Brush{terrain: t, params: p}
}

// Params returns the brush configuration.
func (b *Brush) Params() Params { return b.params }

// Zone returns the current zone, if one has been built.
func (b *Brush) Zone() (Zone, bool) {
	if b.zone == nil {
		return Zone{}, false
	}
	return *b.zone, true
}

// UpdateZone moves the brush to center and drapes a new zone. On failure
// the previous zone is discarded and the error is returned; a brush without
// a zone produces empty strokes.
func (b *Brush) UpdateZone(center v3.Vec) error {
	b.center = center
	return b.rebuild(0)
}

// UpdateZoneRadius changes the radius and rebuilds the zone around the
// stored center, lifted by the brush's display lift.
func (b *Brush) UpdateZoneRadius(radius float64) error {
	b.params.Radius = radius
	lift := b.params.Lift
	if lift <= 0 {
		lift = DisplayLift
	}
	return b.rebuild(lift)
}

func (b *Brush) rebuild(lift float64) error {
	b.zone = nil
	z, err := BuildZone(b.terrain, b.center, b.params.Radius, b.params.Tolerance)
	if err != nil {
		return err
	}
	if lift != 0 {
		z = z.Lifted(lift)
	}
	if z.Misses > 0 {
		logging.Logger().Warn("zone partially off terrain",
			"center", fmt.Sprintf("(%g, %g)", z.Center.X, z.Center.Y), "misses", z.Misses)
	}
	b.zone = &z
	return nil
}

// UpdateStroke samples the current zone, keeps the samples strictly inside
// its boundary (more than tol from it), projects them onto the terrain and
// lifts each by one particle diameter. Without a zone, or with a grid
// resolution of zero, the stroke is empty and no error is returned.
func (b *Brush) UpdateStroke(tol float64) (Stroke, error) {
	if b.zone == nil {
		return Stroke{}, nil
	}
	z := *b.zone
	p := b.params

	var candidates []orb.Point
	var grid int
	switch p.Mode {
	case ModeGrid:
		grid = GridCount(z.Radius, p.Diameter, p.Sparsity)
		candidates = GridCandidates(z, grid)
	case ModePoisson:
		if p.Diameter > 0 {
			candidates = PoissonCandidates(z, p.Diameter*Sparsity(p.Sparsity), p.Seed)
		}
	default:
		return Stroke{}, fmt.Errorf("brush: %v: %w", p.Mode, geomerr.ErrDegenerateInput)
	}

	s := Stroke{Grid: grid, Candidates: len(candidates)}
	inside := newContainment(z, tol)
	for _, c := range candidates {
		if !inside.strictlyInside(c) {
			continue
		}
		q, ok := b.terrain.ProjectPoint(v3.Vec{X: c[0], Y: c[1]})
		if !ok {
			s.Misses++
			continue
		}
		q.Z += p.Diameter
		s.Points = append(s.Points, q)
	}
	logging.Logger().Debug("stroke updated",
		"mode", p.Mode.String(), "candidates", s.Candidates, "points", len(s.Points))
	return s, nil
}
