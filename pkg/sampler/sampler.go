// Package sampler walks an input path and yields the samples the feature
// pipeline builds profiles from, under one of two distribution policies.
package sampler

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/chazu/landform/pkg/curve"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mode selects the distribution policy.
type Mode int

const (
	// ModePoint places discrete samples every thickness+gap along the path.
	ModePoint Mode = iota
	// ModeLinear yields one sample covering the whole path, to be offset into
	// a continuous strip.
	ModeLinear
)

func (m Mode) String() string {
	switch m {
	case ModePoint:
		return "point"
	case ModeLinear:
		return "linear"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "point" or "linear" into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "point":
		return ModePoint, nil
	case "linear":
		return ModeLinear, nil
	}
	return 0, fmt.Errorf("sampler: unknown mode %q, expected point or linear", s)
}

// Randomness holds the jitter fraction of each size parameter. Zero means
// no jitter.
type Randomness struct {
	Thickness float64 `json:"thickness" yaml:"thickness"`
	Height    float64 `json:"height" yaml:"height"`
	Depth     float64 `json:"depth" yaml:"depth"`
	Gap       float64 `json:"gap" yaml:"gap"`
}

// Params are the base feature sizes.
type Params struct {
	Thickness  float64    `json:"thickness" yaml:"thickness"`
	Height     float64    `json:"height" yaml:"height"`
	Depth      float64    `json:"depth" yaml:"depth"`
	Gap        float64    `json:"gap" yaml:"gap"`
	Randomness Randomness `json:"randomness" yaml:"randomness"`
}

// Spacing is the distance between consecutive point-mode samples.
func (p Params) Spacing() float64 { return p.Thickness + p.Gap }

// SampleParams are the sizes derived for one sample.
type SampleParams struct {
	Thickness float64 `json:"thickness"`
	Height    float64 `json:"height"`
	Depth     float64 `json:"depth"`
	Gap       float64 `json:"gap"`
}

// Base returns the unjittered sizes.
func (p Params) Base() SampleParams {
	return SampleParams{Thickness: p.Thickness, Height: p.Height, Depth: p.Depth, Gap: p.Gap}
}

// Jitter derives the sizes for sample index. Each size becomes
// base*(1+u*randomness) with u drawn uniformly from [-1,1), one draw per
// size in the order thickness, height, depth, gap. The generator is seeded
// with the index alone, so the same index always yields the same values.
// Results are clamped at zero.
func Jitter(index int, p Params) SampleParams {
	r := rand.New(rand.NewPCG(uint64(index), 0))
	draw := func(base, randomness float64) float64 {
		u := r.Float64()*2 - 1
		return math.Max(0, base*(1+u*randomness))
	}
	return SampleParams{
		Thickness: draw(p.Thickness, p.Randomness.Thickness),
		Height:    draw(p.Height, p.Randomness.Height),
		Depth:     draw(p.Depth, p.Randomness.Depth),
		Gap:       draw(p.Gap, p.Randomness.Gap),
	}
}

// Sample is one position along a path.
type Sample struct {
	Index   int          `json:"index"`
	T       float64      `json:"t"`
	Point   v3.Vec       `json:"point"`
	Tangent v3.Vec       `json:"tangent"`
	Params  SampleParams `json:"params"`
}

// Samples distributes samples along path. In point mode the path is divided
// every thickness+gap (base values) with the division count allowing tol of
// slack; a path shorter than one spacing yields no samples. In linear mode a
// single unjittered sample at the path start represents the whole path.
func Samples(path curve.Polyline, p Params, mode Mode, tol float64) []Sample {
	if len(path) < 2 {
		return nil
	}
	switch mode {
	case ModeLinear:
		if path.Length() <= tol {
			return nil
		}
		return []Sample{{
			Index:   0,
			T:       0,
			Point:   path.Start(),
			Tangent: path.TangentAt(0),
			Params:  p.Base(),
		}}
	case ModePoint:
		params := path.DivideByLength(p.Spacing(), tol)
		out := make([]Sample, 0, len(params))
		for j, t := range params {
			out = append(out, Sample{
				Index:   j,
				T:       t,
				Point:   path.PointAt(t),
				Tangent: path.TangentAt(t),
				Params:  Jitter(j, p),
			})
		}
		return out
	}
	return nil
}
