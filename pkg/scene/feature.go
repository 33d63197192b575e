package scene

import (
	"fmt"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/sampler"
	"github.com/chazu/landform/pkg/terrain"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FeatureKind enumerates the kinds of path-driven features.
type FeatureKind int

const (
	KindVegetation FeatureKind = iota // hedges, shrub rows, planting beds
	KindFence                         // fences, walls, barriers
)

func (k FeatureKind) String() string {
	switch k {
	case KindVegetation:
		return "vegetation"
	case KindFence:
		return "fence"
	default:
		return "unknown"
	}
}

// DefaultSides returns the point-profile polygon side count used when a
// feature does not set one: round-ish shrubs, square posts.
func (k FeatureKind) DefaultSides() int {
	if k == KindFence {
		return 4
	}
	return 8
}

// DefaultMode returns the sampling mode used when a feature does not set
// one.
func (k FeatureKind) DefaultMode() sampler.Mode {
	if k == KindFence {
		return sampler.ModeLinear
	}
	return sampler.ModePoint
}

// SourceRef locates the declaration that produced an element.
type SourceRef struct {
	Line int `json:"line"`
}

// ---------------------------------------------------------------------------
// Materials
// ---------------------------------------------------------------------------

// Material is a display descriptor carried through to outputs.
type Material struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"` // "#rrggbb"
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// ---------------------------------------------------------------------------
// Features
// ---------------------------------------------------------------------------

// Path is one input polyline and the grouping key its outputs are stored
// under (for example "{0;1}").
type Path struct {
	Group  string         `json:"group"`
	Points curve.Polyline `json:"points"`
}

// Feature is a vegetation or fence request: a set of paths plus the sizes
// and policies that turn them into volumes.
type Feature struct {
	ID       ID             `json:"id"`
	Kind     FeatureKind    `json:"kind"`
	Name     string         `json:"name"`
	Source   SourceRef      `json:"source"`
	Paths    []Path         `json:"paths"`
	Params   sampler.Params `json:"params"`
	Mode     sampler.Mode   `json:"mode"`
	Sides    int            `json:"sides"`    // point-profile polygon sides; 0 means kind default
	Accuracy int            `json:"accuracy"` // 0 means scene default
	Attach   bool           `json:"attach"`   // conform volumes to the terrain
	Material string         `json:"material,omitempty"`
}

// EffectiveSides returns Sides or the kind default.
func (f *Feature) EffectiveSides() int {
	if f.Sides == 0 {
		return f.Kind.DefaultSides()
	}
	return f.Sides
}

// ---------------------------------------------------------------------------
// Brushes
// ---------------------------------------------------------------------------

// Brush is a particle stroke request centered on a terrain point.
type Brush struct {
	ID       ID           `json:"id"`
	Name     string       `json:"name"`
	Source   SourceRef    `json:"source"`
	Center   v3.Vec       `json:"center"`
	Params   brush.Params `json:"params"`
	Material string       `json:"material,omitempty"`
}

// ---------------------------------------------------------------------------
// Terrain
// ---------------------------------------------------------------------------

// TerrainKind selects a terrain source.
type TerrainKind string

const (
	TerrainFlat  TerrainKind = "flat"
	TerrainPlane TerrainKind = "plane"
	TerrainWave  TerrainKind = "wave"
	TerrainBump  TerrainKind = "bump"
	TerrainSTL   TerrainKind = "stl"
)

// Default terrain settings.
const (
	DefaultTerrainSize  = 200.0
	DefaultTerrainCells = 64
)

// TerrainSpec describes the ground a scene is placed on. Procedural kinds
// are centered on the origin; TerrainSTL loads File.
type TerrainSpec struct {
	Kind       TerrainKind `json:"kind" yaml:"kind"`
	Size       float64     `json:"size" yaml:"size"`
	Cells      int         `json:"cells" yaml:"cells"`
	Base       float64     `json:"base" yaml:"base"`             // flat height, plane and bump base
	Slope      v2.Vec      `json:"slope" yaml:"slope"`           // plane gradient
	Amplitude  float64     `json:"amplitude" yaml:"amplitude"`   // wave amplitude, bump height
	Wavelength float64     `json:"wavelength" yaml:"wavelength"` // wave period
	Radius     float64     `json:"radius" yaml:"radius"`         // bump radius
	File       string      `json:"file,omitempty" yaml:"file,omitempty"`
}

// Build constructs the terrain ts describes.
func (ts TerrainSpec) Build() (*terrain.Terrain, error) {
	size := ts.Size
	if size == 0 {
		size = DefaultTerrainSize
	}
	cells := ts.Cells
	if cells == 0 {
		cells = DefaultTerrainCells
	}

	var (
		m   *kernel.Mesh
		err error
	)
	switch ts.Kind {
	case TerrainFlat, "":
		m, err = terrain.Flat(size, ts.Base)
	case TerrainPlane:
		m, err = terrain.Plane(size, ts.Base, ts.Slope, cells)
	case TerrainWave:
		m, err = terrain.Wave(size, cells, ts.Amplitude, ts.Wavelength)
	case TerrainBump:
		m, err = terrain.Bump(size, cells, v3.Vec{Z: ts.Base}, ts.Radius, ts.Amplitude)
	case TerrainSTL:
		m, err = terrain.LoadSTL(ts.File)
	default:
		return nil, fmt.Errorf("scene: unknown terrain kind %q: %w", ts.Kind, geomerr.ErrDegenerateInput)
	}
	if err != nil {
		return nil, fmt.Errorf("scene: building %s terrain: %w", ts.Kind, err)
	}
	return terrain.New(m)
}
