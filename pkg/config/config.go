// Package config loads the settings that tune a landform run: tolerances,
// the extrusion backend, worker count, brush defaults and export toggles.
// Settings come from a YAML file and may be overridden by command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/engine"
	"github.com/chazu/landform/pkg/export"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/pipeline"
	"github.com/chazu/landform/pkg/scene"
	"github.com/chazu/landform/pkg/terrain"
	"gopkg.in/yaml.v3"
)

// DefaultCellsPerAccuracy is the sdfx marching cubes resolution per
// accuracy step.
const DefaultCellsPerAccuracy = 20

// Config captures the tunable parameters of a run.
type Config struct {
	Tolerance        float64       `yaml:"tolerance"`
	Accuracy         int           `yaml:"accuracy"`
	Workers          int           `yaml:"workers"`
	Kernel           string        `yaml:"kernel"` // "ruled" or "sdfx"
	CellsPerAccuracy int           `yaml:"cells_per_accuracy"`
	EvalTimeout      time.Duration `yaml:"eval_timeout"` // script evaluation limit, e.g. "5s"
	Brush            BrushConfig   `yaml:"brush"`
	Export           ExportConfig  `yaml:"export"`
	Terrain          TerrainConfig `yaml:"terrain"`
}

// BrushConfig holds brush settings applied across a scene.
type BrushConfig struct {
	Sparsity float64 `yaml:"sparsity"` // minimum sparsity for every brush
	Lift     float64 `yaml:"lift"`     // display lift applied on radius changes
}

// ExportConfig selects the files written after a run.
type ExportConfig struct {
	Dir     string         `yaml:"dir"`
	Options export.Options `yaml:",inline"`
}

// TerrainConfig picks the ground a run is placed on.
type TerrainConfig struct {
	File string  `yaml:"file"` // STL mesh; overrides the script's terrain
	Size float64 `yaml:"size"` // flat default extent
	Base float64 `yaml:"base"` // flat default height
}

// Default returns a configuration with every field at its default.
func Default() Config {
	cfg := Config{}
	cfg.applyDefaults()
	cfg.Export.Options = export.Options{STL: true, DXF: true, SVG: true}
	return cfg
}

// Load reads and validates the YAML file at path. Unset fields take their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML into a validated Config.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Tolerance == 0 {
		c.Tolerance = scene.DefaultTolerance
	}
	if c.Accuracy == 0 {
		c.Accuracy = scene.DefaultAccuracy
	}
	if c.Kernel == "" {
		c.Kernel = pipeline.KernelRuled
	}
	if c.CellsPerAccuracy == 0 {
		c.CellsPerAccuracy = DefaultCellsPerAccuracy
	}
	if c.EvalTimeout == 0 {
		c.EvalTimeout = engine.DefaultEvalTimeout
	}
	if c.Brush.Sparsity == 0 {
		c.Brush.Sparsity = 1
	}
	if c.Brush.Lift == 0 {
		c.Brush.Lift = brush.DisplayLift
	}
	if c.Export.Dir == "" {
		c.Export.Dir = "out"
	}
	if c.Terrain.Size == 0 {
		c.Terrain.Size = scene.DefaultTerrainSize
	}
}

// Validate fills defaults for unset fields and reports the first invalid
// setting.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil configuration")
	}
	c.applyDefaults()
	switch {
	case c.Tolerance < 0:
		return errors.New("config: tolerance must be positive")
	case c.Accuracy < kernel.MinAccuracy || c.Accuracy > kernel.MaxAccuracy:
		return fmt.Errorf("config: accuracy must be between %d and %d", kernel.MinAccuracy, kernel.MaxAccuracy)
	case c.Workers < 0:
		return errors.New("config: workers must not be negative")
	case c.Kernel != pipeline.KernelRuled && c.Kernel != pipeline.KernelSDFX:
		return fmt.Errorf("config: kernel must be %s or %s, got %q", pipeline.KernelRuled, pipeline.KernelSDFX, c.Kernel)
	case c.CellsPerAccuracy < 0:
		return errors.New("config: cells_per_accuracy must be positive")
	case c.EvalTimeout < 0:
		return errors.New("config: eval_timeout must be positive")
	case c.Brush.Sparsity < 1:
		return errors.New("config: brush.sparsity must be at least 1")
	case c.Brush.Lift < 0:
		return errors.New("config: brush.lift must not be negative")
	case c.Export.Options.SVGWidth < 0:
		return errors.New("config: svg_width must not be negative")
	case c.Terrain.Size < 0:
		return errors.New("config: terrain.size must be positive")
	}
	return nil
}

// Bind attaches the configuration to the provided FlagSet. Flags parsed
// after Load override the file.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.Float64Var(&c.Tolerance, "tolerance", c.Tolerance, "geometric tolerance in model units")
	fs.IntVar(&c.Accuracy, "accuracy", c.Accuracy, "default accuracy (1-10)")
	fs.IntVar(&c.Workers, "workers", c.Workers, "parallel samples per path (0 = GOMAXPROCS)")
	fs.StringVar(&c.Kernel, "kernel", c.Kernel, "extrusion backend: ruled or sdfx")
	fs.IntVar(&c.CellsPerAccuracy, "cells", c.CellsPerAccuracy, "sdfx cells per accuracy step")
	fs.DurationVar(&c.EvalTimeout, "eval-timeout", c.EvalTimeout, "script evaluation time limit")
	fs.StringVar(&c.Export.Dir, "out", c.Export.Dir, "export directory")
	fs.BoolVar(&c.Export.Options.STL, "stl", c.Export.Options.STL, "write one STL per feature")
	fs.BoolVar(&c.Export.Options.DXF, "dxf", c.Export.Options.DXF, "write plan.dxf")
	fs.BoolVar(&c.Export.Options.SVG, "svg", c.Export.Options.SVG, "write plan.svg")
	fs.StringVar(&c.Terrain.File, "terrain", c.Terrain.File, "terrain STL file")
}

// NewEngine returns a script engine bounded by the configured timeout.
func (c Config) NewEngine() *engine.Engine {
	return engine.NewEngineWithTimeout(c.EvalTimeout)
}

// PipelineOptions builds run options for s. The kernel works at the scene
// tolerance, or the configured one when s is nil.
func (c Config) PipelineOptions(s *scene.Scene) (pipeline.Options, error) {
	tol := c.Tolerance
	if s != nil {
		tol = s.Defaults.Tolerance
	}
	k, err := pipeline.NewKernel(c.Kernel, tol, c.CellsPerAccuracy)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{Kernel: k, Workers: c.Workers}, nil
}

// Apply carries the configuration into s. Tolerance and accuracy replace
// the scene defaults unless the script set them with settings. Every
// brush is raised to the minimum sparsity and takes the configured lift
// when it has none.
func (c Config) Apply(s *scene.Scene) {
	if s == nil {
		return
	}
	if !s.Defaults.ToleranceSet {
		s.Defaults.Tolerance = c.Tolerance
	}
	if !s.Defaults.AccuracySet {
		s.Defaults.Accuracy = c.Accuracy
	}
	for _, b := range s.BrushList() {
		if b.Params.Sparsity < c.Brush.Sparsity {
			b.Params.Sparsity = c.Brush.Sparsity
		}
		if b.Params.Lift == 0 {
			b.Params.Lift = c.Brush.Lift
		}
	}
}

// BuildTerrain returns the ground for s: the configured STL file, else the
// terrain the script declares, else a flat square of the configured size
// and height.
func (c Config) BuildTerrain(s *scene.Scene) (*terrain.Terrain, error) {
	if c.Terrain.File != "" {
		return scene.TerrainSpec{Kind: scene.TerrainSTL, File: c.Terrain.File}.Build()
	}
	if s != nil && s.Terrain != nil {
		return s.Terrain.Build()
	}
	return scene.TerrainSpec{Kind: scene.TerrainFlat, Size: c.Terrain.Size, Base: c.Terrain.Base}.Build()
}
