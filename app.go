package main

import (
	"context"
	"log"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/config"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/engine"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/pipeline"
	"github.com/chazu/landform/pkg/scene"
)

// colorPalette is a default palette used to assign distinct colors to
// features without a material color.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// terrainColor is the viewer color of the ground mesh.
const terrainColor = "#8B7D6B"

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *engine.Engine
	config config.Config
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Feature  string    `json:"feature"`
	Color    string    `json:"color"`
}

// StrokeData is a brush zone outline and its particle positions, flattened
// to x,y,z triples.
type StrokeData struct {
	Brush    string    `json:"brush"`
	Zone     []float32 `json:"zone"`
	Points   []float32 `json:"points"`
	Diameter float64   `json:"diameter"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Terrain  *MeshData       `json:"terrain"`
	Strokes  []StrokeData    `json:"strokes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the default configuration.
func NewApp() *App {
	return NewAppWithConfig(config.Default())
}

// NewAppWithConfig creates an App that runs with cfg.
func NewAppWithConfig(cfg config.Config) *App {
	return &App{engine: cfg.NewEngine(), config: cfg}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func (a *App) runContext() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// Evaluate takes Lisp source and returns mesh data + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Strokes:  []StrokeData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate and validate the Lisp source into a scene.
	res, err := a.engine.EvaluateAndValidateContext(a.runContext(), source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Line: w.Line, Col: w.Col, Message: w.Message})
	}
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return result
	}
	s := res.Scene
	a.config.Apply(s)

	// Step 2: Build the ground and run the placement pipeline.
	ground, err := a.config.BuildTerrain(s)
	if err != nil {
		log.Printf("Terrain error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "terrain failed: " + err.Error()})
		return result
	}
	result.Terrain = meshData(ground.Mesh(), "", terrainColor)

	opts, err := a.config.PipelineOptions(s)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	out, err := pipeline.Run(a.runContext(), s, ground, opts)
	if err != nil {
		log.Printf("Pipeline error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "placement failed: " + err.Error()})
		return result
	}

	// Step 3: Per-element failures are warnings on the declaring line.
	for _, item := range out.Report {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Line:    elementLine(s, item.Feature),
			Message: item.Error(),
		})
	}

	// Step 4: Convert volumes and strokes to the frontend format.
	for i, fr := range out.Features {
		color := fr.Material.Color
		if color == "" {
			color = colorPalette[i%len(colorPalette)]
		}
		for _, v := range fr.Volumes() {
			if md := meshData(v, fr.Feature.Name, color); md != nil {
				result.Meshes = append(result.Meshes, *md)
			}
		}
	}
	for i, sr := range out.Strokes {
		color := sr.Material.Color
		if color == "" {
			color = colorPalette[(len(out.Features)+i)%len(colorPalette)]
		}
		sd := StrokeData{
			Brush:    sr.Brush.Name,
			Points:   flatten(sr.Stroke.Points),
			Diameter: sr.Brush.Params.Diameter,
			Color:    color,
		}
		if sr.HasZone {
			sd.Zone = flatten(sr.Zone.Boundary)
		}
		result.Strokes = append(result.Strokes, sd)
	}

	return result
}

// ResizeBrush rebuilds the named brush's zone at a new radius and returns
// its outline, lifted clear of the terrain for display.
func (a *App) ResizeBrush(source, name string, radius float64) StrokeData {
	res, err := a.engine.EvaluateAndValidateContext(a.runContext(), source)
	if err != nil || res.Scene == nil {
		return StrokeData{Brush: name}
	}
	s := res.Scene
	a.config.Apply(s)
	b := s.LookupBrush(name)
	if b == nil {
		return StrokeData{Brush: name}
	}
	ground, err := a.config.BuildTerrain(s)
	if err != nil {
		log.Printf("Terrain error: %v", err)
		return StrokeData{Brush: name}
	}
	br := brush.New(ground, b.Params)
	if err := br.UpdateZone(b.Center); err != nil {
		log.Printf("Brush %s: %v", name, err)
		return StrokeData{Brush: name}
	}
	if err := br.UpdateZoneRadius(radius); err != nil {
		log.Printf("Brush %s: %v", name, err)
		return StrokeData{Brush: name}
	}
	sd := StrokeData{Brush: name, Diameter: b.Params.Diameter}
	if z, ok := br.Zone(); ok {
		sd.Zone = flatten(z.Boundary)
	}
	return sd
}

// meshData converts a kernel mesh to float32 viewer data. Empty meshes
// give nil.
func meshData(m *kernel.Mesh, feature, color string) *MeshData {
	if m.IsEmpty() {
		return nil
	}
	md := &MeshData{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  m.Indices,
		PartName: m.PartName,
		Feature:  feature,
		Color:    color,
	}
	for i, v := range m.Vertices {
		md.Vertices[i] = float32(v)
	}
	for i, n := range m.Normals {
		md.Normals[i] = float32(n)
	}
	return md
}

func flatten(pts curve.Polyline) []float32 {
	out := make([]float32, 0, len(pts)*3)
	for _, p := range pts {
		out = append(out, float32(p.X), float32(p.Y), float32(p.Z))
	}
	return out
}

// elementLine returns the source line that declared the named feature or
// brush, or 0.
func elementLine(s *scene.Scene, name string) int {
	if f := s.Lookup(name); f != nil {
		return f.Source.Line
	}
	if b := s.LookupBrush(name); b != nil {
		return b.Source.Line
	}
	return 0
}
