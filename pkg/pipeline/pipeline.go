// Package pipeline runs a scene against a terrain. For every feature path
// it samples, builds profiles, extrudes volumes and optionally conforms them
// to the ground; for every brush it drapes a zone and samples a stroke.
// Failures are scoped to one sample, path or zone and collected in the
// result's report; a run never stops on a geometry error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/conform"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/kernel/ruled"
	"github.com/chazu/landform/pkg/kernel/sdfx"
	"github.com/chazu/landform/pkg/logging"
	"github.com/chazu/landform/pkg/profile"
	"github.com/chazu/landform/pkg/sampler"
	"github.com/chazu/landform/pkg/scene"
	"github.com/chazu/landform/pkg/terrain"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// SetLogger sets the logger used by every landform package. Pass nil to
// silence logging again.
func SetLogger(l *slog.Logger) { logging.SetLogger(l) }

// Kernel backend names.
const (
	KernelRuled = "ruled"
	KernelSDFX  = "sdfx"
)

// NewKernel returns the named extrusion backend. An empty name selects the
// ruled kernel.
func NewKernel(name string, tol float64, cellsPerAccuracy int) (kernel.Kernel, error) {
	switch name {
	case KernelRuled, "":
		return ruled.New(tol), nil
	case KernelSDFX:
		return sdfx.New(cellsPerAccuracy), nil
	}
	return nil, fmt.Errorf("pipeline: unknown kernel %q, expected %s or %s", name, KernelRuled, KernelSDFX)
}

// Options tune a run. Zero values select defaults.
type Options struct {
	Kernel    kernel.Kernel // defaults to the ruled kernel at the run tolerance
	Workers   int           // parallel samples per path; defaults to GOMAXPROCS
	Tolerance float64       // overrides the scene tolerance when positive
}

// Output is one volume and the profile it was built from. When the volume
// was conformed, Profile is the terrain intersection it was refit on.
type Output struct {
	Sample    int             `json:"sample"`
	Profile   profile.Profile `json:"profile"`
	Volume    *kernel.Mesh    `json:"volume"`
	Conformed bool            `json:"conformed"`
}

// FeatureResult holds a feature's outputs keyed by path group. Groups lists
// the keys in path order.
type FeatureResult struct {
	Feature  *scene.Feature      `json:"feature"`
	Material scene.Material      `json:"material"`
	Outputs  map[string][]Output `json:"outputs"`
	Groups   []string            `json:"groups"`
}

// Volumes returns every output volume in group order.
func (fr FeatureResult) Volumes() []*kernel.Mesh {
	return lo.FlatMap(fr.Groups, func(g string, _ int) []*kernel.Mesh {
		return lo.Map(fr.Outputs[g], func(o Output, _ int) *kernel.Mesh { return o.Volume })
	})
}

// StrokeResult holds the zone and stroke of one brush. HasZone is false when
// the zone could not be draped.
type StrokeResult struct {
	Brush    *scene.Brush   `json:"brush"`
	Material scene.Material `json:"material"`
	Zone     brush.Zone     `json:"zone"`
	HasZone  bool           `json:"has_zone"`
	Stroke   brush.Stroke   `json:"stroke"`
}

// Result is the output of a run.
type Result struct {
	Features []FeatureResult     `json:"features"`
	Strokes  []StrokeResult      `json:"strokes"`
	Report   []geomerr.ItemError `json:"report"`
}

// Failures returns the report entries that produced no output.
func (r Result) Failures() []geomerr.ItemError {
	return lo.Filter(r.Report, func(e geomerr.ItemError, _ int) bool { return !e.Recovered() })
}

// OutputCount returns the total number of feature outputs.
func (r Result) OutputCount() int {
	return lo.SumBy(r.Features, func(fr FeatureResult) int {
		return lo.SumBy(lo.Values(fr.Outputs), func(os []Output) int { return len(os) })
	})
}

// runner carries the per-run settings shared by every stage.
type runner struct {
	scene   *scene.Scene
	terrain *terrain.Terrain
	kernel  kernel.Kernel
	workers int
	tol     float64
}

// Run processes every feature and brush of s over t. The scene and terrain
// are read-only. A nil terrain is only an error when a feature attaches or a
// brush is present. Run returns early only when ctx is cancelled.
func Run(ctx context.Context, s *scene.Scene, t *terrain.Terrain, opts Options) (Result, error) {
	if s == nil {
		return Result{}, fmt.Errorf("pipeline: nil scene: %w", geomerr.ErrDegenerateInput)
	}
	r := runner{scene: s, terrain: t, kernel: opts.Kernel, workers: opts.Workers, tol: s.Defaults.Tolerance}
	if opts.Tolerance > 0 {
		r.tol = opts.Tolerance
	}
	if r.kernel == nil {
		r.kernel = ruled.New(r.tol)
	}
	if r.workers <= 0 {
		r.workers = runtime.GOMAXPROCS(0)
	}
	log := logging.Logger()
	log.Info("pipeline run",
		"features", len(s.Features), "brushes", len(s.Brushes),
		"kernel", r.kernel.Name(), "workers", r.workers, "tolerance", r.tol)

	var res Result
	for _, f := range s.FeatureList() {
		fr, report, err := r.feature(ctx, f)
		if err != nil {
			return res, err
		}
		res.Features = append(res.Features, fr)
		res.Report = append(res.Report, report...)
	}
	for _, b := range s.BrushList() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		sr, report := r.stroke(b)
		res.Strokes = append(res.Strokes, sr)
		res.Report = append(res.Report, report...)
	}

	log.Info("pipeline done",
		"outputs", res.OutputCount(), "strokes", len(res.Strokes),
		"reported", len(res.Report), "failed", len(res.Failures()))
	return res, nil
}

// feature processes every path of f.
func (r runner) feature(ctx context.Context, f *scene.Feature) (FeatureResult, []geomerr.ItemError, error) {
	fr := FeatureResult{Feature: f, Outputs: make(map[string][]Output)}
	if m, ok := r.scene.MaterialOf(f.Material); ok {
		fr.Material = m
	}
	var report []geomerr.ItemError
	for _, p := range f.Paths {
		outs, errs, err := r.path(ctx, f, p)
		if err != nil {
			return fr, report, err
		}
		fr.Outputs[p.Group] = append(fr.Outputs[p.Group], outs...)
		report = append(report, errs...)
	}
	fr.Groups = lo.Uniq(lo.Map(f.Paths, func(p scene.Path, _ int) string { return p.Group }))
	return fr, report, nil
}

// path samples one path and builds the outputs of its samples with bounded
// parallelism. Results are stored by sample index so the output order does
// not depend on scheduling.
func (r runner) path(ctx context.Context, f *scene.Feature, p scene.Path) ([]Output, []geomerr.ItemError, error) {
	item := func(index int, stage geomerr.Stage, err error) geomerr.ItemError {
		return geomerr.ItemError{Feature: f.Name, Group: p.Group, Index: index, Stage: stage, Err: err}
	}

	samples := sampler.Samples(p.Points, f.Params, f.Mode, r.tol)
	if len(samples) == 0 {
		err := fmt.Errorf("path of length %g yields no samples: %w", p.Points.Length(), geomerr.ErrDegenerateInput)
		return nil, []geomerr.ItemError{item(-1, geomerr.StageSample, err)}, nil
	}

	type slot struct {
		out  *Output
		errs []geomerr.ItemError
	}
	slots := make([]slot, len(samples))
	accuracy := r.scene.Accuracy(f)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, smp := range samples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, stage, err := r.sample(f, p, smp, accuracy)
			if err != nil {
				slots[i].errs = append(slots[i].errs, item(smp.Index, stage, err))
			}
			slots[i].out = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		outs   []Output
		report []geomerr.ItemError
	)
	for _, s := range slots {
		if s.out != nil {
			outs = append(outs, *s.out)
		}
		report = append(report, s.errs...)
	}
	logging.Logger().Debug("path processed",
		"feature", f.Name, "group", p.Group, "samples", len(samples), "outputs", len(outs))
	return outs, report, nil
}

// sample builds the output of one sample. A non-nil output may come with a
// recovered error (a failed conformance keeps the un-conformed volume).
func (r runner) sample(f *scene.Feature, p scene.Path, smp sampler.Sample, accuracy int) (*Output, geomerr.Stage, error) {
	sp := smp.Params

	var (
		prof profile.Profile
		err  error
	)
	switch f.Mode {
	case sampler.ModeLinear:
		prof, err = profile.BuildOffsetProfile(p.Points, sp.Thickness, r.tol)
	default:
		prof, err = profile.BuildPointProfile(smp.Point, sp.Thickness/2, f.EffectiveSides())
	}
	if err != nil {
		return nil, geomerr.StageProfile, err
	}

	vol, err := r.kernel.Extrude(prof.Boundary, sp.Height, sp.Depth, accuracy)
	if err != nil {
		return nil, geomerr.StageExtrude, err
	}
	vol.PartName = partName(f, p, smp.Index)
	out := &Output{Sample: smp.Index, Profile: prof, Volume: vol}
	if !f.Attach {
		return out, "", nil
	}

	if r.terrain == nil {
		return out, geomerr.StageConform, fmt.Errorf("no terrain to attach to: %w", geomerr.ErrNoIntersection)
	}
	fitted, conformed, err := conform.Attach(r.kernel, vol, r.terrain, sp.Height, accuracy, r.tol)
	if err != nil {
		if errors.Is(err, geomerr.ErrNoIntersection) {
			return out, geomerr.StageConform, err
		}
		return nil, geomerr.StageConform, err
	}
	fitted.PartName = vol.PartName
	out.Volume = fitted
	out.Profile = conformed
	out.Conformed = true
	return out, "", nil
}

// partName labels a volume "feature group[index]".
func partName(f *scene.Feature, p scene.Path, index int) string {
	return fmt.Sprintf("%s %s[%d]", f.Name, p.Group, index)
}

// stroke drapes the zone of one brush and samples its stroke.
func (r runner) stroke(b *scene.Brush) (StrokeResult, []geomerr.ItemError) {
	sr := StrokeResult{Brush: b}
	if m, ok := r.scene.MaterialOf(b.Material); ok {
		sr.Material = m
	}
	item := func(stage geomerr.Stage, err error) geomerr.ItemError {
		return geomerr.ItemError{Feature: b.Name, Index: -1, Stage: stage, Err: err}
	}
	if r.terrain == nil {
		return sr, []geomerr.ItemError{item(geomerr.StageZone,
			fmt.Errorf("no terrain: %w", geomerr.ErrProjectionFailure))}
	}

	params := b.Params
	if params.Tolerance <= 0 {
		params.Tolerance = r.tol
	}
	br := brush.New(r.terrain, params)
	if err := br.UpdateZone(b.Center); err != nil {
		return sr, []geomerr.ItemError{item(geomerr.StageZone, err)}
	}
	sr.Zone, sr.HasZone = br.Zone()

	st, err := br.UpdateStroke(params.Tolerance)
	if err != nil {
		return sr, []geomerr.ItemError{item(geomerr.StageStroke, err)}
	}
	sr.Stroke = st
	return sr, nil
}
