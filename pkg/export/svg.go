package export

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/pipeline"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DefaultSVGWidth is the plan view width in pixels.
const DefaultSVGWidth = 1024

// svgMargin is the border around the drawing in pixels.
const svgMargin = 16

// Fallback colors when an output has no material.
const (
	defaultFeatureColor = "#4A90D9"
	defaultZoneColor    = "#E67E22"
)

// plan maps model XY onto SVG pixels, +Y up.
type plan struct {
	box    sdf.Box3
	scale  float64
	height int
}

func newPlan(box sdf.Box3, width int) plan {
	size := box.Max.Sub(box.Min)
	inner := float64(width - 2*svgMargin)
	scale := inner / math.Max(size.X, 1e-9)
	if size.Y > size.X {
		scale = inner / math.Max(size.Y, 1e-9)
	}
	return plan{box: box, scale: scale, height: int(math.Ceil(size.Y*scale)) + 2*svgMargin}
}

func (p plan) x(v float64) int { return svgMargin + int(math.Round((v-p.box.Min.X)*p.scale)) }
func (p plan) y(v float64) int { return p.height - svgMargin - int(math.Round((v-p.box.Min.Y)*p.scale)) }

func (p plan) coords(pl curve.Polyline) ([]int, []int) {
	xs, ys := make([]int, len(pl)), make([]int, len(pl))
	for i, q := range pl {
		xs[i], ys[i] = p.x(q.X), p.y(q.Y)
	}
	return xs, ys
}

// WriteSVG draws a plan view of res: one polygon per output profile, zone
// outlines and stroke particles, scaled to width pixels.
func WriteSVG(w io.Writer, res pipeline.Result, width int) error {
	if width <= 0 {
		width = DefaultSVGWidth
	}
	box, ok := bounds(res)
	if !ok {
		box = sdf.Box3{Max: v3.Vec{X: 1, Y: 1}}
	}
	p := newPlan(box, width)

	canvas := svg.New(w)
	canvas.Start(width, p.height)
	canvas.Title("landform plan")
	canvas.Rect(0, 0, width, p.height, "fill:white")

	for _, fr := range res.Features {
		color := fr.Material.Color
		if color == "" {
			color = defaultFeatureColor
		}
		canvas.Gid(FileName(fr.Feature.Name))
		for _, g := range fr.Groups {
			for _, o := range fr.Outputs[g] {
				xs, ys := p.coords(o.Profile.Boundary)
				canvas.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:0.6;stroke:%s", color, color))
			}
		}
		canvas.Gend()
	}

	for _, sr := range res.Strokes {
		if !sr.HasZone {
			continue
		}
		color := sr.Material.Color
		if color == "" {
			color = defaultZoneColor
		}
		canvas.Gid(FileName(sr.Brush.Name))
		xs, ys := p.coords(sr.Zone.Boundary)
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-dasharray:4,2", color))
		r := max(1, int(math.Round(sr.Brush.Params.Diameter/2*p.scale)))
		for _, q := range sr.Stroke.Points {
			canvas.Circle(p.x(q.X), p.y(q.Y), r, "fill:"+color)
		}
		canvas.Gend()
	}

	canvas.End()
	return nil
}

// bounds returns the XY extent of every profile and zone in res.
func bounds(res pipeline.Result) (sdf.Box3, bool) {
	var (
		box   sdf.Box3
		found bool
	)
	add := func(pl curve.Polyline) {
		if len(pl) == 0 {
			return
		}
		b := pl.Box()
		if !found {
			box, found = b, true
			return
		}
		box = box.Extend(b)
	}
	for _, fr := range res.Features {
		for _, outs := range fr.Outputs {
			for _, o := range outs {
				add(o.Profile.Boundary)
			}
		}
	}
	for _, sr := range res.Strokes {
		if sr.HasZone {
			add(sr.Zone.Boundary)
		}
	}
	return box, found
}
