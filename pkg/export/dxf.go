package export

import (
	"fmt"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/pipeline"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
)

// Layer names used by WriteDXF besides the per-feature profile layers.
const (
	LayerZones   = "zones"
	LayerStrokes = "strokes"
)

// WriteDXF writes a plan drawing: each feature's profiles as closed line
// loops on a layer named after the feature, brush zones on LayerZones and
// stroke points on LayerStrokes. Coordinates keep their Z.
func WriteDXF(path string, res pipeline.Result) error {
	d := dxf.NewDrawing()
	layers := make(map[string]bool)
	layer := func(name string) error {
		if !layers[name] {
			if _, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, false); err != nil {
				return err
			}
			layers[name] = true
		}
		return d.ChangeLayer(name)
	}

	for _, fr := range res.Features {
		if err := layer(FileName(fr.Feature.Name)); err != nil {
			return fmt.Errorf("export: dxf layer: %w", err)
		}
		for _, g := range fr.Groups {
			for _, o := range fr.Outputs[g] {
				if err := dxfLoop(d, o.Profile.Boundary); err != nil {
					return fmt.Errorf("export: dxf profile: %w", err)
				}
			}
		}
	}

	for _, sr := range res.Strokes {
		if !sr.HasZone {
			continue
		}
		if err := layer(LayerZones); err != nil {
			return fmt.Errorf("export: dxf layer: %w", err)
		}
		if err := dxfLoop(d, sr.Zone.Boundary); err != nil {
			return fmt.Errorf("export: dxf zone: %w", err)
		}
		if len(sr.Stroke.Points) == 0 {
			continue
		}
		if err := layer(LayerStrokes); err != nil {
			return fmt.Errorf("export: dxf layer: %w", err)
		}
		r := sr.Brush.Params.Diameter / 2
		for _, p := range sr.Stroke.Points {
			if _, err := d.Circle(p.X, p.Y, p.Z, r); err != nil {
				return fmt.Errorf("export: dxf stroke: %w", err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: %s: %w", path, err)
	}
	return nil
}

// dxfLoop draws pl as line segments.
func dxfLoop(d *drawing.Drawing, pl curve.Polyline) error {
	for i := 1; i < len(pl); i++ {
		a, b := pl[i-1], pl[i]
		if _, err := d.Line(a.X, a.Y, a.Z, b.X, b.Y, b.Z); err != nil {
			return err
		}
	}
	return nil
}
