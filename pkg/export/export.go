// Package export writes pipeline results to files: STL meshes of feature
// volumes, a DXF of profiles and zones, and an SVG plan view.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/landform/pkg/logging"
	"github.com/chazu/landform/pkg/pipeline"
)

// Options select what All writes.
type Options struct {
	STL      bool `json:"stl" yaml:"stl"`
	DXF      bool `json:"dxf" yaml:"dxf"`
	SVG      bool `json:"svg" yaml:"svg"`
	SVGWidth int  `json:"svg_width" yaml:"svg_width"` // pixels; 0 means DefaultSVGWidth
}

// All writes the selected exports of res into dir: one STL per feature,
// plan.dxf and plan.svg. It returns the paths written.
func All(dir string, res pipeline.Result, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	var written []string

	if opts.STL {
		for _, fr := range res.Features {
			vols := fr.Volumes()
			if len(vols) == 0 {
				continue
			}
			path := filepath.Join(dir, FileName(fr.Feature.Name)+".stl")
			if err := WriteSTL(path, vols...); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	if opts.DXF {
		path := filepath.Join(dir, "plan.dxf")
		if err := WriteDXF(path, res); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if opts.SVG {
		path := filepath.Join(dir, "plan.svg")
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("export: %w", err)
		}
		err = WriteSVG(f, res, opts.SVGWidth)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	logging.Logger().Info("exported", "dir", dir, "files", len(written))
	return written, nil
}

// FileName turns a feature or brush name into a safe file or layer name.
func FileName(name string) string {
	s := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, strings.TrimSpace(name))
	if s == "" {
		return "unnamed"
	}
	return s
}
