package scene

import (
	"strings"
	"testing"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/sampler"
)

func hasMessage(errs []ValidationError, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidateClean(t *testing.T) {
	s := New()
	s.AddMaterial(Material{Name: "boxwood", Color: "#2f5d2a"})
	f := hedge("hedge")
	f.Material = "boxwood"
	s.AddFeature(f)
	s.AddBrush(&Brush{Name: "gravel", Params: brush.Params{Radius: 10, Diameter: 1, Sparsity: 1}})

	r := Validate(s)
	if !r.OK() || len(r.Warnings) != 0 {
		t.Errorf("clean scene: errors %v, warnings %v", r.Errors, r.Warnings)
	}
}

func TestValidateNil(t *testing.T) {
	if r := Validate(nil); !r.OK() {
		t.Errorf("Validate(nil) errors = %v", r.Errors)
	}
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name     string
		build    func(s *Scene)
		severity Severity
		message  string
	}{
		{"duplicate name", func(s *Scene) {
			s.AddFeature(hedge("row"))
			s.AddFeature(&Feature{Kind: KindFence, Name: "row", Paths: hedge("x").Paths, Params: hedge("x").Params})
		}, SeverityError, "more than once"},
		{"no paths", func(s *Scene) {
			f := hedge("bare")
			f.Paths = nil
			s.AddFeature(f)
		}, SeverityWarning, "no paths"},
		{"short path", func(s *Scene) {
			f := hedge("dot")
			f.Paths = []Path{{Group: "{0}", Points: curve.Polyline{{}}}}
			s.AddFeature(f)
		}, SeverityError, "at least 2"},
		{"unknown material", func(s *Scene) {
			f := hedge("h")
			f.Material = "unobtainium"
			s.AddFeature(f)
		}, SeverityError, "not defined"},
		{"zero thickness", func(s *Scene) {
			f := hedge("h")
			f.Params.Thickness = 0
			s.AddFeature(f)
		}, SeverityError, "thickness must be positive"},
		{"flat volume", func(s *Scene) {
			f := hedge("h")
			f.Params.Height, f.Params.Depth = 0, 0
			s.AddFeature(f)
		}, SeverityError, "height + depth"},
		{"negative randomness", func(s *Scene) {
			f := hedge("h")
			f.Params.Randomness = sampler.Randomness{Gap: -0.5}
			s.AddFeature(f)
		}, SeverityError, "gap randomness"},
		{"two sides", func(s *Scene) {
			f := hedge("h")
			f.Sides = 2
			s.AddFeature(f)
		}, SeverityError, "sides"},
		{"accuracy clamped", func(s *Scene) {
			f := hedge("h")
			f.Accuracy = 25
			s.AddFeature(f)
		}, SeverityWarning, "clamped to 10"},
		{"brush radius", func(s *Scene) {
			s.AddBrush(&Brush{Name: "b", Params: brush.Params{Diameter: 1, Sparsity: 1}})
		}, SeverityError, "radius"},
		{"brush sparsity", func(s *Scene) {
			s.AddBrush(&Brush{Name: "b", Params: brush.Params{Radius: 5, Diameter: 1, Sparsity: 0.3}})
		}, SeverityWarning, "floored"},
		{"tolerance", func(s *Scene) {
			s.Defaults.Tolerance = 0
		}, SeverityError, "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			tt.build(s)
			r := Validate(s)
			list := r.Errors
			if tt.severity == SeverityWarning {
				list = r.Warnings
			}
			if !hasMessage(list, tt.message) {
				t.Errorf("no %s containing %q; errors %v, warnings %v", tt.severity, tt.message, r.Errors, r.Warnings)
			}
		})
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Name: "hedge", Message: "bad", Severity: SeverityWarning}
	if got := e.Error(); got != "[warning] hedge: bad" {
		t.Errorf("Error() = %q", got)
	}
	e = ValidationError{Message: "bad"}
	if got := e.Error(); got != "[error] bad" {
		t.Errorf("Error() = %q", got)
	}
}
