package scene

import (
	"fmt"

	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/sampler"
)

// Severity indicates whether a validation finding blocks evaluation or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // blocks evaluation
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	ID       ID       // which element has the problem (zero if scene-level)
	Name     string   // element name, if any
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Name, e.Message)
	case !e.ID.IsZero():
		return fmt.Sprintf("[%s] %s: %s", e.Severity, e.ID.Short(), e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// ValidationResult bundles errors (blocking) and warnings (advisory) from
// all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) add(e ValidationError) {
	if e.Severity == SeverityWarning {
		r.Warnings = append(r.Warnings, e)
		return
	}
	r.Errors = append(r.Errors, e)
}

// Validate runs all validation tiers (structural, parameter, brush) in
// declaration order. It is read-only and never mutates the scene.
func Validate(s *Scene) ValidationResult {
	var r ValidationResult
	if s == nil {
		return r
	}

	// Tier 1: structural.
	for _, e := range validateNames(s) {
		r.add(e)
	}
	for _, e := range validateDefaults(s) {
		r.add(e)
	}
	for _, f := range s.FeatureList() {
		for _, e := range validatePaths(f) {
			r.add(e)
		}
		for _, e := range validateMaterialRef(s, f.ID, f.Name, f.Material) {
			r.add(e)
		}
	}

	// Tier 2: feature parameters.
	for _, f := range s.FeatureList() {
		for _, e := range validateFeatureParams(f) {
			r.add(e)
		}
	}

	// Tier 3: brushes.
	for _, b := range s.BrushList() {
		for _, e := range validateBrush(s, b) {
			r.add(e)
		}
	}
	return r
}

// validateNames reports names declared more than once.
func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	for _, name := range s.duplicates {
		if seen[name] {
			continue
		}
		seen[name] = true
		errs = append(errs, ValidationError{
			Name:     name,
			Message:  "name declared more than once",
			Severity: SeverityError,
		})
	}
	return errs
}

func validateDefaults(s *Scene) []ValidationError {
	var errs []ValidationError
	if !(s.Defaults.Tolerance > 0) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("tolerance must be positive, got %g", s.Defaults.Tolerance),
			Severity: SeverityError,
		})
	}
	if a := s.Defaults.Accuracy; a != kernel.ClampAccuracy(a) {
		errs = append(errs, ValidationError{
			Message:  fmt.Sprintf("default accuracy %d clamped to %d", a, kernel.ClampAccuracy(a)),
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validatePaths checks that a feature has paths and that every path has at
// least two points.
func validatePaths(f *Feature) []ValidationError {
	if len(f.Paths) == 0 {
		return []ValidationError{{
			ID:       f.ID,
			Name:     f.Name,
			Message:  "no paths; feature produces no output",
			Severity: SeverityWarning,
		}}
	}
	var errs []ValidationError
	for i, p := range f.Paths {
		if len(p.Points) < 2 {
			errs = append(errs, ValidationError{
				ID:       f.ID,
				Name:     f.Name,
				Message:  fmt.Sprintf("path %d (group %q) has %d points, need at least 2", i, p.Group, len(p.Points)),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validateMaterialRef(s *Scene, id ID, name, material string) []ValidationError {
	if material == "" {
		return nil
	}
	if _, ok := s.Materials[material]; ok {
		return nil
	}
	return []ValidationError{{
		ID:       id,
		Name:     name,
		Message:  fmt.Sprintf("material %q is not defined", material),
		Severity: SeverityError,
	}}
}

// validateFeatureParams checks sizes, randomness and accuracy.
func validateFeatureParams(f *Feature) []ValidationError {
	var errs []ValidationError
	bad := func(msg string, args ...any) {
		errs = append(errs, ValidationError{ID: f.ID, Name: f.Name, Message: fmt.Sprintf(msg, args...), Severity: SeverityError})
	}
	warn := func(msg string, args ...any) {
		errs = append(errs, ValidationError{ID: f.ID, Name: f.Name, Message: fmt.Sprintf(msg, args...), Severity: SeverityWarning})
	}

	p := f.Params
	if !(p.Thickness > 0) {
		bad("thickness must be positive, got %g", p.Thickness)
	}
	if p.Height < 0 || p.Depth < 0 {
		bad("height and depth must not be negative, got %g and %g", p.Height, p.Depth)
	}
	if p.Height+p.Depth <= 0 {
		bad("height + depth must be positive")
	}
	if p.Gap < 0 {
		bad("gap must not be negative, got %g", p.Gap)
	}
	rnd := p.Randomness
	for _, v := range []struct {
		name string
		val  float64
	}{
		{"thickness", rnd.Thickness},
		{"height", rnd.Height},
		{"depth", rnd.Depth},
		{"gap", rnd.Gap},
	} {
		if v.val < 0 {
			bad("%s randomness must not be negative, got %g", v.name, v.val)
		}
	}
	if f.Mode == sampler.ModePoint && p.Spacing() <= 0 {
		bad("point mode needs thickness + gap > 0")
	}
	if f.Sides != 0 && f.Sides < 3 {
		bad("sides must be at least 3, got %d", f.Sides)
	}
	if a := f.Accuracy; a != 0 && a != kernel.ClampAccuracy(a) {
		warn("accuracy %d clamped to %d", a, kernel.ClampAccuracy(a))
	}
	return errs
}

func validateBrush(s *Scene, b *Brush) []ValidationError {
	var errs []ValidationError
	bad := func(msg string, args ...any) {
		errs = append(errs, ValidationError{ID: b.ID, Name: b.Name, Message: fmt.Sprintf(msg, args...), Severity: SeverityError})
	}
	p := b.Params
	if !(p.Radius > 0) {
		bad("radius must be positive, got %g", p.Radius)
	}
	if !(p.Diameter > 0) {
		bad("diameter must be positive, got %g", p.Diameter)
	}
	if p.Sparsity < 1 {
		errs = append(errs, ValidationError{
			ID:       b.ID,
			Name:     b.Name,
			Message:  fmt.Sprintf("sparsity %g floored to 1", p.Sparsity),
			Severity: SeverityWarning,
		})
	}
	errs = append(errs, validateMaterialRef(s, b.ID, b.Name, b.Material)...)
	return errs
}
