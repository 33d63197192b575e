package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/chazu/landform/pkg/brush"
	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/sampler"
	"github.com/chazu/landform/pkg/scene"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites landform source into something zygomys reads:
//
//   - :keyword becomes the string "__kw_keyword", so keywords never collide
//     with user definitions of the same name.
//   - zone-radius becomes zone_radius; zygomys reads a hyphen as minus.
//   - ; and ;; comments become // comments.
//
// String literals, both "..." and `...`, pass through untouched, and line
// breaks are preserved so error lines still match the script.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"':
			out, i = copyQuoted(out, b, i, '"', true)
		case c == '`':
			out, i = copyQuoted(out, b, i, '`', false)
		case c == ';':
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for ; i < len(b) && b[i] != '\n'; i++ {
				out = append(out, b[i])
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// copyQuoted copies the literal opening at b[i] through its closing quote
// and returns the index after it. Backslash escapes are honored when
// escapes is set.
func copyQuoted(out, b []byte, i int, quote byte, escapes bool) ([]byte, int) {
	out = append(out, b[i])
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			out = append(out, b[i], b[i+1])
			i += 2
			continue
		}
		out = append(out, b[i])
		i++
	}
	if i < len(b) {
		out = append(out, b[i])
		i++
	}
	return out, i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isKWChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || isDigit(c) || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPath wraps a scene.Path so it can be returned from `path` and
// consumed by feature builtins.
type sexpPath struct {
	path scene.Path
}

func (p *sexpPath) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(path :group %q :points <%d>)", p.path.Group, len(p.path.Points))
}
func (p *sexpPath) Type() *zygo.RegisteredType { return nil }

// sexpRandomness wraps the four jitter fractions.
type sexpRandomness struct {
	r sampler.Randomness
}

func (r *sexpRandomness) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(randomness :thickness %g :height %g :depth %g :gap %g)",
		r.r.Thickness, r.r.Height, r.r.Depth, r.r.Gap)
}
func (r *sexpRandomness) Type() *zygo.RegisteredType { return nil }

// sexpMaterial wraps a scene.Material.
type sexpMaterial struct {
	mat scene.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :name %q :color %q)", m.mat.Name, m.mat.Color)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

// sexpRef names a scene element created by a builtin.
type sexpRef struct {
	id   scene.ID
	kind string
	name string
}

func (r *sexpRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.kind, r.name)
}
func (r *sexpRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number sets *dst from keyword key when present.
func (pa kwArgs) number(fn, key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	*dst = f
	return nil
}

// integer sets *dst from keyword key when present.
func (pa kwArgs) integer(fn, key string, dst *int) error {
	var f float64
	if _, ok := pa.kw[key]; !ok {
		return nil
	}
	if err := pa.number(fn, key, &f); err != nil {
		return err
	}
	if f != float64(int(f)) {
		return fmt.Errorf("%s: %s: expected integer, got %g", fn, key, f)
	}
	*dst = int(f)
	return nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_point) and plain strings ("point").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toMaterialName accepts a material value or a material name string.
func toMaterialName(s zygo.Sexp) (string, error) {
	if m, ok := s.(*sexpMaterial); ok {
		return m.mat.Name, nil
	}
	name, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected material or name: %w", err)
	}
	return name, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toPolyline converts a list of vec3 values into a polyline.
func toPolyline(s zygo.Sexp) (curve.Polyline, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pl := make(curve.Polyline, 0, len(items))
	for i, item := range items {
		v, err := toVec3(item)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pl = append(pl, v)
	}
	return pl, nil
}

// toPaths accepts a single path or a list of paths.
func toPaths(s zygo.Sexp) ([]scene.Path, error) {
	if p, ok := s.(*sexpPath); ok {
		return []scene.Path{p.path}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected path or list of paths: %w", err)
	}
	paths := make([]scene.Path, 0, len(items))
	for i, item := range items {
		p, ok := item.(*sexpPath)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected path, got %T (%s)", i, item, item.SexpString(nil))
		}
		paths = append(paths, p.path)
	}
	return paths, nil
}

// ---------------------------------------------------------------------------
// Declaration lines
// ---------------------------------------------------------------------------

var declPattern = regexp.MustCompile(`\((vegetation|fence|brush)\s+"([^"]*)"`)

// declarationLines maps "kind/name" to the 1-based source line of each
// named declaration, so validation findings can point back at the script.
func declarationLines(source string) map[string]int {
	lines := make(map[string]int)
	for _, m := range declPattern.FindAllStringSubmatchIndex(source, -1) {
		key := source[m[2]:m[3]] + "/" + source[m[4]:m[5]]
		if _, ok := lines[key]; !ok {
			lines[key] = strings.Count(source[:m[0]], "\n") + 1
		}
	}
	return lines
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all landform DSL builtins into a zygomys
// environment. The builtins operate on the provided Scene, populating it
// during evaluation; lines locates named declarations in the original source.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, s *scene.Scene, lines map[string]int) {
	pathCount := 0

	// -----------------------------------------------------------------------
	// (settings :tolerance 0.01 :accuracy 5 :units "m")
	// -----------------------------------------------------------------------
	env.AddFunction("settings", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if err := pa.number("settings", "tolerance", &s.Defaults.Tolerance); err != nil {
			return zygo.SexpNull, err
		}
		if err := pa.integer("settings", "accuracy", &s.Defaults.Accuracy); err != nil {
			return zygo.SexpNull, err
		}
		if _, ok := pa.kw["tolerance"]; ok {
			s.Defaults.ToleranceSet = true
		}
		if _, ok := pa.kw["accuracy"]; ok {
			s.Defaults.AccuracySet = true
		}
		if v, ok := pa.kw["units"]; ok {
			u, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("settings: units: %w", err)
			}
			s.Defaults.Units = u
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: v3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (path :group "{0;1}" :points (list (vec3 0 0 0) (vec3 10 0 0)))
	//
	// Without :group, paths are keyed "{0}", "{1}", ... in declaration order.
	// -----------------------------------------------------------------------
	env.AddFunction("path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		p := scene.Path{Group: fmt.Sprintf("{%d}", pathCount)}
		pathCount++

		if v, ok := pa.kw["group"]; ok {
			g, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("path: group: %w", err)
			}
			p.Group = g
		}
		v, ok := pa.kw["points"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("path requires :points")
		}
		pl, err := toPolyline(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("path: points: %w", err)
		}
		p.Points = pl

		return &sexpPath{path: p}, nil
	})

	// -----------------------------------------------------------------------
	// (randomness :thickness 0.2 :height 0.1 :depth 0 :gap 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("randomness", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var r sampler.Randomness
		for key, dst := range map[string]*float64{
			"thickness": &r.Thickness,
			"height":    &r.Height,
			"depth":     &r.Depth,
			"gap":       &r.Gap,
		} {
			if err := pa.number("randomness", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpRandomness{r: r}, nil
	})

	// -----------------------------------------------------------------------
	// (material :name "boxwood" :color "#2f5d2a" :notes "clipped")
	// -----------------------------------------------------------------------
	env.AddFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		m := scene.Material{}
		for key, dst := range map[string]*string{
			"name":  &m.Name,
			"color": &m.Color,
			"notes": &m.Notes,
		} {
			v, ok := pa.kw[key]
			if !ok {
				continue
			}
			str, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: %s: %w", key, err)
			}
			*dst = str
		}
		if m.Name == "" {
			return zygo.SexpNull, fmt.Errorf("material requires :name")
		}
		s.AddMaterial(m)
		return &sexpMaterial{mat: m}, nil
	})

	// -----------------------------------------------------------------------
	// (vegetation "hedge" (path ...) ... :thickness 2 :height 3 :depth 0.5
	//             :gap 0.5 :randomness (randomness ...) :mode :point
	//             :sides 8 :accuracy 5 :attach true :material "boxwood")
	// (fence "wall" :paths (list (path ...)) ...)
	// -----------------------------------------------------------------------
	for _, kind := range []scene.FeatureKind{scene.KindVegetation, scene.KindFence} {
		fn := kind.String()
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			f, err := parseFeature(kind, args)
			if err != nil {
				return zygo.SexpNull, err
			}
			f.Source.Line = lines[fn+"/"+f.Name]
			s.AddFeature(f)
			return &sexpRef{id: f.ID, kind: fn, name: f.Name}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (brush "gravel" :center (vec3 0 0 0) :radius 10 :diameter 0.5
	//        :sparsity 1.5 :tolerance 0.01 :mode :poisson :seed 7
	//        :material "gravel")
	// -----------------------------------------------------------------------
	env.AddFunction("brush", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("brush requires a name argument")
		}
		brushName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("brush: name: %w", err)
		}

		b := &scene.Brush{
			Name:   brushName,
			Source: scene.SourceRef{Line: lines["brush/"+brushName]},
			Params: brush.Params{Sparsity: 1, Tolerance: s.Defaults.Tolerance},
		}
		if v, ok := pa.kw["center"]; ok {
			c, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("brush: center: %w", err)
			}
			b.Center = c
		}
		for key, dst := range map[string]*float64{
			"radius":    &b.Params.Radius,
			"diameter":  &b.Params.Diameter,
			"sparsity":  &b.Params.Sparsity,
			"tolerance": &b.Params.Tolerance,
		} {
			if err := pa.number("brush", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		var seed int
		if err := pa.integer("brush", "seed", &seed); err != nil {
			return zygo.SexpNull, err
		}
		b.Params.Seed = int64(seed)
		if v, ok := pa.kw["mode"]; ok {
			m, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("brush: mode: %w", err)
			}
			if b.Params.Mode, err = brush.ParseSampleMode(m); err != nil {
				return zygo.SexpNull, err
			}
		}
		if v, ok := pa.kw["material"]; ok {
			if b.Material, err = toMaterialName(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("brush: material: %w", err)
			}
		}

		s.AddBrush(b)
		return &sexpRef{id: b.ID, kind: "brush", name: b.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (terrain :kind :bump :size 200 :cells 64 :base 0 :amplitude 5
	//          :radius 40 :wavelength 50 :slope (vec3 0.1 0 0) :file "ground.stl")
	// -----------------------------------------------------------------------
	env.AddFunction("terrain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ts := scene.TerrainSpec{Kind: scene.TerrainFlat}
		if v, ok := pa.kw["kind"]; ok {
			k, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("terrain: kind: %w", err)
			}
			ts.Kind = scene.TerrainKind(k)
		}
		for key, dst := range map[string]*float64{
			"size":       &ts.Size,
			"base":       &ts.Base,
			"amplitude":  &ts.Amplitude,
			"wavelength": &ts.Wavelength,
			"radius":     &ts.Radius,
		} {
			if err := pa.number("terrain", key, dst); err != nil {
				return zygo.SexpNull, err
			}
		}
		if err := pa.integer("terrain", "cells", &ts.Cells); err != nil {
			return zygo.SexpNull, err
		}
		if v, ok := pa.kw["slope"]; ok {
			sl, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("terrain: slope: %w", err)
			}
			ts.Slope = v2.Vec{X: sl.X, Y: sl.Y}
		}
		if v, ok := pa.kw["file"]; ok {
			f, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("terrain: file: %w", err)
			}
			ts.File = f
		}
		s.Terrain = &ts
		return zygo.SexpNull, nil
	})
}

// parseFeature builds a feature from the arguments of a vegetation or fence
// form. Positional arguments after the name are paths.
func parseFeature(kind scene.FeatureKind, args []zygo.Sexp) (*scene.Feature, error) {
	fn := kind.String()
	pa := parseArgs(args)
	if len(pa.positional) < 1 {
		return nil, fmt.Errorf("%s requires a name argument", fn)
	}
	featureName, err := toString(pa.positional[0])
	if err != nil {
		return nil, fmt.Errorf("%s: name: %w", fn, err)
	}

	f := &scene.Feature{
		Kind: kind,
		Name: featureName,
		Mode: kind.DefaultMode(),
	}
	for i, arg := range pa.positional[1:] {
		p, ok := arg.(*sexpPath)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d: expected path, got %T (%s)", fn, i+1, arg, arg.SexpString(nil))
		}
		f.Paths = append(f.Paths, p.path)
	}
	if v, ok := pa.kw["paths"]; ok {
		paths, err := toPaths(v)
		if err != nil {
			return nil, fmt.Errorf("%s: paths: %w", fn, err)
		}
		f.Paths = append(f.Paths, paths...)
	}

	for key, dst := range map[string]*float64{
		"thickness": &f.Params.Thickness,
		"height":    &f.Params.Height,
		"depth":     &f.Params.Depth,
		"gap":       &f.Params.Gap,
	} {
		if err := pa.number(fn, key, dst); err != nil {
			return nil, err
		}
	}
	if err := pa.integer(fn, "sides", &f.Sides); err != nil {
		return nil, err
	}
	if err := pa.integer(fn, "accuracy", &f.Accuracy); err != nil {
		return nil, err
	}
	if v, ok := pa.kw["randomness"]; ok {
		r, ok := v.(*sexpRandomness)
		if !ok {
			return nil, fmt.Errorf("%s: randomness: expected (randomness ...), got %T", fn, v)
		}
		f.Params.Randomness = r.r
	}
	if v, ok := pa.kw["mode"]; ok {
		m, err := toKeywordString(v)
		if err != nil {
			return nil, fmt.Errorf("%s: mode: %w", fn, err)
		}
		if f.Mode, err = sampler.ParseMode(m); err != nil {
			return nil, err
		}
	}
	if v, ok := pa.kw["attach"]; ok {
		if f.Attach, err = toBool(v); err != nil {
			return nil, fmt.Errorf("%s: attach: %w", fn, err)
		}
	}
	if v, ok := pa.kw["material"]; ok {
		if f.Material, err = toMaterialName(v); err != nil {
			return nil, fmt.Errorf("%s: material: %w", fn, err)
		}
	}
	return f, nil
}
