package scene

import (
	"fmt"

	"github.com/chazu/landform/pkg/kernel"
)

// Default settings applied to a new scene.
const (
	DefaultTolerance = 0.01
	DefaultAccuracy  = 5
)

// Defaults contains scene-wide settings. The Set flags record which values
// the script gave explicitly through settings.
type Defaults struct {
	Tolerance    float64 `json:"tolerance" yaml:"tolerance"`
	Accuracy     int     `json:"accuracy" yaml:"accuracy"`
	Units        string  `json:"units" yaml:"units"` // model units; informational
	ToleranceSet bool    `json:"tolerance_set" yaml:"-"`
	AccuracySet  bool    `json:"accuracy_set" yaml:"-"`
}

// Scene is the top-level immutable data structure produced by evaluation.
type Scene struct {
	Features  map[ID]*Feature     `json:"features"`
	Brushes   map[ID]*Brush       `json:"brushes"`
	Order     []ID                `json:"order"` // declaration order of features and brushes
	NameIndex map[string]ID       `json:"name_index"`
	Materials map[string]Material `json:"materials"`
	Terrain   *TerrainSpec        `json:"terrain,omitempty"`
	Defaults  Defaults            `json:"defaults"`
	Version   uint64              `json:"version"`

	// duplicates records names declared more than once, for validation.
	duplicates []string
}

// New creates an empty Scene with default settings.
func New() *Scene {
	return &Scene{
		Features:  make(map[ID]*Feature),
		Brushes:   make(map[ID]*Brush),
		NameIndex: make(map[string]ID),
		Materials: make(map[string]Material),
		Defaults: Defaults{
			Tolerance: DefaultTolerance,
			Accuracy:  DefaultAccuracy,
			Units:     "m",
		},
	}
}

func (s *Scene) index(name string, id ID) {
	if name == "" {
		return
	}
	if _, ok := s.NameIndex[name]; ok {
		s.duplicates = append(s.duplicates, name)
	}
	s.NameIndex[name] = id
}

// AddFeature adds a feature to the scene, assigning an ID from its kind and
// name when it has none. A later feature with the same name replaces the
// name index entry; Validate reports the duplicate.
func (s *Scene) AddFeature(f *Feature) {
	if f.ID.IsZero() {
		f.ID = NewID(f.Kind.String() + "/" + f.Name)
	}
	if _, ok := s.Features[f.ID]; !ok {
		s.Order = append(s.Order, f.ID)
	}
	s.Features[f.ID] = f
	s.index(f.Name, f.ID)
}

// AddBrush adds a brush to the scene.
func (s *Scene) AddBrush(b *Brush) {
	if b.ID.IsZero() {
		b.ID = NewID("brush/" + b.Name)
	}
	if _, ok := s.Brushes[b.ID]; !ok {
		s.Order = append(s.Order, b.ID)
	}
	s.Brushes[b.ID] = b
	s.index(b.Name, b.ID)
}

// AddMaterial registers a material by name, replacing any earlier one.
func (s *Scene) AddMaterial(m Material) {
	s.Materials[m.Name] = m
}

// Lookup returns the feature with the given name, or nil.
func (s *Scene) Lookup(name string) *Feature {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Features[id]
}

// MustLookup returns the feature with the given name, or panics.
func (s *Scene) MustLookup(name string) *Feature {
	f := s.Lookup(name)
	if f == nil {
		panic(fmt.Sprintf("scene: no feature named %q", name))
	}
	return f
}

// LookupBrush returns the brush with the given name, or nil.
func (s *Scene) LookupBrush(name string) *Brush {
	id, ok := s.NameIndex[name]
	if !ok {
		return nil
	}
	return s.Brushes[id]
}

// FeatureList returns the features in declaration order.
func (s *Scene) FeatureList() []*Feature {
	out := make([]*Feature, 0, len(s.Features))
	for _, id := range s.Order {
		if f := s.Features[id]; f != nil {
			out = append(out, f)
		}
	}
	return out
}

// BrushList returns the brushes in declaration order.
func (s *Scene) BrushList() []*Brush {
	out := make([]*Brush, 0, len(s.Brushes))
	for _, id := range s.Order {
		if b := s.Brushes[id]; b != nil {
			out = append(out, b)
		}
	}
	return out
}

// Accuracy returns the feature's accuracy, falling back to the scene
// default, clamped to the kernel range.
func (s *Scene) Accuracy(f *Feature) int {
	a := f.Accuracy
	if a == 0 {
		a = s.Defaults.Accuracy
	}
	return kernel.ClampAccuracy(a)
}

// MaterialOf returns the named material, if the scene defines it.
func (s *Scene) MaterialOf(name string) (Material, bool) {
	m, ok := s.Materials[name]
	return m, ok
}

// Len returns the total number of features and brushes.
func (s *Scene) Len() int {
	return len(s.Features) + len(s.Brushes)
}
