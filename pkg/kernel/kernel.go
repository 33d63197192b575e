// Package kernel defines the geometry kernel used by the landform pipeline:
// the triangle Mesh that represents volumes and terrain, the Kernel
// interface implemented by the extrusion backends (ruled, sdfx), a spatial
// Index over mesh triangles, and mesh-mesh intersection. The kernel
// abstraction allows swapping extrusion backends without changing the rest
// of the system.
package kernel

import "github.com/chazu/landform/pkg/curve"

// Accuracy bounds. Accuracy controls extrusion mesh density; higher is finer.
const (
	MinAccuracy = 1
	MaxAccuracy = 10
)

// ClampAccuracy returns accuracy clamped to [MinAccuracy, MaxAccuracy].
func ClampAccuracy(accuracy int) int {
	if accuracy < MinAccuracy {
		return MinAccuracy
	}
	if accuracy > MaxAccuracy {
		return MaxAccuracy
	}
	return accuracy
}

// Kernel is the abstract extrusion backend.
type Kernel interface {
	// Name identifies the backend in configuration and logs.
	Name() string

	// Extrude lofts a closed boundary vertically into a closed volume that
	// spans depth below to height above each boundary vertex. Accuracy is
	// clamped to [MinAccuracy, MaxAccuracy].
	Extrude(boundary curve.Polyline, height, depth float64, accuracy int) (*Mesh, error)
}
