// Package conform fits extruded volumes to the terrain. The volume is
// intersected with the terrain mesh, the crossing loop becomes the new
// profile, and the profile is re-extruded from the ground up. This is a
// single correction pass; it is not iterated to convergence.
package conform

import (
	"fmt"

	"github.com/chazu/landform/pkg/curve"
	"github.com/chazu/landform/pkg/geomerr"
	"github.com/chazu/landform/pkg/kernel"
	"github.com/chazu/landform/pkg/logging"
	"github.com/chazu/landform/pkg/profile"
	"github.com/chazu/landform/pkg/terrain"
)

// Winding is the orientation every conformed profile is normalized to.
const Winding = curve.Clockwise

// Conform intersects volume with the terrain and returns the first closed
// intersection loop as a clockwise profile. When the surfaces do not cross,
// or only open curves come back, the error wraps geomerr.ErrNoIntersection
// and the caller should keep the un-conformed volume.
func Conform(volume *kernel.Mesh, t *terrain.Terrain, tol float64) (profile.Profile, error) {
	if volume.IsEmpty() || t == nil {
		return profile.Profile{}, fmt.Errorf("conform: missing volume or terrain: %w", geomerr.ErrDegenerateInput)
	}
	curves := kernel.Intersect(volume, t.Index(), tol)
	if len(curves) == 0 {
		return profile.Profile{}, fmt.Errorf("conform: %w", geomerr.ErrNoIntersection)
	}
	for _, c := range curves {
		if !c.IsClosed(tol) {
			continue
		}
		boundary := c.Dedupe(tol).Close().WithWinding(Winding)
		p := profile.New(boundary)
		if p.IsEmpty() || p.Winding == curve.WindingNone {
			continue
		}
		logging.Logger().Debug("conformed profile",
			"curves", len(curves), "vertices", len(p.Boundary), "area", p.Area())
		return p, nil
	}
	return profile.Profile{}, fmt.Errorf("conform: %d open curves: %w", len(curves), geomerr.ErrNoIntersection)
}

// Refit extrudes a conformed profile upward by height. Depth is zero
// because the profile already lies on the terrain, so the volume's lowest
// vertices sit on the ground.
func Refit(k kernel.Kernel, p profile.Profile, height float64, accuracy int) (*kernel.Mesh, error) {
	if p.IsEmpty() {
		return nil, fmt.Errorf("conform: refit of empty profile: %w", geomerr.ErrDegenerateInput)
	}
	return k.Extrude(p.Boundary, height, 0, accuracy)
}

// Attach runs the full correction pass on one volume: Conform, then Refit.
// On ErrNoIntersection the original volume is returned with the error so
// callers can record the recovered failure.
func Attach(k kernel.Kernel, volume *kernel.Mesh, t *terrain.Terrain, height float64, accuracy int, tol float64) (*kernel.Mesh, profile.Profile, error) {
	p, err := Conform(volume, t, tol)
	if err != nil {
		return volume, profile.Profile{}, err
	}
	fitted, err := Refit(k, p, height, accuracy)
	if err != nil {
		return volume, p, err
	}
	return fitted, p, nil
}
