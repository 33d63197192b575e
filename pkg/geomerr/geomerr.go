// Package geomerr defines the failure taxonomy shared by the landform
// geometry pipeline. Every failure is scoped to the single sample, path or
// zone that produced it; none of them is fatal to a whole run.
package geomerr

import (
	"errors"
	"fmt"
)

var (
	// ErrOffsetFailure means a curve offset did not produce exactly one
	// curve per side, or the capped pieces failed to join. Skip the sample.
	ErrOffsetFailure = errors.New("offset failure")

	// ErrNoIntersection means a mesh-mesh intersection produced no usable
	// closed curve. Keep the un-conformed volume.
	ErrNoIntersection = errors.New("no intersection")

	// ErrDegenerateInput covers zero-length segments, non-positive sizes and
	// missing meshes. Produce empty output for the element.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrProjectionFailure means a vertical projection onto the terrain
	// missed entirely. The zone is unavailable.
	ErrProjectionFailure = errors.New("projection failure")
)

// Stage names the pipeline step an ItemError came from.
type Stage string

const (
	StageSample  Stage = "sample"
	StageProfile Stage = "profile"
	StageExtrude Stage = "extrude"
	StageConform Stage = "conform"
	StageZone    Stage = "zone"
	StageStroke  Stage = "stroke"
)

// ItemError records a failure for one element of a run. Index is the sample
// index within the path, or -1 when the failure concerns the whole element.
type ItemError struct {
	Feature string
	Group   string
	Index   int
	Stage   Stage
	Err     error
}

func (e ItemError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s %s[%d] %s: %v", e.Feature, e.Group, e.Index, e.Stage, e.Err)
	}
	if e.Group != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Feature, e.Group, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Feature, e.Stage, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Recovered reports whether the pipeline still produced an output for the
// element despite the error. Only a failed conformance keeps a result: the
// un-conformed volume.
func (e ItemError) Recovered() bool {
	return errors.Is(e.Err, ErrNoIntersection)
}
