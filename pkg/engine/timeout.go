package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/landform/pkg/scene"
)

// DefaultEvalTimeout bounds a single evaluation when no timeout is set.
const DefaultEvalTimeout = 5 * time.Second

var (
	// ErrTimeout means the script ran past the engine's timeout.
	ErrTimeout = errors.New("evaluation timed out")

	// ErrSuperseded means a newer evaluation started before this one
	// finished; its scene is discarded.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

type evalResult struct {
	scene  *scene.Scene
	errors []EvalError
	err    error
}

// await blocks until the evaluation tagged gen reports on ch, the engine
// timeout passes, or ctx ends. An abandoned zygomys run keeps going in its
// goroutine; ch is buffered so it can finish and be collected.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*scene.Scene, []EvalError, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	select {
	case res := <-ch:
		if gen != e.currentGeneration() {
			return nil, nil, ErrSuperseded
		}
		return res.scene, res.errors, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return nil, nil, fmt.Errorf("evaluation canceled: %w", ctx.Err())
	}
}

func (e *Engine) currentGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}
