// Package engine provides the Lisp evaluation engine for landform.
// It wraps zygomys in a sandboxed environment and produces a Scene from
// user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/landform/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
	ID      scene.ID
}

// EvalResult bundles the full output of an evaluation for use by UI bindings.
type EvalResult struct {
	Scene    *scene.Scene
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for landform evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	timeout    time.Duration
}

// NewEngine creates an Engine with DefaultEvalTimeout.
func NewEngine() *Engine {
	return NewEngineWithTimeout(DefaultEvalTimeout)
}

// NewEngineWithTimeout creates an Engine that abandons evaluations running
// longer than timeout. A non-positive timeout selects DefaultEvalTimeout.
func NewEngineWithTimeout(timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultEvalTimeout
	}
	return &Engine{timeout: timeout}
}

// Timeout returns the evaluation time limit.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Evaluate runs EvaluateContext with a background context.
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext takes Lisp source code and produces a new Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, cancellation, panic): returns nil + nil + error
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{scene: s, errors: evalErrs, err: err}
	}()

	return e.await(ctx, ch, gen)
}

// EvaluateAndValidate runs EvaluateAndValidateContext with a background
// context.
func (e *Engine) EvaluateAndValidate(source string) (EvalResult, error) {
	return e.EvaluateAndValidateContext(context.Background(), source)
}

// EvaluateAndValidateContext evaluates source and runs scene validation on
// the result. Validation errors are reported as eval errors and drop the
// scene; validation warnings are attached to a successful result.
func (e *Engine) EvaluateAndValidateContext(ctx context.Context, source string) (EvalResult, error) {
	s, evalErrs, err := e.EvaluateContext(ctx, source)
	if err != nil {
		return EvalResult{}, err
	}
	if len(evalErrs) > 0 {
		return EvalResult{Errors: evalErrs}, nil
	}

	vr := scene.Validate(s)
	result := EvalResult{Scene: s}
	for _, v := range vr.Errors {
		result.Errors = append(result.Errors, EvalError{Line: sourceLine(s, v.ID), Message: v.Error()})
	}
	for _, v := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalWarning{Line: sourceLine(s, v.ID), Message: v.Error(), ID: v.ID})
	}
	if len(result.Errors) > 0 {
		result.Scene = nil
	}
	return result, nil
}

// sourceLine returns the declaration line of the element with the given ID,
// or 0 when unknown.
func sourceLine(s *scene.Scene, id scene.ID) int {
	if f := s.Features[id]; f != nil {
		return f.Source.Line
	}
	if b := s.Brushes[id]; b != nil {
		return b.Source.Line
	}
	return 0
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*scene.Scene, []EvalError, error) {
	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return scene.New(), nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := scene.New()
	registerBuiltins(env, s, declarationLines(source))

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	// Builtins populate s as the program runs.
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return s, nil, nil
}

// Line patterns in zygomys error messages, most specific first:
// "Error on line N: ..." from the parser, "line N: ..." from the runtime.
var linePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`),
	regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`),
}

// parseZygomysError converts a zygomys error into eval errors, keeping the
// line number when the message carries one. Preprocessing preserves line
// breaks, so the line refers to the user's script.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, re := range linePatterns {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
