package motion

import (
	"errors"
	"fmt"
)

// Domain errors reported as diagnostics. None of them stop a render pass.
var (
	// ErrBadPosition indicates a position expression that could not be parsed.
	ErrBadPosition = errors.New("motion: bad position expression")

	// ErrNoAdapter indicates a property for which no sink could be resolved.
	ErrNoAdapter = errors.New("motion: no adapter for property")

	// ErrNilTarget indicates a tween created without a usable target.
	ErrNilTarget = errors.New("motion: missing target")

	// ErrBadValue indicates a property value that is not a number, a
	// number with a unit, a colour or a string.
	ErrBadValue = errors.New("motion: unparseable value")

	// ErrUnknownLabel indicates a label lookup on a timeline without it.
	ErrUnknownLabel = errors.New("motion: unknown label")

	// ErrCallbackPanic wraps a panic recovered from an event callback.
	ErrCallbackPanic = errors.New("motion: callback panicked")
)

// Logger receives diagnostics. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// CallbackError carries the animation and event of a failed callback.
type CallbackError struct {
	ID    uint64
	Event string
	Value any
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%v: %s of animation %d: %v", ErrCallbackPanic, e.Event, e.ID, e.Value)
}

func (e *CallbackError) Unwrap() error {
	return ErrCallbackPanic
}
