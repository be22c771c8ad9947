package events

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event bus.
var (
	// ErrInvalidPriority is returned when a listener is added or removed with an unknown priority.
	ErrInvalidPriority = errors.New("invalid event priority")

	// ErrEventNotFound is returned when a named firing with arguments has no event definition.
	ErrEventNotFound = errors.New("event not found")

	// ErrInvalidFireInput is returned by Fire when the target is neither a name nor an Event.
	// Nothing is fired; callers may treat it as a no-op.
	ErrInvalidFireInput = errors.New("invalid fire input")

	// ErrInvalidEvent is returned when an event definition cannot be registered.
	ErrInvalidEvent = errors.New("invalid event definition")

	// ErrNilListener is returned when a nil listener is registered.
	ErrNilListener = errors.New("nil listener")

	// ErrInvalidArguments is returned when an event's Init rejects the arguments passed to Fire.
	ErrInvalidArguments = errors.New("invalid event arguments")

	// ErrListenerPanic marks a ListenerError caused by a recovered panic.
	ErrListenerPanic = errors.New("listener panicked")
)

// ModuleError is the recoverable failure class. A listener or module loader
// returning a ModuleError has it reported to the error handler and dispatch
// continues with the next listener.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string {
	if e.Module == "" {
		return fmt.Sprintf("module error: %v", e.Err)
	}
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *ModuleError) Unwrap() error { return e.Err }

// ModuleName returns the module the failure is attributed to.
func (e *ModuleError) ModuleName() string { return e.Module }

// NewModuleError wraps err as a recoverable failure attributed to module.
func NewModuleError(module string, err error) *ModuleError {
	return &ModuleError{Module: module, Err: err}
}

// IsModuleError reports whether err carries a ModuleError anywhere in its chain.
func IsModuleError(err error) bool {
	var me *ModuleError
	return errors.As(err, &me)
}

// ListenerError wraps an unrecoverable listener failure that aborted a firing.
type ListenerError struct {
	Event    string
	Priority Priority
	Err      error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener for %s at %s failed: %v", e.Event, e.Priority, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }
