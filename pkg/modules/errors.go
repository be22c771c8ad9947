package modules

import "errors"

var (
	// ErrModuleNotFound is returned for a module name with no manifest.
	ErrModuleNotFound = errors.New("module not found")

	// ErrModuleDisabled is returned when loading a module whose manifest disables it.
	ErrModuleDisabled = errors.New("module disabled")

	// ErrDependencyCycle is returned when a module's dependencies lead back to it.
	ErrDependencyCycle = errors.New("module dependency cycle")

	// ErrModuleVetoed is returned when a moduleGetEvent listener cancelled the load.
	ErrModuleVetoed = errors.New("module load vetoed")

	// ErrNoImplementation is returned when a manifest has no registered Go factory.
	ErrNoImplementation = errors.New("no implementation registered for module")
)

// IsNotFound reports whether err indicates an unknown module name.
func IsNotFound(err error) bool { return errors.Is(err, ErrModuleNotFound) }

// IsVetoed reports whether err indicates a vetoed load.
func IsVetoed(err error) bool { return errors.Is(err, ErrModuleVetoed) }
