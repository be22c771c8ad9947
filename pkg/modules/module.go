package modules

import (
	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/types"
)

// Module is the Go side of a module. Init runs once, when the module is first
// needed, with the bus it should register listeners on and its manifest.
type Module interface {
	Init(bus *events.Bus, manifest types.Module) error
}

// EventProvider is implemented by modules that define events. The factories
// are registered on the bus before Init runs.
type EventProvider interface {
	EventFactories() map[string]events.Factory
}

// Closer is implemented by modules holding resources that must be released
// when the manager shuts down or the manifest disappears.
type Closer interface {
	Close() error
}

// Factory creates a fresh, uninitialised module instance.
type Factory func() Module
