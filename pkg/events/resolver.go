package events

import (
	"fmt"
	"sync"
)

// Factory constructs a fresh event. The bus is the dispatcher that will fire it.
type Factory func(bus *Bus) Event

// DefinitionSource supplies event definitions the bus does not know yet,
// typically by loading the module that provides them.
type DefinitionSource interface {
	LookupEvent(name string) (Factory, bool)
}

// resolver maps event names to factories.
type resolver struct {
	mu        sync.RWMutex
	factories map[string]Factory
	source    DefinitionSource
}

func newResolver() *resolver {
	r := &resolver{factories: make(map[string]Factory)}
	registerBuiltins(r)
	return r
}

func (r *resolver) register(name string, f Factory) {
	r.mu.Lock()
	r.factories[name] = f
	r.mu.Unlock()
}

func (r *resolver) setSource(src DefinitionSource) {
	r.mu.Lock()
	r.source = src
	r.mu.Unlock()
}

func (r *resolver) known(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// lookup finds the factory for name, consulting the definition source on a
// miss. A non-nil override replaces the configured source. The source is
// called without holding the lock since it may load modules that register
// definitions or fire events of their own.
func (r *resolver) lookup(name string, override DefinitionSource) (Factory, bool) {
	r.mu.RLock()
	f, ok := r.factories[name]
	src := r.source
	r.mu.RUnlock()
	if override != nil {
		src = override
	}
	if ok {
		return f, true
	}
	if src == nil {
		return nil, false
	}
	f, ok = src.LookupEvent(name)
	if !ok || f == nil {
		return nil, false
	}
	r.mu.Lock()
	if existing, dup := r.factories[name]; dup {
		f = existing
	} else {
		r.factories[name] = f
	}
	r.mu.Unlock()
	return f, true
}

// resolve builds the event for a named firing. Without a definition, a
// firing with no arguments falls back to a NotifierEvent carrying the
// requested name; one with arguments fails with ErrEventNotFound.
func (r *resolver) resolve(bus *Bus, name string, argc int) (Event, error) {
	f, ok := r.lookup(name, bus.definitionSource())
	if !ok {
		if argc > 0 {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, name)
		}
		f, _ = r.lookup(EventNotifier, nil)
	}
	ev := f(bus)
	if ev == nil {
		return nil, fmt.Errorf("%w: factory for %s returned nil", ErrInvalidEvent, name)
	}
	if b, ok := ev.(binder); ok {
		b.bind(name, bus)
	}
	return ev, nil
}
