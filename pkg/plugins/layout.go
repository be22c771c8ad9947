package plugins

import (
	"fmt"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/types"
)

// EventLayoutLoad is the event the layout module provides.
const EventLayoutLoad = "layoutLoadEvent"

// DefaultLayoutDirectory is used when neither the firing nor the manifest
// config names a directory.
const DefaultLayoutDirectory = "views"

// LayoutLoadEvent fires before a template file is loaded. Listeners may
// rewrite File or Directory, or cancel to skip the load.
type LayoutLoadEvent struct {
	events.Base
	File      string
	Directory string
}

// Init takes the file and, optionally, the directory.
func (e *LayoutLoadEvent) Init(args ...any) error {
	if len(args) == 0 || len(args) > 2 {
		return fmt.Errorf("layoutLoadEvent: expected 1 or 2 arguments, got %d", len(args))
	}
	file, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("layoutLoadEvent: file must be a string, got %T", args[0])
	}
	e.File = file
	if len(args) == 2 {
		dir, ok := args[1].(string)
		if !ok {
			return fmt.Errorf("layoutLoadEvent: directory must be a string, got %T", args[1])
		}
		e.Directory = dir
	}
	return nil
}

// Layout provides layoutLoadEvent and fills in the default directory.
type Layout struct {
	bus       *events.Bus
	directory string
}

// NewLayout creates an uninitialised layout module.
func NewLayout() *Layout { return &Layout{} }

// EventFactories implements modules.EventProvider.
func (l *Layout) EventFactories() map[string]events.Factory {
	return map[string]events.Factory{
		EventLayoutLoad: func(*events.Bus) events.Event { return &LayoutLoadEvent{} },
	}
}

// Init reads the "directory" config key and subscribes at HIGHEST priority.
func (l *Layout) Init(bus *events.Bus, manifest types.Module) error {
	l.directory = DefaultLayoutDirectory
	if dir, ok := manifest.Config["directory"].(string); ok && dir != "" {
		l.directory = dir
	}
	l.bus = bus
	return bus.AddListener(l, EventLayoutLoad, events.PriorityHighest)
}

// Close unsubscribes from layoutLoadEvent.
func (l *Layout) Close() error {
	if l.bus == nil {
		return nil
	}
	return l.bus.RemoveListener(l, EventLayoutLoad, events.PriorityHighest)
}

// HandleEvent fills in the configured directory when the firing gave none.
func (l *Layout) HandleEvent(ev events.Event) error {
	load, ok := ev.(*LayoutLoadEvent)
	if !ok {
		return nil
	}
	if load.Directory == "" {
		load.Directory = l.directory
	}
	return nil
}
