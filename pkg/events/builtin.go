package events

import "fmt"

// Names of the events every bus knows about.
const (
	EventNotifier     = "notifierEvent"
	EventCoreStart    = "coreStartEvent"
	EventCoreShutdown = "coreShutdownEvent"
	EventModuleGet    = "moduleGetEvent"
)

// NotifierEvent is the payload-free fallback for named firings that have no
// registered definition. It exists so ad-hoc signals need no dedicated type.
type NotifierEvent struct {
	Base
}

// CoreStartEvent fires once the application has finished bootstrapping.
// Cancelling it asks the caller not to continue starting.
type CoreStartEvent struct {
	Base
}

// CoreShutdownEvent fires when the application begins shutting down.
type CoreShutdownEvent struct {
	Base
}

// ModuleGetEvent fires before a module is loaded. Cancelling it vetoes the load.
type ModuleGetEvent struct {
	Base
	ModuleName string
}

// Init takes the module name as its only argument.
func (e *ModuleGetEvent) Init(args ...any) error {
	if len(args) != 1 {
		return fmt.Errorf("moduleGetEvent: expected 1 argument, got %d", len(args))
	}
	name, ok := args[0].(string)
	if !ok {
		return fmt.Errorf("moduleGetEvent: module name must be a string, got %T", args[0])
	}
	e.ModuleName = name
	return nil
}

func registerBuiltins(r *resolver) {
	r.register(EventNotifier, func(*Bus) Event { return &NotifierEvent{} })
	r.register(EventCoreStart, func(*Bus) Event { return &CoreStartEvent{} })
	r.register(EventCoreShutdown, func(*Bus) Event { return &CoreShutdownEvent{} })
	r.register(EventModuleGet, func(*Bus) Event { return &ModuleGetEvent{} })
}
