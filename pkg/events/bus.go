package events

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/metrics"
)

// Bus dispatches events to listeners in priority order. All methods are
// safe for concurrent use; a single firing runs synchronously on the
// caller's goroutine.
//
// A Bus may be a scoped view of another (see Scoped). Views share every
// registration with the bus they came from.
type Bus struct {
	*hub

	// scope replaces the module loader, and the definition source when it
	// implements one, for firings through this view.
	scope ModuleLoader
}

// hub is the state shared by a bus and its scoped views.
type hub struct {
	registry *Registry
	resolver *resolver
	register *Register

	mu          sync.RWMutex
	loader      ModuleLoader
	errHandler  ErrorHandler
	tracer      Tracer
	recoverable func(error) bool

	disabled atomic.Bool
}

// NewBus creates a bus with the built-in event definitions registered.
func NewBus(opts ...Option) *Bus {
	b := &Bus{hub: &hub{
		registry:    NewRegistry(),
		resolver:    newResolver(),
		register:    NewRegister(),
		errHandler:  log.NewErrorReporter(log.WithComponent("events")),
		tracer:      nopTracer{},
		recoverable: IsModuleError,
	}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scoped returns a view of b that activates modules through l. If l also
// implements DefinitionSource it answers lookups of unknown event names.
// Listeners, definitions, the register and collaborators stay shared.
//
// Module loaders hand scoped views to code running inside a load so that
// firings made from there can be told apart from unrelated ones.
func (b *Bus) Scoped(l ModuleLoader) *Bus {
	return &Bus{hub: b.hub, scope: l}
}

// definitionSource returns the source overriding the resolver's own, if any.
func (b *Bus) definitionSource() DefinitionSource {
	src, _ := b.scope.(DefinitionSource)
	return src
}

// AddListener registers l for eventName at priority.
func (b *Bus) AddListener(l Listener, eventName string, priority Priority) error {
	return b.registry.Add(l, eventName, priority)
}

// AddListenerFunc registers fn for eventName at priority.
func (b *Bus) AddListenerFunc(fn func(Event) error, eventName string, priority Priority) error {
	if fn == nil {
		return ErrNilListener
	}
	return b.registry.Add(ListenerFunc(fn), eventName, priority)
}

// RemoveListener removes the first registration of l for eventName at priority.
func (b *Bus) RemoveListener(l Listener, eventName string, priority Priority) error {
	return b.registry.Remove(l, eventName, priority)
}

// RemoveListenerFunc removes the first registration of fn for eventName at priority.
func (b *Bus) RemoveListenerFunc(fn func(Event) error, eventName string, priority Priority) error {
	return b.registry.Remove(ListenerFunc(fn), eventName, priority)
}

// RegisterEvent binds an event name to a factory, replacing any previous definition.
func (b *Bus) RegisterEvent(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("%w: name %q", ErrInvalidEvent, name)
	}
	b.resolver.register(name, f)
	return nil
}

// HasEvent reports whether a definition for name is already registered.
func (b *Bus) HasEvent(name string) bool {
	return b.resolver.known(name)
}

// BuildRegister rebuilds the event register from a module registry snapshot.
func (b *Bus) BuildRegister(snapshot []ModuleInfo) {
	b.register.Build(snapshot)
}

// Register returns the event register.
func (b *Bus) Register() *Register { return b.register }

// Registry returns the listener registry.
func (b *Bus) Registry() *Registry { return b.registry }

// SetModuleLoader replaces the module loader after construction.
func (b *Bus) SetModuleLoader(l ModuleLoader) {
	b.mu.Lock()
	b.loader = l
	b.mu.Unlock()
}

// SetDefinitionSource replaces the definition source after construction.
func (b *Bus) SetDefinitionSource(src DefinitionSource) {
	b.resolver.setSource(src)
}

// ListenerCount returns the number of listeners for eventName.
func (b *Bus) ListenerCount(eventName string) int { return b.registry.Count(eventName) }

// TotalListenerCount returns the number of listeners across all events.
func (b *Bus) TotalListenerCount() int { return b.registry.Total() }

// RegisterSize returns the number of events in the event register.
func (b *Bus) RegisterSize() int { return b.register.Len() }

// Enable turns dispatch back on after Disable.
func (b *Bus) Enable() { b.disabled.Store(false) }

// Disable stops module activation and listener dispatch. Fire still
// resolves and initialises events and returns them untouched by listeners.
func (b *Bus) Disable() { b.disabled.Store(true) }

// Enabled reports whether the bus dispatches events.
func (b *Bus) Enabled() bool { return !b.disabled.Load() }

// Fire runs one firing. target is either an event name or an Event value;
// args are passed to the event's Init method when it has one.
//
// A firing never stops on cancellation: every listener runs and the caller
// inspects IsCancelled on the returned event. Listener errors classified as
// recoverable are reported to the error handler; any other error aborts the
// remaining listeners and is returned together with the event.
//
// Within one firing each priority bucket is snapshotted when dispatch reaches
// it. Listeners added to or removed from the running bucket take effect on
// the next firing; changes to buckets not reached yet apply to this one.
func (b *Bus) Fire(target any, args ...any) (Event, error) {
	ev, name, err := b.resolve(target, args)
	if err != nil {
		return ev, err
	}

	tracer, loader := b.collaborators()
	tracer.NewLevel(fmt.Sprintf("Firing Event: '%s'", name))
	defer tracer.StopLevel()

	if init, ok := ev.(Initializer); ok && len(args) > 0 {
		tracer.Log(fmt.Sprintf("Initializing Event with %d argument(s)", len(args)))
		if err := init.Init(args...); err != nil {
			return ev, fmt.Errorf("init %s: %w: %w", name, ErrInvalidArguments, err)
		}
	}

	if !b.Enabled() {
		tracer.Log("Event system disabled, skipping dispatch")
		return ev, nil
	}

	label := b.metricLabel(name, ev)
	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.EventFiringDuration, label)
	metrics.EventFiringsTotal.WithLabelValues(label).Inc()

	if err := b.activate(name, loader, tracer); err != nil {
		return ev, err
	}

	for p := Highest(); p <= Lowest(); p++ {
		listeners := b.registry.Listeners(name, p)
		if len(listeners) == 0 {
			continue
		}
		tracer.NewLevel(fmt.Sprintf("Found listeners with priority %s", p))
		for _, l := range listeners {
			if err := b.invoke(l, ev, name, label, p, tracer); err != nil {
				tracer.StopLevel()
				return ev, err
			}
		}
		tracer.StopLevel()
	}

	if ev.IsCancelled() {
		tracer.Log("Event cancelled")
	}
	return ev, nil
}

// resolve turns a Fire target into an event and its dispatch name.
func (b *Bus) resolve(target any, args []any) (Event, string, error) {
	switch t := target.(type) {
	case string:
		if t == "" {
			return nil, "", ErrInvalidFireInput
		}
		ev, err := b.resolver.resolve(b, t, len(args))
		if err != nil {
			return nil, t, err
		}
		return ev, t, nil
	case Event:
		if isNilEvent(t) {
			return nil, "", ErrInvalidFireInput
		}
		name := NameOf(t)
		if name == "" {
			return nil, "", ErrInvalidFireInput
		}
		if bd, ok := t.(binder); ok {
			bd.bind(name, b)
		}
		return t, name, nil
	default:
		return nil, "", ErrInvalidFireInput
	}
}

func isNilEvent(ev Event) bool {
	v := reflect.ValueOf(ev)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// metricOtherEvent labels firings of unregistered event types.
const metricOtherEvent = "other"

// metricLabel bounds the event label of bus metrics to registered
// definitions. Names that fell back to a notifier share one series.
func (b *Bus) metricLabel(name string, ev Event) string {
	if b.resolver.known(name) {
		return name
	}
	if _, ok := ev.(*NotifierEvent); ok {
		return EventNotifier
	}
	return metricOtherEvent
}

func (b *Bus) collaborators() (Tracer, ModuleLoader) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.scope != nil {
		return b.tracer, b.scope
	}
	return b.tracer, b.loader
}

// activate loads every module that declared interest in name.
func (b *Bus) activate(name string, loader ModuleLoader, tracer Tracer) error {
	modules := b.register.ModulesInterestedIn(name)
	if len(modules) == 0 || loader == nil {
		return nil
	}
	for _, module := range modules {
		tracer.Log(fmt.Sprintf("Activating module '%s'", module))
		if err := loader.EnsureLoaded(module); err != nil {
			if b.recoverable(err) {
				b.report(err)
				continue
			}
			return fmt.Errorf("activate module %s for %s: %w", module, name, err)
		}
		metrics.ModuleActivationsTotal.WithLabelValues(module).Inc()
	}
	return nil
}

// invoke runs one listener, converting panics into ListenerErrors and
// swallowing recoverable failures.
func (b *Bus) invoke(l Listener, ev Event, name, label string, p Priority, tracer Tracer) (err error) {
	metrics.ListenerInvocationsTotal.WithLabelValues(label, p.String()).Inc()

	defer func() {
		if r := recover(); r != nil {
			metrics.ListenerFailuresTotal.WithLabelValues(label, "panic").Inc()
			err = &ListenerError{Event: name, Priority: p, Err: fmt.Errorf("%w: %v", ErrListenerPanic, r)}
		}
	}()

	callErr := l.HandleEvent(ev)
	if callErr == nil {
		return nil
	}
	if b.recoverable(callErr) {
		metrics.ListenerFailuresTotal.WithLabelValues(label, "recoverable").Inc()
		tracer.Log(fmt.Sprintf("Listener failed, continuing: %v", callErr))
		b.report(callErr)
		return nil
	}
	metrics.ListenerFailuresTotal.WithLabelValues(label, "fatal").Inc()
	return &ListenerError{Event: name, Priority: p, Err: callErr}
}

func (b *Bus) report(err error) {
	b.mu.RLock()
	h := b.errHandler
	b.mu.RUnlock()
	h.Handle(err)
}
