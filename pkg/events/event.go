package events

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Event is a mutable firing occurrence handed to every listener in turn.
type Event interface {
	IsCancelled() bool
	SetCancelled(cancelled bool)
}

// Named is implemented by events that report their own name.
type Named interface {
	EventName() string
}

// Initializer is implemented by events that accept firing-time arguments.
// Init is called once, before dispatch, with the arguments passed to Fire.
type Initializer interface {
	Init(args ...any) error
}

// binder is satisfied by any event embedding Base.
type binder interface {
	bind(name string, bus *Bus)
}

// Base carries the state shared by every event. Embed it in concrete events.
type Base struct {
	name      string
	cancelled bool
	bus       *Bus
}

// EventName returns the name the event was resolved or fired under.
func (b *Base) EventName() string { return b.name }

// IsCancelled reports the advisory cancellation flag.
func (b *Base) IsCancelled() bool { return b.cancelled }

// SetCancelled sets the advisory cancellation flag.
func (b *Base) SetCancelled(cancelled bool) { b.cancelled = cancelled }

// Cancel is shorthand for SetCancelled(true).
func (b *Base) Cancel() { b.cancelled = true }

// Bus returns the bus currently firing the event, or nil before the first firing.
// Listeners may use it to fire nested events.
func (b *Base) Bus() *Bus { return b.bus }

func (b *Base) bind(name string, bus *Bus) {
	if b.name == "" {
		b.name = name
	}
	b.bus = bus
}

// NameOf returns the name an event is dispatched under: its EventName when set,
// otherwise its type name with the package qualifier dropped and the first
// letter lower-cased (*app.CoreStartEvent fires as "coreStartEvent").
func NameOf(ev Event) string {
	if ev == nil {
		return ""
	}
	if n, ok := ev.(Named); ok {
		if name := n.EventName(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(ev)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return lowerFirst(t.Name())
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
