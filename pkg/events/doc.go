/*
Package events provides the FuzeWorks event bus: a synchronous, in-process,
priority-ordered publish/subscribe dispatcher with lazy module activation.

Components register listeners for an event name at a priority. Publishers fire
an event either by name or by handing over a ready-made event value. The bus
resolves the name to an event object, loads every module that declared
interest in the event, and then runs the listeners from the highest to the
lowest priority on the caller's goroutine. The mutated event is returned so
the publisher can inspect it, most commonly to see whether a listener
cancelled it.

# Architecture

	┌───────────────────────── EVENT BUS ──────────────────────────┐
	│                                                                │
	│  Fire(target, args...)                                         │
	│       │                                                        │
	│  ┌────▼───────────────┐   name → Factory table                 │
	│  │ RESOLVE            │   DefinitionSource on miss             │
	│  │                    │   NotifierEvent when no args           │
	│  └────┬───────────────┘                                        │
	│  ┌────▼───────────────┐                                        │
	│  │ INIT               │   Initializer.Init(args...)            │
	│  └────┬───────────────┘                                        │
	│  ┌────▼───────────────┐   Register: event → []module           │
	│  │ ACTIVATE MODULES   │   ModuleLoader.EnsureLoaded(module)    │
	│  └────┬───────────────┘                                        │
	│  ┌────▼───────────────┐   Registry: event → priority → []L     │
	│  │ DISPATCH           │   MONITOR, HIGHEST, HIGH, NORMAL,      │
	│  │                    │   LOW, LOWEST; FIFO within a level     │
	│  └────┬───────────────┘                                        │
	│       ▼                                                        │
	│  (event, error)                                                │
	└────────────────────────────────────────────────────────────────┘

# Priorities

Six fixed levels, dispatched by ordinal. MONITOR (0) runs first and is meant
for observers; LOWEST (5) runs last.

	MONITOR  0
	HIGHEST  1
	HIGH     2
	NORMAL   3
	LOW      4
	LOWEST   5

# Event Objects

Events embed Base, which holds the name, the advisory cancellation flag and a
reference to the bus firing them. An event accepting arguments implements
Initializer. Built-in definitions registered on every bus:

  - notifierEvent: payload-free fallback for unknown names fired without arguments
  - coreStartEvent: fired once bootstrapping is done; cancel to stop startup
  - coreShutdownEvent: fired when shutting down
  - moduleGetEvent: fired before a module loads; cancel to veto the load

An event fired as a value dispatches under its EventName, or, when that is
empty, under its type name with the first letter lower-cased
(*CoreStartEvent fires as "coreStartEvent").

# Failure Handling

  - *ModuleError anywhere in a listener's error chain is recoverable: it is
    passed to the ErrorHandler and dispatch continues
  - any other error aborts the firing and comes back as *ListenerError
  - a panicking listener is recovered and reported as a *ListenerError
    wrapping ErrListenerPanic

Cancellation never stops dispatch. Every listener runs and the publisher
decides what a cancelled event means.

# Concurrency

All registration methods are safe for concurrent use. No lock is held while a
listener runs, so listeners may add or remove listeners and fire nested
events. The bucket being dispatched is a snapshot taken when dispatch reached
it: changes to it apply to the next firing, changes to later buckets apply to
the current one.

# Usage

	bus := events.NewBus(
		events.WithModuleLoader(manager),
		events.WithTracer(log.NewTracer(log.WithComponent("events"))),
	)

	_ = bus.AddListenerFunc(func(ev events.Event) error {
		ev.SetCancelled(true)
		return nil
	}, events.EventCoreStart, events.PriorityHighest)

	ev, err := bus.Fire(events.EventCoreStart)
	if err != nil {
		return err
	}
	if ev.IsCancelled() {
		log.Info("startup cancelled")
	}
*/
package events
