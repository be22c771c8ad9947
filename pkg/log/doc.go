/*
Package log provides structured logging for FuzeWorks using zerolog.

The log package wraps the zerolog library with a global logger, component
loggers, and the two collaborators the event bus consumes: a Tracer that
records a nested trace of every firing, and an ErrorReporter that logs
recoverable listener failures.

# Core Components

Global Logger:
  - Package-level zerolog.Logger instance
  - Initialized once via log.Init()
  - Console output by default, JSON with JSONOutput

Context Loggers:
  - WithComponent: Add component name to all logs
  - WithModule: Add module name context
  - WithEvent: Add event name context

Tracer:
  - NewLevel / Log / StopLevel build a nested trace
  - Every entry carries depth and trace_id fields
  - A new trace_id (UUID) starts with each top-level firing
  - Entries are written at debug level

ErrorReporter:
  - Implements the bus error handler
  - Adds the module field when the error names its module

# Usage

Initializing the Logger:

	import "github.com/fuzeworks/fuzeworks/pkg/log"

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stdout,
	})

Tracing Firings:

	bus := events.NewBus(
		events.WithTracer(log.NewTracer(log.WithComponent("events"))),
		events.WithErrorHandler(log.NewErrorReporter(log.WithComponent("events"))),
	)

Sample trace (console format, debug level):

	10:30AM DBG Firing Event: 'coreStartEvent' depth=0 trace_id=5f0c...
	10:30AM DBG Activating module 'maintenance' depth=1 trace_id=5f0c...
	10:30AM DBG Found listeners with priority HIGHEST depth=1 trace_id=5f0c...
*/
package log
