package log

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Tracer writes a nested trace of event firings. Each top-level level gets
// a fresh trace id so nested firings can be correlated in the output.
type Tracer struct {
	mu      sync.Mutex
	logger  zerolog.Logger
	depth   int
	traceID string
}

// NewTracer creates a tracer writing debug entries to logger.
func NewTracer(logger zerolog.Logger) *Tracer {
	return &Tracer{logger: logger}
}

// NewLevel opens a nested level labelled label.
func (t *Tracer) NewLevel(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.depth == 0 {
		t.traceID = uuid.NewString()
	}
	t.entry().Msg(label)
	t.depth++
}

// Log writes msg at the current depth.
func (t *Tracer) Log(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry().Msg(msg)
}

// StopLevel closes the innermost level. Closing with no open level is a no-op.
func (t *Tracer) StopLevel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.depth == 0 {
		return
	}
	t.depth--
	if t.depth == 0 {
		t.traceID = ""
	}
}

// Depth returns the number of open levels.
func (t *Tracer) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.depth
}

func (t *Tracer) entry() *zerolog.Event {
	return t.logger.Debug().Str("trace_id", t.traceID).Int("depth", t.depth)
}
