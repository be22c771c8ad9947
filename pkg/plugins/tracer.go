package plugins

import (
	"sync"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/rs/zerolog"
)

// Tracer observes every event named in its manifest at MONITOR priority and
// logs each firing before any other listener runs.
type Tracer struct {
	mu     sync.Mutex
	bus    *events.Bus
	events []string
	counts map[string]int
	logger zerolog.Logger
}

// NewTracer creates an uninitialised tracer module.
func NewTracer() *Tracer {
	return &Tracer{
		counts: make(map[string]int),
		logger: log.WithModule(TracerModule),
	}
}

// Init subscribes to the manifest's events.
func (t *Tracer) Init(bus *events.Bus, manifest types.Module) error {
	t.bus = bus
	t.events = append([]string(nil), manifest.Events...)
	for _, name := range t.events {
		if err := bus.AddListener(t, name, events.PriorityMonitor); err != nil {
			return err
		}
	}
	return nil
}

// HandleEvent implements events.Listener.
func (t *Tracer) HandleEvent(ev events.Event) error {
	name := events.NameOf(ev)
	t.mu.Lock()
	t.counts[name]++
	n := t.counts[name]
	t.mu.Unlock()

	t.logger.Info().
		Str("event", name).
		Int("count", n).
		Bool("cancelled", ev.IsCancelled()).
		Msg("Event observed")
	return nil
}

// Count returns how many times name was observed.
func (t *Tracer) Count(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[name]
}

// Close unsubscribes from every event.
func (t *Tracer) Close() error {
	if t.bus == nil {
		return nil
	}
	for _, name := range t.events {
		if err := t.bus.RemoveListener(t, name, events.PriorityMonitor); err != nil {
			return err
		}
	}
	return nil
}
