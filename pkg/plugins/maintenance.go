package plugins

import (
	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/rs/zerolog"
)

// DefaultMaintenanceMessage is reported when the manifest sets no message.
const DefaultMaintenanceMessage = "maintenance mode is enabled"

// Maintenance cancels coreStartEvent while maintenance mode is on, which
// tells the caller not to finish starting up. The mode is read from the
// manifest config keys "enabled" and "message".
type Maintenance struct {
	bus     *events.Bus
	enabled bool
	message string
	logger  zerolog.Logger
}

// NewMaintenance creates an uninitialised maintenance module.
func NewMaintenance() *Maintenance {
	return &Maintenance{logger: log.WithModule(MaintenanceModule)}
}

// Init reads the config and subscribes at HIGHEST priority.
func (m *Maintenance) Init(bus *events.Bus, manifest types.Module) error {
	m.enabled, _ = manifest.Config["enabled"].(bool)
	m.message = DefaultMaintenanceMessage
	if msg, ok := manifest.Config["message"].(string); ok && msg != "" {
		m.message = msg
	}
	m.bus = bus
	return bus.AddListener(m, events.EventCoreStart, events.PriorityHighest)
}

// Close unsubscribes from coreStartEvent.
func (m *Maintenance) Close() error {
	if m.bus == nil {
		return nil
	}
	return m.bus.RemoveListener(m, events.EventCoreStart, events.PriorityHighest)
}

// HandleEvent implements events.Listener.
func (m *Maintenance) HandleEvent(ev events.Event) error {
	if !m.enabled {
		return nil
	}
	m.logger.Warn().Str("reason", m.message).Msg("Cancelling startup")
	ev.SetCancelled(true)
	return nil
}

// Active reports whether maintenance mode is on.
func (m *Maintenance) Active() bool { return m.enabled }

// Message returns the maintenance message.
func (m *Maintenance) Message() string { return m.message }
