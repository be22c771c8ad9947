package plugins

import (
	"testing"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/modules"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, manifests ...types.Module) (*modules.Manager, *events.Bus) {
	t.Helper()
	bus := events.NewBus()
	m := modules.NewManager(bus)
	require.NoError(t, RegisterAll(m))
	require.NoError(t, m.Sync(WithDefaults(manifests)))
	return m, bus
}

func TestRegisterAll_Duplicate(t *testing.T) {
	m := modules.NewManager(events.NewBus())
	require.NoError(t, RegisterAll(m))
	assert.Error(t, RegisterAll(m))
}

func TestWithDefaults(t *testing.T) {
	custom := types.Module{Name: MaintenanceModule, Events: []string{events.EventCoreStart}, Config: map[string]any{"enabled": true}}

	out := WithDefaults([]types.Module{{Name: "auth"}, custom})

	names := make([]string, len(out))
	for i, m := range out {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"auth", "layout", "maintenance", "tracer"}, names)
	assert.Equal(t, true, out[2].Config["enabled"], "existing manifests win over defaults")
}

func TestTracer(t *testing.T) {
	m, bus := setup(t)

	_, err := bus.Fire(events.EventCoreStart)
	require.NoError(t, err)
	_, err = bus.Fire(events.EventCoreStart)
	require.NoError(t, err)
	_, err = bus.Fire(events.EventCoreShutdown)
	require.NoError(t, err)

	inst, ok := m.Instance(TracerModule)
	require.True(t, ok)
	tracer := inst.(*Tracer)
	assert.Equal(t, 2, tracer.Count(events.EventCoreStart))
	assert.Equal(t, 1, tracer.Count(events.EventCoreShutdown))

	require.NoError(t, tracer.Close())
	assert.Zero(t, bus.ListenerCount(events.EventCoreShutdown))
}

func TestTracer_RunsFirst(t *testing.T) {
	m, bus := setup(t)
	var seenBefore int
	require.NoError(t, bus.AddListenerFunc(func(ev events.Event) error {
		inst, _ := m.Instance(TracerModule)
		seenBefore = inst.(*Tracer).Count(events.EventCoreStart)
		return nil
	}, events.EventCoreStart, events.PriorityHighest))

	_, err := bus.Fire(events.EventCoreStart)
	require.NoError(t, err)
	assert.Equal(t, 1, seenBefore)
}

func TestMaintenance(t *testing.T) {
	tests := []struct {
		name          string
		config        map[string]any
		wantCancelled bool
		wantMessage   string
	}{
		{name: "off by default", config: nil, wantCancelled: false, wantMessage: DefaultMaintenanceMessage},
		{name: "explicitly off", config: map[string]any{"enabled": false}, wantCancelled: false, wantMessage: DefaultMaintenanceMessage},
		{name: "on", config: map[string]any{"enabled": true}, wantCancelled: true, wantMessage: DefaultMaintenanceMessage},
		{name: "on with message", config: map[string]any{"enabled": true, "message": "upgrading"}, wantCancelled: true, wantMessage: "upgrading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, bus := setup(t, types.Module{
				Name:   MaintenanceModule,
				Events: []string{events.EventCoreStart},
				Config: tt.config,
			})

			ev, err := bus.Fire(events.EventCoreStart)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCancelled, ev.IsCancelled())

			inst, ok := m.Instance(MaintenanceModule)
			require.True(t, ok)
			assert.Equal(t, tt.wantCancelled, inst.(*Maintenance).Active())
			assert.Equal(t, tt.wantMessage, inst.(*Maintenance).Message())
		})
	}
}

func TestMaintenance_ResyncDoesNotDuplicateListener(t *testing.T) {
	enabled := types.Module{
		Name:   MaintenanceModule,
		Events: []string{events.EventCoreStart},
		Config: map[string]any{"enabled": true},
	}
	m, bus := setup(t, enabled)

	_, err := bus.Fire(events.EventCoreStart)
	require.NoError(t, err)
	require.Equal(t, 2, bus.ListenerCount(events.EventCoreStart), "maintenance and the default tracer")

	// dropping the manifest closes the module, re-adding it loads a fresh one
	require.NoError(t, m.Sync(nil))
	assert.Zero(t, bus.ListenerCount(events.EventCoreStart))

	require.NoError(t, m.Sync([]types.Module{enabled}))
	ev, err := bus.Fire(events.EventCoreStart)
	require.NoError(t, err)
	assert.True(t, ev.IsCancelled())
	assert.Equal(t, 1, bus.ListenerCount(events.EventCoreStart))
}

func TestLayout_Close(t *testing.T) {
	m, bus := setup(t)
	_, err := bus.Fire(EventLayoutLoad, "home.tpl")
	require.NoError(t, err)
	require.Equal(t, 1, bus.ListenerCount(EventLayoutLoad))

	require.NoError(t, m.Close())
	assert.Zero(t, bus.ListenerCount(EventLayoutLoad))
}

func TestLayout_ProvidesEvent(t *testing.T) {
	m, bus := setup(t)
	assert.False(t, m.Loaded(LayoutModule))

	ev, err := bus.Fire(EventLayoutLoad, "home.tpl")
	require.NoError(t, err)
	require.IsType(t, &LayoutLoadEvent{}, ev)

	load := ev.(*LayoutLoadEvent)
	assert.Equal(t, "home.tpl", load.File)
	assert.Equal(t, DefaultLayoutDirectory, load.Directory)
	assert.True(t, m.Loaded(LayoutModule))

	ev, err = bus.Fire(EventLayoutLoad, "admin.tpl", "admin/views")
	require.NoError(t, err)
	assert.Equal(t, "admin/views", ev.(*LayoutLoadEvent).Directory)
}

func TestLayout_ConfiguredDirectory(t *testing.T) {
	_, bus := setup(t, types.Module{
		Name:     LayoutModule,
		Provides: []string{EventLayoutLoad},
		Config:   map[string]any{"directory": "templates"},
	})

	ev, err := bus.Fire(EventLayoutLoad, "home.tpl")
	require.NoError(t, err)
	assert.Equal(t, "templates", ev.(*LayoutLoadEvent).Directory)
}

func TestLayoutLoadEvent_Init(t *testing.T) {
	tests := []struct {
		name    string
		args    []any
		wantErr bool
	}{
		{name: "file", args: []any{"a.tpl"}},
		{name: "file and dir", args: []any{"a.tpl", "views"}},
		{name: "no args", args: nil, wantErr: true},
		{name: "too many", args: []any{"a", "b", "c"}, wantErr: true},
		{name: "file not string", args: []any{1}, wantErr: true},
		{name: "dir not string", args: []any{"a.tpl", 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&LayoutLoadEvent{}).Init(tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
