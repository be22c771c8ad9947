package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type LayoutRenderEvent struct {
	Base
	Template string
}

type plainEvent struct{ cancelled bool }

func (p *plainEvent) IsCancelled() bool    { return p.cancelled }
func (p *plainEvent) SetCancelled(c bool) { p.cancelled = c }

func TestNameOf(t *testing.T) {
	named := &NotifierEvent{}
	named.bind("customName", nil)

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{name: "type name lowered", ev: &LayoutRenderEvent{}, want: "layoutRenderEvent"},
		{name: "builtin", ev: &CoreStartEvent{}, want: "coreStartEvent"},
		{name: "unexported type", ev: &plainEvent{}, want: "plainEvent"},
		{name: "explicit name wins", ev: named, want: "customName"},
		{name: "nil", ev: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NameOf(tt.ev))
		})
	}
}

func TestBase(t *testing.T) {
	bus := NewBus()
	ev := &NotifierEvent{}

	assert.False(t, ev.IsCancelled())
	ev.Cancel()
	assert.True(t, ev.IsCancelled())
	ev.SetCancelled(false)
	assert.False(t, ev.IsCancelled())

	assert.Nil(t, ev.Bus())
	ev.bind("first", bus)
	ev.bind("second", bus)
	assert.Equal(t, "first", ev.EventName(), "bind keeps an existing name")
	assert.Same(t, bus, ev.Bus())
}

func TestModuleGetEventInit(t *testing.T) {
	ev := &ModuleGetEvent{}

	require.NoError(t, ev.Init("auth"))
	assert.Equal(t, "auth", ev.ModuleName)

	assert.Error(t, ev.Init())
	assert.Error(t, ev.Init("a", "b"))
	assert.Error(t, ev.Init(42))
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "", lowerFirst(""))
	assert.Equal(t, "éclair", lowerFirst("Éclair"))
	assert.Equal(t, "already", lowerFirst("already"))
}
