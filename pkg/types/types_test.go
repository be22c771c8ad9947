package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModule_IsEnabled(t *testing.T) {
	yes, no := true, false

	assert.True(t, Module{Name: "a"}.IsEnabled())
	assert.True(t, Module{Name: "a", Enabled: &yes}.IsEnabled())
	assert.False(t, Module{Name: "a", Enabled: &no}.IsEnabled())
}

func TestModule_ProvidesEvent(t *testing.T) {
	m := Module{Name: "layout", Provides: []string{"layoutLoadEvent"}}

	assert.True(t, m.ProvidesEvent("layoutLoadEvent"))
	assert.False(t, m.ProvidesEvent("coreStartEvent"))
}
