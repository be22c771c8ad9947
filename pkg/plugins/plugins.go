package plugins

import (
	"fmt"
	"sort"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/modules"
	"github.com/fuzeworks/fuzeworks/pkg/types"
)

// Built-in module names.
const (
	TracerModule      = "tracer"
	MaintenanceModule = "maintenance"
	LayoutModule      = "layout"
)

// Registrar is the part of modules.Manager used to bind built-ins.
type Registrar interface {
	Register(name string, f modules.Factory) error
}

// RegisterAll binds every built-in module to its manifest name.
func RegisterAll(r Registrar) error {
	builtins := map[string]modules.Factory{
		TracerModule:      func() modules.Module { return NewTracer() },
		MaintenanceModule: func() modules.Module { return NewMaintenance() },
		LayoutModule:      func() modules.Module { return NewLayout() },
	}
	for _, name := range []string{TracerModule, MaintenanceModule, LayoutModule} {
		if err := r.Register(name, builtins[name]); err != nil {
			return fmt.Errorf("register %s: %w", name, err)
		}
	}
	return nil
}

// Defaults returns the manifests used for built-ins that have no manifest
// file in the modules directory.
func Defaults() []types.Module {
	return []types.Module{
		{
			Name:        LayoutModule,
			Description: "Provides layoutLoadEvent",
			Provides:    []string{EventLayoutLoad},
		},
		{
			Name:        MaintenanceModule,
			Description: "Cancels startup while maintenance mode is on",
			Events:      []string{events.EventCoreStart},
			Config:      map[string]any{"enabled": false},
		},
		{
			Name:        TracerModule,
			Description: "Logs core lifecycle events",
			Events:      []string{events.EventCoreStart, events.EventCoreShutdown},
		},
	}
}

// WithDefaults returns manifests plus a default manifest for every built-in
// not already present, sorted the same way modules.LoadDir sorts.
func WithDefaults(manifests []types.Module) []types.Module {
	present := make(map[string]bool, len(manifests))
	for _, m := range manifests {
		present[m.Name] = true
	}
	out := append([]types.Module(nil), manifests...)
	for _, d := range Defaults() {
		if !present[d.Name] {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
