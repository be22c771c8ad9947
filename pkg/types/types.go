package types

import "time"

// Module is a module manifest: the metadata FuzeWorks reads before any of the
// module's code runs.
type Module struct {
	Name         string         `json:"name" yaml:"name" toml:"name"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Version      string         `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Events       []string       `json:"events,omitempty" yaml:"events,omitempty" toml:"events,omitempty"`         // events that load the module before dispatch
	Provides     []string       `json:"provides,omitempty" yaml:"provides,omitempty" toml:"provides,omitempty"`   // event definitions the module supplies
	Dependencies []string       `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty"`
	Enabled      *bool          `json:"enabled,omitempty" yaml:"enabled,omitempty" toml:"enabled,omitempty"` // nil means enabled
	Config       map[string]any `json:"config,omitempty" yaml:"config,omitempty" toml:"config,omitempty"`
}

// IsEnabled reports whether the module may be loaded.
func (m Module) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}

// ProvidesEvent reports whether the module supplies the definition of name.
func (m Module) ProvidesEvent(name string) bool {
	for _, p := range m.Provides {
		if p == name {
			return true
		}
	}
	return false
}

// ModuleState represents where a module is in its load lifecycle
type ModuleState string

const (
	ModuleStateRegistered ModuleState = "registered"
	ModuleStateLoading    ModuleState = "loading"
	ModuleStateLoaded     ModuleState = "loaded"
	ModuleStateFailed     ModuleState = "failed"
	ModuleStateVetoed     ModuleState = "vetoed"
	ModuleStateDisabled   ModuleState = "disabled"
)

// ModuleRecord is the persisted view of a module
type ModuleRecord struct {
	Module       Module      `json:"module"`
	State        ModuleState `json:"state"`
	LoadCount    int         `json:"load_count"`
	LastLoadedAt time.Time   `json:"last_loaded_at,omitempty"`
	LastError    string      `json:"last_error,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Name returns the manifest name of the record.
func (r *ModuleRecord) Name() string { return r.Module.Name }
