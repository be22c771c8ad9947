package events

import (
	"sort"
	"sync"
)

// ModuleInfo is one entry of a module registry snapshot: a module and the
// event names it declared interest in.
type ModuleInfo struct {
	ID     string
	Events []string
}

// Register indexes which modules want to be loaded before an event is
// dispatched. It is derived data: rebuild it whenever the module registry changes.
type Register struct {
	mu      sync.RWMutex
	modules map[string][]string
}

// NewRegister creates an empty event register.
func NewRegister() *Register {
	return &Register{modules: make(map[string][]string)}
}

// Build replaces the register with one derived from snapshot. Module order
// within each event follows snapshot order.
func (r *Register) Build(snapshot []ModuleInfo) {
	next := make(map[string][]string)
	for _, m := range snapshot {
		if len(m.Events) == 0 {
			continue
		}
		seen := make(map[string]bool, len(m.Events))
		for _, name := range m.Events {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			next[name] = append(next[name], m.ID)
		}
	}

	r.mu.Lock()
	r.modules = next
	r.mu.Unlock()
}

// ModulesInterestedIn returns the modules registered for eventName, in snapshot order.
func (r *Register) ModulesInterestedIn(eventName string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.modules[eventName]
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// Events returns the sorted event names present in the register.
func (r *Register) Events() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of events in the register.
func (r *Register) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Snapshot returns a copy of the whole register.
func (r *Register) Snapshot() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.modules))
	for name, ids := range r.modules {
		out[name] = append([]string(nil), ids...)
	}
	return out
}
