package modules

import (
	"fmt"

	"github.com/fuzeworks/fuzeworks/pkg/events"
)

// flight is one in-progress load of a module. Other callers asking for the
// same module wait on done and share err.
type flight struct {
	done  chan struct{}
	err   error
	chain *loadChain
}

// loadChain is one top-level EnsureLoaded call and every nested load it
// runs, all on the caller's goroutine. Fields are guarded by Manager.mu.
type loadChain struct {
	waitingOn *flight
	finished  bool
}

// loadScope is the module loader handed to code running inside a load,
// through a scoped bus view. It knows which modules its chain is loading, so
// a module whose Init fires an event it listens to does not wait on itself.
type loadScope struct {
	m       *Manager
	chain   *loadChain
	flights map[string]*flight
	bus     *events.Bus
}

// EnsureLoaded implements events.ModuleLoader.
func (s *loadScope) EnsureLoaded(name string) error {
	return s.m.ensureLoaded(name, s)
}

// LookupEvent implements events.DefinitionSource.
func (s *loadScope) LookupEvent(name string) (events.Factory, bool) {
	return s.m.lookupEvent(name, s)
}

// with returns the scope for loading name as part of s's chain. A nil s
// starts a new chain.
func (s *loadScope) with(m *Manager, name string, f *flight) *loadScope {
	next := &loadScope{m: m, flights: map[string]*flight{name: f}}
	if s == nil {
		next.chain = &loadChain{}
	} else {
		next.chain = s.chain
		for n, fl := range s.flights {
			next.flights[n] = fl
		}
	}
	f.chain = next.chain
	next.bus = m.bus.Scoped(next)
	return next
}

// activeLocked drops scopes whose chain already finished: a bus view kept
// by a module after its load behaves like the plain bus.
func (s *loadScope) activeLocked() *loadScope {
	if s == nil || s.chain.finished {
		return nil
	}
	return s
}

// waitLocked blocks until f completes, unless the wait would never end:
// f belongs to this chain (a re-entrant load) or f's chain is itself
// waiting, directly or not, on this chain. m.mu is held on entry and on
// return.
func (m *Manager) waitLocked(name string, f *flight, s *loadScope) error {
	if s != nil && s.flights[name] == f {
		return nil
	}
	if s != nil {
		for c := f.chain; c != nil; {
			if c == s.chain {
				return events.NewModuleError(name, fmt.Errorf("%w: concurrent loads wait on each other", ErrDependencyCycle))
			}
			if c.waitingOn == nil {
				break
			}
			c = c.waitingOn.chain
		}
		s.chain.waitingOn = f
	}

	m.mu.Unlock()
	<-f.done
	m.mu.Lock()

	if s != nil {
		s.chain.waitingOn = nil
	}
	return f.err
}
