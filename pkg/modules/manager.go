package modules

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/storage"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/rs/zerolog"
)

// Option configures a Manager.
type Option func(*Manager)

// WithStore persists module records and the event register to s.
func WithStore(s storage.Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithLogger replaces the manager's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// Manager owns the module registry. It is the bus's ModuleLoader and
// DefinitionSource: modules are loaded the first time an event they declared
// is fired, or the first time an event they provide is resolved.
type Manager struct {
	bus    *events.Bus
	store  storage.Store
	logger zerolog.Logger

	mu        sync.RWMutex
	order     []string
	manifests map[string]types.Module
	records   map[string]*types.ModuleRecord
	factories map[string]Factory
	instances map[string]Module
	loadOrder []string
	inflight  map[string]*flight
}

// NewManager creates a manager and installs it on bus as module loader and
// definition source.
func NewManager(bus *events.Bus, opts ...Option) *Manager {
	m := &Manager{
		bus:       bus,
		logger:    log.WithComponent("modules"),
		manifests: make(map[string]types.Module),
		records:   make(map[string]*types.ModuleRecord),
		factories: make(map[string]Factory),
		instances: make(map[string]Module),
		inflight:  make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(m)
	}
	bus.SetModuleLoader(m)
	bus.SetDefinitionSource(m)
	return m
}

// Register binds Go code to a manifest name. It may be called before or
// after the manifest is synced.
func (m *Manager) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("register module %q: name and factory are required", name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.factories[name]; dup {
		return fmt.Errorf("module %s already registered", name)
	}
	m.factories[name] = f
	return nil
}

// Sync replaces the manifest set. Loaded modules whose manifest is still
// present stay loaded; removed ones are closed. The bus event register is
// rebuilt and, with a store, records and register are persisted.
func (m *Manager) Sync(manifests []types.Module) error {
	next := make(map[string]types.Module, len(manifests))
	order := make([]string, 0, len(manifests))
	for _, mf := range manifests {
		if mf.Name == "" {
			return fmt.Errorf("manifest without name")
		}
		if _, dup := next[mf.Name]; dup {
			return fmt.Errorf("duplicate module %q", mf.Name)
		}
		next[mf.Name] = mf
		order = append(order, mf.Name)
	}

	now := time.Now()
	m.mu.Lock()
	var removed []string
	closers := make(map[string]Closer)
	for name := range m.manifests {
		if _, ok := next[name]; ok {
			continue
		}
		removed = append(removed, name)
		if inst, ok := m.instances[name]; ok {
			if c, ok := inst.(Closer); ok {
				closers[name] = c
			}
			delete(m.instances, name)
			m.loadOrder = remove(m.loadOrder, name)
		}
		delete(m.records, name)
	}
	sort.Strings(removed)

	for _, name := range order {
		mf := next[name]
		rec, ok := m.records[name]
		if !ok {
			rec = &types.ModuleRecord{State: types.ModuleStateRegistered}
			m.records[name] = rec
		}
		rec.Module = mf
		rec.UpdatedAt = now
		_, loaded := m.instances[name]
		switch {
		case !mf.IsEnabled() && !loaded:
			rec.State = types.ModuleStateDisabled
		case mf.IsEnabled() && rec.State == types.ModuleStateDisabled:
			rec.State = types.ModuleStateRegistered
		}
	}
	m.manifests = next
	m.order = order
	records := m.listLocked()
	snapshot := m.snapshotLocked()
	m.mu.Unlock()

	for _, name := range removed {
		if c, ok := closers[name]; ok {
			if err := c.Close(); err != nil {
				m.logger.Warn().Err(err).Str("module", name).Msg("Failed to close removed module")
			}
		}
	}

	m.bus.BuildRegister(snapshot)
	m.logger.Info().
		Int("modules", len(order)).
		Int("removed", len(removed)).
		Int("register_events", m.bus.RegisterSize()).
		Msg("Module registry synced")

	return m.persist(records, removed)
}

// EnsureLoaded loads name and its dependencies unless already loaded.
//
// A moduleGetEvent is fired before the module's code runs; cancelling it
// vetoes the load. Vetoes, dependency failures and Init errors come back as
// *events.ModuleError so the bus treats them as recoverable.
//
// Concurrent callers asking for a module that is being loaded wait for that
// load and get its result. Code running inside the load (the module's Init,
// moduleGetEvent listeners) receives a scoped bus; firings made through it
// that need the module being loaded return at once instead of waiting on
// themselves.
func (m *Manager) EnsureLoaded(name string) error {
	return m.ensureLoaded(name, nil)
}

func (m *Manager) ensureLoaded(name string, scope *loadScope) error {
	m.mu.Lock()
	scope = scope.activeLocked()
	if _, ok := m.instances[name]; ok {
		m.mu.Unlock()
		return nil
	}
	if f := m.inflight[name]; f != nil {
		err := m.waitLocked(name, f, scope)
		m.mu.Unlock()
		return err
	}
	mf, ok := m.manifests[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrModuleNotFound, name)
	}
	if !mf.IsEnabled() {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrModuleDisabled, name)
	}
	if err := m.checkCycleLocked(name); err != nil {
		m.mu.Unlock()
		return err
	}
	f := &flight{done: make(chan struct{})}
	m.inflight[name] = f
	inner := scope.with(m, name, f)
	if rec := m.records[name]; rec != nil {
		rec.State = types.ModuleStateLoading
	}
	m.mu.Unlock()

	m.logger.Debug().Str("module", name).Msg("Loading module")
	inst, err := m.load(name, mf, inner)

	m.mu.Lock()
	delete(m.inflight, name)
	if scope == nil {
		inner.chain.finished = true
	}
	_, stillKnown := m.manifests[name]
	rec := m.records[name]
	if rec != nil {
		rec.UpdatedAt = time.Now()
		switch {
		case err == nil:
			rec.State = types.ModuleStateLoaded
			rec.LoadCount++
			rec.LastLoadedAt = rec.UpdatedAt
			rec.LastError = ""
		case errors.Is(err, ErrModuleVetoed):
			rec.State = types.ModuleStateVetoed
			rec.LastError = err.Error()
		default:
			rec.State = types.ModuleStateFailed
			rec.LastError = err.Error()
		}
	}
	if err == nil && stillKnown {
		m.instances[name] = inst
		m.loadOrder = append(m.loadOrder, name)
	}
	f.err = err
	var snapshot *types.ModuleRecord
	if rec != nil {
		cp := *rec
		snapshot = &cp
	}
	m.mu.Unlock()
	close(f.done)

	if snapshot != nil {
		m.persistRecord(snapshot)
	}
	if err != nil {
		m.logger.Warn().Err(err).Str("module", name).Msg("Module load failed")
		return err
	}
	m.logger.Info().Str("module", name).Msg("Module loaded")
	return nil
}

func (m *Manager) load(name string, mf types.Module, scope *loadScope) (Module, error) {
	for _, dep := range mf.Dependencies {
		if err := m.ensureLoaded(dep, scope); err != nil {
			return nil, events.NewModuleError(name, fmt.Errorf("dependency %s: %w", dep, err))
		}
	}

	ev, err := scope.bus.Fire(events.EventModuleGet, name)
	if err != nil {
		return nil, fmt.Errorf("load module %s: %w", name, err)
	}
	if ev.IsCancelled() {
		return nil, events.NewModuleError(name, ErrModuleVetoed)
	}

	m.mu.RLock()
	factory, ok := m.factories[name]
	m.mu.RUnlock()
	if !ok {
		return nil, events.NewModuleError(name, ErrNoImplementation)
	}

	inst := factory()
	if inst == nil {
		return nil, events.NewModuleError(name, errors.New("factory returned nil"))
	}
	if p, ok := inst.(EventProvider); ok {
		for eventName, f := range p.EventFactories() {
			if err := scope.bus.RegisterEvent(eventName, f); err != nil {
				return nil, events.NewModuleError(name, err)
			}
		}
	}
	if err := inst.Init(scope.bus, mf); err != nil {
		return nil, events.NewModuleError(name, fmt.Errorf("init: %w", err))
	}
	return inst, nil
}

// checkCycleLocked walks the dependency graph from name and fails if it
// leads back to a module already on the path. Unknown dependencies are left
// for EnsureLoaded to report.
func (m *Manager) checkCycleLocked(name string) error {
	var path []string
	onPath := make(map[string]bool)
	done := make(map[string]bool)

	var visit func(n string) error
	visit = func(n string) error {
		if onPath[n] {
			return fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, strings.Join(path, " -> "), n)
		}
		if done[n] {
			return nil
		}
		mf, ok := m.manifests[n]
		if !ok {
			return nil
		}
		onPath[n] = true
		path = append(path, n)
		for _, dep := range mf.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		onPath[n] = false
		done[n] = true
		return nil
	}
	return visit(name)
}

// LookupEvent implements events.DefinitionSource. The first enabled module,
// in manifest order, that lists name under provides is loaded and asked for
// the factory.
func (m *Manager) LookupEvent(name string) (events.Factory, bool) {
	return m.lookupEvent(name, nil)
}

func (m *Manager) lookupEvent(name string, scope *loadScope) (events.Factory, bool) {
	m.mu.RLock()
	provider := ""
	for _, n := range m.order {
		if mf := m.manifests[n]; mf.IsEnabled() && mf.ProvidesEvent(name) {
			provider = n
			break
		}
	}
	m.mu.RUnlock()
	if provider == "" {
		return nil, false
	}

	if err := m.ensureLoaded(provider, scope); err != nil {
		m.logger.Error().Err(err).Str("module", provider).Str("event", name).Msg("Failed to load event provider")
		return nil, false
	}

	m.mu.RLock()
	inst := m.instances[provider]
	m.mu.RUnlock()
	p, ok := inst.(EventProvider)
	if !ok {
		return nil, false
	}
	f, ok := p.EventFactories()[name]
	return f, ok && f != nil
}

// Loaded reports whether name is loaded.
func (m *Manager) Loaded(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.instances[name]
	return ok
}

// LoadedCount returns the number of loaded modules.
func (m *Manager) LoadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.instances)
}

// Instance returns the loaded instance of name.
func (m *Manager) Instance(name string) (Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instances[name]
	return inst, ok
}

// Manifest returns the manifest synced for name.
func (m *Manager) Manifest(name string) (types.Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mf, ok := m.manifests[name]
	return mf, ok
}

// List returns a copy of every module record in manifest order.
func (m *Manager) List() []types.ModuleRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listLocked()
}

func (m *Manager) listLocked() []types.ModuleRecord {
	out := make([]types.ModuleRecord, 0, len(m.order))
	for _, name := range m.order {
		if rec := m.records[name]; rec != nil {
			out = append(out, *rec)
		}
	}
	return out
}

// Snapshot returns the enabled modules and their events, in manifest order,
// ready for events.Bus.BuildRegister.
func (m *Manager) Snapshot() []events.ModuleInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() []events.ModuleInfo {
	out := make([]events.ModuleInfo, 0, len(m.order))
	for _, name := range m.order {
		mf := m.manifests[name]
		if !mf.IsEnabled() {
			continue
		}
		out = append(out, events.ModuleInfo{ID: name, Events: append([]string(nil), mf.Events...)})
	}
	return out
}

// Close closes loaded modules in reverse load order and unloads them all.
func (m *Manager) Close() error {
	m.mu.Lock()
	order := m.loadOrder
	instances := m.instances
	m.loadOrder = nil
	m.instances = make(map[string]Module)
	var unloaded []types.ModuleRecord
	now := time.Now()
	for _, name := range order {
		if rec := m.records[name]; rec != nil {
			rec.State = types.ModuleStateRegistered
			rec.UpdatedAt = now
			unloaded = append(unloaded, *rec)
		}
	}
	m.mu.Unlock()

	for i := range unloaded {
		m.persistRecord(&unloaded[i])
	}

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		c, ok := instances[name].(Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close module %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) persist(records []types.ModuleRecord, removed []string) error {
	if m.store == nil {
		return nil
	}
	for i := range records {
		if err := m.store.SaveModule(&records[i]); err != nil {
			return fmt.Errorf("save module %s: %w", records[i].Name(), err)
		}
	}
	for _, name := range removed {
		if err := m.store.DeleteModule(name); err != nil {
			return fmt.Errorf("delete module %s: %w", name, err)
		}
	}
	if err := m.store.SaveRegister(m.bus.Register().Snapshot()); err != nil {
		return fmt.Errorf("save register: %w", err)
	}
	return nil
}

func (m *Manager) persistRecord(rec *types.ModuleRecord) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveModule(rec); err != nil {
		m.logger.Warn().Err(err).Str("module", rec.Name()).Msg("Failed to persist module record")
	}
}

func remove(list []string, name string) []string {
	out := list[:0:0]
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
