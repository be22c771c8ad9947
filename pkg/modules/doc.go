/*
Package modules manages FuzeWorks modules: manifests on disk, the Go code
bound to them, and loading them on demand for the event bus.

# Architecture

	┌──────────────────── MODULE MANAGER ──────────────────────┐
	│                                                            │
	│  modules/*.yaml|json|toml ──LoadDir──► []types.Module      │
	│              │                              │              │
	│           Watcher (fsnotify, debounced)     │              │
	│              └──────────── Sync ◄───────────┘              │
	│                              │                             │
	│        ┌─────────────────────┼──────────────────┐          │
	│        ▼                     ▼                  ▼          │
	│  bus.BuildRegister     module records      storage.Store   │
	│                                                            │
	│  bus.Fire(event) ──► EnsureLoaded(module)                  │
	│                        1. dependencies first               │
	│                        2. fire moduleGetEvent (veto)       │
	│                        3. Factory() + EventFactories       │
	│                        4. Module.Init(bus, manifest)       │
	│                                                            │
	│  bus resolves unknown name ──► LookupEvent(name)           │
	│                        first module whose provides lists   │
	│                        the name is loaded                  │
	└────────────────────────────────────────────────────────────┘

# Manifests

A manifest names the events that should load the module (events), the
event definitions it supplies (provides) and the modules it needs loaded
first (dependencies). The module name defaults to the file name.

Go code is bound to a manifest with Manager.Register. A manifest with no
registered code fails to load with ErrNoImplementation.

# Failures

Load failures are returned as *events.ModuleError, so the bus reports them
and keeps dispatching. Two exceptions abort a firing: a dependency cycle and
a fatal error from a moduleGetEvent listener.

# Concurrency

A module is loaded once. Callers arriving while it loads wait and share
the result. Init and moduleGetEvent listeners get a scoped bus: events
fired through it may activate the module being loaded without waiting on
it, so a module can fire events it listens to from Init. Fire through that
bus, not one captured elsewhere.

# Usage

	manager := modules.NewManager(bus, modules.WithStore(store))
	plugins.RegisterAll(manager)

	manifests, err := modules.LoadDir(cfg.ModulesDir)
	if err != nil {
		return err
	}
	if err := manager.Sync(manifests); err != nil {
		return err
	}
	defer manager.Close()
*/
package modules
