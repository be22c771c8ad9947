/*
Package storage persists FuzeWorks module records and the event register.

# Architecture

	┌──────────────────── BOLTDB STORAGE ─────────────────────┐
	│                                                           │
	│  BoltStore                                                │
	│    - File: <dataDir>/fuzeworks.db                         │
	│    - One read-write transaction per write                 │
	│                                                           │
	│  Buckets                                                  │
	│    modules   module name  → JSON types.ModuleRecord       │
	│    register  event name   → JSON []string (module names)  │
	│                                                           │
	└───────────────────────────────────────────────────────────┘

The register bucket is rewritten as a whole on every SaveRegister, matching
the event register itself, which is always rebuilt from a full module
snapshot. The stored copy lets operators and the fire command inspect which
modules an event activates without loading the module directory.

MemoryStore implements the same interface in process memory. It is used
when no data directory is configured and in tests.

# Usage

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.GetModule("auth")
	if errors.Is(err, storage.ErrNotFound) {
		// never synced
	}
*/
package storage
