/*
Package types defines the data structures shared across FuzeWorks packages.

# Core Types

  - Module: a module manifest as read from the modules directory
  - ModuleState: registered, loading, loaded, failed, vetoed, disabled
  - ModuleRecord: a manifest plus its load history, persisted by pkg/storage

Manifests are decoded from YAML, JSON or TOML, so every field carries all
three struct tags. A manifest looks like:

	name: auth
	description: Session handling
	version: 1.2.0
	events:
	  - coreStartEvent
	provides:
	  - loginEvent
	dependencies:
	  - database
	config:
	  cookie: fw_session

Enabled is a pointer so an absent key can be told apart from an explicit
false. An absent key means the module is enabled.
*/
package types
