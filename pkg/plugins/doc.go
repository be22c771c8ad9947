// Package plugins contains the modules that ship with fuzeworks:
//
//   - tracer: logs every event named in its manifest at MONITOR priority
//   - maintenance: cancels coreStartEvent while config "enabled" is true
//   - layout: provides layoutLoadEvent and fills in its default directory
//
// RegisterAll binds them to a modules.Manager; WithDefaults supplies a
// manifest for each one the modules directory does not override.
package plugins
