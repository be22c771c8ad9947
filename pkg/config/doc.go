// Package config loads fuzeworks runtime configuration from YAML, JSON or
// TOML files and FUZEWORKS_* environment variables. Precedence, lowest first:
// Default, config file, environment, command-line flags.
package config
