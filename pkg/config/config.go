package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvModulesDir = "FUZEWORKS_MODULES_DIR"
	EnvDataDir    = "FUZEWORKS_DATA_DIR"
	EnvLogLevel   = "FUZEWORKS_LOG_LEVEL"
	EnvLogJSON    = "FUZEWORKS_LOG_JSON"
	EnvAPIAddr    = "FUZEWORKS_API_ADDR"
	EnvWatch      = "FUZEWORKS_WATCH"
	EnvReadOnly   = "FUZEWORKS_API_READ_ONLY"
)

// Config holds runtime parameters for fuzeworks.
type Config struct {
	ModulesDir string    `json:"modules_dir" yaml:"modules_dir" toml:"modules_dir"`
	DataDir    string    `json:"data_dir" yaml:"data_dir" toml:"data_dir"`
	Log        LogConfig `json:"log" yaml:"log" toml:"log"`
	API        APIConfig `json:"api" yaml:"api" toml:"api"`
	Watch      bool      `json:"watch" yaml:"watch" toml:"watch"`

	// Modules overrides manifest config per module name.
	Modules map[string]map[string]any `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules,omitempty"`
}

// LogConfig configures pkg/log.
type LogConfig struct {
	Level string `json:"level" yaml:"level" toml:"level"`
	JSON  bool   `json:"json" yaml:"json" toml:"json"`
}

// APIConfig configures the operations HTTP server.
type APIConfig struct {
	Addr     string `json:"addr" yaml:"addr" toml:"addr"`
	ReadOnly bool   `json:"read_only" yaml:"read_only" toml:"read_only"` // reject POST /events/{name}
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		ModulesDir: "modules",
		DataDir:    "data",
		Log:        LogConfig{Level: "info"},
		API:        APIConfig{Addr: ":8080"},
	}
}

// Load reads a configuration file on top of Default, based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from FUZEWORKS_* environment variables.
// Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvModulesDir); v != "" {
		c.ModulesDir = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvAPIAddr); v != "" {
		c.API.Addr = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogJSON, err)
		}
		c.Log.JSON = b
	}
	if v := os.Getenv(EnvReadOnly); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReadOnly, err)
		}
		c.API.ReadOnly = b
	}
	if v := os.Getenv(EnvWatch); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWatch, err)
		}
		c.Watch = b
	}
	return nil
}

// Validate checks that the configuration can be used to start fuzeworks.
func (c Config) Validate() error {
	if c.ModulesDir == "" {
		return fmt.Errorf("modules_dir is required")
	}
	if c.API.Addr == "" {
		return fmt.Errorf("api.addr is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}
