package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fuzeworks/fuzeworks/pkg/config"
	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/log"
	"github.com/fuzeworks/fuzeworks/pkg/metrics"
	"github.com/fuzeworks/fuzeworks/pkg/modules"
	"github.com/fuzeworks/fuzeworks/pkg/plugins"
	"github.com/fuzeworks/fuzeworks/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg     config.Config
	store   storage.Store
	bus     *events.Bus
	manager *modules.Manager
}

// loadConfig resolves configuration in order: defaults, config file,
// environment (including the env file), then command line flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if envFile != "" {
		// godotenv never overrides variables already set in the environment
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := config.Default()
	if path, _ := flags.GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("modules-dir") {
		cfg.ModulesDir, _ = flags.GetString("modules-dir")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newRuntime wires storage, the bus and the module manager, then syncs the
// manifests found in the modules directory. Nothing is loaded yet.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.Log.Level),
		JSONOutput: cfg.Log.JSON,
		Output:     cmd.ErrOrStderr(),
	})
	metrics.SetVersion(Version)

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		metrics.RegisterComponent(metrics.ComponentStorage, false, err.Error())
		return nil, fmt.Errorf("open store: %w", err)
	}
	metrics.RegisterComponent(metrics.ComponentStorage, true, "")

	bus := events.NewBus(
		events.WithTracer(log.NewTracer(log.WithComponent("events"))),
		events.WithErrorHandler(log.NewErrorReporter(log.WithComponent("events"))),
	)
	metrics.RegisterComponent(metrics.ComponentBus, true, "")

	manager := modules.NewManager(bus, modules.WithStore(store))
	rt := &runtime{cfg: cfg, store: store, bus: bus, manager: manager}

	if err := plugins.RegisterAll(manager); err != nil {
		rt.close()
		return nil, err
	}
	if err := rt.sync(); err != nil {
		metrics.RegisterComponent(metrics.ComponentModules, false, err.Error())
		rt.close()
		return nil, err
	}
	metrics.RegisterComponent(metrics.ComponentModules, true, "")
	return rt, nil
}

// sync reads the modules directory and hands the result to the manager.
// A missing directory only leaves the built-in defaults.
func (rt *runtime) sync() error {
	manifests, err := modules.LoadDir(rt.cfg.ModulesDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load modules: %w", err)
		}
		logger := log.WithComponent("modules")
		logger.Warn().
			Str("dir", rt.cfg.ModulesDir).
			Msg("Modules directory not found, using built-in modules only")
	}
	manifests = plugins.WithDefaults(manifests)
	manifests = modules.ApplyConfig(manifests, rt.cfg.Modules)
	return rt.manager.Sync(manifests)
}

func (rt *runtime) close() error {
	var errs []error
	if err := rt.manager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := rt.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
