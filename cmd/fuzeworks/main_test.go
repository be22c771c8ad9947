package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/fuzeworks/fuzeworks/pkg/api"
	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/plugins"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCmd returns a command carrying the global flags, parsed from args.
func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	bindGlobalFlags(cmd)
	cmd.Flags().Bool("json", false, "")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testDirs returns the global flags pointing at fresh temp directories.
func testDirs(t *testing.T) (modulesDir string, args []string) {
	t.Helper()
	root := t.TempDir()
	modulesDir = filepath.Join(root, "modules")
	require.NoError(t, os.MkdirAll(modulesDir, 0o755))
	return modulesDir, []string{
		"--env-file", "",
		"--modules-dir", modulesDir,
		"--data-dir", filepath.Join(root, "data"),
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "fuzeworks.yaml")
	writeFile(t, cfgPath, "modules_dir: from-file\ndata_dir: from-file\nlog:\n  level: warn\napi:\n  addr: \":9000\"\n")
	t.Setenv("FUZEWORKS_DATA_DIR", "from-env")
	t.Setenv("FUZEWORKS_LOG_LEVEL", "error")

	cmd := newTestCmd(t, "--config", cfgPath, "--env-file", "", "--log-level", "debug")
	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.ModulesDir)
	assert.Equal(t, "from-env", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.API.Addr)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "FUZEWORKS_API_ADDR=:7070\nFUZEWORKS_API_READ_ONLY=true\n")

	// register restoration, then unset so the env file can provide the values
	t.Setenv("FUZEWORKS_API_ADDR", "")
	t.Setenv("FUZEWORKS_API_READ_ONLY", "")
	require.NoError(t, os.Unsetenv("FUZEWORKS_API_ADDR"))
	require.NoError(t, os.Unsetenv("FUZEWORKS_API_READ_ONLY"))

	cfg, err := loadConfig(newTestCmd(t, "--env-file", envPath))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.API.Addr)
	assert.True(t, cfg.API.ReadOnly)
}

func TestLoadConfig_MissingEnvFileIgnored(t *testing.T) {
	_, err := loadConfig(newTestCmd(t, "--env-file", filepath.Join(t.TempDir(), "nope.env")))
	assert.NoError(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := loadConfig(newTestCmd(t, "--env-file", "", "--log-level", "loud"))
	assert.ErrorContains(t, err, "invalid config")

	_, err = loadConfig(newTestCmd(t, "--env-file", "", "--config", filepath.Join(t.TempDir(), "missing.yaml")))
	assert.ErrorContains(t, err, "load config")
}

func TestNewRuntime_SyncsManifestsAndBuiltins(t *testing.T) {
	modulesDir, args := testDirs(t)
	writeFile(t, filepath.Join(modulesDir, "auth.yaml"), "description: Auth\nevents: [coreStartEvent]\n")

	rt, err := newRuntime(newTestCmd(t, args...))
	require.NoError(t, err)
	defer rt.close()

	names := make([]string, 0)
	for _, rec := range rt.manager.List() {
		names = append(names, rec.Name())
		assert.Equal(t, types.ModuleStateRegistered, rec.State)
	}
	assert.ElementsMatch(t, []string{"auth", plugins.LayoutModule, plugins.MaintenanceModule, plugins.TracerModule}, names)
	assert.ElementsMatch(t,
		[]string{"auth", plugins.MaintenanceModule, plugins.TracerModule},
		rt.bus.Register().ModulesInterestedIn(events.EventCoreStart))
	assert.Zero(t, rt.manager.LoadedCount())
}

func TestNewRuntime_MissingModulesDir(t *testing.T) {
	root := t.TempDir()
	rt, err := newRuntime(newTestCmd(t,
		"--env-file", "",
		"--modules-dir", filepath.Join(root, "absent"),
		"--data-dir", filepath.Join(root, "data"),
	))
	require.NoError(t, err)
	defer rt.close()
	assert.Len(t, rt.manager.List(), len(plugins.Defaults()))
}

func TestStartupAndShutdown(t *testing.T) {
	modulesDir, args := testDirs(t)
	// no Go code is registered for auth: its load failure is reported, not fatal
	writeFile(t, filepath.Join(modulesDir, "auth.yaml"), "events: [coreStartEvent]\n")

	rt, err := newRuntime(newTestCmd(t, args...))
	require.NoError(t, err)
	defer rt.close()

	require.NoError(t, startup(rt))
	assert.True(t, rt.manager.Loaded(plugins.TracerModule))
	assert.True(t, rt.manager.Loaded(plugins.MaintenanceModule))
	assert.False(t, rt.manager.Loaded("auth"))

	require.NoError(t, shutdown(rt))
	inst, ok := rt.manager.Instance(plugins.TracerModule)
	require.True(t, ok)
	assert.Equal(t, 1, inst.(*plugins.Tracer).Count(events.EventCoreShutdown))
}

func TestStartup_MaintenanceCancels(t *testing.T) {
	_, args := testDirs(t)
	cfgPath := filepath.Join(t.TempDir(), "fuzeworks.toml")
	writeFile(t, cfgPath, "[modules.maintenance]\nenabled = true\nmessage = \"Back at noon\"\n")

	rt, err := newRuntime(newTestCmd(t, append(args, "--config", cfgPath)...))
	require.NoError(t, err)
	defer rt.close()

	err = startup(rt)
	require.ErrorIs(t, err, ErrStartupCancelled)
	assert.Contains(t, err.Error(), "Back at noon")
}

func TestRuntime_PersistsModules(t *testing.T) {
	_, args := testDirs(t)

	rt, err := newRuntime(newTestCmd(t, args...))
	require.NoError(t, err)
	require.NoError(t, startup(rt))
	require.NoError(t, rt.close())

	// reopen the same data dir
	rt, err = newRuntime(newTestCmd(t, args...))
	require.NoError(t, err)
	defer rt.close()

	rec, err := rt.store.GetModule(plugins.TracerModule)
	require.NoError(t, err)
	assert.Equal(t, plugins.TracerModule, rec.Name())

	register, err := rt.store.LoadRegister()
	require.NoError(t, err)
	assert.Contains(t, register[events.EventCoreStart], plugins.TracerModule)
}

func TestFireCommand(t *testing.T) {
	_, args := testDirs(t)
	cmd := newTestCmd(t, args...)

	require.NoError(t, fireCmd.RunE(cmd, []string{plugins.EventLayoutLoad, "home"}))

	var resp api.FireResponse
	require.NoError(t, json.Unmarshal(cmd.OutOrStdout().(*bytes.Buffer).Bytes(), &resp))
	assert.Equal(t, plugins.EventLayoutLoad, resp.Event)
	assert.Equal(t, "*plugins.LayoutLoadEvent", resp.Type)
	assert.False(t, resp.Cancelled)
}

func TestFireCommand_UnknownEventWithArgs(t *testing.T) {
	_, args := testDirs(t)
	err := fireCmd.RunE(newTestCmd(t, args...), []string{"nothingEvent", "x"})
	assert.ErrorIs(t, err, events.ErrEventNotFound)
}

func TestModulesListCommand(t *testing.T) {
	_, args := testDirs(t)
	cmd := newTestCmd(t, append(args, "--json")...)

	require.NoError(t, modulesListCmd.RunE(cmd, nil))

	var records []types.ModuleRecord
	require.NoError(t, json.Unmarshal(cmd.OutOrStdout().(*bytes.Buffer).Bytes(), &records))
	assert.Len(t, records, len(plugins.Defaults()))
}

func TestRegisterCommand(t *testing.T) {
	_, args := testDirs(t)
	cmd := newTestCmd(t, args...)

	require.NoError(t, registerCmd.RunE(cmd, nil))
	out := cmd.OutOrStdout().(*bytes.Buffer).String()
	assert.Contains(t, out, events.EventCoreStart)
	assert.Contains(t, out, "maintenance,tracer")
}

func TestParseArgs(t *testing.T) {
	got, err := parseArgs([]string{"a", "1"}, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "1"}, got)

	got, err = parseArgs([]string{`"a"`, "1", `{"k":true}`}, true)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", float64(1), map[string]any{"k": true}}, got)

	_, err = parseArgs([]string{"{"}, true)
	assert.ErrorContains(t, err, "argument 1")
}
