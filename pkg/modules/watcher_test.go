package modules

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fuzeworks/fuzeworks/pkg/events"
	"github.com/fuzeworks/fuzeworks/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Rescan(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "auth.yaml", "events: [coreStartEvent]\nconfig:\n  level: 1\n")

	m, bus, _ := newTestManager(t)
	w, err := NewWatcher(dir, m, WithOverrides(map[string]map[string]any{"auth": {"level": 2}}))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Rescan())
	assert.Equal(t, []string{"auth"}, bus.Register().ModulesInterestedIn(events.EventCoreStart))

	mf, ok := m.Manifest("auth")
	require.True(t, ok)
	assert.Equal(t, 2, mf.Config["level"])
}

func TestWatcher_Prepare(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "auth.yaml", "events: [coreStartEvent]\n")

	m, bus, _ := newTestManager(t)
	w, err := NewWatcher(dir, m, WithPrepare(func(in []types.Module) []types.Module {
		return append(in, types.Module{Name: "builtin", Events: []string{events.EventCoreStart}})
	}))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Rescan())
	assert.ElementsMatch(t, []string{"auth", "builtin"}, bus.Register().ModulesInterestedIn(events.EventCoreStart))
}

func TestWatcher_RunSyncsChanges(t *testing.T) {
	dir := t.TempDir()
	m, bus, _ := newTestManager(t)

	synced := make(chan error, 10)
	w, err := NewWatcher(dir, m,
		WithDebounce(20*time.Millisecond),
		WithOnSync(func(err error) {
			select {
			case synced <- err:
			default:
			}
		}),
	)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	writeManifest(t, dir, "notes.txt", "ignored")
	writeManifest(t, dir, "tracer.yaml", "events: [coreShutdownEvent]\n")

	select {
	case err := <-synced:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not sync")
	}
	assert.Eventually(t, func() bool {
		return len(bus.Register().ModulesInterestedIn(events.EventCoreShutdown)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "tracer.yaml")))
	assert.Eventually(t, func() bool {
		_, ok := m.Manifest("tracer")
		return !ok
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), m)
	assert.Error(t, err)
}

func TestWatcher_CloseTwice(t *testing.T) {
	m, _, _ := newTestManager(t)
	w, err := NewWatcher(t.TempDir(), m)
	require.NoError(t, err)

	assert.Equal(t, filepath.IsAbs(w.Dir()), true)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
