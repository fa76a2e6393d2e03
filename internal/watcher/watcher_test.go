package watcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brezhnevtusks/Unidork-sub000/internal/watcher"
)

func writeTaxonomy(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func startWatcher(t *testing.T, path string) <-chan struct{} {
	t.Helper()
	w, err := watcher.New(watcher.Config{
		Path:        path,
		DebounceDur: 50 * time.Millisecond,
	})
	require.NoError(t, err, "failed to create watcher")
	t.Cleanup(func() { _ = w.Stop() })

	onChange, err := w.Start()
	require.NoError(t, err, "failed to start watcher")
	return onChange
}

func TestWatcher_DebounceMultipleWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	writeTaxonomy(t, path, "tags: []\n")

	onChange := startWatcher(t, path)

	// rapid writes coalesce into one notification
	for i := 0; i < 10; i++ {
		writeTaxonomy(t, path, fmt.Sprintf("tags:\n  - Enemy.T%d\n", i))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification but got timeout")
	}

	select {
	case <-onChange:
		t.Fatal("unexpected second notification")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tags.yaml")
	otherPath := filepath.Join(dir, "notes.txt")
	writeTaxonomy(t, path, "tags: []\n")
	writeTaxonomy(t, otherPath, "initial")

	onChange := startWatcher(t, path)

	writeTaxonomy(t, otherPath, "other content")

	select {
	case <-onChange:
		t.Fatal("should not notify for unrelated files")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_DetectsRenameSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tags.yaml")
	writeTaxonomy(t, path, "tags: []\n")

	onChange := startWatcher(t, path)

	tmp := filepath.Join(dir, "tags.yaml.tmp")
	writeTaxonomy(t, tmp, "tags:\n  - Player\n")
	require.NoError(t, os.Rename(tmp, path))

	select {
	case <-onChange:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("expected notification for rename over the watched file")
	}
}

func TestWatcher_Stop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.yaml")
	writeTaxonomy(t, path, "tags: []\n")

	w, err := watcher.New(watcher.Config{Path: path, DebounceDur: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = w.Start()
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		assert.NoError(t, w.Stop(), "Stop returned error")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop() timed out - possible deadlock")
	}
}

func TestWatcher_StartMissingDirectory(t *testing.T) {
	w, err := watcher.New(watcher.DefaultConfig(filepath.Join(t.TempDir(), "missing", "tags.yaml")))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	_, err = w.Start()
	require.Error(t, err)
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := watcher.New(watcher.Config{})
	require.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := watcher.DefaultConfig("/test/tags.yaml")

	assert.Equal(t, "/test/tags.yaml", cfg.Path)
	assert.Equal(t, watcher.DefaultDebounce, cfg.DebounceDur)
}
