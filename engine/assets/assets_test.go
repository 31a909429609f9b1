package assets

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/hdprman/engine/hd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneCloud = `
[[prims]]
path = "/World/Cloud"
type = "points"
`

const twoClouds = oneCloud + `
[[prims]]
path = "/World/Other"
type = "points"
`

func TestSceneWatcherReloads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(oneCloud), 0o644))

	w, err := NewSceneWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(twoClouds), 0o644))

	var reloads []Reload
	require.Eventually(t, func() bool {
		for _, r := range w.Pending() {
			reloads = append(reloads, r)
		}
		return len(reloads) > 0 && len(reloads[len(reloads)-1].Stage.Paths()) == 2
	}, 5*time.Second, 10*time.Millisecond)

	last := reloads[len(reloads)-1]
	assert.Equal(t, []hd.Path{hd.MustPath("/World/Cloud"), hd.MustPath("/World/Other")}, last.Stage.Paths())
	assert.False(t, last.LoadedAt.IsZero())
}

func TestSceneWatcherReportsParseErrors(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte(oneCloud), 0o644))

	w, err := NewSceneWatcher(path)
	require.NoError(t, err)
	require.NoError(t, w.Start())

	require.NoError(t, os.WriteFile(path, []byte("[[prims]\n"), 0o644))

	select {
	case err := <-w.Errors():
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload error reported")
	}

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	for range w.Errors() {
		// Drain until closed.
	}
	assert.Error(t, w.Start())
}

// closeWithin fails the test when Close does not return in time.
func closeWithin(t *testing.T, w *SceneWatcher, d time.Duration) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- w.Close() }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(d):
		t.Fatal("Close did not return")
	}
}

func TestSceneWatcherCloseWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := NewSceneWatcher(filepath.Join(t.TempDir(), "scene.toml"))
	require.NoError(t, err)

	closeWithin(t, w, 2*time.Second)
	closeWithin(t, w, 2*time.Second)
	_, open := <-w.Errors()
	assert.False(t, open)
	assert.Error(t, w.Start())
}

func TestSceneWatcherCloseAfterFailedStart(t *testing.T) {
	t.Parallel()

	w, err := NewSceneWatcher(filepath.Join(t.TempDir(), "missing", "scene.toml"))
	require.NoError(t, err)
	require.Error(t, w.Start())

	closeWithin(t, w, 2*time.Second)
}
