package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"desktimer/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sound_enabled: true\n"), 0o644))

	var mu sync.Mutex
	var received []preferences.Settings
	watcher, err := NewSettingsWatcher(path, func(settings preferences.Settings) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, settings)
	}, nil)
	require.NoError(t, err)
	watcher.debounce = 20 * time.Millisecond

	require.NoError(t, watcher.Start(t.Context()))
	t.Cleanup(func() { _ = watcher.Stop() })

	require.NoError(t, os.WriteFile(path, []byte("sound_enabled: false\nlanguage: ru\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) > 0 && received[len(received)-1].Language == "ru"
	}, 5*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, received[len(received)-1].SoundEnabled)
}

func TestSettingsWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	calls := make(chan preferences.Settings, 4)
	watcher, err := NewSettingsWatcher(path, func(settings preferences.Settings) { calls <- settings }, nil)
	require.NoError(t, err)
	watcher.debounce = 10 * time.Millisecond
	require.NoError(t, watcher.Start(t.Context()))
	t.Cleanup(func() { _ = watcher.Stop() })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.db"), []byte("x"), 0o644))

	select {
	case <-calls:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(200 * time.Millisecond):
	}
}
