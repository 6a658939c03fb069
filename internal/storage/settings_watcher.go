package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"desktimer/internal/logfields"
	"desktimer/internal/ui/preferences"

	"github.com/fsnotify/fsnotify"
)

const defaultSettingsDebounce = 300 * time.Millisecond

// SettingsWatcher reloads the settings file when it changes on disk and
// passes the result to onChange.
type SettingsWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(preferences.Settings)
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewSettingsWatcher creates a watcher for the settings file at path.
func NewSettingsWatcher(path string, onChange func(preferences.Settings), logger *slog.Logger) (*SettingsWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	return &SettingsWatcher{
		path:     absPath,
		watcher:  watcher,
		onChange: onChange,
		debounce: defaultSettingsDebounce,
		logger:   logger,
	}, nil
}

// Start watches the directory holding the settings file. Editors that
// replace the file on save would otherwise drop a file-level watch.
func (settingsWatcher *SettingsWatcher) Start(ctx context.Context) error {
	settingsWatcher.mu.Lock()
	defer settingsWatcher.mu.Unlock()
	if settingsWatcher.started {
		return nil
	}

	dir := filepath.Dir(settingsWatcher.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := settingsWatcher.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch settings directory: %w", err)
	}

	settingsWatcher.stopCh = make(chan struct{})
	settingsWatcher.doneCh = make(chan struct{})
	settingsWatcher.started = true
	go settingsWatcher.loop(ctx, settingsWatcher.stopCh, settingsWatcher.doneCh)

	settingsWatcher.logger.Debug("Watching settings file", logfields.Path(settingsWatcher.path))
	return nil
}

// Stop ends the watch and waits for the loop to exit.
func (settingsWatcher *SettingsWatcher) Stop() error {
	settingsWatcher.mu.Lock()
	if !settingsWatcher.started {
		settingsWatcher.mu.Unlock()
		return settingsWatcher.watcher.Close()
	}
	close(settingsWatcher.stopCh)
	doneCh := settingsWatcher.doneCh
	settingsWatcher.started = false
	settingsWatcher.mu.Unlock()

	<-doneCh
	return settingsWatcher.watcher.Close()
}

func (settingsWatcher *SettingsWatcher) loop(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	fileName := filepath.Base(settingsWatcher.path)
	var reload *time.Timer
	defer func() {
		if reload != nil {
			reload.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case event, ok := <-settingsWatcher.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != fileName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if reload != nil {
				reload.Stop()
			}
			reload = time.AfterFunc(settingsWatcher.debounce, settingsWatcher.reload)
		case err, ok := <-settingsWatcher.watcher.Errors:
			if !ok {
				return
			}
			settingsWatcher.logger.Warn("Settings watcher error", logfields.Error(err))
		}
	}
}

func (settingsWatcher *SettingsWatcher) reload() {
	settings, err := LoadSettings(settingsWatcher.path)
	if err != nil {
		settingsWatcher.logger.Warn("Failed to reload settings", logfields.Path(settingsWatcher.path), logfields.Error(err))
		return
	}
	settingsWatcher.logger.Info("Settings reloaded", logfields.Path(settingsWatcher.path))
	if settingsWatcher.onChange != nil {
		settingsWatcher.onChange(settings)
	}
}
