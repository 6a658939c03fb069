package preferences

import (
	"time"

	"desktimer/internal/alert"
	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
)

// Settings defines editable user preferences. Mode durations are not part
// of it; they travel with the persisted timer state.
type Settings struct {
	SoundEnabled         bool
	NotificationsEnabled bool
	AlertFallback        bool
	Language             string
	WatcherAutostart     bool
	TickInterval         time.Duration
	Presets              []model.Preset
}

// DefaultSettings returns default settings for DeskTimer.
func DefaultSettings() Settings {
	return Settings{
		SoundEnabled:         true,
		NotificationsEnabled: true,
		AlertFallback:        true,
		Language:             "",
		WatcherAutostart:     false,
		TickInterval:         time.Second,
	}
}

// AlertConfig converts settings for the foreground completion dispatcher.
func (settings Settings) AlertConfig() alert.Config {
	return alert.Config{
		SoundEnabled:         settings.SoundEnabled,
		NotificationsEnabled: settings.NotificationsEnabled,
		FallbackToAlert:      settings.AlertFallback,
	}
}

// WatcherAlertConfig converts settings for the background watcher, which
// never blocks on an alert.
func (settings Settings) WatcherAlertConfig() alert.Config {
	config := settings.AlertConfig()
	config.FallbackToAlert = false
	return config
}

// TimeKeeperOptions converts settings to TimeKeeper options.
func (settings Settings) TimeKeeperOptions() timekeeper.Config {
	return timekeeper.Config{TickInterval: settings.TickInterval}
}
