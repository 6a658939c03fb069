package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

const (
	minTickIntervalMillis = 100
	maxTickIntervalMillis = 10000
)

type yamlSettings struct {
	SoundEnabled         *bool        `yaml:"sound_enabled"`
	NotificationsEnabled *bool        `yaml:"notifications_enabled"`
	AlertFallback        *bool        `yaml:"alert_fallback"`
	Language             string       `yaml:"language,omitempty"`
	WatcherAutostart     *bool        `yaml:"watcher_autostart"`
	TickIntervalMillis   int          `yaml:"tick_interval_ms,omitempty"`
	Presets              []yamlPreset `yaml:"presets,omitempty"`
}

type yamlPreset struct {
	Name  string `yaml:"name"`
	Focus int    `yaml:"focus"`
	Short int    `yaml:"short"`
	Long  int    `yaml:"long"`
}

// LoadSettings reads user preferences from the YAML file at configPath.
// If the file does not exist, default settings are returned. Invalid
// fields keep their defaults.
func LoadSettings(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to configPath.
func SaveSettings(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		SoundEnabled:         &settings.SoundEnabled,
		NotificationsEnabled: &settings.NotificationsEnabled,
		AlertFallback:        &settings.AlertFallback,
		Language:             settings.Language,
		WatcherAutostart:     &settings.WatcherAutostart,
		TickIntervalMillis:   int(settings.TickInterval / time.Millisecond),
	}
	for _, preset := range settings.Presets {
		fileData.Presets = append(fileData.Presets, yamlPreset{
			Name:  preset.Name,
			Focus: preset.Durations.Focus,
			Short: preset.Durations.Short,
			Long:  preset.Durations.Long,
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// ResolveSettingsPath returns the settings file inside dataDir, defaulting
// to the user config directory for appName.
func ResolveSettingsPath(appName, dataDir string) (string, error) {
	if dataDir != "" {
		return filepath.Join(dataDir, settingsFileName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.SoundEnabled != nil {
		settings.SoundEnabled = *fileData.SoundEnabled
	}
	if fileData.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *fileData.NotificationsEnabled
	}
	if fileData.AlertFallback != nil {
		settings.AlertFallback = *fileData.AlertFallback
	}
	if fileData.WatcherAutostart != nil {
		settings.WatcherAutostart = *fileData.WatcherAutostart
	}

	settings.Language = strings.TrimSpace(fileData.Language)

	if fileData.TickIntervalMillis >= minTickIntervalMillis && fileData.TickIntervalMillis <= maxTickIntervalMillis {
		settings.TickInterval = time.Duration(fileData.TickIntervalMillis) * time.Millisecond
	}

	for _, preset := range fileData.Presets {
		name := strings.TrimSpace(preset.Name)
		if name == "" || !model.InRange(preset.Focus) || !model.InRange(preset.Short) || !model.InRange(preset.Long) {
			continue
		}
		settings.Presets = append(settings.Presets, model.Preset{
			Name: name,
			Durations: model.ModeDurations{
				Focus: preset.Focus,
				Short: preset.Short,
				Long:  preset.Long,
			},
		})
	}
}
