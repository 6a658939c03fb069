package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/ui/preferences"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveThenLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.yaml")
	settings := preferences.DefaultSettings()
	settings.SoundEnabled = false
	settings.AlertFallback = false
	settings.Language = "pt"
	settings.WatcherAutostart = true
	settings.TickInterval = 500 * time.Millisecond
	settings.Presets = []model.Preset{{Name: "Lecture", Durations: model.ModeDurations{Focus: 90, Short: 15, Long: 30}}}

	require.NoError(t, SaveSettings(path, settings))
	loaded, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestLoadSettingsSkipsInvalidFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
sound_enabled: false
tick_interval_ms: 5
language: "  es "
presets:
  - name: ""
    focus: 10
    short: 5
    long: 5
  - name: Broken
    focus: 0
    short: 5
    long: 5
  - name: Huge
    focus: 500
    short: 5
    long: 5
  - name: Kept
    focus: 45
    short: 5
    long: 20
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	assert.False(t, settings.SoundEnabled)
	assert.True(t, settings.NotificationsEnabled, "absent fields keep defaults")
	assert.Equal(t, time.Second, settings.TickInterval)
	assert.Equal(t, "es", settings.Language)
	assert.Equal(t, []model.Preset{{Name: "Kept", Durations: model.ModeDurations{Focus: 45, Short: 5, Long: 20}}}, settings.Presets)
}

func TestLoadSettingsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sound_enabled: [unclosed"), 0o644))

	settings, err := LoadSettings(path)
	assert.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestResolveSettingsPathPrefersDataDir(t *testing.T) {
	path, err := ResolveSettingsPath("DeskTimer", "/data")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "settings.yaml"), path)
}
