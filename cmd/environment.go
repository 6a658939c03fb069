package main

import (
	"fmt"
	"log/slog"
	"os"

	"desktimer/internal/core/model"
	"desktimer/internal/i18n"
	"desktimer/internal/logfields"
	"desktimer/internal/platform"
	"desktimer/internal/storage"
	"desktimer/internal/ui/preferences"
	"desktimer/resources"
)

const watcherAutostartName = appName + " Watcher"

func openStore(root *CLI) (*storage.SQLiteStore, error) {
	statePath, err := storage.ResolveStatePath(appName, root.DataDir)
	if err != nil {
		return nil, err
	}
	store, err := storage.NewSQLiteStore(statePath)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	return store, nil
}

// loadSettings never fails; unreadable settings fall back to defaults.
func loadSettings(root *CLI, logger *slog.Logger) (preferences.Settings, string) {
	settingsPath, err := storage.ResolveSettingsPath(appName, root.DataDir)
	if err != nil {
		logger.Warn("Using default settings", logfields.Error(err))
		return preferences.DefaultSettings(), ""
	}
	settings, err := storage.LoadSettings(settingsPath)
	if err != nil {
		logger.Warn("Using default settings", logfields.Path(settingsPath), logfields.Error(err))
	}
	return settings, settingsPath
}

func applyLanguage(root *CLI, settings preferences.Settings) {
	forced := root.Lang
	if forced == "" {
		forced = settings.Language
	}
	i18n.SetLanguage(i18n.Detect(forced))
}

// allPresets lists the built-in catalogue followed by user presets.
func allPresets(settings preferences.Settings, logger *slog.Logger) []model.Preset {
	presets, err := resources.Presets()
	if err != nil {
		logger.Warn("Built-in presets unavailable", logfields.Error(err))
	}
	return append(presets, settings.Presets...)
}

func watcherArgs(root *CLI) []string {
	args := []string{"watch"}
	if root.DataDir != "" {
		args = append(args, "--data-dir", root.DataDir)
	}
	return args
}

func syncAutostart(service platform.Service, enabled bool, root *CLI, logger *slog.Logger) {
	if !enabled {
		if err := service.DisableAutostart(watcherAutostartName); err != nil {
			logger.Warn("Failed to remove watcher autostart", logfields.Error(err))
		}
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Warn("Failed to resolve executable for autostart", logfields.Error(err))
		return
	}
	if err := service.EnableAutostart(watcherAutostartName, execPath, watcherArgs(root)...); err != nil {
		logger.Warn("Failed to register watcher autostart", logfields.Error(err))
	}
}
