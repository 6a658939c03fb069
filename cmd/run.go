package main

import (
	"context"
	"fmt"

	"desktimer/internal/alert"
	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"
	"desktimer/internal/logfields"
	"desktimer/internal/platform"
	"desktimer/internal/sound"
	"desktimer/internal/storage"
	"desktimer/internal/ui/overlay"
	"desktimer/internal/ui/preferences"
	"desktimer/internal/ui/tray"
	"desktimer/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/google/uuid"
)

// RunCmd implements the default 'run' command.
type RunCmd struct{}

// fyneNotifier sends completions through the desktop notification service.
type fyneNotifier struct {
	app fyne.App
}

func (notifier fyneNotifier) Notify(title, body string) error {
	notifier.app.SendNotification(fyne.NewNotification(title, body))
	return nil
}

func (cmd *RunCmd) Run(globals *Global, root *CLI) error {
	logger := globals.Logger.With(logfields.Role(roleWindow), logfields.Instance(uuid.NewString()))

	guard, err := platform.AcquireSingleInstance(appName, roleWindow)
	if err != nil {
		return fmt.Errorf("start timer window: %w", err)
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, settingsPath := loadSettings(root, logger)
	applyLanguage(root, settings)

	store, err := openStore(root)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.MustIcon())

	options := settings.TimeKeeperOptions()
	options.Logger = logger
	keeper := timekeeper.New(store, model.DefaultTimeKeeperConfig(), options)
	defer keeper.Close()

	panel := overlay.New(fyneApp, keeper, logger)
	dispatcher := alert.NewDispatcher(settings.AlertConfig(), fyneNotifier{app: fyneApp}, panel, sound.NewPlayer(logger), logger)
	keeper.SetCompletionSink(dispatcher)

	ctx := context.Background()
	presets := allPresets(settings, logger)
	renderers := []timekeeper.RenderSink{panel}

	var trayManager *tray.Manager
	if desktopApp, ok := fyneApp.(desktop.App); ok {
		trayManager = tray.New(desktopApp, presets, tray.Callbacks{
			OnShow:   panel.Show,
			OnToggle: func() { keeper.Toggle(ctx) },
			OnMode: func(mode model.Mode) {
				if err := keeper.SetMode(ctx, mode); err != nil {
					logger.Warn("Failed to switch mode", logfields.Mode(string(mode)), logfields.Error(err))
				}
			},
			OnPreset: func(preset model.Preset) { keeper.ApplyPreset(ctx, preset) },
			OnQuit:   fyneApp.Quit,
		})
		desktopApp.SetSystemTrayIcon(resources.MustIcon())
		renderers = append(renderers, trayManager)
	} else {
		logger.Info("System tray unsupported on this platform")
	}
	keeper.SetRenderSink(timekeeper.RenderFunc(func(view timekeeper.View) {
		for _, renderer := range renderers {
			renderer.Render(view)
		}
	}))

	service := platform.NewService()
	applySettings := func(updated preferences.Settings) {
		dispatcher.UpdateConfig(updated.AlertConfig())
		applyLanguage(root, updated)
		panel.Relabel()
		if trayManager != nil {
			trayManager.Refresh()
		}
		syncAutostart(service, updated.WatcherAutostart, root, logger)
	}

	prefsWindow := preferences.New(fyneApp, keeper, settings, presets, func(updated preferences.Settings) {
		if settingsPath != "" {
			if err := storage.SaveSettings(settingsPath, updated); err != nil {
				logger.Warn("Failed to save settings", logfields.Path(settingsPath), logfields.Error(err))
			}
		}
		applySettings(updated)
	})
	if trayManager != nil {
		trayManager.SetOnPreferences(prefsWindow.Show)
	}

	if settingsPath != "" {
		settingsWatcher, err := storage.NewSettingsWatcher(settingsPath, func(updated preferences.Settings) {
			fyne.Do(func() { prefsWindow.UpdateSettings(updated) })
			applySettings(updated)
		}, logger)
		if err != nil {
			logger.Warn("Settings hot reload disabled", logfields.Error(err))
		} else if err := settingsWatcher.Start(ctx); err != nil {
			logger.Warn("Settings hot reload disabled", logfields.Error(err))
		} else {
			defer func() {
				_ = settingsWatcher.Stop()
			}()
		}
	}

	lifecycle := fyneApp.Lifecycle()
	lifecycle.SetOnEnteredForeground(func() {
		keeper.Reconcile(ctx)
	})
	lifecycle.SetOnStopped(func() {
		if err := keeper.Flush(ctx); err != nil {
			logger.Warn("Failed to flush timer state", logfields.Error(err))
		}
	})

	if err := keeper.Load(ctx); err != nil {
		logger.Warn("Timer state unavailable, starting fresh", logfields.Error(err))
	}

	logger.Info("Timer window started", logfields.Path(settingsPath), logfields.Mode(string(keeper.Session().Mode)))
	logger.Debug("Language selected", "lang", i18n.Language())
	panel.Show()
	fyneApp.Run()
	return nil
}
