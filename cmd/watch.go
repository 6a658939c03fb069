package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"desktimer/internal/alert"
	"desktimer/internal/logfields"
	"desktimer/internal/notifier"
	"desktimer/internal/platform"
	"desktimer/internal/sound"
	"desktimer/internal/storage"
	"desktimer/internal/ui/preferences"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Interval  time.Duration `help:"Time between checks" default:"5s" env:"DESKTIMER_WATCH_INTERVAL"`
	Autostart string        `help:"Register or remove the watcher as a login item before starting" enum:"keep,enable,disable" default:"keep"`
}

func (cmd *WatchCmd) Run(globals *Global, root *CLI) error {
	logger := globals.Logger.With(logfields.Role(roleWatcher))

	switch cmd.Autostart {
	case "enable":
		syncAutostart(platform.NewService(), true, root, logger)
	case "disable":
		syncAutostart(platform.NewService(), false, root, logger)
	}

	guard, err := platform.AcquireSingleInstance(appName, roleWatcher)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
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

	dispatcher := alert.NewDispatcher(settings.WatcherAlertConfig(), platform.NewSystemNotifier(), nil, sound.NewPlayer(logger), logger)
	poller := notifier.New(store, dispatcher, notifier.Config{Interval: cmd.Interval, Logger: logger})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if settingsPath != "" {
		settingsWatcher, err := storage.NewSettingsWatcher(settingsPath, func(updated preferences.Settings) {
			dispatcher.UpdateConfig(updated.WatcherAlertConfig())
			applyLanguage(root, updated)
		}, logger)
		if err == nil {
			err = settingsWatcher.Start(ctx)
		}
		if err != nil {
			logger.Warn("Settings hot reload disabled", logfields.Error(err))
		} else {
			defer func() {
				_ = settingsWatcher.Stop()
			}()
		}
	}

	if err := poller.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	<-ctx.Done()
	return poller.Stop()
}
