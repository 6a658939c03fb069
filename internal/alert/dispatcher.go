package alert

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"
	"desktimer/internal/logfields"
)

// ErrUnavailable indicates a notification or audio capability the system does not offer.
var ErrUnavailable = errors.New("capability unavailable")

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string) error
}

// Alerter shows a blocking message the user has to dismiss.
type Alerter interface {
	Alert(title, message string)
}

// Chimer plays the completion sound.
type Chimer interface {
	Chime() error
}

// Config selects which effects a completion triggers.
type Config struct {
	SoundEnabled         bool
	NotificationsEnabled bool
	FallbackToAlert      bool
}

// Dispatcher fans a completion out to sound, notification and alert.
// Every capability is optional; failures degrade and never propagate.
type Dispatcher struct {
	mu       sync.Mutex
	config   Config
	notifier Notifier
	alerter  Alerter
	chimer   Chimer
	logger   *slog.Logger
}

// NewDispatcher creates a dispatcher. Any collaborator may be nil.
func NewDispatcher(config Config, notifier Notifier, alerter Alerter, chimer Chimer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		config:   config,
		notifier: notifier,
		alerter:  alerter,
		chimer:   chimer,
		logger:   logger,
	}
}

// UpdateConfig replaces the effect selection.
func (dispatcher *Dispatcher) UpdateConfig(config Config) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.config = config
}

// Complete implements timekeeper.CompletionSink.
func (dispatcher *Dispatcher) Complete(completion timekeeper.Completion) {
	dispatcher.mu.Lock()
	config := dispatcher.config
	dispatcher.mu.Unlock()

	logger := dispatcher.logger.With(logfields.Mode(string(completion.Mode)), logfields.EndsAt(completion.EndsAt))

	if config.SoundEnabled && dispatcher.chimer != nil {
		if err := dispatcher.chimer.Chime(); err != nil {
			logger.Debug("Completion sound skipped", logfields.Error(err))
		}
	}

	notified := false
	if config.NotificationsEnabled {
		if err := dispatcher.notify(completion); err != nil {
			logger.Debug("Completion notification skipped", logfields.Error(err))
		} else {
			notified = true
		}
	}

	if !notified && config.FallbackToAlert && dispatcher.alerter != nil {
		dispatcher.alerter.Alert(i18n.T("Desk Timer"), i18n.T("Session complete!"))
	}
}

func (dispatcher *Dispatcher) notify(completion timekeeper.Completion) error {
	if dispatcher.notifier == nil {
		return ErrUnavailable
	}
	body := fmt.Sprintf(i18n.T("%s session complete."), i18n.ModeLabel(completion.Mode))
	return dispatcher.notifier.Notify(i18n.T("Desk Timer"), body)
}
