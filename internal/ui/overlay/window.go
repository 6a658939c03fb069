package overlay

import (
	"context"
	"image/color"
	"log/slog"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"
	"desktimer/internal/logfields"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controller is the part of the TimeKeeper the panel drives.
type Controller interface {
	Toggle(ctx context.Context)
	SetMode(ctx context.Context, mode model.Mode) error
}

// Window is the countdown panel. It implements timekeeper.RenderSink and
// alert.Alerter; both hand their work to the UI goroutine and return.
type Window struct {
	window      fyne.Window
	controller  Controller
	logger      *slog.Logger
	modeLabel   *canvas.Text
	timerLabel  *canvas.Text
	ring        *widget.ProgressBar
	toggle      *widget.Button
	modeButtons map[model.Mode]*widget.Button
	last        timekeeper.View
}

var accentColor = color.NRGBA{R: 245, G: 166, B: 35, A: 255}

// New creates the panel. It stays hidden until Show.
func New(app fyne.App, controller Controller, logger *slog.Logger) *Window {
	if logger == nil {
		logger = slog.Default()
	}

	window := app.NewWindow(i18n.T("Desk Timer"))
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	modeLabel := canvas.NewText(i18n.ModeLabel(model.ModeFocus), theme.Color(theme.ColorNameForeground))
	modeLabel.Alignment = fyne.TextAlignCenter
	modeLabel.TextStyle = fyne.TextStyle{Bold: true}
	modeLabel.TextSize = 18

	timerLabel := canvas.NewText("0:00", accentColor)
	timerLabel.Alignment = fyne.TextAlignCenter
	timerLabel.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timerLabel.TextSize = 56

	ring := widget.NewProgressBar()
	ring.TextFormatter = func() string { return "" }

	panel := &Window{
		window:      window,
		controller:  controller,
		logger:      logger,
		modeLabel:   modeLabel,
		timerLabel:  timerLabel,
		ring:        ring,
		modeButtons: make(map[model.Mode]*widget.Button, len(model.Modes())),
	}

	panel.toggle = widget.NewButtonWithIcon(i18n.T("Start"), theme.MediaPlayIcon(), func() {
		panel.controller.Toggle(context.Background())
	})
	panel.toggle.Importance = widget.HighImportance

	modeRow := container.NewGridWithColumns(len(model.Modes()))
	for _, mode := range model.Modes() {
		button := widget.NewButton(i18n.ModeLabel(mode), panel.modeHandler(mode))
		panel.modeButtons[mode] = button
		modeRow.Add(button)
	}

	content := container.NewVBox(
		modeRow,
		layout.NewSpacer(),
		modeLabel,
		timerLabel,
		ring,
		layout.NewSpacer(),
		container.NewCenter(panel.toggle),
	)
	window.SetContent(container.NewPadded(content))
	window.Resize(fyne.NewSize(340, 280))
	window.SetCloseIntercept(window.Hide)

	return panel
}

// Show brings the panel to the front.
func (panel *Window) Show() {
	panel.window.Show()
	panel.window.RequestFocus()
}

// Hide hides the panel without stopping the timer.
func (panel *Window) Hide() {
	panel.window.Hide()
}

// Render implements timekeeper.RenderSink.
func (panel *Window) Render(view timekeeper.View) {
	fyne.Do(func() {
		panel.applyView(view)
	})
}

// Alert implements alert.Alerter.
func (panel *Window) Alert(title, message string) {
	fyne.Do(func() {
		panel.Show()
		dialog.ShowInformation(title, message, panel.window)
	})
}

// Relabel reapplies translated captions after a language change.
func (panel *Window) Relabel() {
	fyne.Do(func() {
		panel.window.SetTitle(i18n.T("Desk Timer"))
		for mode, button := range panel.modeButtons {
			button.SetText(i18n.ModeLabel(mode))
		}
		panel.applyView(panel.last)
	})
}

func (panel *Window) modeHandler(mode model.Mode) func() {
	return func() {
		if err := panel.controller.SetMode(context.Background(), mode); err != nil {
			panel.logger.Warn("Failed to switch mode", logfields.Mode(string(mode)), logfields.Error(err))
		}
	}
}

func (panel *Window) applyView(view timekeeper.View) {
	panel.last = view

	if view.Mode.Valid() {
		panel.modeLabel.Text = i18n.ModeLabel(view.Mode)
		panel.modeLabel.Refresh()
	}
	panel.timerLabel.Text = view.DisplayText
	panel.timerLabel.Refresh()
	panel.ring.SetValue(view.RingFraction)

	if view.Running {
		panel.toggle.SetText(i18n.T("Pause"))
		panel.toggle.SetIcon(theme.MediaPauseIcon())
	} else {
		panel.toggle.SetText(i18n.T("Start"))
		panel.toggle.SetIcon(theme.MediaPlayIcon())
	}

	for mode, button := range panel.modeButtons {
		if mode == view.Mode {
			button.Importance = widget.HighImportance
		} else {
			button.Importance = widget.MediumImportance
		}
		button.Refresh()
	}
}
