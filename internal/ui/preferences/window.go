package preferences

import (
	"context"
	"strconv"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

const systemLanguage = "system"

// DurationController is the part of the TimeKeeper the window edits.
type DurationController interface {
	ChangeDuration(ctx context.Context, mode model.Mode, raw string) (int, error)
	ApplyPreset(ctx context.Context, preset model.Preset)
	Session() timekeeper.Session
}

// Window handles the preferences UI.
type Window struct {
	window        fyne.Window
	controller    DurationController
	settings      Settings
	presets       []model.Preset
	onSave        func(Settings)
	durations     map[model.Mode]*widget.Entry
	presetSelect  *widget.Select
	sound         *widget.Check
	notifications *widget.Check
	fallback      *widget.Check
	autostart     *widget.Check
	language      *widget.Select
}

// New creates a preferences window. Duration edits go straight to the
// controller; the remaining settings are handed to onSave.
func New(app fyne.App, controller DurationController, settings Settings, presets []model.Preset, onSave func(Settings)) *Window {
	window := app.NewWindow(i18n.T("Preferences"))

	prefs := &Window{
		window:     window,
		controller: controller,
		settings:   settings,
		presets:    presets,
		onSave:     onSave,
		durations:  make(map[model.Mode]*widget.Entry, len(model.Modes())),
	}

	durationRows := container.NewVBox()
	for _, mode := range model.Modes() {
		entry := widget.NewEntry()
		entry.OnSubmitted = func(string) { prefs.applyDuration(mode) }
		prefs.durations[mode] = entry
		durationRows.Add(container.NewBorder(nil, nil,
			widget.NewLabel(i18n.ModeLabel(mode)), widget.NewLabel(i18n.T("min")), entry))
	}

	names := make([]string, 0, len(presets))
	for _, preset := range presets {
		names = append(names, preset.Name)
	}
	prefs.presetSelect = widget.NewSelect(names, prefs.applyPreset)
	prefs.presetSelect.PlaceHolder = i18n.T("Presets")

	prefs.sound = widget.NewCheck("Play sound", nil)
	prefs.notifications = widget.NewCheck("Desktop notifications", nil)
	prefs.fallback = widget.NewCheck("Show alert when notifications fail", nil)
	prefs.autostart = widget.NewCheck("Watch timers in the background at login", nil)
	prefs.language = widget.NewSelect(append([]string{systemLanguage}, i18n.Languages()...), nil)

	form := container.NewVBox(
		widget.NewLabelWithStyle(i18n.T("Mode"), fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		durationRows,
		prefs.presetSelect,
		widget.NewSeparator(),
		prefs.sound,
		prefs.notifications,
		prefs.fallback,
		prefs.autostart,
		container.NewBorder(nil, nil, widget.NewLabel("Language"), nil, prefs.language),
	)

	saveButton := widget.NewButton(i18n.T("Save"), prefs.handleSave)
	cancelButton := widget.NewButton(i18n.T("Cancel"), window.Hide)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(420, 460))
	window.SetCloseIntercept(window.Hide)

	prefs.UpdateSettings(settings)
	return prefs
}

// Show displays the preferences window with fresh values.
func (prefs *Window) Show() {
	prefs.refreshDurations()
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.sound.SetChecked(settings.SoundEnabled)
	prefs.notifications.SetChecked(settings.NotificationsEnabled)
	prefs.fallback.SetChecked(settings.AlertFallback)
	prefs.autostart.SetChecked(settings.WatcherAutostart)
	if settings.Language == "" {
		prefs.language.SetSelected(systemLanguage)
	} else {
		prefs.language.SetSelected(settings.Language)
	}
	prefs.refreshDurations()
}

func (prefs *Window) refreshDurations() {
	durations := prefs.controller.Session().Durations
	for mode, entry := range prefs.durations {
		entry.SetText(strconv.Itoa(durations.Minutes(mode)))
	}
}

// applyDuration commits one entry. Rejected input is replaced by the
// minutes that are actually in effect.
func (prefs *Window) applyDuration(mode model.Mode) {
	entry := prefs.durations[mode]
	current := prefs.controller.Session().Durations.Minutes(mode)
	if entry.Text == strconv.Itoa(current) {
		return
	}
	minutes, _ := prefs.controller.ChangeDuration(context.Background(), mode, entry.Text)
	entry.SetText(strconv.Itoa(minutes))
}

func (prefs *Window) applyPreset(name string) {
	for _, preset := range prefs.presets {
		if preset.Name == name {
			prefs.controller.ApplyPreset(context.Background(), preset)
			prefs.refreshDurations()
			return
		}
	}
}

func (prefs *Window) handleSave() {
	for _, mode := range model.Modes() {
		prefs.applyDuration(mode)
	}

	settings := prefs.settings
	settings.SoundEnabled = prefs.sound.Checked
	settings.NotificationsEnabled = prefs.notifications.Checked
	settings.AlertFallback = prefs.fallback.Checked
	settings.WatcherAutostart = prefs.autostart.Checked
	settings.Language = prefs.language.Selected
	if settings.Language == systemLanguage {
		settings.Language = ""
	}

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}
