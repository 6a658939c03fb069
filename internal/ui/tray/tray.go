package tray

import (
	"fmt"
	"sync"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow        func()
	OnPreferences func()
	OnToggle      func()
	OnMode        func(model.Mode)
	OnPreset      func(model.Preset)
	OnQuit        func()
}

// Manager handles system tray state. It implements timekeeper.RenderSink.
type Manager struct {
	app       desktop.App
	callbacks Callbacks
	presets   []model.Preset

	mu      sync.Mutex
	view    timekeeper.View
	shown   string
	running bool
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, presets []model.Preset, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
		presets:   presets,
		shown:     "-",
	}
	manager.refreshMenu()
	return manager
}

// Render implements timekeeper.RenderSink. The menu is rebuilt only when the
// visible label or the running state changed.
func (manager *Manager) Render(view timekeeper.View) {
	manager.mu.Lock()
	status := StatusLabel(view)
	changed := status != manager.shown || view.Running != manager.running
	manager.view = view
	manager.shown = status
	manager.running = view.Running
	manager.mu.Unlock()

	if changed {
		fyne.Do(manager.refreshMenu)
	}
}

// SetOnPreferences sets the preferences handler, which is usually created
// after the tray.
func (manager *Manager) SetOnPreferences(handler func()) {
	manager.mu.Lock()
	manager.callbacks.OnPreferences = handler
	manager.mu.Unlock()
	manager.Refresh()
}

// Refresh rebuilds the menu, for example after a language change.
func (manager *Manager) Refresh() {
	fyne.Do(manager.refreshMenu)
}

// StatusLabel renders the first menu line for view.
func StatusLabel(view timekeeper.View) string {
	label := fmt.Sprintf("%s %s", i18n.ModeLabel(view.Mode), view.DisplayText)
	if !view.Running {
		label = fmt.Sprintf("%s (%s)", label, i18n.T("Pause"))
	}
	return label
}

func (manager *Manager) refreshMenu() {
	if manager.app == nil {
		return
	}

	manager.mu.Lock()
	status := manager.shown
	running := manager.running
	callbacks := manager.callbacks
	manager.mu.Unlock()

	statusItem := fyne.NewMenuItem(status, nil)
	statusItem.Disabled = true

	toggleLabel := i18n.T("Start")
	if running {
		toggleLabel = i18n.T("Pause")
	}
	toggleItem := fyne.NewMenuItem(toggleLabel, manager.call(callbacks.OnToggle))

	modeItems := make([]*fyne.MenuItem, 0, len(model.Modes()))
	for _, mode := range model.Modes() {
		modeItems = append(modeItems, fyne.NewMenuItem(i18n.ModeLabel(mode), func() {
			if callbacks.OnMode != nil {
				callbacks.OnMode(mode)
			}
		}))
	}
	modeMenu := fyne.NewMenuItem(i18n.T("Mode"), nil)
	modeMenu.ChildMenu = fyne.NewMenu("", modeItems...)

	presetItems := make([]*fyne.MenuItem, 0, len(manager.presets))
	for _, preset := range manager.presets {
		label := fmt.Sprintf("%s (%d/%d/%d)", preset.Name, preset.Durations.Focus, preset.Durations.Short, preset.Durations.Long)
		presetItems = append(presetItems, fyne.NewMenuItem(label, func() {
			if callbacks.OnPreset != nil {
				callbacks.OnPreset(preset)
			}
		}))
	}
	presetMenu := fyne.NewMenuItem(i18n.T("Presets"), nil)
	presetMenu.ChildMenu = fyne.NewMenu("", presetItems...)

	quitItem := fyne.NewMenuItem(i18n.T("Quit"), manager.call(callbacks.OnQuit))
	quitItem.IsQuit = true

	manager.app.SetSystemTrayMenu(fyne.NewMenu(i18n.T("Desk Timer"),
		statusItem,
		toggleItem,
		modeMenu,
		presetMenu,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(i18n.T("Show timer"), manager.call(callbacks.OnShow)),
		fyne.NewMenuItem(i18n.T("Preferences"), manager.call(callbacks.OnPreferences)),
		quitItem,
	))
}

func (manager *Manager) call(handler func()) func() {
	return func() {
		if handler != nil {
			handler()
		}
	}
}
