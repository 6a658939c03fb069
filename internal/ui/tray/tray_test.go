package tray

import (
	"testing"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"

	"github.com/stretchr/testify/assert"
)

func TestStatusLabel(t *testing.T) {
	i18n.SetLanguage("en")

	assert.Equal(t, "Focus 24:59", StatusLabel(timekeeper.View{Mode: model.ModeFocus, DisplayText: "24:59", Running: true}))
	assert.Equal(t, "Long Break 15:00 (Pause)", StatusLabel(timekeeper.View{Mode: model.ModeLong, DisplayText: "15:00"}))
}

func TestRenderWithoutTrayApp(t *testing.T) {
	manager := New(nil, nil, Callbacks{})
	assert.NotPanics(t, func() {
		manager.refreshMenu()
	})
	assert.Equal(t, "-", manager.shown)
}
