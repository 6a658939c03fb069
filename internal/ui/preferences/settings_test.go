package preferences

import (
	"testing"
	"time"

	"desktimer/internal/alert"

	"github.com/stretchr/testify/assert"
)

func TestAlertConfig(t *testing.T) {
	settings := DefaultSettings()
	settings.SoundEnabled = false

	assert.Equal(t, alert.Config{SoundEnabled: false, NotificationsEnabled: true, FallbackToAlert: true}, settings.AlertConfig())
	assert.False(t, settings.WatcherAlertConfig().FallbackToAlert, "the watcher has no window to alert in")
}

func TestTimeKeeperOptions(t *testing.T) {
	settings := DefaultSettings()
	settings.TickInterval = 250 * time.Millisecond
	assert.Equal(t, 250*time.Millisecond, settings.TimeKeeperOptions().TickInterval)
}
