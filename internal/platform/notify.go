package platform

import "desktimer/internal/alert"

// NewSystemNotifier returns a notifier that talks to the OS notification
// service without a running GUI.
func NewSystemNotifier() alert.Notifier {
	return newSystemNotifier()
}
