//go:build windows

package platform

import "desktimer/internal/alert"

type unsupportedNotifier struct{}

func newSystemNotifier() alert.Notifier {
	return unsupportedNotifier{}
}

func (unsupportedNotifier) Notify(string, string) error {
	return alert.ErrUnavailable
}
