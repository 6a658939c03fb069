//go:build linux

package platform

import (
	"fmt"
	"os/exec"
	"strings"

	"desktimer/internal/alert"
)

type notifySendNotifier struct {
	path string
}

type unsupportedNotifier struct{}

func newSystemNotifier() alert.Notifier {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return unsupportedNotifier{}
	}
	return &notifySendNotifier{path: path}
}

func (notifier *notifySendNotifier) Notify(title, body string) error {
	output, err := exec.Command(notifier.path, "--app-name=DeskTimer", title, body).CombinedOutput()
	if err != nil {
		return fmt.Errorf("notify-send: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (unsupportedNotifier) Notify(string, string) error {
	return alert.ErrUnavailable
}
