//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"desktimer/internal/alert"
)

type osascriptNotifier struct{}

func newSystemNotifier() alert.Notifier {
	return osascriptNotifier{}
}

func (osascriptNotifier) Notify(title, body string) error {
	script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(body), strconv.Quote(title))
	output, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
