package timekeeper

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"desktimer/internal/core/model"
)

var (
	// ErrInvalidDuration indicates duration input that is not an integer of at least one minute.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrUnknownMode indicates a mode outside focus, short and long.
	ErrUnknownMode = errors.New("unknown mode")
)

// ParseMinutes validates raw duration input. Values above the maximum are
// clamped rather than rejected.
func ParseMinutes(raw string) (int, error) {
	value := strings.TrimSpace(raw)
	minutes, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidDuration, value)
	}
	if minutes < model.MinDurationMinutes {
		return 0, fmt.Errorf("%w: %d is below %d", ErrInvalidDuration, minutes, model.MinDurationMinutes)
	}
	return model.ClampMinutes(minutes), nil
}

// ParseMode converts a mode name, reporting ErrUnknownMode for anything else.
func ParseMode(raw string) (model.Mode, error) {
	mode := model.Mode(strings.ToLower(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
	return mode, nil
}
