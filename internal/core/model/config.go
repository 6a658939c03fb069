package model

import "time"

// Mode identifies a timer configuration.
type Mode string

const (
	ModeFocus Mode = "focus"
	ModeShort Mode = "short"
	ModeLong  Mode = "long"
)

// Duration bounds accepted for a mode, in minutes.
const (
	MinDurationMinutes = 1
	MaxDurationMinutes = 180
)

// Modes returns all modes in display order.
func Modes() []Mode {
	return []Mode{ModeFocus, ModeShort, ModeLong}
}

// Valid reports whether mode is one of the known modes.
func (mode Mode) Valid() bool {
	switch mode {
	case ModeFocus, ModeShort, ModeLong:
		return true
	default:
		return false
	}
}

// ModeDurations maps each mode to its configured length in minutes.
type ModeDurations struct {
	Focus int `yaml:"focus" json:"focus"`
	Short int `yaml:"short" json:"short"`
	Long  int `yaml:"long" json:"long"`
}

// DefaultModeDurations returns the classic 25/5/15 split.
func DefaultModeDurations() ModeDurations {
	return ModeDurations{Focus: 25, Short: 5, Long: 15}
}

// Minutes returns the configured minutes for mode, or 0 for an unknown mode.
func (durations ModeDurations) Minutes(mode Mode) int {
	switch mode {
	case ModeFocus:
		return durations.Focus
	case ModeShort:
		return durations.Short
	case ModeLong:
		return durations.Long
	default:
		return 0
	}
}

// Duration returns the configured length of mode.
func (durations ModeDurations) Duration(mode Mode) time.Duration {
	return time.Duration(durations.Minutes(mode)) * time.Minute
}

// With returns a copy with mode set to minutes.
func (durations ModeDurations) With(mode Mode, minutes int) ModeDurations {
	switch mode {
	case ModeFocus:
		durations.Focus = minutes
	case ModeShort:
		durations.Short = minutes
	case ModeLong:
		durations.Long = minutes
	}
	return durations
}

// ClampMinutes bounds minutes to the accepted range.
func ClampMinutes(minutes int) int {
	if minutes < MinDurationMinutes {
		return MinDurationMinutes
	}
	if minutes > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return minutes
}

// InRange reports whether minutes is accepted without clamping.
func InRange(minutes int) bool {
	return minutes >= MinDurationMinutes && minutes <= MaxDurationMinutes
}

// Preset is a named set of mode durations applied as a whole.
type Preset struct {
	Name      string        `yaml:"name"`
	Durations ModeDurations `yaml:"durations"`
}

// TimeKeeperConfig contains the defaults used when no state is persisted.
type TimeKeeperConfig struct {
	Durations ModeDurations
	Mode      Mode
}

// DefaultTimeKeeperConfig returns focus mode with default durations.
func DefaultTimeKeeperConfig() TimeKeeperConfig {
	return TimeKeeperConfig{
		Durations: DefaultModeDurations(),
		Mode:      ModeFocus,
	}
}
