package timekeeper

import (
	"fmt"
	"time"

	"desktimer/internal/core/model"
)

// Session is the complete timer state. Transitions return a new value and
// never touch the receiver; EndsAt is the zero time unless Running.
type Session struct {
	Mode      model.Mode
	Durations model.ModeDurations
	Duration  time.Duration
	Remaining time.Duration
	EndsAt    time.Time
	Running   bool
}

// NewSession returns an idle session in mode with a full countdown.
func NewSession(config model.TimeKeeperConfig) Session {
	mode := config.Mode
	if !mode.Valid() {
		mode = model.ModeFocus
	}
	return Session{Durations: config.Durations}.SetMode(mode)
}

// RemainingAt returns the authoritative remaining time at now.
func (session Session) RemainingAt(now time.Time) time.Duration {
	if !session.Running || session.EndsAt.IsZero() {
		return session.Remaining
	}
	remaining := session.EndsAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Start begins counting down. It reports false when already running.
func (session Session) Start(now time.Time) (Session, bool) {
	if session.Running {
		return session, false
	}
	if session.Remaining <= 0 {
		session.Remaining = session.Duration
	}
	session.EndsAt = truncateMillis(now.Add(session.Remaining))
	session.Running = true
	return session, true
}

// Pause freezes the countdown. It reports false when not running.
func (session Session) Pause(now time.Time) (Session, bool) {
	if !session.Running {
		return session, false
	}
	session.Remaining = session.RemainingAt(now)
	session.EndsAt = time.Time{}
	session.Running = false
	return session, true
}

// SetMode stops the session and loads a full countdown for mode.
func (session Session) SetMode(mode model.Mode) Session {
	session.Mode = mode
	session.Duration = session.Durations.Duration(mode)
	session.Remaining = session.Duration
	session.EndsAt = time.Time{}
	session.Running = false
	return session
}

// ChangeDuration updates the minutes of mode. Editing the active mode
// discards progress exactly like SetMode.
func (session Session) ChangeDuration(mode model.Mode, minutes int) Session {
	session.Durations = session.Durations.With(mode, model.ClampMinutes(minutes))
	if mode == session.Mode {
		return session.SetMode(mode)
	}
	return session
}

// ApplyPreset replaces every mode duration and resets the active mode.
// Values outside the accepted range keep the current minutes.
func (session Session) ApplyPreset(durations model.ModeDurations) Session {
	for _, mode := range model.Modes() {
		minutes := durations.Minutes(mode)
		if minutes < model.MinDurationMinutes {
			continue
		}
		session.Durations = session.Durations.With(mode, model.ClampMinutes(minutes))
	}
	return session.SetMode(session.Mode)
}

// Reconcile recomputes the remaining time from the deadline. Crossing the
// deadline pauses the session at zero and returns the Completion.
func (session Session) Reconcile(now time.Time) (Session, *Completion) {
	if !session.Running {
		return session, nil
	}
	session.Remaining = session.RemainingAt(now)
	if now.Before(session.EndsAt) {
		return session, nil
	}

	completion := &Completion{Mode: session.Mode, EndsAt: session.EndsAt}
	session.Remaining = 0
	session.EndsAt = time.Time{}
	session.Running = false
	return session, completion
}

// View renders the session at now.
func (session Session) View(now time.Time) View {
	remaining := session.RemainingAt(now)
	return View{
		DisplayText:  FormatRemaining(remaining),
		RingFraction: ringFraction(remaining, session.Duration),
		Running:      session.Running,
		Mode:         session.Mode,
		Remaining:    remaining,
		Duration:     session.Duration,
	}
}

// FormatRemaining renders remaining as m:ss, rounding partial seconds up.
func FormatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	totalSeconds := int((remaining + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

func ringFraction(remaining, duration time.Duration) float64 {
	if duration < time.Millisecond {
		duration = time.Millisecond
	}
	fraction := float64(remaining) / float64(duration)
	if fraction < 0 {
		return 0
	}
	if fraction > 1 {
		return 1
	}
	return fraction
}

func truncateMillis(value time.Time) time.Time {
	return time.UnixMilli(value.UnixMilli())
}
