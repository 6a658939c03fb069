package timekeeper

import (
	"testing"
	"time"

	"desktimer/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.UnixMilli(1_700_000_000_000)

func TestSessionStartThenPauseKeepsElapsedTime(t *testing.T) {
	session := NewSession(model.DefaultTimeKeeperConfig())
	require.Equal(t, 25*time.Minute, session.Remaining)
	require.False(t, session.Running)

	started, ok := session.Start(epoch)
	require.True(t, ok)
	assert.True(t, started.Running)
	assert.Equal(t, epoch.Add(25*time.Minute).UnixMilli(), started.EndsAt.UnixMilli())

	paused, ok := started.Pause(epoch.Add(10 * time.Second))
	require.True(t, ok)
	assert.False(t, paused.Running)
	assert.True(t, paused.EndsAt.IsZero())
	assert.Equal(t, 24*time.Minute+50*time.Second, paused.Remaining)

	_, ok = paused.Pause(epoch)
	assert.False(t, ok, "pausing a paused session is a no-op")
	_, ok = started.Start(epoch)
	assert.False(t, ok, "starting a running session is a no-op")
}

func TestSessionStartTruncatesDeadlineToMilliseconds(t *testing.T) {
	session := NewSession(model.DefaultTimeKeeperConfig())
	started, _ := session.Start(epoch.Add(750 * time.Microsecond))
	assert.Equal(t, 0, started.EndsAt.Nanosecond()%int(time.Millisecond))
}

func TestSessionStartAfterZeroRestartsFullDuration(t *testing.T) {
	session := NewSession(model.DefaultTimeKeeperConfig())
	session.Remaining = 0

	started, ok := session.Start(epoch)
	require.True(t, ok)
	assert.Equal(t, 25*time.Minute, started.Remaining)
	assert.Equal(t, epoch.Add(25*time.Minute).UnixMilli(), started.EndsAt.UnixMilli())
}

func TestSessionReconcileCompletesOnce(t *testing.T) {
	session := NewSession(model.TimeKeeperConfig{Durations: model.ModeDurations{Focus: 1, Short: 5, Long: 15}, Mode: model.ModeFocus})
	started, _ := session.Start(epoch)

	before, completion := started.Reconcile(epoch.Add(30 * time.Second))
	assert.Nil(t, completion)
	assert.True(t, before.Running)
	assert.Equal(t, 30*time.Second, before.Remaining)

	after, completion := started.Reconcile(epoch.Add(time.Minute))
	require.NotNil(t, completion)
	assert.Equal(t, model.ModeFocus, completion.Mode)
	assert.Equal(t, epoch.Add(time.Minute).UnixMilli(), completion.EndsAt.UnixMilli())
	assert.False(t, after.Running)
	assert.Zero(t, after.Remaining)
	assert.True(t, after.EndsAt.IsZero())

	again, completion := after.Reconcile(epoch.Add(2 * time.Minute))
	assert.Nil(t, completion)
	assert.Equal(t, after, again)
}

func TestSessionSetModeResets(t *testing.T) {
	started, _ := NewSession(model.DefaultTimeKeeperConfig()).Start(epoch)

	switched := started.SetMode(model.ModeLong)
	assert.Equal(t, model.ModeLong, switched.Mode)
	assert.Equal(t, 15*time.Minute, switched.Duration)
	assert.Equal(t, 15*time.Minute, switched.Remaining)
	assert.False(t, switched.Running)
	assert.True(t, switched.EndsAt.IsZero())
}

func TestSessionChangeDuration(t *testing.T) {
	paused, _ := NewSession(model.DefaultTimeKeeperConfig()).Start(epoch)
	paused, _ = paused.Pause(epoch.Add(time.Minute))

	other := paused.ChangeDuration(model.ModeShort, 7)
	assert.Equal(t, 7, other.Durations.Short)
	assert.Equal(t, 24*time.Minute, other.Remaining, "editing another mode keeps progress")

	active := paused.ChangeDuration(model.ModeFocus, 40)
	assert.Equal(t, 40, active.Durations.Focus)
	assert.Equal(t, 40*time.Minute, active.Duration)
	assert.Equal(t, 40*time.Minute, active.Remaining)

	clamped := paused.ChangeDuration(model.ModeLong, 500)
	assert.Equal(t, model.MaxDurationMinutes, clamped.Durations.Long)
}

func TestSessionApplyPreset(t *testing.T) {
	started, _ := NewSession(model.DefaultTimeKeeperConfig()).SetMode(model.ModeShort).Start(epoch)

	applied := started.ApplyPreset(model.ModeDurations{Focus: 50, Short: 0, Long: 500})
	assert.Equal(t, model.ModeDurations{Focus: 50, Short: 5, Long: 180}, applied.Durations)
	assert.Equal(t, model.ModeShort, applied.Mode)
	assert.Equal(t, 5*time.Minute, applied.Remaining)
	assert.False(t, applied.Running)
}

func TestSessionView(t *testing.T) {
	started, _ := NewSession(model.DefaultTimeKeeperConfig()).Start(epoch)

	view := started.View(epoch.Add(12*time.Minute + 30*time.Second))
	assert.Equal(t, "12:30", view.DisplayText)
	assert.InDelta(t, 0.5, view.RingFraction, 0.0001)
	assert.True(t, view.Running)
	assert.Equal(t, model.ModeFocus, view.Mode)

	late := started.View(epoch.Add(time.Hour))
	assert.Equal(t, "0:00", late.DisplayText)
	assert.Zero(t, late.RingFraction)

	empty := Session{}.View(epoch)
	assert.Zero(t, empty.RingFraction)
}

func TestFormatRemaining(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                 "0:00",
		-time.Second:                      "0:00",
		time.Millisecond:                  "0:01",
		59*time.Second + time.Millisecond: "1:00",
		25 * time.Minute:                  "25:00",
		180 * time.Minute:                 "180:00",
	}
	for remaining, want := range cases {
		assert.Equal(t, want, FormatRemaining(remaining), remaining.String())
	}
}

func TestParseMinutes(t *testing.T) {
	valid := map[string]int{
		"25":   25,
		" 7 ":  7,
		"1":    1,
		"180":  180,
		"500":  180,
		"0012": 12,
	}
	for raw, want := range valid {
		minutes, err := ParseMinutes(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, minutes, raw)
	}

	for _, raw := range []string{"", "0", "-3", "abc", "2.5", "10min"} {
		_, err := ParseMinutes(raw)
		assert.ErrorIs(t, err, ErrInvalidDuration, raw)
	}
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode(" Long ")
	require.NoError(t, err)
	assert.Equal(t, model.ModeLong, mode)

	_, err = ParseMode("quick")
	assert.ErrorIs(t, err, ErrUnknownMode)
}
