package timekeeper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"desktimer/internal/core/model"
)

// Store keys shared by every reader of the timer state.
const (
	StateKey      = "timer_state_v1"
	CompletionKey = "timer_last_completion_v1"
)

// ErrMalformedSnapshot indicates persisted state that is not a JSON object.
var ErrMalformedSnapshot = errors.New("malformed timer snapshot")

const maxMillis = float64(math.MaxInt64 / int64(time.Millisecond))

type snapshot struct {
	Mode          string         `json:"mode"`
	ModeDurations map[string]int `json:"modeDurations"`
	DurationMs    int64          `json:"durationMs"`
	RemainingMs   int64          `json:"remainingMs"`
	EndsAt        *int64         `json:"endsAt"`
	IsRunning     bool           `json:"isRunning"`
}

// EncodeSession serialises session with its remaining time taken at now.
func EncodeSession(session Session, now time.Time) ([]byte, error) {
	record := snapshot{
		Mode:          string(session.Mode),
		ModeDurations: make(map[string]int, len(model.Modes())),
		DurationMs:    session.Duration.Milliseconds(),
		RemainingMs:   session.RemainingAt(now).Milliseconds(),
		IsRunning:     session.Running,
	}
	for _, mode := range model.Modes() {
		record.ModeDurations[string(mode)] = session.Durations.Minutes(mode)
	}
	if session.Running && !session.EndsAt.IsZero() {
		endsAt := session.EndsAt.UnixMilli()
		record.EndsAt = &endsAt
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return data, nil
}

// DecodeSession restores a session, replacing each invalid field with its
// default instead of rejecting the record. A running session whose deadline
// already passed comes back paused at zero together with its Completion.
func DecodeSession(raw []byte, config model.TimeKeeperConfig, now time.Time) (Session, *Completion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return NewSession(config), nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	durations := decodeDurations(fields["modeDurations"], config.Durations)

	mode := model.ModeFocus
	if value, ok := decodeModeField(fields); ok {
		mode = value
	}

	duration := durations.Duration(mode)
	if millis, ok := decodeMillis(fields["durationMs"]); ok && millis > 0 {
		duration = millis
	}

	remaining := duration
	if millis, ok := decodeMillis(fields["remainingMs"]); ok && millis >= 0 {
		remaining = millis
	}

	var endsAt time.Time
	if millis, ok := decodeNumber(fields["endsAt"]); ok {
		endsAt = time.UnixMilli(int64(millis))
	}

	running := false
	if value, ok := fields["isRunning"]; ok {
		_ = json.Unmarshal(value, &running)
	}

	session := Session{
		Mode:      mode,
		Durations: durations,
		Duration:  duration,
		Remaining: remaining,
	}

	var completion *Completion
	switch {
	case running && !endsAt.IsZero():
		if endsAt.Sub(now) > duration {
			endsAt = truncateMillis(now.Add(duration))
		}
		session.EndsAt = endsAt
		session.Running = true
		session, completion = session.Reconcile(now)
	case running:
		session.Remaining = 0
	}

	if session.Remaining > session.Duration {
		session.Remaining = session.Duration
	}
	return session, completion, nil
}

// ExpireSnapshot normalises a stored record whose running deadline has
// passed. Keys it does not know are preserved. It returns nil values when
// the record needs no change.
func ExpireSnapshot(raw []byte, now time.Time) ([]byte, *Completion, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var record map[string]any
	if err := decoder.Decode(&record); err != nil || record == nil {
		if err == nil {
			err = errors.New("not an object")
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	if running, _ := record["isRunning"].(bool); !running {
		return nil, nil, nil
	}
	number, ok := record["endsAt"].(json.Number)
	if !ok {
		return nil, nil, nil
	}
	endsAtMillis, err := number.Float64()
	if err != nil || math.IsInf(endsAtMillis, 0) || math.Abs(endsAtMillis) > maxMillis {
		return nil, nil, nil
	}
	endsAt := time.UnixMilli(int64(math.Floor(endsAtMillis)))
	if now.Before(endsAt) {
		return nil, nil, nil
	}

	modeName, _ := record["mode"].(string)
	if modeName == "" {
		modeName, _ = record["currentMode"].(string)
	}

	record["remainingMs"] = 0
	record["endsAt"] = nil
	record["isRunning"] = false

	updated, err := json.Marshal(record)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return updated, &Completion{Mode: model.Mode(modeName), EndsAt: endsAt}, nil
}

func decodeDurations(raw json.RawMessage, defaults model.ModeDurations) model.ModeDurations {
	durations := defaults
	if len(raw) == 0 {
		return durations
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return durations
	}
	for _, mode := range model.Modes() {
		if minutes, ok := decodeMinutes(values[string(mode)]); ok && model.InRange(minutes) {
			durations = durations.With(mode, minutes)
		}
	}
	return durations
}

func decodeModeField(fields map[string]json.RawMessage) (model.Mode, bool) {
	for _, key := range []string{"mode", "currentMode"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			continue
		}
		if mode := model.Mode(name); mode.Valid() {
			return mode, true
		}
	}
	return "", false
}

// decodeMinutes accepts a JSON number or a numeric string.
func decodeMinutes(raw json.RawMessage) (int, bool) {
	if number, ok := decodeNumber(raw); ok {
		return int(math.Trunc(number)), true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	return minutes, true
}

func decodeMillis(raw json.RawMessage) (time.Duration, bool) {
	number, ok := decodeNumber(raw)
	if !ok {
		return 0, false
	}
	return time.Duration(math.Floor(number)) * time.Millisecond, true
}

// decodeNumber reports false for missing, null, non-numeric and out of range values.
func decodeNumber(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, false
	}
	var number float64
	if err := json.Unmarshal(trimmed, &number); err != nil {
		return 0, false
	}
	if math.IsNaN(number) || math.IsInf(number, 0) || math.Abs(number) > maxMillis {
		return 0, false
	}
	return number, true
}
