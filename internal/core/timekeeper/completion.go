package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrClaimContention indicates the completion marker kept changing under every attempt.
var ErrClaimContention = errors.New("completion marker contention")

const maxClaimAttempts = 8

// Store is the key/value resource shared by the engine and the watcher.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Put writes value unconditionally.
	Put(ctx context.Context, key string, value []byte) error
	// PutIfAbsent writes value only when key does not exist.
	PutIfAbsent(ctx context.Context, key string, value []byte) (bool, error)
	// CompareAndSwap replaces old with value only when the stored bytes equal old.
	CompareAndSwap(ctx context.Context, key string, old, value []byte) (bool, error)
}

// CompletionGuard records handled deadlines so that each one is announced once
// no matter how many readers observe it.
type CompletionGuard struct {
	store Store
}

// NewCompletionGuard creates a guard over store.
func NewCompletionGuard(store Store) *CompletionGuard {
	return &CompletionGuard{store: store}
}

// Claim marks endsAt as handled. It returns false when some reader already
// handled the same deadline.
func (guard *CompletionGuard) Claim(ctx context.Context, endsAt time.Time) (bool, error) {
	marker := []byte(strconv.FormatInt(endsAt.UnixMilli(), 10))

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		current, exists, err := guard.store.Get(ctx, CompletionKey)
		if err != nil {
			return false, fmt.Errorf("read completion marker: %w", err)
		}

		var swapped bool
		if !exists {
			swapped, err = guard.store.PutIfAbsent(ctx, CompletionKey, marker)
		} else {
			if handled, ok := parseMarker(current); ok && handled == endsAt.UnixMilli() {
				return false, nil
			}
			swapped, err = guard.store.CompareAndSwap(ctx, CompletionKey, current, marker)
		}
		if err != nil {
			return false, fmt.Errorf("write completion marker: %w", err)
		}
		if swapped {
			return true, nil
		}
	}
	return false, ErrClaimContention
}

// LastHandled returns the most recently handled deadline.
func (guard *CompletionGuard) LastHandled(ctx context.Context) (time.Time, bool, error) {
	current, exists, err := guard.store.Get(ctx, CompletionKey)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read completion marker: %w", err)
	}
	if !exists {
		return time.Time{}, false, nil
	}
	millis, ok := parseMarker(current)
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(millis), true, nil
}

func parseMarker(value []byte) (int64, bool) {
	millis, err := strconv.ParseInt(strings.TrimSpace(string(value)), 10, 64)
	if err != nil {
		return 0, false
	}
	return millis, true
}
