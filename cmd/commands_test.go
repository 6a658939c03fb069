package main

import (
	"bytes"
	"testing"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/i18n"
	"desktimer/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintPresets(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printPresets(&out, []model.Preset{
		{Name: "Classic", Durations: model.ModeDurations{Focus: 25, Short: 5, Long: 15}},
	}))

	assert.Contains(t, out.String(), "NAME")
	assert.Regexp(t, `Classic\s+25\s+5\s+15`, out.String())
}

func TestPrintStatus(t *testing.T) {
	i18n.SetLanguage("en")
	store := storage.NewMemoryStore()
	now := time.UnixMilli(1_700_000_000_000)

	var out bytes.Buffer
	require.NoError(t, printStatus(t.Context(), &out, store, now, false))
	assert.Equal(t, "No timer state stored.\n", out.String())

	started, _ := timekeeper.NewSession(model.DefaultTimeKeeperConfig()).Start(now)
	data, err := timekeeper.EncodeSession(started, now)
	require.NoError(t, err)
	require.NoError(t, store.Put(t.Context(), timekeeper.StateKey, data))

	out.Reset()
	require.NoError(t, printStatus(t.Context(), &out, store, now.Add(5*time.Minute), false))
	assert.Contains(t, out.String(), "Focus 20:00 (running)")
	assert.Contains(t, out.String(), "Durations: focus 25, short 5, long 15 min")

	out.Reset()
	require.NoError(t, printStatus(t.Context(), &out, store, now, true))
	assert.JSONEq(t, string(data), out.String())
}

func TestWatcherArgs(t *testing.T) {
	assert.Equal(t, []string{"watch"}, watcherArgs(&CLI{}))
	assert.Equal(t, []string{"watch", "--data-dir", "/srv/timer"}, watcherArgs(&CLI{DataDir: "/srv/timer"}))
}
