package timekeeper_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/core/timekeeper"
	"desktimer/internal/storage"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu          sync.Mutex
	views       []timekeeper.View
	completions []timekeeper.Completion
}

func (rec *recorder) Render(view timekeeper.View) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.views = append(rec.views, view)
}

func (rec *recorder) Complete(completion timekeeper.Completion) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.completions = append(rec.completions, completion)
}

func (rec *recorder) completed() []timekeeper.Completion {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]timekeeper.Completion(nil), rec.completions...)
}

func (rec *recorder) lastView() timekeeper.View {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.views) == 0 {
		return timekeeper.View{}
	}
	return rec.views[len(rec.views)-1]
}

func newKeeper(t *testing.T, store timekeeper.Store, clock clockwork.Clock) (*timekeeper.TimeKeeper, *recorder) {
	t.Helper()
	keeper := timekeeper.New(store, model.DefaultTimeKeeperConfig(), timekeeper.Config{
		TickInterval: time.Second,
		Clock:        clock,
	})
	rec := &recorder{}
	keeper.SetRenderSink(rec)
	keeper.SetCompletionSink(rec)
	t.Cleanup(keeper.Close)
	return keeper, rec
}

func TestLoadWithoutStateSavesDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	keeper, rec := newKeeper(t, store, clockwork.NewFakeClockAt(epoch))

	require.NoError(t, keeper.Load(t.Context()))

	_, exists, err := store.Get(t.Context(), timekeeper.StateKey)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.False(t, keeper.Ticking())
	assert.Equal(t, "25:00", rec.lastView().DisplayText)
	assert.Empty(t, rec.completed())
}

func TestStartAndPausePersist(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(epoch)
	keeper, rec := newKeeper(t, store, clock)
	ctx := t.Context()
	require.NoError(t, keeper.Load(ctx))

	keeper.Start(ctx)
	assert.True(t, keeper.Ticking())
	assert.True(t, rec.lastView().Running)

	clock.Advance(10 * time.Second)
	keeper.Pause(ctx)
	assert.False(t, keeper.Ticking())
	session := keeper.Session()
	assert.False(t, session.Running)
	assert.Equal(t, 24*time.Minute+50*time.Second, session.Remaining)

	raw, _, err := store.Get(ctx, timekeeper.StateKey)
	require.NoError(t, err)
	restored, _, err := timekeeper.DecodeSession(raw, model.DefaultTimeKeeperConfig(), clock.Now())
	require.NoError(t, err)
	assert.Equal(t, session.Remaining, restored.Remaining)
	assert.False(t, restored.Running)
}

func TestToggleAlternates(t *testing.T) {
	keeper, _ := newKeeper(t, storage.NewMemoryStore(), clockwork.NewFakeClockAt(epoch))
	ctx := t.Context()

	keeper.Toggle(ctx)
	assert.True(t, keeper.Session().Running)
	keeper.Toggle(ctx)
	assert.False(t, keeper.Session().Running)
}

func TestReconcileCompletesExactlyOnce(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	keeper, rec := newKeeper(t, storage.NewMemoryStore(), clock)
	ctx := t.Context()
	require.NoError(t, keeper.Load(ctx))

	minutes, err := keeper.ChangeDuration(ctx, model.ModeFocus, "1")
	require.NoError(t, err)
	require.Equal(t, 1, minutes)
	keeper.Start(ctx)

	clock.Advance(61 * time.Second)
	keeper.Reconcile(ctx)
	keeper.Reconcile(ctx)

	completions := rec.completed()
	require.Len(t, completions, 1)
	assert.Equal(t, model.ModeFocus, completions[0].Mode)
	assert.Equal(t, epoch.Add(time.Minute).UnixMilli(), completions[0].EndsAt.UnixMilli())
	assert.False(t, keeper.Ticking())
	assert.Equal(t, "0:00", rec.lastView().DisplayText)
	assert.False(t, keeper.Session().Running)
}

func TestTickerDrivesCompletion(t *testing.T) {
	clock := clockwork.NewFakeClockAt(epoch)
	keeper, rec := newKeeper(t, storage.NewMemoryStore(), clock)
	ctx := t.Context()
	require.NoError(t, keeper.Load(ctx))
	_, err := keeper.ChangeDuration(ctx, model.ModeShort, "1")
	require.NoError(t, err)
	require.NoError(t, keeper.SetMode(ctx, model.ModeShort))

	keeper.Start(ctx)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(time.Minute)

	require.Eventually(t, func() bool { return len(rec.completed()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, model.ModeShort, rec.completed()[0].Mode)
	require.Eventually(t, func() bool { return !keeper.Ticking() }, 2*time.Second, 5*time.Millisecond)
}

func TestReloadAfterDeadlineAnnouncesOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(epoch)
	ctx := t.Context()

	first, _ := newKeeper(t, store, clock)
	require.NoError(t, first.Load(ctx))
	_, err := first.ChangeDuration(ctx, model.ModeFocus, "1")
	require.NoError(t, err)
	first.Start(ctx)
	require.NoError(t, first.Flush(ctx))
	first.Close()

	clock.Advance(2 * time.Minute)

	second, rec := newKeeper(t, store, clock)
	require.NoError(t, second.Load(ctx))
	require.Len(t, rec.completed(), 1)
	assert.False(t, second.Session().Running)
	assert.Zero(t, second.Session().Remaining)
	assert.False(t, second.Ticking())

	third, rec := newKeeper(t, store, clock)
	require.NoError(t, third.Load(ctx))
	assert.Empty(t, rec.completed())
}

func TestRestoredRunningSessionKeepsTicking(t *testing.T) {
	store := storage.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(epoch)
	ctx := t.Context()

	first, _ := newKeeper(t, store, clock)
	first.Start(ctx)
	first.Close()

	clock.Advance(5 * time.Minute)
	second, rec := newKeeper(t, store, clock)
	require.NoError(t, second.Load(ctx))
	assert.True(t, second.Ticking())
	assert.Equal(t, "20:00", rec.lastView().DisplayText)
}

func TestChangeDurationRejectsInvalidInput(t *testing.T) {
	store := storage.NewMemoryStore()
	keeper, _ := newKeeper(t, store, clockwork.NewFakeClockAt(epoch))
	ctx := t.Context()
	require.NoError(t, keeper.Load(ctx))
	puts := store.Calls().Put

	minutes, err := keeper.ChangeDuration(ctx, model.ModeFocus, "abc")
	assert.ErrorIs(t, err, timekeeper.ErrInvalidDuration)
	assert.Equal(t, 25, minutes)
	assert.Equal(t, puts, store.Calls().Put, "rejected input is not persisted")

	minutes, err = keeper.ChangeDuration(ctx, model.ModeLong, "500")
	require.NoError(t, err)
	assert.Equal(t, 180, minutes)
	assert.Equal(t, 180, keeper.Session().Durations.Long)

	_, err = keeper.ChangeDuration(ctx, model.Mode("quick"), "5")
	assert.ErrorIs(t, err, timekeeper.ErrUnknownMode)
}

func TestChangeActiveDurationStopsTicking(t *testing.T) {
	keeper, _ := newKeeper(t, storage.NewMemoryStore(), clockwork.NewFakeClockAt(epoch))
	ctx := t.Context()
	keeper.Start(ctx)

	_, err := keeper.ChangeDuration(ctx, model.ModeShort, "9")
	require.NoError(t, err)
	assert.True(t, keeper.Ticking(), "editing another mode keeps the countdown")

	_, err = keeper.ChangeDuration(ctx, model.ModeFocus, "30")
	require.NoError(t, err)
	assert.False(t, keeper.Ticking())
	assert.Equal(t, 30*time.Minute, keeper.Session().Remaining)
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	keeper, _ := newKeeper(t, storage.NewMemoryStore(), clockwork.NewFakeClockAt(epoch))
	assert.ErrorIs(t, keeper.SetMode(t.Context(), model.Mode("quick")), timekeeper.ErrUnknownMode)
}

func TestApplyPresetResetsSession(t *testing.T) {
	keeper, rec := newKeeper(t, storage.NewMemoryStore(), clockwork.NewFakeClockAt(epoch))
	ctx := t.Context()
	keeper.Start(ctx)

	keeper.ApplyPreset(ctx, model.Preset{Name: "Deep Work", Durations: model.ModeDurations{Focus: 50, Short: 10, Long: 30}})

	session := keeper.Session()
	assert.Equal(t, model.ModeDurations{Focus: 50, Short: 10, Long: 30}, session.Durations)
	assert.False(t, session.Running)
	assert.False(t, keeper.Ticking())
	assert.Equal(t, "50:00", rec.lastView().DisplayText)
}

func TestLoadSurvivesStoreFailure(t *testing.T) {
	store := storage.NewMemoryStore()
	store.FailWith(errors.New("disk gone"))
	keeper, rec := newKeeper(t, store, clockwork.NewFakeClockAt(epoch))

	assert.Error(t, keeper.Load(t.Context()))
	assert.Equal(t, "25:00", rec.lastView().DisplayText)

	keeper.Start(t.Context())
	assert.True(t, keeper.Session().Running, "a failing store never blocks the timer")
}

func TestLoadDiscardsMalformedState(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Put(t.Context(), timekeeper.StateKey, []byte("{broken")))
	keeper, _ := newKeeper(t, store, clockwork.NewFakeClockAt(epoch))

	require.NoError(t, keeper.Load(t.Context()))
	assert.Equal(t, model.ModeFocus, keeper.Session().Mode)
	assert.Equal(t, 25*time.Minute, keeper.Session().Remaining)
}
