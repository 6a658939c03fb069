package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"desktimer/internal/core/model"
	"desktimer/internal/logfields"

	"github.com/jonboulle/clockwork"
)

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Clock        clockwork.Clock
	Logger       *slog.Logger
}

// TimeKeeper owns the single timer session. Every mutation is persisted to
// the store and rendered before the lock is released.
type TimeKeeper struct {
	mu         sync.Mutex
	config     model.TimeKeeperConfig
	options    Config
	store      Store
	guard      *CompletionGuard
	session    Session
	render     RenderSink
	completion CompletionSink
	stopCh     chan struct{}
}

// New creates a TimeKeeper over store with a fresh session.
func New(store Store, config model.TimeKeeperConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Clock == nil {
		options.Clock = clockwork.NewRealClock()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	if !config.Mode.Valid() {
		config.Mode = model.ModeFocus
	}

	return &TimeKeeper{
		config:  config,
		options: options,
		store:   store,
		guard:   NewCompletionGuard(store),
		session: NewSession(config),
	}
}

// SetRenderSink injects the render sink.
func (keeper *TimeKeeper) SetRenderSink(sink RenderSink) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.render = sink
}

// SetCompletionSink injects the completion sink.
func (keeper *TimeKeeper) SetCompletionSink(sink CompletionSink) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.completion = sink
}

// Load restores the persisted session. Malformed state falls back to
// defaults; only a failing store is reported, and even then the keeper
// continues with a fresh session.
func (keeper *TimeKeeper) Load(ctx context.Context) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.options.Clock.Now()
	raw, exists, err := keeper.store.Get(ctx, StateKey)
	if err != nil {
		keeper.session = NewSession(keeper.config)
		keeper.renderLocked(now)
		return fmt.Errorf("load timer state: %w", err)
	}
	if !exists {
		keeper.session = NewSession(keeper.config)
		keeper.saveLocked(ctx, now)
		keeper.renderLocked(now)
		return nil
	}

	session, completion, err := DecodeSession(raw, keeper.config, now)
	if err != nil {
		keeper.options.Logger.Warn("Discarding malformed timer state", logfields.Error(err))
	}
	keeper.session = session
	keeper.saveLocked(ctx, now)
	if completion != nil {
		keeper.completeLocked(ctx, *completion)
	}
	if keeper.session.Running {
		keeper.startTickingLocked()
	}
	keeper.renderLocked(now)
	return nil
}

// Start begins the countdown from the paused state.
func (keeper *TimeKeeper) Start(ctx context.Context) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.startLocked(ctx)
}

// Pause freezes a running countdown.
func (keeper *TimeKeeper) Pause(ctx context.Context) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.pauseLocked(ctx)
}

// Toggle pauses a running session and starts a paused one.
func (keeper *TimeKeeper) Toggle(ctx context.Context) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if keeper.session.Running {
		keeper.pauseLocked(ctx)
		return
	}
	keeper.startLocked(ctx)
}

// SetMode stops the session and switches to mode with a full countdown.
func (keeper *TimeKeeper) SetMode(ctx context.Context, mode model.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("set mode: %w: %q", ErrUnknownMode, mode)
	}

	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.options.Clock.Now()
	keeper.session = keeper.session.SetMode(mode)
	keeper.stopTickingLocked()
	keeper.saveLocked(ctx, now)
	keeper.renderLocked(now)
	return nil
}

// ChangeDuration parses raw minutes for mode and applies them. On rejected
// input the state is untouched and the current minutes are returned so the
// caller can revert its input.
func (keeper *TimeKeeper) ChangeDuration(ctx context.Context, mode model.Mode, raw string) (int, error) {
	if !mode.Valid() {
		return 0, fmt.Errorf("change duration: %w: %q", ErrUnknownMode, mode)
	}

	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	minutes, err := ParseMinutes(raw)
	if err != nil {
		return keeper.session.Durations.Minutes(mode), fmt.Errorf("change %s duration: %w", mode, err)
	}

	now := keeper.options.Clock.Now()
	keeper.session = keeper.session.ChangeDuration(mode, minutes)
	if mode == keeper.session.Mode {
		keeper.stopTickingLocked()
	}
	keeper.saveLocked(ctx, now)
	keeper.renderLocked(now)
	return minutes, nil
}

// ApplyPreset replaces all durations and resets the active session.
func (keeper *TimeKeeper) ApplyPreset(ctx context.Context, preset model.Preset) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	now := keeper.options.Clock.Now()
	keeper.session = keeper.session.ApplyPreset(preset.Durations)
	keeper.stopTickingLocked()
	keeper.saveLocked(ctx, now)
	keeper.renderLocked(now)
	keeper.options.Logger.Info("Applied preset", slog.String("preset", preset.Name))
}

// Reconcile re-derives the remaining time immediately, for example when the
// window returns to the foreground after being throttled.
func (keeper *TimeKeeper) Reconcile(ctx context.Context) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.reconcileLocked(ctx)
}

// Flush persists the current session. It is the teardown hook; callers
// treat it as best-effort.
func (keeper *TimeKeeper) Flush(ctx context.Context) error {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.persistLocked(ctx, keeper.options.Clock.Now())
}

// Close stops the ticking loop.
func (keeper *TimeKeeper) Close() {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.stopTickingLocked()
}

// Session returns a copy of the current state.
func (keeper *TimeKeeper) Session() Session {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.session
}

// View renders the current state.
func (keeper *TimeKeeper) View() View {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.session.View(keeper.options.Clock.Now())
}

// Ticking reports whether the periodic reconciliation is active.
func (keeper *TimeKeeper) Ticking() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.stopCh != nil
}

func (keeper *TimeKeeper) startLocked(ctx context.Context) {
	now := keeper.options.Clock.Now()
	next, ok := keeper.session.Start(now)
	if !ok {
		return
	}
	keeper.session = next
	keeper.startTickingLocked()
	keeper.saveLocked(ctx, now)
	keeper.renderLocked(now)
}

func (keeper *TimeKeeper) pauseLocked(ctx context.Context) {
	now := keeper.options.Clock.Now()
	next, ok := keeper.session.Pause(now)
	if !ok {
		return
	}
	keeper.session = next
	keeper.stopTickingLocked()
	keeper.saveLocked(ctx, now)
	keeper.renderLocked(now)
}

func (keeper *TimeKeeper) startTickingLocked() {
	if keeper.stopCh != nil {
		return
	}
	stopCh := make(chan struct{})
	keeper.stopCh = stopCh
	go keeper.run(keeper.options.Clock.NewTicker(keeper.options.TickInterval), stopCh)
}

func (keeper *TimeKeeper) stopTickingLocked() {
	if keeper.stopCh == nil {
		return
	}
	close(keeper.stopCh)
	keeper.stopCh = nil
}

func (keeper *TimeKeeper) run(ticker clockwork.Ticker, stopCh chan struct{}) {
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.Chan():
			keeper.tick(stopCh)
		}
	}
}

func (keeper *TimeKeeper) tick(stopCh chan struct{}) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	// A tick that raced a pause or mode switch belongs to a stopped loop.
	if keeper.stopCh != stopCh {
		return
	}
	keeper.reconcileLocked(context.Background())
}

func (keeper *TimeKeeper) reconcileLocked(ctx context.Context) {
	now := keeper.options.Clock.Now()
	if !keeper.session.Running {
		keeper.renderLocked(now)
		return
	}

	next, completion := keeper.session.Reconcile(now)
	keeper.session = next
	if completion != nil {
		keeper.stopTickingLocked()
	}
	keeper.saveLocked(ctx, now)
	if completion != nil {
		keeper.completeLocked(ctx, *completion)
	}
	keeper.renderLocked(now)
}

func (keeper *TimeKeeper) completeLocked(ctx context.Context, completion Completion) {
	logger := keeper.options.Logger.With(logfields.Mode(string(completion.Mode)), logfields.EndsAt(completion.EndsAt))

	claimed, err := keeper.guard.Claim(ctx, completion.EndsAt)
	if err != nil {
		// Without a readable marker the completion is still announced.
		logger.Warn("Completion marker unavailable", logfields.Error(err))
		claimed = !errors.Is(err, context.Canceled)
	}
	if !claimed {
		logger.Debug("Completion already handled")
		return
	}

	logger.Info("Session complete")
	if keeper.completion != nil {
		keeper.completion.Complete(completion)
	}
}

func (keeper *TimeKeeper) saveLocked(ctx context.Context, now time.Time) {
	if err := keeper.persistLocked(ctx, now); err != nil {
		keeper.options.Logger.Warn("Failed to persist timer state", logfields.Error(err))
	}
}

func (keeper *TimeKeeper) persistLocked(ctx context.Context, now time.Time) error {
	data, err := EncodeSession(keeper.session, now)
	if err != nil {
		return err
	}
	if err := keeper.store.Put(ctx, StateKey, data); err != nil {
		return fmt.Errorf("save timer state: %w", err)
	}
	return nil
}

func (keeper *TimeKeeper) renderLocked(now time.Time) {
	if keeper.render != nil {
		keeper.render.Render(keeper.session.View(now))
	}
}
