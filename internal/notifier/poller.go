package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"desktimer/internal/core/timekeeper"
	"desktimer/internal/logfields"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// DefaultInterval is the period between background checks.
const DefaultInterval = 5 * time.Second

// Config contains runtime options for Poller.
type Config struct {
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Poller announces sessions that finish while no window is ticking. It
// reads the shared state, finalises an expired record and claims the
// deadline through the same guard the TimeKeeper uses.
type Poller struct {
	store    timekeeper.Store
	guard    *timekeeper.CompletionGuard
	sink     timekeeper.CompletionSink
	config   Config
	instance string
	logger   *slog.Logger

	mu        sync.Mutex
	scheduler gocron.Scheduler
}

// New creates a poller over store that reports completions to sink.
func New(store timekeeper.Store, sink timekeeper.CompletionSink, config Config) *Poller {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if config.Clock == nil {
		config.Clock = clockwork.NewRealClock()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	instance := uuid.NewString()

	return &Poller{
		store:    store,
		guard:    timekeeper.NewCompletionGuard(store),
		sink:     sink,
		config:   config,
		instance: instance,
		logger:   config.Logger.With(logfields.Instance(instance)),
	}
}

// Instance returns the identifier this poller logs with.
func (poller *Poller) Instance() string {
	return poller.instance
}

// Check runs one poll. It reports whether this call announced a completion.
func (poller *Poller) Check(ctx context.Context) (bool, error) {
	raw, exists, err := poller.store.Get(ctx, timekeeper.StateKey)
	if err != nil {
		return false, fmt.Errorf("read timer state: %w", err)
	}
	if !exists {
		return false, nil
	}

	now := poller.config.Clock.Now()
	updated, completion, err := timekeeper.ExpireSnapshot(raw, now)
	if err != nil {
		if errors.Is(err, timekeeper.ErrMalformedSnapshot) {
			poller.logger.Debug("Ignoring malformed timer state", logfields.Error(err))
			return false, nil
		}
		return false, err
	}
	if completion == nil {
		return false, nil
	}

	logger := poller.logger.With(logfields.Mode(string(completion.Mode)), logfields.EndsAt(completion.EndsAt))

	// A lost swap means another reader rewrote the record first.
	if _, err := poller.store.CompareAndSwap(ctx, timekeeper.StateKey, raw, updated); err != nil {
		logger.Warn("Failed to finalise expired timer state", logfields.Error(err))
	}

	claimed, err := poller.guard.Claim(ctx, completion.EndsAt)
	if err != nil {
		return false, fmt.Errorf("claim completion: %w", err)
	}
	if !claimed {
		logger.Debug("Completion already handled")
		return false, nil
	}

	logger.Info("Session complete")
	if poller.sink != nil {
		poller.sink.Complete(*completion)
	}
	return true, nil
}

// Start runs an immediate check and schedules the rest every interval.
func (poller *Poller) Start(ctx context.Context) error {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.scheduler != nil {
		return nil
	}

	poller.runCheck(ctx)

	scheduler, err := gocron.NewScheduler(gocron.WithClock(poller.config.Clock))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(poller.config.Interval),
		gocron.NewTask(poller.runCheck, ctx),
		gocron.WithName("completion-check"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("schedule completion check: %w", err)
	}

	scheduler.Start()
	poller.scheduler = scheduler
	poller.logger.Info("Completion watcher started", slog.Duration("interval", poller.config.Interval))
	return nil
}

// Stop shuts the scheduler down and waits for a running check.
func (poller *Poller) Stop() error {
	poller.mu.Lock()
	defer poller.mu.Unlock()
	if poller.scheduler == nil {
		return nil
	}
	err := poller.scheduler.Shutdown()
	poller.scheduler = nil
	if err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	poller.logger.Info("Completion watcher stopped")
	return nil
}

func (poller *Poller) runCheck(ctx context.Context) {
	if _, err := poller.Check(ctx); err != nil {
		poller.logger.Warn("Completion check failed", logfields.Error(err))
	}
}
