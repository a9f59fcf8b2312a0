package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"focusflow/backend/internal/models"
	"focusflow/backend/internal/notify"

	"github.com/gofrs/uuid"
)

// Store is the slice of the persistent store the scheduler needs: a batch
// snapshot of tasks whose reminder should fire, and an optional stamp that
// a notification went out.
type Store interface {
	DueTasks(ctx context.Context, now time.Time) ([]models.Task, error)
	MarkNotified(ctx context.Context, taskID uuid.UUID, at time.Time) error
}

type Config struct {
	// Interval between polling ticks. Zero falls back to one minute.
	Interval time.Duration
	// MarkNotified stamps tasks after their first notification and skips
	// stamped tasks on later ticks. Disabled by default: a due task is
	// renotified every tick until its reminder is cleared or its due date
	// moves.
	MarkNotified bool
	// Clock overrides the time source. Nil means time.Now.
	Clock func() time.Time
}

// Scheduler periodically scans for due reminders and hands each one to the
// notifier. It owns its lifecycle explicitly: Start spawns the polling
// loop, Stop cancels it and waits for any in-flight tick to finish.
type Scheduler struct {
	store        Store
	notifier     notify.Notifier
	logger       *slog.Logger
	interval     time.Duration
	markNotified bool
	now          func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(store Store, notifier notify.Notifier, logger *slog.Logger, cfg Config) *Scheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Scheduler{
		store:        store,
		notifier:     notifier,
		logger:       logger,
		interval:     interval,
		markNotified: cfg.MarkNotified,
		now:          clock,
	}
}

// Start launches the polling loop. Calling Start while the loop is already
// running is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.logger.Info("reminder scheduler already running")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(loopCtx, done)
	s.logger.Info("reminder scheduler started", slog.Duration("interval", s.interval))
}

// Stop cancels the pending trigger and blocks until the in-flight tick, if
// any, has finished. Safe to call concurrently with a running tick and
// when the scheduler was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	// The loop also exits when the parent context is cancelled, without
	// anyone calling Stop. Clear the lifecycle state in that case so a
	// later Start launches a fresh loop instead of seeing a dead one as
	// "already running".
	defer func() {
		s.mu.Lock()
		if s.done == done {
			s.cancel, s.done = nil, nil
		}
		s.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.CheckReminders(ctx)
		}
	}
}

// CheckReminders runs one polling tick: snapshot the due tasks and emit one
// notification per task. A snapshot failure skips the whole tick; a
// notification failure only skips that task.
func (s *Scheduler) CheckReminders(ctx context.Context) {
	now := s.now()

	tasks, err := s.store.DueTasks(ctx, now)
	if err != nil {
		s.logger.Error("reminder snapshot failed, skipping tick", slog.String("error", err.Error()))
		return
	}

	notified := 0
	for i := range tasks {
		task := &tasks[i]
		if !IsDue(task, now) {
			continue
		}
		if s.markNotified && task.NotifiedAt != nil {
			continue
		}

		if err := s.notifier.NotifyDue(ctx, task); err != nil {
			s.logger.Error("reminder notification failed",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		notified++

		if s.markNotified {
			if err := s.store.MarkNotified(ctx, task.ID, now); err != nil {
				s.logger.Error("mark notified failed",
					slog.String("task_id", task.ID.String()),
					slog.String("error", err.Error()))
			}
		}
	}

	if notified > 0 {
		s.logger.Info("processed due reminders", slog.Int("count", notified))
	}
}
