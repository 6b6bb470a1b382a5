// Package worker runs the background jobs: scheduled recurring roll-forward
// and reminder dispatch, and the consumer that delivers published reminders.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	applog "fintrack/internal/log"
	"fintrack/internal/services"

	"github.com/robfig/cron/v3"
)

// Job is one unit of scheduled work.
type Job func(ctx context.Context) error

// Scheduler runs named jobs on cron specs. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron   *cron.Cron
	logger *applog.Logger

	mu   sync.Mutex
	jobs map[string]Job
	ctx  context.Context
}

func NewScheduler(loc *time.Location, logger *applog.Logger) *Scheduler {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.WithComponent(applog.ComponentWorker)
	cl := cronLogger{logger.Logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
		jobs:   make(map[string]Job),
		ctx:    context.Background(),
	}
}

// Add registers job under name to run on spec (standard five-field cron syntax).
func (s *Scheduler) Add(name, spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.jobs[name]; dup {
		return fmt.Errorf("job %q already registered", name)
	}
	if _, err := s.cron.AddFunc(spec, func() { s.run(name, job) }); err != nil {
		return fmt.Errorf("schedule %q: %w", name, err)
	}
	s.jobs[name] = job
	return nil
}

func (s *Scheduler) run(name string, job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Job failed", "job", name, applog.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Job finished", "job", name, applog.FieldDuration, time.Since(start).Milliseconds())
}

// RunAll runs every registered job once, in no particular order.
func (s *Scheduler) RunAll(ctx context.Context) {
	s.mu.Lock()
	jobs := make(map[string]Job, len(s.jobs))
	for k, v := range s.jobs {
		jobs[k] = v
	}
	s.mu.Unlock()
	for name, job := range jobs {
		s.run(name, func(context.Context) error { return job(ctx) })
	}
}

// Start begins scheduling. Jobs receive ctx and stop being started once it is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", applog.FieldCount, len(s.cron.Entries()))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecurringJob rolls monthly and yearly series forward.
func RecurringJob(p *services.RecurringProcessor, now func() time.Time) Job {
	return func(ctx context.Context) error {
		n, err := p.ProcessDue(ctx, now())
		if err != nil {
			return err
		}
		if n > 0 {
			applog.FromContext(ctx).WithComponent(applog.ComponentWorker).InfoContext(ctx, "Recurring occurrences created",
				applog.FieldCount, n)
		}
		return nil
	}
}

// ReminderJob delivers due reminders.
func ReminderJob(d *services.ReminderDispatcher, now func() time.Time) Job {
	return func(ctx context.Context) error {
		res, err := d.DispatchDue(ctx, now())
		if err != nil {
			return err
		}
		if res.Sent > 0 || res.Failed > 0 {
			applog.FromContext(ctx).WithComponent(applog.ComponentWorker).InfoContext(ctx, "Reminders dispatched",
				"sent", res.Sent,
				"failed", res.Failed)
		}
		return nil
	}
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, applog.FieldError, err)...)
}
