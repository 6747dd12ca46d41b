package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"passin/internal/domain"
)

// JobFunc is the body of a scheduled job. It receives a context bounded by the scheduler timeout.
type JobFunc func(ctx context.Context) error

// Scheduler runs periodic jobs on cron specs. A job never overlaps with its own previous run.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	timeout time.Duration
}

func New(logger *slog.Logger, timeout time.Duration) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		timeout: timeout,
	}
}

// Add registers fn under name at the given spec (standard 5-field cron or a descriptor like @midnight).
func (s *Scheduler) Add(name, spec string, fn JobFunc) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(name, fn)); err != nil {
		return fmt.Errorf("schedule %s at %q: %w", name, spec, err)
	}
	s.logger.Info("job scheduled", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) wrap(name string, fn JobFunc) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		elapsed := time.Since(start)
		if err != nil {
			s.logger.Error("job failed", "job", name, "error", err, "duration", elapsed)
			return
		}
		s.logger.Info("job finished", "job", name, "duration", elapsed)
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

// RemovePastEventsJob runs the past-event sweep.
func RemovePastEventsJob(events domain.EventService) JobFunc {
	return func(ctx context.Context) error {
		_, err := events.RemovePastEvents(ctx)
		return err
	}
}

// HealthCheckJob runs the health probe and fails when any indicator is down.
func HealthCheckJob(health domain.HealthService) JobFunc {
	return func(ctx context.Context) error {
		report := health.Check(ctx)
		if report.OK() {
			return nil
		}
		failing := make([]string, 0, len(report.Error))
		for name := range report.Error {
			failing = append(failing, name)
		}
		sort.Strings(failing)
		return errors.New("indicators down: " + strings.Join(failing, ", "))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct{ logger *slog.Logger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
