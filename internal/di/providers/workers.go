package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/do/v2"

	"github.com/bookreview/bookreview-server/internal/config"
	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/metrics"
	"github.com/bookreview/bookreview-server/internal/service"
)

// jobTimeout bounds a single run of any background job.
const jobTimeout = 5 * time.Minute

// JobScheduler runs periodic maintenance on a cron schedule.
type JobScheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// Shutdown implements do.Shutdownable. It waits for running jobs.
func (s *JobScheduler) Shutdown() error {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("background jobs still running after %s", shutdownTimeout)
	}
}

// Entries returns the number of scheduled jobs.
func (s *JobScheduler) Entries() int {
	return len(s.cron.Entries())
}

// ProvideJobScheduler schedules refresh-session cleanup and, for the badger
// session backend, value-log GC.
func ProvideJobScheduler(i do.Injector) (*JobScheduler, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	sessions := do.MustInvoke[*SessionStoreHandle](i)

	scheduler := newJobScheduler(log.Logger)

	if err := scheduler.add(cfg.Jobs.SessionCleanupSchedule, "session_cleanup", m, func(ctx context.Context) error {
		_, err := sessionService.CleanupExpired(ctx)
		return err
	}); err != nil {
		return nil, err
	}

	if sessions.Badger != nil {
		if err := scheduler.add(cfg.Jobs.KVGCSchedule, "session_kv_gc", m, func(context.Context) error {
			_, err := sessions.Badger.RunGC()
			return err
		}); err != nil {
			return nil, err
		}
	}

	scheduler.cron.Start()
	log.Info("Job scheduler started", "jobs", scheduler.Entries())

	return scheduler, nil
}

func newJobScheduler(log *slog.Logger) *JobScheduler {
	cl := cronLogger{log: log}
	return &JobScheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: log,
	}
}

func (s *JobScheduler) add(spec, name string, m *metrics.Metrics, fn func(context.Context) error) error {
	if _, err := s.cron.AddFunc(spec, jobFunc(name, m, s.logger, fn)); err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// jobFunc adapts fn to a cron job that logs and counts each run.
func jobFunc(name string, m *metrics.Metrics, log *slog.Logger, fn func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		err := fn(ctx)
		m.RecordJobRun(name, err == nil)
		if err != nil {
			log.Warn("Background job failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		log.Debug("Background job completed", "job", name, "duration", time.Since(start))
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
