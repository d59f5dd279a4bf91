package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookreview/bookreview-server/internal/logger"
	"github.com/bookreview/bookreview-server/internal/metrics"
)

func TestJobFunc_RecordsOutcome(t *testing.T) {
	m := metrics.New()
	log := logger.Discard().Logger

	var calls int
	ok := jobFunc("demo", m, log, func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	failing := jobFunc("demo", m, log, func(context.Context) error {
		calls++
		return errors.New("disk full")
	})

	ok()
	failing()
	failing()

	assert.Equal(t, 3, calls)

	expected := `
# HELP bookstore_jobs_runs_total Background job runs.
# TYPE bookstore_jobs_runs_total counter
bookstore_jobs_runs_total{job="demo",success="false"} 2
bookstore_jobs_runs_total{job="demo",success="true"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "bookstore_jobs_runs_total"))
}

func TestJobFunc_NilMetrics(t *testing.T) {
	run := jobFunc("demo", nil, logger.Discard().Logger, func(context.Context) error { return nil })
	assert.NotPanics(t, run)
}

func TestJobScheduler_Add(t *testing.T) {
	s := newJobScheduler(logger.Discard().Logger)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.add("@every 1h", "cleanup", nil, noop))
	require.NoError(t, s.add("*/5 * * * *", "gc", nil, noop))

	err := s.add("every tuesday", "broken", nil, noop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assert.Equal(t, 2, s.Entries())

	s.cron.Start()
	assert.NoError(t, s.Shutdown())
}
