package puenktlich

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/glueckkanja/puenktlich/trigger"
)

func TestMetricsDisabledWithoutRegisterer(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(t, Config{})
	if s.metrics != nil {
		t.Fatal("metrics created without a registerer")
	}
	// Nil-receiver methods must be safe.
	s.metrics.jobAdded()
	s.metrics.fireStarted()
	s.metrics.fireDone()
	s.metrics.jobFailed()
	s.metrics.jobRemoved()
	s.metrics.reset()
}

func TestMetricsTrackRegistrations(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	s := newTestScheduler(t, Config{Registerer: reg})

	if _, err := s.ScheduleJob("a", noop, trigger.NewManual()); err != nil {
		t.Fatalf("ScheduleJob error: %v", err)
	}
	if _, err := s.ScheduleJob("b", noop, trigger.NewManual()); err != nil {
		t.Fatalf("ScheduleJob error: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.registered); got != 2 {
		t.Fatalf("jobs_registered = %v, want 2", got)
	}
	if err := s.UnscheduleJob("a"); err != nil {
		t.Fatalf("UnscheduleJob error: %v", err)
	}
	if got := testutil.ToFloat64(s.metrics.registered); got != 1 {
		t.Fatalf("jobs_registered = %v, want 1", got)
	}
}

func TestMetricsCountFiresAndFailures(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	s := newTestScheduler(t, Config{Registerer: reg})
	errs, unsub := s.SubscribeErrors(1)
	defer unsub()

	_, err := s.ScheduleJob("failing", func(context.Context, ExecutionContext) error {
		return errors.New("nope")
	}, trigger.NewNow())
	if err != nil {
		t.Fatalf("ScheduleJob error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	waitErr(t, errs)
	if got := testutil.ToFloat64(s.metrics.fires); got != 1 {
		t.Fatalf("fires_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(s.metrics.failures); got != 1 {
		t.Fatalf("job_errors_total = %v, want 1", got)
	}
}
