package puenktlich

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/glueckkanja/puenktlich/pkg/logx"
	"github.com/glueckkanja/puenktlich/trigger"
)

// Config controls a Scheduler.
type Config struct {
	// Now returns the current instant. Defaults to time.Now. Tests inject a
	// deterministic clock here; it must be safe for concurrent use.
	Now func() time.Time
	// BaseContext is the context passed to job callbacks. Defaults to
	// context.Background. The scheduler never cancels it; cancellation of
	// running callbacks is cooperative and owned by the caller.
	BaseContext context.Context
	// Registerer enables Prometheus metrics when non-nil.
	Registerer prometheus.Registerer
}

// Scheduler is a thread-safe registry of jobs, each owning a single-shot
// timer and a dynamic set of triggers. Jobs are keyed by their data value
// using Go map equality: data must be comparable, and for pointer types two
// registrations are distinct unless they pass the same pointer.
type Scheduler struct {
	log    logx.Logger
	errLog logx.Logger // throttled; repeated job failures must not flood sinks
	now    func() time.Time
	base   context.Context

	mu   sync.Mutex
	jobs map[any]*job

	running atomic.Bool
	closed  atomic.Bool

	errs    *errorFanout
	metrics *metrics
}

// New creates a stopped scheduler. Jobs may be registered before Start;
// their timers stay disarmed until the scheduler runs.
func New(cfg Config, log logx.Logger) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	base := cfg.BaseContext
	if base == nil {
		base = context.Background()
	}
	return &Scheduler{
		log:     log,
		errLog:  log.Throttled(rate.Every(time.Second), 10),
		now:     now,
		base:    base,
		jobs:    make(map[any]*job),
		errs:    newErrorFanout(),
		metrics: newMetrics(cfg.Registerer),
	}
}

// ScheduleJob registers a synchronous job keyed by data with at least one
// trigger. If the scheduler is running the job is armed immediately.
func (s *Scheduler) ScheduleJob(data any, fn JobFunc, triggers ...trigger.Trigger) (*JobInfo, error) {
	if fn == nil {
		return nil, fmt.Errorf("puenktlich: callback must not be nil")
	}
	return s.schedule(data, &job{data: data, run: fn}, triggers)
}

// ScheduleAsyncJob registers a job whose callback hands back a completion
// channel; the job is re-armed when the channel delivers or closes.
func (s *Scheduler) ScheduleAsyncJob(data any, fn AsyncJobFunc, triggers ...trigger.Trigger) (*JobInfo, error) {
	if fn == nil {
		return nil, fmt.Errorf("puenktlich: callback must not be nil")
	}
	return s.schedule(data, &job{data: data, runAsync: fn}, triggers)
}

func (s *Scheduler) schedule(data any, j *job, triggers []trigger.Trigger) (*JobInfo, error) {
	if s.closed.Load() {
		return nil, ErrSchedulerClosed
	}
	if data == nil {
		return nil, fmt.Errorf("puenktlich: job data must not be nil")
	}
	if !reflect.TypeOf(data).Comparable() {
		return nil, fmt.Errorf("puenktlich: job data of type %T is not comparable", data)
	}
	if len(triggers) == 0 {
		return nil, fmt.Errorf("puenktlich: at least one trigger is required")
	}
	j.triggers = append([]trigger.Trigger(nil), triggers...)

	s.mu.Lock()
	if _, ok := s.jobs[data]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrDuplicateJob, data)
	}
	j.initTimer(func() { s.onTick(j) })
	s.jobs[data] = j
	s.mu.Unlock()

	s.metrics.jobAdded()
	s.log.Debug("job scheduled", logx.Any("data", data), logx.Int("triggers", len(triggers)))
	s.refreshJob(j)
	return &JobInfo{s: s, j: j}, nil
}

// UnscheduleJob removes the job keyed by data and releases its timer.
func (s *Scheduler) UnscheduleJob(data any) error {
	if s.closed.Load() {
		return ErrSchedulerClosed
	}
	s.mu.Lock()
	j, ok := s.jobs[data]
	if ok {
		delete(s.jobs, data)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %v", ErrJobNotFound, data)
	}
	j.dispose()
	s.metrics.jobRemoved()
	s.log.Debug("job unscheduled", logx.Any("data", data))
	return nil
}

// Job returns the registration keyed by data.
func (s *Scheduler) Job(data any) (*JobInfo, error) {
	if s.closed.Load() {
		return nil, ErrSchedulerClosed
	}
	s.mu.Lock()
	j, ok := s.jobs[data]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrJobNotFound, data)
	}
	return &JobInfo{s: s, j: j}, nil
}

// Jobs returns every registration.
func (s *Scheduler) Jobs() []*JobInfo {
	jobs := s.jobsSnapshot()
	infos := make([]*JobInfo, 0, len(jobs))
	for _, j := range jobs {
		infos = append(infos, &JobInfo{s: s, j: j})
	}
	return infos
}

// RunningJobs returns the registrations whose callback is executing right
// now.
func (s *Scheduler) RunningJobs() []*JobInfo {
	var infos []*JobInfo
	for _, j := range s.jobsSnapshot() {
		if j.running.Load() {
			infos = append(infos, &JobInfo{s: s, j: j})
		}
	}
	return infos
}

// JobsOf returns the registrations whose data value is of type T.
func JobsOf[T any](s *Scheduler) []*JobInfo {
	var infos []*JobInfo
	for _, j := range s.jobsSnapshot() {
		if _, ok := j.data.(T); ok {
			infos = append(infos, &JobInfo{s: s, j: j})
		}
	}
	return infos
}

func (s *Scheduler) jobsSnapshot() []*job {
	s.mu.Lock()
	defer s.mu.Unlock()
	jobs := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	return jobs
}

// SubscribeErrors registers an error subscriber. Delivery is non-blocking:
// a subscriber that does not drain its channel loses events. The returned
// function cancels the subscription and closes the channel.
func (s *Scheduler) SubscribeErrors(buffer int) (<-chan *JobError, func()) {
	return s.errs.subscribe(buffer)
}

// IsRunning reports whether Start has been called without a later Stop.
func (s *Scheduler) IsRunning() bool { return s.running.Load() }

// Start arms every job's timer for its earliest upcoming occurrence.
// Idempotent.
func (s *Scheduler) Start() error {
	if s.closed.Load() {
		return ErrSchedulerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	jobs := s.jobsSnapshot()
	for _, j := range jobs {
		s.refreshJob(j)
	}
	s.log.Info("scheduler started", logx.Int("jobs", len(jobs)))
	return nil
}

// Stop disarms every timer but keeps all registrations. In-flight callbacks
// run to completion; they are not re-armed. Idempotent.
func (s *Scheduler) Stop() error {
	if s.closed.Load() {
		return ErrSchedulerClosed
	}
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	for _, j := range s.jobsSnapshot() {
		j.disarm()
	}
	s.log.Info("scheduler stopped")
	return nil
}

// Close stops the scheduler, releases every job timer and clears the
// registry. Every later operation fails with ErrSchedulerClosed. Callbacks
// already in flight complete but are not re-armed.
func (s *Scheduler) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.running.Store(false)
	s.mu.Lock()
	for _, j := range s.jobs {
		j.dispose()
	}
	n := len(s.jobs)
	clear(s.jobs)
	s.mu.Unlock()
	s.errs.close()
	s.metrics.reset()
	s.log.Info("scheduler closed", logx.Int("jobs", n))
	return nil
}

// refreshJob recomputes the job's next fire across its triggers and re-arms
// the timer. No-op while the scheduler is not running: timers are armed on
// Start, so a job scheduled early cannot fire early.
//
// Lock order: the trigger snapshot is taken and released before the timer
// lock is touched.
func (s *Scheduler) refreshJob(j *job) {
	if !s.running.Load() {
		return
	}
	now := s.now()

	var (
		next      time.Time
		hasNext   bool
		exhausted []trigger.Trigger
	)
	for _, tr := range j.snapshotTriggers() {
		first, ok := firstUpcoming(tr, now)
		if !ok {
			if ex, can := tr.(trigger.Exhaustible); can && ex.Exhausted() {
				exhausted = append(exhausted, tr)
			}
			continue
		}
		if !hasNext || first.Before(next) {
			next, hasNext = first, true
		}
	}
	if len(exhausted) > 0 {
		j.removeTriggers(exhausted)
		s.log.Debug("exhausted triggers removed", logx.Any("data", j.data), logx.Int("count", len(exhausted)))
	}

	if !hasNext {
		j.setScheduled(time.Time{})
		j.disarm()
		return
	}
	j.setScheduled(next)
	if j.running.Load() {
		// The callback is executing; onComplete re-arms when it finishes.
		return
	}

	due := next.Sub(now)
	if due < 0 {
		due = 0
	}
	j.arm(due)
}

func firstUpcoming(tr trigger.Trigger, base time.Time) (time.Time, bool) {
	for t := range tr.Upcoming(base) {
		return t, true
	}
	return time.Time{}, false
}

// onTick is the timer callback. It runs on the timer's own goroutine;
// multiple jobs may tick concurrently, but a single job cannot re-enter
// because its timer is not re-armed until onComplete.
func (s *Scheduler) onTick(j *job) {
	if !s.running.Load() || s.closed.Load() {
		return
	}
	if j.paused.Load() {
		// A later Resume refreshes the job; the missed fire is not replayed.
		return
	}
	ec := j.beginFire(s.now())
	j.running.Store(true)
	s.metrics.fireStarted()
	s.log.Debug("job fired", logx.Any("data", j.data), logx.Time("scheduled", ec.ScheduledFireTime))
	j.execute(s.base, ec,
		func() { s.onComplete(j) },
		func(err error) { s.onError(ec, err) },
	)
}

func (s *Scheduler) onComplete(j *job) {
	j.running.Store(false)
	s.metrics.fireDone()
	if s.running.Load() {
		s.refreshJob(j)
	}
}

func (s *Scheduler) onError(ec ExecutionContext, err error) {
	err = unwrapSingle(err)
	s.metrics.jobFailed()
	s.errLog.Warn("job failed", logx.Any("data", ec.Data), logx.Err(err))
	s.errs.publish(&JobError{Context: ec, Err: err})
}
