package puenktlich

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/glueckkanja/puenktlich/trigger"
)

// JobFunc is a synchronous callback. It runs on the timer's dispatch
// goroutine; the job is not re-armed until it returns.
type JobFunc func(ctx context.Context, ec ExecutionContext) error

// AsyncJobFunc starts work and returns a channel that delivers the outcome.
// The job is re-armed when the first value arrives or the channel is closed
// (a close counts as success). Returning a nil channel also counts as
// success.
type AsyncJobFunc func(ctx context.Context, ec ExecutionContext) <-chan error

// job is the per-registration state: the identity value, the callback, the
// trigger list, and a single-shot timer.
//
// Lock discipline: timerMu and trigMu are independent and never nested.
// paused and running are plain atomics (paused written only via JobInfo,
// running only on scheduler dispatch paths).
type job struct {
	data     any
	run      JobFunc
	runAsync AsyncJobFunc

	timerMu sync.Mutex
	timer   *time.Timer // nil once disposed

	trigMu   sync.Mutex
	triggers []trigger.Trigger

	paused  atomic.Bool
	running atomic.Bool

	stateMu   sync.Mutex
	scheduled time.Time // zero while no trigger is armed
	lastFire  time.Time // zero until the first fire
	execID    uuid.UUID
}

// initTimer creates the job's single-shot timer in the disarmed state.
func (j *job) initTimer(tick func()) {
	t := time.AfterFunc(time.Duration(math.MaxInt64), tick)
	t.Stop()
	j.timerMu.Lock()
	j.timer = t
	j.timerMu.Unlock()
}

// arm schedules the next single-shot delivery. No-op once disposed.
func (j *job) arm(d time.Duration) {
	j.timerMu.Lock()
	defer j.timerMu.Unlock()
	if j.timer == nil {
		return
	}
	j.timer.Stop()
	j.timer.Reset(d)
}

// disarm cancels a pending delivery without releasing the timer.
func (j *job) disarm() {
	j.timerMu.Lock()
	defer j.timerMu.Unlock()
	if j.timer == nil {
		return
	}
	j.timer.Stop()
}

// dispose releases the timer. All later arm/disarm calls are no-ops.
func (j *job) dispose() {
	j.timerMu.Lock()
	defer j.timerMu.Unlock()
	if j.timer == nil {
		return
	}
	j.timer.Stop()
	j.timer = nil
}

func (j *job) snapshotTriggers() []trigger.Trigger {
	j.trigMu.Lock()
	defer j.trigMu.Unlock()
	return slices.Clone(j.triggers)
}

// removeTriggers drops the given triggers from the list, compared by
// identity.
func (j *job) removeTriggers(drop []trigger.Trigger) {
	j.trigMu.Lock()
	defer j.trigMu.Unlock()
	j.triggers = slices.DeleteFunc(j.triggers, func(t trigger.Trigger) bool {
		for _, d := range drop {
			if d == t {
				return true
			}
		}
		return false
	})
}

func (j *job) setScheduled(t time.Time) {
	j.stateMu.Lock()
	j.scheduled = t
	j.stateMu.Unlock()
}

func (j *job) scheduledFireTime() time.Time {
	j.stateMu.Lock()
	defer j.stateMu.Unlock()
	return j.scheduled
}

func (j *job) lastFireTime() time.Time {
	j.stateMu.Lock()
	defer j.stateMu.Unlock()
	return j.lastFire
}

// beginFire stamps the actual fire time, assigns a fresh execution id and
// returns the context for this fire.
func (j *job) beginFire(now time.Time) ExecutionContext {
	j.stateMu.Lock()
	defer j.stateMu.Unlock()
	j.lastFire = now
	j.execID = uuid.New()
	return ExecutionContext{
		ExecutionID:       j.execID,
		ScheduledFireTime: j.scheduled,
		ActualFireTime:    now,
		Data:              j.data,
	}
}

// execute invokes the callback. onErr runs at most once, before onDone;
// onDone runs exactly once, whether the callback succeeded, failed or
// panicked.
func (j *job) execute(ctx context.Context, ec ExecutionContext, onDone func(), onErr func(error)) {
	if j.run != nil {
		if err := safeCall(func() error { return j.run(ctx, ec) }); err != nil {
			onErr(err)
		}
		onDone()
		return
	}

	var ch <-chan error
	if err := safeCall(func() error {
		ch = j.runAsync(ctx, ec)
		return nil
	}); err != nil {
		onErr(err)
		onDone()
		return
	}
	if ch == nil {
		onDone()
		return
	}
	go func() {
		if err, ok := <-ch; ok && err != nil {
			onErr(err)
		}
		onDone()
	}()
}

// safeCall converts a callback panic into an error so a misbehaving job
// cannot take the process down.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn()
}
