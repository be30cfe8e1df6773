package puenktlich

import (
	"slices"
	"time"

	"github.com/glueckkanja/puenktlich/trigger"
)

// JobInfo is the external view of a registered job: read its state, pause
// and resume it, and mutate its trigger set. JobInfo values are cheap
// handles; all of them observe the same underlying registration.
type JobInfo struct {
	s *Scheduler
	j *job
}

// Data returns the job's identity value.
func (i *JobInfo) Data() any { return i.j.data }

// Paused reports whether firing is currently suppressed.
func (i *JobInfo) Paused() bool { return i.j.paused.Load() }

// Running reports whether the callback is executing right now.
func (i *JobInfo) Running() bool { return i.j.running.Load() }

// LastFireTime returns the instant of the most recent fire; ok is false if
// the job has never fired.
func (i *JobInfo) LastFireTime() (time.Time, bool) {
	t := i.j.lastFireTime()
	return t, !t.IsZero()
}

// NextFireTime returns the instant computed by the job's last refresh, which
// is what the timer is armed for while the scheduler runs. ok is false when
// that refresh found no upcoming occurrence, or when no refresh has run yet
// because the scheduler was never started. Stop disarms the timer but leaves
// the last computed instant in place.
func (i *JobInfo) NextFireTime() (time.Time, bool) {
	t := i.j.scheduledFireTime()
	return t, !t.IsZero()
}

// Pause suppresses firing without touching the registration or its
// triggers. A tick that was already in flight observes the flag and skips
// the callback; the missed occurrence is not replayed on Resume.
func (i *JobInfo) Pause() error {
	j := i.j
	j.paused.Store(true)
	j.timerMu.Lock()
	defer j.timerMu.Unlock()
	if j.timer == nil {
		return ErrJobDisposed
	}
	j.timer.Stop()
	return nil
}

// Resume lifts a pause and re-arms the job for its next occurrence.
func (i *JobInfo) Resume() {
	i.j.paused.Store(false)
	i.s.refreshJob(i.j)
}

// Triggers returns the job's mutable trigger set.
func (i *JobInfo) Triggers() *TriggerSet {
	return &TriggerSet{s: i.s, j: i.j}
}

// TriggerSet mutates a job's triggers. Every mutation recomputes the job's
// next fire, so adding an earlier trigger or removing the soonest one takes
// effect immediately.
type TriggerSet struct {
	s *Scheduler
	j *job
}

// All returns a snapshot of the current triggers, safe against concurrent
// mutation.
func (ts *TriggerSet) All() []trigger.Trigger {
	return ts.j.snapshotTriggers()
}

// Add appends a trigger to the job.
func (ts *TriggerSet) Add(t trigger.Trigger) {
	if t == nil {
		return
	}
	ts.j.trigMu.Lock()
	ts.j.triggers = append(ts.j.triggers, t)
	ts.j.trigMu.Unlock()
	ts.s.refreshJob(ts.j)
}

// Remove drops a trigger, compared by identity. It reports whether the
// trigger was present.
func (ts *TriggerSet) Remove(t trigger.Trigger) bool {
	ts.j.trigMu.Lock()
	idx := slices.IndexFunc(ts.j.triggers, func(x trigger.Trigger) bool { return x == t })
	if idx >= 0 {
		ts.j.triggers = slices.Delete(ts.j.triggers, idx, idx+1)
	}
	ts.j.trigMu.Unlock()
	if idx < 0 {
		return false
	}
	ts.s.refreshJob(ts.j)
	return true
}

// Clear removes every trigger. The job stays registered and can be re-armed
// by adding triggers later.
func (ts *TriggerSet) Clear() {
	ts.j.trigMu.Lock()
	ts.j.triggers = nil
	ts.j.trigMu.Unlock()
	ts.s.refreshJob(ts.j)
}
