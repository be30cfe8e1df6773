package puenktlich

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateJob is returned when scheduling under data that already
	// keys a job.
	ErrDuplicateJob = errors.New("puenktlich: job already scheduled")
	// ErrJobNotFound is returned by lookups and UnscheduleJob for unknown
	// data.
	ErrJobNotFound = errors.New("puenktlich: job not found")
	// ErrSchedulerClosed is returned by every operation after Close.
	ErrSchedulerClosed = errors.New("puenktlich: scheduler closed")
	// ErrJobDisposed is returned when mutating a job whose timer has been
	// released (the job was unscheduled or the scheduler closed).
	ErrJobDisposed = errors.New("puenktlich: job disposed")
)

// JobError wraps an error raised by a user callback together with the
// execution context of the fire that produced it. Callback errors are never
// fatal to the scheduler; they are delivered to error subscribers and the
// job stays registered.
type JobError struct {
	Context ExecutionContext
	Err     error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("puenktlich: job %v: %v", e.Context.Data, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// unwrapSingle collapses an aggregate error that holds exactly one inner
// error (errors.Join with a single member) into that inner error.
func unwrapSingle(err error) error {
	if agg, ok := err.(interface{ Unwrap() []error }); ok {
		if inner := agg.Unwrap(); len(inner) == 1 {
			return inner[0]
		}
	}
	return err
}
