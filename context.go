package puenktlich

import (
	"time"

	"github.com/google/uuid"
)

// ExecutionContext describes one fire of a job. It is passed by value to the
// callback and to error subscribers; the scheduler fills every field.
type ExecutionContext struct {
	// ExecutionID uniquely identifies this fire.
	ExecutionID uuid.UUID
	// ScheduledFireTime is the instant the timer was armed for.
	ScheduledFireTime time.Time
	// ActualFireTime is the instant the callback was invoked.
	ActualFireTime time.Time
	// Data is the job's identity value as passed to ScheduleJob.
	Data any
}
