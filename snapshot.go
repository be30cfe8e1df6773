package puenktlich

import (
	"fmt"
	"sort"
	"time"
)

// JobStatus is a point-in-time view of one registration.
type JobStatus struct {
	Data         any
	Paused       bool
	Running      bool
	NextFireTime time.Time // zero while unarmed
	LastFireTime time.Time // zero until the first fire
	Expressions  []string
}

// Snapshot is a point-in-time view of the scheduler.
type Snapshot struct {
	Running bool
	Jobs    []JobStatus
}

// Snapshot captures the registry without holding any lock across job reads.
// Jobs are ordered by the textual form of their data for stable output.
func (s *Scheduler) Snapshot() Snapshot {
	jobs := s.jobsSnapshot()
	items := make([]JobStatus, 0, len(jobs))
	for _, j := range jobs {
		trigs := j.snapshotTriggers()
		exprs := make([]string, 0, len(trigs))
		for _, tr := range trigs {
			exprs = append(exprs, tr.Expression())
		}
		items = append(items, JobStatus{
			Data:         j.data,
			Paused:       j.paused.Load(),
			Running:      j.running.Load(),
			NextFireTime: j.scheduledFireTime(),
			LastFireTime: j.lastFireTime(),
			Expressions:  exprs,
		})
	}
	sort.Slice(items, func(a, b int) bool {
		return fmt.Sprint(items[a].Data) < fmt.Sprint(items[b].Data)
	})
	return Snapshot{Running: s.running.Load(), Jobs: items}
}
