// Package trigger defines the trigger contract of the scheduler and its
// three implementations.
//
// # Kinds
//
//   - Cron: fires per an extended six-field cron expression with seconds
//     resolution, ordinal (first/last weekday of month) and parity (odd/even
//     week) day-of-week qualifiers, and an optional target time zone.
//   - Now: fires exactly once, immediately.
//   - Manual: never fires; a placeholder registration.
//
// New resolves a textual expression to one of the kinds ("now", "manual",
// anything else is tried as cron).
//
// # Contract
//
// A trigger's Upcoming(base) is a lazy, non-decreasing sequence of instants
// at or after base. The scheduler pulls only the first element each time it
// recomputes a job's next fire. Triggers that can permanently run out also
// implement Exhaustible so the scheduler can drop them from the job.
//
// # Weekday numbering
//
// The cron dialect numbers weekdays Sunday=1 through Saturday=7. This is
// not ISO 8601 and is kept for compatibility with existing expressions.
package trigger
