// Package puenktlich is an in-process job scheduler: it fires user-supplied
// callbacks at instants produced by one or more triggers.
//
// # Overview
//
// A job is registered under a data value together with a callback and at
// least one trigger. Each job owns a single-shot timer; the scheduler arms
// it for the earliest upcoming occurrence across the job's triggers,
// dispatches the callback when it fires, and re-arms after the callback
// completes. Triggers can be added and removed while the scheduler runs,
// jobs can be paused and resumed, and the whole scheduler can be started,
// stopped and closed under concurrent callers.
//
// # Job identity
//
// Jobs are keyed by their data value using Go map equality. The value must
// be comparable; for pointer types, equality is pointer identity, which can
// surprise callers who construct a fresh value per lookup. Using a string or
// small struct key avoids this.
//
// # Triggers
//
// See the trigger package: cron expressions in an extended six-field dialect
// (with first/last-weekday-of-month and odd/even-week qualifiers, weekdays
// numbered Sunday=1 through Saturday=7), plus the trivial "now" (fire once,
// immediately) and "manual" (never fire) triggers.
//
// # Concurrency
//
// Timer deliveries run on their own goroutines; different jobs fire
// concurrently, but a single job never overlaps itself because its timer is
// re-armed only after the callback finishes. Stop disarms future fires
// without signalling running callbacks; Close additionally releases all
// timers and fails every later operation.
//
// # Errors
//
// Callback errors are never fatal. They are wrapped in JobError and fanned
// out to SubscribeErrors subscribers; the job stays registered and fires
// again on its next occurrence.
package puenktlich
