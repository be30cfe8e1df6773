package trigger

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"
)

// Common cron expressions in the scheduler's six-field dialect.
const (
	EverySecond = "* * * * * ?"
	EveryMinute = "0 * * * * ?"
	EveryHour   = "0 0 * * * ?"
	EveryDay    = "0 0 0 * * ?"
	EveryMonth  = "0 0 0 1 * ?"
)

// ErrUnknownExpression is returned by New for expressions no trigger kind
// recognizes.
var ErrUnknownExpression = errors.New("unknown trigger expression")

// A Trigger emits a lazy, ascending sequence of future fire instants.
//
// The scheduler consumes only the first element per refresh; implementations
// must support Upcoming being called any number of times without leaking
// state between calls, except where the trigger's semantics require it (Now
// records that it has emitted once).
type Trigger interface {
	// Expression returns the trigger's textual form.
	Expression() string
	// Upcoming yields fire instants t >= base in non-decreasing order. An
	// empty sequence means no further firings.
	Upcoming(base time.Time) iter.Seq[time.Time]
}

// Exhaustible is implemented by triggers that can permanently run out of
// occurrences. The scheduler removes a trigger from its job once Upcoming is
// empty and Exhausted reports true; a trigger without this capability (e.g.
// Manual) stays registered even though it never fires.
type Exhaustible interface {
	Exhausted() bool
}

const (
	nowExpression    = "now"
	manualExpression = "manual"
)

// New resolves an expression to a trigger: "now", "manual", then the cron
// dialect. Unrecognized expressions fail with ErrUnknownExpression.
func New(expression string) (Trigger, error) {
	switch strings.TrimSpace(expression) {
	case nowExpression:
		return NewNow(), nil
	case manualExpression:
		return NewManual(), nil
	}
	c, err := NewCron(expression, nil)
	if err == nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownExpression, expression)
}

// Now is a one-shot trigger. It fires exactly once, at the base instant of
// the first Upcoming query that consumes it, and is exhausted afterwards.
type Now struct {
	mu    sync.Mutex
	fired bool
}

// NewNow returns an unfired one-shot trigger.
func NewNow() *Now { return &Now{} }

func (n *Now) Expression() string { return nowExpression }

func (n *Now) Upcoming(base time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		n.mu.Lock()
		if n.fired {
			n.mu.Unlock()
			return
		}
		n.fired = true
		n.mu.Unlock()
		yield(base)
	}
}

func (n *Now) Exhausted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.fired
}

// Manual never fires. It exists so a job can be registered without any
// schedule and keep its registration until triggers are added.
type Manual struct{}

// NewManual returns a trigger that never fires.
func NewManual() *Manual { return &Manual{} }

func (*Manual) Expression() string { return manualExpression }

func (*Manual) Upcoming(time.Time) iter.Seq[time.Time] {
	return func(func(time.Time) bool) {}
}
