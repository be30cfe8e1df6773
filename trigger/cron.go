package trigger

import (
	"iter"
	"time"

	"github.com/glueckkanja/puenktlich/internal/cronexpr"
)

// Cron fires according to an extended six-field cron expression
// (seconds minutes hours day-of-month month day-of-week).
//
// Weekday numbering is Sunday=1 through Saturday=7, and day-of-week items
// accept the suffixes F (first such weekday of the month), L (last), O (odd
// week) and E (even week). The full grammar is documented on the internal
// cronexpr package that parses it.
type Cron struct {
	source string
	expr   *cronexpr.Expression
	loc    *time.Location
}

// NewCron parses expression and returns the trigger. When loc is non-nil,
// every occurrence is converted to that location before it is yielded;
// otherwise occurrences keep the base instant's location. Generation itself
// always runs in the base's location.
func NewCron(expression string, loc *time.Location) (*Cron, error) {
	expr, err := cronexpr.Parse(expression)
	if err != nil {
		return nil, err
	}
	return &Cron{source: expression, expr: expr, loc: loc}, nil
}

// TryParseCron reports whether expression is a valid cron expression for
// this dialect.
func TryParseCron(expression string) bool {
	_, ok := cronexpr.TryParse(expression)
	return ok
}

func (c *Cron) Expression() string { return c.source }

// Canonical returns the canonical numeric form of the parsed expression.
func (c *Cron) Canonical() string { return c.expr.String() }

func (c *Cron) Upcoming(base time.Time) iter.Seq[time.Time] {
	seq := c.expr.Upcoming(base)
	if c.loc == nil {
		return seq
	}
	return func(yield func(time.Time) bool) {
		for t := range seq {
			if !yield(t.In(c.loc)) {
				return
			}
		}
	}
}
