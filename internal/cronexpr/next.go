package cronexpr

import (
	"iter"
	"time"
)

// Occurrences are generated up to and including this year; beyond it the
// sequence ends.
const maxYear = 9999

// Anchor for week parity: Monday 2001-01-01 opens an odd week.
var parityRef = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// Upcoming yields the instants at or after base that satisfy the expression,
// in ascending order. Instants carry base's location. The sequence is lazy
// and may be ranged over any number of times; it is effectively infinite for
// most expressions (bounded only by year 9999).
func (e *Expression) Upcoming(base time.Time) iter.Seq[time.Time] {
	// Fires happen on second boundaries; a base inside a second rounds up.
	if ns := base.Nanosecond(); ns != 0 {
		base = base.Add(time.Second - time.Duration(ns))
	}

	return func(yield func(time.Time) bool) {
		by, bmo, bd := base.Date()
		bh, bmin, bs := base.Clock()
		loc := base.Location()

		startYear := by
		if startYear < 1 {
			startYear = 1
		}
		for year := startYear; year <= maxYear; year++ {
			sameYear := year == by
			for _, month := range e.months {
				// Values below base's are skipped only while every outer
				// field still equals base's; after a rollover they are valid
				// again. Same rule on each inner field.
				if sameYear && month < int(bmo) {
					continue
				}
				sameMonth := sameYear && month == int(bmo)
				last := daysIn(year, time.Month(month))
				for _, day := range e.days {
					if sameMonth && day < bd {
						continue
					}
					if day > last {
						continue
					}
					sameDay := sameMonth && day == bd
					for _, hour := range e.hours {
						if sameDay && hour < bh {
							continue
						}
						sameHour := sameDay && hour == bh
						for _, minute := range e.minutes {
							if sameHour && minute < bmin {
								continue
							}
							sameMinute := sameHour && minute == bmin
							for _, sec := range e.seconds {
								if sameMinute && sec < bs {
									continue
								}
								t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, loc)
								if !e.weekdayMatch(t) {
									continue
								}
								if !yield(t) {
									return
								}
							}
						}
					}
				}
			}
		}
	}
}

// First returns the first upcoming occurrence, if any.
func (e *Expression) First(base time.Time) (time.Time, bool) {
	for t := range e.Upcoming(base) {
		return t, true
	}
	return time.Time{}, false
}

// weekdayMatch applies the day-of-week filter: a candidate passes when its
// weekday is listed plainly, or listed with an ordinal/parity suffix whose
// condition the candidate's date meets.
func (e *Expression) weekdayMatch(t time.Time) bool {
	w := int(t.Weekday()) + 1 // Sunday=1 .. Saturday=7
	for _, v := range e.weekdays {
		switch {
		case v == w:
			return true
		case v == w+10 && firstOfMonth(t):
			return true
		case v == w+20 && lastOfMonth(t):
			return true
		case v == w+30 && oddWeek(t):
			return true
		case v == w+40 && !oddWeek(t):
			return true
		}
	}
	return false
}

// firstOfMonth reports whether t is the first occurrence of its weekday in
// its month.
func firstOfMonth(t time.Time) bool {
	return t.Day() <= 7
}

// lastOfMonth reports whether t is the last occurrence of its weekday in its
// month.
func lastOfMonth(t time.Time) bool {
	return t.Day() > daysIn(t.Year(), t.Month())-7
}

// oddWeek reports whether t's calendar date falls in an odd week of the
// 14-day parity cycle. Days are counted from the anchor Monday; the cycle
// extends symmetrically backwards, so remainders in [0,7) and below -7 are
// odd.
func oddWeek(t time.Time) bool {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int((midnight.Unix() - parityRef.Unix()) / 86400)
	r := days % 14
	return (r >= 0 && r < 7) || r < -7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
