// Package cronexpr implements the extended six-field cron dialect used by
// the scheduler's cron trigger.
//
// A specification has the field order
//
//	seconds minutes hours day-of-month month day-of-week
//
// Each field is a comma-separated list of items: "*", "?" (day fields only),
// single values, ranges "a-b", and step forms "base/step". Month names
// JAN..DEC and weekday names SUN..SAT are accepted in their fields.
//
// Weekday numbering is Sunday=1 through Saturday=7 (not ISO 8601). Day-of-week
// items additionally accept an ordinal or parity suffix: F (first such weekday
// of the month), L (last), O (odd week), E (even week). Week parity follows a
// 14-day cycle anchored at Monday 2001-01-01, which counts as odd.
package cronexpr

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Expression is a parsed cron specification: one sorted, deduplicated value
// set per field. Day-of-week values carry the suffix encoding in the tens
// digit (F adds 10, L adds 20, O adds 30, E adds 40).
type Expression struct {
	seconds  []int
	minutes  []int
	hours    []int
	days     []int
	months   []int
	weekdays []int
}

// Cheap shape check before field parsing. Anything that fails this is not a
// six-field expression at all.
var exprPattern = regexp.MustCompile(`^([\*\?\-,/0-9A-Za-z]+( +|$)){6}$`)

type fieldSpec struct {
	name        string
	min, max    int
	names       map[string]int
	allowQuery  bool
	allowSuffix bool
}

var (
	secondsField = fieldSpec{name: "seconds", min: 0, max: 59}
	minutesField = fieldSpec{name: "minutes", min: 0, max: 59}
	hoursField   = fieldSpec{name: "hours", min: 0, max: 23}
	daysField    = fieldSpec{name: "day-of-month", min: 1, max: 31, allowQuery: true}
	monthsField  = fieldSpec{name: "month", min: 1, max: 12, names: monthNames}
	weekdayField = fieldSpec{name: "day-of-week", min: 1, max: 7, names: weekdayNames, allowQuery: true, allowSuffix: true}
)

var monthNames = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// Sunday=1 .. Saturday=7.
var weekdayNames = map[string]int{
	"SUN": 1, "MON": 2, "TUE": 3, "WED": 4, "THU": 5, "FRI": 6, "SAT": 7,
}

var suffixOffsets = map[byte]int{'F': 10, 'L': 20, 'O': 30, 'E': 40}

// Parse parses a six-field cron expression.
func Parse(expr string) (*Expression, error) {
	s := strings.TrimSpace(expr)
	if !exprPattern.MatchString(s) {
		return nil, fmt.Errorf("cronexpr: malformed expression %q", expr)
	}
	fields := strings.Fields(s)
	if len(fields) != 6 {
		return nil, fmt.Errorf("cronexpr: expected 6 fields, got %d in %q", len(fields), expr)
	}

	e := &Expression{}
	var err error
	if e.seconds, err = parseField(fields[0], secondsField); err != nil {
		return nil, err
	}
	if e.minutes, err = parseField(fields[1], minutesField); err != nil {
		return nil, err
	}
	if e.hours, err = parseField(fields[2], hoursField); err != nil {
		return nil, err
	}
	if e.days, err = parseField(fields[3], daysField); err != nil {
		return nil, err
	}
	if e.months, err = parseField(fields[4], monthsField); err != nil {
		return nil, err
	}
	if e.weekdays, err = parseField(fields[5], weekdayField); err != nil {
		return nil, err
	}
	return e, nil
}

// TryParse is Parse without the error detail; ok is false on any parse
// failure.
func TryParse(expr string) (*Expression, bool) {
	e, err := Parse(expr)
	return e, err == nil
}

// String renders the expression in canonical numeric form. Re-parsing the
// result yields the same value sets: encoded day-of-week values (e.g. 26 for
// "6L") are within that field's legal domain and survive the round trip.
func (e *Expression) String() string {
	fields := []string{
		joinValues(e.seconds),
		joinValues(e.minutes),
		joinValues(e.hours),
		joinValues(e.days),
		joinValues(e.months),
		joinValues(e.weekdays),
	}
	return strings.Join(fields, " ")
}

func joinValues(vals []int) string {
	var b strings.Builder
	for i, v := range vals {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

func parseField(raw string, f fieldSpec) ([]int, error) {
	s := raw
	if f.allowQuery {
		s = strings.ReplaceAll(s, "?", "*")
	}
	// A bare "/step" means "*/step".
	if strings.HasPrefix(s, "/") {
		s = "*" + s
	}
	s = strings.ReplaceAll(s, "*", fmt.Sprintf("%d-%d", f.min, f.max))
	for name, val := range f.names {
		s = strings.ReplaceAll(s, name, strconv.Itoa(val))
	}

	var out []int
	for _, item := range strings.Split(s, ",") {
		vals, err := parseItem(item, f)
		if err != nil {
			return nil, err
		}
		out = append(out, vals...)
	}

	out = slices.DeleteFunc(out, func(v int) bool { return !f.legal(v) })
	if len(out) == 0 {
		return nil, fmt.Errorf("cronexpr: %s field %q has no values in range", f.name, raw)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

func parseItem(item string, f fieldSpec) ([]int, error) {
	base, step, hasStep := strings.Cut(item, "/")

	var vals []int
	if lo, hi, isRange := strings.Cut(base, "-"); isRange {
		a, err := parsePlain(lo, f)
		if err != nil {
			return nil, err
		}
		b, err := parsePlain(hi, f)
		if err != nil {
			return nil, err
		}
		if a > b {
			return nil, fmt.Errorf("cronexpr: %s range %q is descending", f.name, item)
		}
		for v := a; v <= b; v++ {
			vals = append(vals, v)
		}
	} else {
		v, err := parseValue(base, f)
		if err != nil {
			return nil, err
		}
		vals = []int{v}
	}

	if hasStep {
		k, err := strconv.Atoi(step)
		if err != nil || k <= 0 {
			return nil, fmt.Errorf("cronexpr: %s step %q is not a positive integer", f.name, item)
		}
		// A single value with a step opens the range up to 59; the domain
		// filter afterwards trims fields with a smaller maximum.
		lo, hi := vals[0], vals[len(vals)-1]
		if len(vals) == 1 {
			hi = 59
		}
		vals = vals[:0]
		for v := lo; v <= hi; v += k {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

// parsePlain parses a bare integer (range endpoints and step operands take
// no weekday suffix).
func parsePlain(s string, f fieldSpec) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cronexpr: %s value %q is not numeric", f.name, s)
	}
	return v, nil
}

// parseValue parses a single value with an optional trailing weekday suffix.
func parseValue(s string, f fieldSpec) (int, error) {
	offset := 0
	if f.allowSuffix && len(s) > 1 {
		if o, ok := suffixOffsets[s[len(s)-1]]; ok {
			offset = o
			s = s[:len(s)-1]
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("cronexpr: %s value %q is not numeric", f.name, s)
	}
	return v + offset, nil
}

// legal reports whether v is inside the field's domain. For day-of-week the
// domain includes the suffix-encoded bands 11..17, 21..27, 31..37 and 41..47.
func (f fieldSpec) legal(v int) bool {
	if f.allowSuffix {
		return v%10 >= 1 && v%10 <= 7 && v/10 >= 0 && v/10 <= 4
	}
	return v >= f.min && v <= f.max
}
