package cronexpr

import (
	"slices"
	"testing"
)

func TestParseFieldSets(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		expr string
		want map[string][]int // field name -> expected set (omitted fields unchecked)
	}{
		{
			name: "wildcards",
			expr: "* * * * * ?",
			want: map[string][]int{
				"hours":    rangeOf(0, 23),
				"months":   rangeOf(1, 12),
				"weekdays": rangeOf(1, 7),
			},
		},
		{
			name: "step with offset",
			expr: "0 0/15 * * * ?",
			want: map[string][]int{
				"seconds": {0},
				"minutes": {0, 15, 30, 45},
			},
		},
		{
			name: "step on hours capped by domain",
			expr: "0 0 0/6 * * ?",
			want: map[string][]int{"hours": {0, 6, 12, 18}},
		},
		{
			name: "bare step",
			expr: "/20 * * * * ?",
			want: map[string][]int{"seconds": {0, 20, 40}},
		},
		{
			name: "range with step",
			expr: "0 10-40/10 * * * ?",
			want: map[string][]int{"minutes": {10, 20, 30, 40}},
		},
		{
			name: "list and range",
			expr: "0 0 0 1,15,20-22 * ?",
			want: map[string][]int{"days": {1, 15, 20, 21, 22}},
		},
		{
			name: "month names",
			expr: "0 0 0 1 JAN,JUL ?",
			want: map[string][]int{"months": {1, 7}},
		},
		{
			name: "weekday name range",
			expr: "0 0 9 ? * MON-FRI",
			want: map[string][]int{"weekdays": {2, 3, 4, 5, 6}},
		},
		{
			name: "weekday suffixes",
			expr: "0 0 9 ? * 2F,6L,3O,4E",
			want: map[string][]int{"weekdays": {12, 26, 33, 44}},
		},
		{
			name: "duplicates collapse",
			expr: "0,0,0 0 0 1,1 * ?",
			want: map[string][]int{"seconds": {0}, "days": {1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.expr, err)
			}
			got := map[string][]int{
				"seconds":  e.seconds,
				"minutes":  e.minutes,
				"hours":    e.hours,
				"days":     e.days,
				"months":   e.months,
				"weekdays": e.weekdays,
			}
			for field, want := range tt.want {
				if !slices.Equal(got[field], want) {
					t.Fatalf("%s = %v, want %v", field, got[field], want)
				}
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		expr string
	}{
		{name: "empty", expr: ""},
		{name: "five fields", expr: "* * * * *"},
		{name: "seven fields", expr: "* * * * * * *"},
		{name: "non numeric", expr: "a * * * * ?"},
		{name: "query in seconds", expr: "? * * * * ?"},
		{name: "out of range second", expr: "60 * * * * ?"},
		{name: "out of range weekday", expr: "* * * * * 8"},
		{name: "unknown month name", expr: "0 0 0 1 JANUARY ?"},
		{name: "lowercase month name", expr: "0 0 0 1 jan ?"},
		{name: "suffix outside weekday field", expr: "5F * * * * ?"},
		{name: "unknown suffix", expr: "* * * ? * 2X"},
		{name: "descending range", expr: "0 30-10 * * * ?"},
		{name: "zero step", expr: "0 */0 * * * ?"},
		{name: "illegal characters", expr: "0 0 0 1 * ?!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Parse(tt.expr); err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.expr)
			}
			if _, ok := TryParse(tt.expr); ok {
				t.Fatalf("TryParse(%q) ok, want failure", tt.expr)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	t.Parallel()
	exprs := []string{
		"* * * * * ?",
		"0 0/15 * * * ?",
		"0 0 9 ? * 6L",
		"0 0 9 ? * 2F,3O",
		"0 0 0 1 JAN,JUL ?",
		"30 5 8-17 1,15 * MON-FRI",
	}
	for _, expr := range exprs {
		e, err := Parse(expr)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", expr, err)
		}
		again, err := Parse(e.String())
		if err != nil {
			t.Fatalf("re-Parse(%q) error: %v", e.String(), err)
		}
		if !equalSets(e, again) {
			t.Fatalf("round trip of %q changed sets: %q", expr, again.String())
		}
	}
}

func equalSets(a, b *Expression) bool {
	return slices.Equal(a.seconds, b.seconds) &&
		slices.Equal(a.minutes, b.minutes) &&
		slices.Equal(a.hours, b.hours) &&
		slices.Equal(a.days, b.days) &&
		slices.Equal(a.months, b.months) &&
		slices.Equal(a.weekdays, b.weekdays)
}

func rangeOf(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		out = append(out, v)
	}
	return out
}
