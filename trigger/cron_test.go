package trigger

import (
	"testing"
	"time"
)

func TestNewCronInvalid(t *testing.T) {
	t.Parallel()
	if _, err := NewCron("* * * * *", nil); err == nil {
		t.Fatal("expected error for five-field expression")
	}
	if TryParseCron("not cron") {
		t.Fatal("TryParseCron accepted garbage")
	}
	if !TryParseCron("0 0 9 ? * 6L") {
		t.Fatal("TryParseCron rejected a valid expression")
	}
}

func TestCronKeepsSourceExpression(t *testing.T) {
	t.Parallel()
	const expr = "0 0/15 * * * ?"
	c, err := NewCron(expr, nil)
	if err != nil {
		t.Fatalf("NewCron error: %v", err)
	}
	if c.Expression() != expr {
		t.Fatalf("Expression = %q, want %q", c.Expression(), expr)
	}
	if c.Canonical() == "" {
		t.Fatal("Canonical is empty")
	}
}

func TestCronTargetZoneConversion(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+2", 2*60*60)
	c, err := NewCron("0 0 12 * * ?", loc)
	if err != nil {
		t.Fatalf("NewCron error: %v", err)
	}

	base := time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC)
	got, ok := first(c, base)
	if !ok {
		t.Fatal("no occurrence")
	}
	// Generation runs in the base's zone; the yielded instant is the same
	// point in time expressed in the target zone.
	want := time.Date(2020, time.June, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("first = %v, want instant %v", got, want)
	}
	if got.Location() != loc {
		t.Fatalf("location = %v, want %v", got.Location(), loc)
	}
	if got.Hour() != 14 {
		t.Fatalf("civil hour in target zone = %d, want 14", got.Hour())
	}
}
