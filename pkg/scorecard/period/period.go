// Package period computes canonical period-start dates for metric cadences.
// All functions operate on calendar dates (year, month, day); no result ever
// depends on the host's local timezone.
package period

import (
	"fmt"
	"time"
)

// Cadence is the repetition interval of a metric.
type Cadence string

const (
	CadenceWeekly    Cadence = "weekly"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
)

// Cadences lists all valid cadences.
var Cadences = []Cadence{CadenceWeekly, CadenceMonthly, CadenceQuarterly}

// ParseCadence validates and returns a cadence from its string form.
func ParseCadence(s string) (Cadence, error) {
	switch Cadence(s) {
	case CadenceWeekly, CadenceMonthly, CadenceQuarterly:
		return Cadence(s), nil
	}
	return "", fmt.Errorf("unknown cadence %q (expected weekly, monthly, or quarterly)", s)
}

// Start is a canonical period-start calendar date. The zero value is not a
// valid Start.
type Start struct {
	Year  int
	Month time.Month
	Day   int
}

// canonicalLayout is the wire and storage form of a Start.
const canonicalLayout = "2006-01-02"

// String returns the canonical YYYY-MM-DD form.
func (s Start) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", s.Year, int(s.Month), s.Day)
}

// Parse parses a canonical YYYY-MM-DD date string. Parsing is done in UTC so
// the result is the identical calendar date regardless of the host timezone.
func Parse(value string) (Start, error) {
	t, err := time.ParseInLocation(canonicalLayout, value, time.UTC)
	if err != nil {
		return Start{}, fmt.Errorf("invalid period start %q: %w", value, err)
	}
	return FromTime(t), nil
}

// FromTime returns the calendar date of t in t's own location.
func FromTime(t time.Time) Start {
	y, m, d := t.Date()
	return Start{Year: y, Month: m, Day: d}
}

// Time returns the Start as midnight UTC. Used only for date arithmetic.
func (s Start) Time() time.Time {
	return time.Date(s.Year, s.Month, s.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether s is an earlier calendar date than o.
func (s Start) Before(o Start) bool {
	return s.Time().Before(o.Time())
}

// MarshalText implements encoding.TextMarshaler.
func (s Start) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Start) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CurrentStart returns the canonical start of the period containing ref.
//
//   - weekly: the Monday of ref's week (a Sunday steps back 6 days)
//   - monthly: the first day of ref's month
//   - quarterly: the first day of ref's quarter (Jan, Apr, Jul, Oct)
//
// An unknown cadence is a programming error and panics.
func CurrentStart(c Cadence, ref time.Time) Start {
	y, m, d := ref.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	switch c {
	case CadenceWeekly:
		offset := int(date.Weekday()) - int(time.Monday)
		if date.Weekday() == time.Sunday {
			offset = 6
		}
		return FromTime(date.AddDate(0, 0, -offset))
	case CadenceMonthly:
		return Start{Year: y, Month: m, Day: 1}
	case CadenceQuarterly:
		quarterMonth := time.Month((int(m)-1)/3*3 + 1)
		return Start{Year: y, Month: quarterMonth, Day: 1}
	default:
		panic(fmt.Sprintf("period: unknown cadence %q", c))
	}
}

// LastN returns the n most recent period starts for the cadence, newest
// first, beginning with CurrentStart(c, ref). n must be >= 1.
func LastN(c Cadence, n int, ref time.Time) []Start {
	if n < 1 {
		panic(fmt.Sprintf("period: LastN called with n=%d", n))
	}

	starts := make([]Start, 0, n)
	current := CurrentStart(c, ref)
	starts = append(starts, current)

	for i := 1; i < n; i++ {
		starts = append(starts, step(c, current, -i))
	}
	return starts
}

// step moves a period start by whole cadence steps (negative is backward).
func step(c Cadence, from Start, steps int) Start {
	t := from.Time()
	switch c {
	case CadenceWeekly:
		return FromTime(t.AddDate(0, 0, 7*steps))
	case CadenceMonthly:
		return FromTime(t.AddDate(0, steps, 0))
	case CadenceQuarterly:
		return FromTime(t.AddDate(0, 3*steps, 0))
	default:
		panic(fmt.Sprintf("period: unknown cadence %q", c))
	}
}
