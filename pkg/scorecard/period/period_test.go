package period

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCadence(t *testing.T) {
	for _, c := range Cadences {
		got, err := ParseCadence(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCadence("daily")
	assert.Error(t, err)

	_, err = ParseCadence("")
	assert.Error(t, err)
}

func TestCurrentStart_Weekly(t *testing.T) {
	// 2025-09-02 is a Tuesday; the week's Monday is 2025-09-01.
	ref := time.Date(2025, 9, 2, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-01", CurrentStart(CadenceWeekly, ref).String())

	// Monday maps to itself.
	monday := time.Date(2025, 9, 1, 0, 0, 1, 0, time.UTC)
	assert.Equal(t, "2025-09-01", CurrentStart(CadenceWeekly, monday).String())

	// Sunday steps back 6 days to the preceding Monday.
	sunday := time.Date(2025, 9, 7, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, "2025-09-01", CurrentStart(CadenceWeekly, sunday).String())

	// Week spanning a month boundary.
	ref = time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) // Wednesday
	assert.Equal(t, "2025-09-29", CurrentStart(CadenceWeekly, ref).String())
}

func TestCurrentStart_Monthly(t *testing.T) {
	ref := time.Date(2025, 9, 30, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-09-01", CurrentStart(CadenceMonthly, ref).String())

	ref = time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-02-01", CurrentStart(CadenceMonthly, ref).String())
}

func TestCurrentStart_Quarterly(t *testing.T) {
	cases := map[string]string{
		"2025-01-15": "2025-01-01",
		"2025-03-31": "2025-01-01",
		"2025-04-01": "2025-04-01",
		"2025-06-30": "2025-04-01",
		"2025-07-04": "2025-07-01",
		"2025-09-02": "2025-07-01",
		"2025-10-01": "2025-10-01",
		"2025-12-31": "2025-10-01",
	}
	for in, want := range cases {
		ref, err := time.Parse("2006-01-02", in)
		require.NoError(t, err)
		assert.Equal(t, want, CurrentStart(CadenceQuarterly, ref).String(), "ref %s", in)
	}
}

// Applying CurrentStart twice to any date within the same period returns the
// identical date.
func TestCurrentStart_Idempotent(t *testing.T) {
	ref := time.Date(2025, 11, 20, 8, 45, 0, 0, time.UTC)
	for _, c := range Cadences {
		first := CurrentStart(c, ref)
		second := CurrentStart(c, first.Time())
		assert.Equal(t, first, second, "cadence %s", c)
	}
}

func TestCurrentStart_UnknownCadencePanics(t *testing.T) {
	assert.Panics(t, func() {
		CurrentStart(Cadence("daily"), time.Now())
	})
}

func TestLastN(t *testing.T) {
	ref := time.Date(2025, 9, 2, 10, 0, 0, 0, time.UTC)

	spacing := map[Cadence]func(a, b Start) bool{
		CadenceWeekly: func(a, b Start) bool {
			return a.Time().AddDate(0, 0, -7).Equal(b.Time())
		},
		CadenceMonthly: func(a, b Start) bool {
			return a.Time().AddDate(0, -1, 0).Equal(b.Time())
		},
		CadenceQuarterly: func(a, b Start) bool {
			return a.Time().AddDate(0, -3, 0).Equal(b.Time())
		},
	}

	for _, c := range Cadences {
		got := LastN(c, 8, ref)
		require.Len(t, got, 8, "cadence %s", c)
		assert.Equal(t, CurrentStart(c, ref), got[0], "cadence %s", c)

		seen := map[string]bool{}
		for i, s := range got {
			assert.False(t, seen[s.String()], "duplicate period %s", s)
			seen[s.String()] = true
			if i > 0 {
				assert.True(t, got[i].Before(got[i-1]), "not strictly descending at %d", i)
				assert.True(t, spacing[c](got[i-1], got[i]), "wrong spacing at %d for %s", i, c)
			}
		}
	}
}

func TestLastN_One(t *testing.T) {
	ref := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	got := LastN(CadenceQuarterly, 1, ref)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-01", got[0].String())
}

func TestLastN_InvalidNPanics(t *testing.T) {
	assert.Panics(t, func() { LastN(CadenceWeekly, 0, time.Now()) })
}

// A canonical date string round-trips to the identical calendar date no
// matter which timezone the reference instant carries.
func TestRoundTrip_TimezoneIndependent(t *testing.T) {
	zones := []*time.Location{
		time.FixedZone("UTC-12", -12*3600),
		time.FixedZone("UTC-7", -7*3600),
		time.UTC,
		time.FixedZone("UTC+5:30", 5*3600+30*60),
		time.FixedZone("UTC+14", 14*3600),
	}

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 365; day += 11 {
		date := base.AddDate(0, 0, day)
		for _, zone := range zones {
			// Near-midnight instants are the classic drift case.
			ref := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 1, 0, zone)
			for _, c := range Cadences {
				start := CurrentStart(c, ref)
				parsed, err := Parse(start.String())
				require.NoError(t, err)
				assert.Equal(t, start, parsed,
					"cadence %s, zone %s, day %s", c, zone, date.Format("2006-01-02"))
			}
		}
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "2025-13-01", "2025-02-30", "09/02/2025", "2025-9-2", "garbage"} {
		_, err := Parse(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestStart_TextMarshaling(t *testing.T) {
	s := Start{Year: 2025, Month: time.September, Day: 1}
	text, err := s.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "2025-09-01", string(text))

	var back Start
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, s, back)

	assert.Error(t, back.UnmarshalText([]byte("not-a-date")))
}

func ExampleLastN() {
	ref := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	for _, s := range LastN(CadenceQuarterly, 3, ref) {
		fmt.Println(s)
	}
	// Output:
	// 2025-07-01
	// 2025-04-01
	// 2025-01-01
}
