// Package aggregate computes derived figures over a metric's entry history.
// All functions are pure; "no data" outcomes are reported through an explicit
// ok flag so that callers can distinguish a missing result from a zero.
package aggregate

// Average returns the arithmetic mean of values. The second return is false
// when values is empty; an average of zero and "no data" are distinct.
func Average(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

// Change returns the period-over-period percent change from previous to
// current: (current - previous) / previous * 100. The second return is false
// when previous is zero; a zero previous has no meaningful percent change and
// must not produce an infinity.
func Change(current, previous float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous * 100, true
}

// Trend is the up/down/flat direction shown in list summaries.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// Trend comparison thresholds: recent vs prior three-period means.
const (
	trendUpRatio   = 1.05
	trendDownRatio = 0.95
)

// ClassifyTrend compares the mean of the three most recent periods against
// the mean of the three before them. values must be ordered newest first.
// Fewer than six periods of history is undefined and reports flat by
// convention, as does a zero prior mean.
func ClassifyTrend(values []float64) Trend {
	if len(values) < 6 {
		return TrendFlat
	}

	recent, _ := Average(values[0:3])
	prior, _ := Average(values[3:6])

	if prior == 0 {
		return TrendFlat
	}

	ratio := recent / prior
	switch {
	case ratio >= trendUpRatio:
		return TrendUp
	case ratio <= trendDownRatio:
		return TrendDown
	default:
		return TrendFlat
	}
}
