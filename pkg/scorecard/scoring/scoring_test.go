package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_AtLeast(t *testing.T) {
	target := AtLeast{Value: 100000}

	assert.Equal(t, StatusGreen, Evaluate(100000, target), "exactly on target")
	assert.Equal(t, StatusGreen, Evaluate(250000, target))
	assert.Equal(t, StatusYellow, Evaluate(90000, target), "exactly 90%")
	assert.Equal(t, StatusYellow, Evaluate(95000, target))
	assert.Equal(t, StatusRed, Evaluate(89900, target), "89.9% is red")
	assert.Equal(t, StatusRed, Evaluate(0, target))
}

func TestEvaluate_AtMost(t *testing.T) {
	target := AtMost{Value: 50}

	assert.Equal(t, StatusGreen, Evaluate(50, target), "exactly on target")
	assert.Equal(t, StatusGreen, Evaluate(10, target))
	assert.Equal(t, StatusYellow, Evaluate(55, target), "exactly 110%")
	assert.Equal(t, StatusYellow, Evaluate(52, target))
	assert.Equal(t, StatusRed, Evaluate(55.1, target))
}

func TestEvaluate_Between(t *testing.T) {
	target := Between{Min: 10, Max: 20}

	assert.Equal(t, StatusGreen, Evaluate(10, target), "exactly at min")
	assert.Equal(t, StatusGreen, Evaluate(20, target), "exactly at max")
	assert.Equal(t, StatusGreen, Evaluate(15, target))

	// No yellow band for between: one unit outside either bound is red.
	assert.Equal(t, StatusRed, Evaluate(9, target))
	assert.Equal(t, StatusRed, Evaluate(21, target))
}

func TestEvaluate_YesNo(t *testing.T) {
	assert.Equal(t, StatusGreen, Evaluate(1, YesNo{Want: true}))
	assert.Equal(t, StatusRed, Evaluate(0, YesNo{Want: true}))
	assert.Equal(t, StatusGreen, Evaluate(0, YesNo{Want: false}))
	assert.Equal(t, StatusRed, Evaluate(1, YesNo{Want: false}))
}

func TestEvaluate_UnknownTargetPanics(t *testing.T) {
	assert.Panics(t, func() { Evaluate(1, nil) })
}

func TestPercentVsTarget(t *testing.T) {
	assert.InDelta(t, -5.0, PercentVsTarget(95000, AtLeast{Value: 100000}), 1e-9)
	assert.InDelta(t, 10.0, PercentVsTarget(110000, AtLeast{Value: 100000}), 1e-9)
	assert.InDelta(t, 0.0, PercentVsTarget(100000, AtLeast{Value: 100000}), 1e-9)

	assert.InDelta(t, 20.0, PercentVsTarget(60, AtMost{Value: 50}), 1e-9)
	assert.InDelta(t, -40.0, PercentVsTarget(30, AtMost{Value: 50}), 1e-9)

	// Between measures against the nearer bound; inside the range is 0.
	assert.InDelta(t, 0.0, PercentVsTarget(15, Between{Min: 10, Max: 20}), 1e-9)
	assert.InDelta(t, -20.0, PercentVsTarget(8, Between{Min: 10, Max: 20}), 1e-9)
	assert.InDelta(t, 25.0, PercentVsTarget(25, Between{Min: 10, Max: 20}), 1e-9)

	assert.InDelta(t, 0.0, PercentVsTarget(1, YesNo{Want: true}), 1e-9)
	assert.InDelta(t, -100.0, PercentVsTarget(0, YesNo{Want: true}), 1e-9)

	// Zero targets must not divide by zero.
	assert.InDelta(t, 0.0, PercentVsTarget(42, AtLeast{Value: 0}), 1e-9)
}

func TestParseValue_Numeric(t *testing.T) {
	for _, mode := range []Mode{ModeAtLeast, ModeAtMost, ModeBetween} {
		v, err := ParseValue("105000", mode)
		require.NoError(t, err)
		assert.Equal(t, 105000.0, v)

		v, err = ParseValue(" -12.5 ", mode)
		require.NoError(t, err)
		assert.Equal(t, -12.5, v)

		_, err = ParseValue("not-a-number", mode)
		assert.Error(t, err)

		_, err = ParseValue("NaN", mode)
		assert.Error(t, err)

		_, err = ParseValue("+Inf", mode)
		assert.Error(t, err)

		_, err = ParseValue("", mode)
		assert.Error(t, err)
	}
}

func TestParseValue_YesNo(t *testing.T) {
	for _, raw := range []string{"true", "TRUE", "1", "yes", "Yes"} {
		v, err := ParseValue(raw, ModeYesNo)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, 1.0, v, "input %q", raw)
	}
	for _, raw := range []string{"false", "0", "no", "No"} {
		v, err := ParseValue(raw, ModeYesNo)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, 0.0, v, "input %q", raw)
	}
	for _, raw := range []string{"maybe", "2", ""} {
		_, err := ParseValue(raw, ModeYesNo)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAtLeast, ModeAtMost, ModeBetween, ModeYesNo} {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("exactly")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(AtLeast{Value: 10}))
	assert.NoError(t, Validate(AtMost{Value: 10}))
	assert.NoError(t, Validate(YesNo{Want: true}))
	assert.NoError(t, Validate(Between{Min: 1, Max: 2}))

	assert.Error(t, Validate(Between{Min: 2, Max: 2}), "min == max")
	assert.Error(t, Validate(Between{Min: 3, Max: 2}), "min > max")
	assert.Error(t, Validate(nil))
}
