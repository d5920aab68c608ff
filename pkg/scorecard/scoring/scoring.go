// Package scoring classifies recorded metric values against their targets.
// Targets are a sealed tagged union so that exactly the fields belonging to a
// metric's scoring mode exist; the persistence layer converts to and from the
// flat column form at its boundary.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Status is the classification of a single recorded value.
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// Mode identifies the comparison policy of a target.
type Mode string

const (
	ModeAtLeast Mode = "at_least"
	ModeAtMost  Mode = "at_most"
	ModeBetween Mode = "between"
	ModeYesNo   Mode = "yes_no"
)

// ParseMode validates and returns a mode from its string form.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAtLeast, ModeAtMost, ModeBetween, ModeYesNo:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown scoring mode %q", s)
}

// Target is a metric's scoring configuration. Implementations are AtLeast,
// AtMost, Between, and YesNo; the interface is sealed.
type Target interface {
	Mode() Mode
	sealed()
}

// AtLeast scores higher values as better.
type AtLeast struct {
	Value float64
}

// AtMost scores lower values as better.
type AtMost struct {
	Value float64
}

// Between scores values inside the inclusive [Min, Max] range as green.
// There is no yellow band: exact-range semantics only.
type Between struct {
	Min float64
	Max float64
}

// YesNo scores a boolean observation against the expected answer.
type YesNo struct {
	Want bool
}

func (AtLeast) Mode() Mode { return ModeAtLeast }
func (AtMost) Mode() Mode  { return ModeAtMost }
func (Between) Mode() Mode { return ModeBetween }
func (YesNo) Mode() Mode   { return ModeYesNo }

func (AtLeast) sealed() {}
func (AtMost) sealed()  {}
func (Between) sealed() {}
func (YesNo) sealed()   {}

// yellowTolerance is the near-miss band for at_least and at_most modes.
// Between intentionally has none; the modes differ by design.
const yellowTolerance = 0.1

// Evaluate classifies value against the target. It is a pure function of the
// value and the target fields; every rendering path must use it so that a
// cell and a table never disagree. A nil or unknown target is a programming
// error and panics.
func Evaluate(value float64, target Target) Status {
	switch t := target.(type) {
	case AtLeast:
		switch {
		case value >= t.Value:
			return StatusGreen
		case value >= (1-yellowTolerance)*t.Value:
			return StatusYellow
		default:
			return StatusRed
		}
	case AtMost:
		switch {
		case value <= t.Value:
			return StatusGreen
		case value <= (1+yellowTolerance)*t.Value:
			return StatusYellow
		default:
			return StatusRed
		}
	case Between:
		if value >= t.Min && value <= t.Max {
			return StatusGreen
		}
		return StatusRed
	case YesNo:
		if (value != 0) == t.Want {
			return StatusGreen
		}
		return StatusRed
	default:
		panic(fmt.Sprintf("scoring: unknown target %T", target))
	}
}

// PercentVsTarget returns the signed percentage distance of value from its
// target. For between targets the distance is measured against the nearer
// bound; values inside the range report 0. Yes/no targets report 0 on a
// match and -100 on a mismatch.
func PercentVsTarget(value float64, target Target) float64 {
	switch t := target.(type) {
	case AtLeast:
		return percentOff(value, t.Value)
	case AtMost:
		return percentOff(value, t.Value)
	case Between:
		if value >= t.Min && value <= t.Max {
			return 0
		}
		if value < t.Min {
			return percentOff(value, t.Min)
		}
		return percentOff(value, t.Max)
	case YesNo:
		if (value != 0) == t.Want {
			return 0
		}
		return -100
	default:
		panic(fmt.Sprintf("scoring: unknown target %T", target))
	}
}

// percentOff computes (value - target) / target * 100, guarding a zero target.
func percentOff(value, target float64) float64 {
	if target == 0 {
		return 0
	}
	return (value - target) / target * 100
}

// ParseValue parses a raw entry value for the given mode. Boolean modes
// accept true/1/yes and false/0/no (case-insensitive) and store 1 or 0;
// numeric modes parse a finite float.
func ParseValue(raw string, mode Mode) (float64, error) {
	raw = strings.TrimSpace(raw)

	if mode == ModeYesNo {
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			return 1, nil
		case "false", "0", "no":
			return 0, nil
		}
		return 0, fmt.Errorf("value %q is not a yes/no answer", raw)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not a number", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("value %q is not a finite number", raw)
	}
	return v, nil
}

// Validate checks that the target fields are coherent for their mode.
func Validate(target Target) error {
	switch t := target.(type) {
	case AtLeast, AtMost, YesNo:
		return nil
	case Between:
		if t.Min >= t.Max {
			return fmt.Errorf("between target requires min < max (got min=%v, max=%v)", t.Min, t.Max)
		}
		return nil
	case nil:
		return fmt.Errorf("scoring target is required")
	default:
		return fmt.Errorf("unknown scoring target %T", target)
	}
}
