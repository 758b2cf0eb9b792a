package dataset

import (
	"math"

	"github.com/pkg/errors"
)

// Rule is the masking and unit-conversion rule for one variable.
type Rule struct {
	ObsMin   *float64
	ObsMax   *float64
	NaNValue *float64

	Scale  float64
	Method string // one of * / + -
}

// MaskAndScale applies the rules to the matching variable columns in place.
// Masking runs first, in the units of the file, then the unit conversion.
func MaskAndScale(f *Frame, rules map[string]Rule) error {
	for name, rule := range rules {
		col, ok := f.Vars[name]
		if !ok {
			continue
		}

		for i, v := range col {
			switch {
			case rule.ObsMin != nil && v < *rule.ObsMin:
				col[i] = math.NaN()
			case rule.ObsMax != nil && v > *rule.ObsMax:
				col[i] = math.NaN()
			case rule.NaNValue != nil && v == *rule.NaNValue:
				col[i] = math.NaN()
			}
		}

		if rule.Method == "" {
			continue
		}
		scale := rule.Scale
		if scale == 0 {
			scale = 1
		}
		for i, v := range col {
			switch rule.Method {
			case "*":
				col[i] = v * scale
			case "/":
				col[i] = v / scale
			case "+":
				col[i] = v + scale
			case "-":
				col[i] = v - scale
			default:
				return errors.Errorf("variable %s: unknown unit scale method %q", name, rule.Method)
			}
		}
	}

	return nil
}
