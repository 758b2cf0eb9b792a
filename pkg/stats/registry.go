package stats

import (
	"strings"

	"github.com/pkg/errors"
)

// Sample is one paired obs/model series with NaNs already removed.
type Sample struct {
	Obs []float64
	Mod []float64

	// Wind marks wind-direction variables: model-obs differences are wrapped
	// into [-180, 180] degrees before bias and error statistics.
	Wind bool
}

// Definition describes one statistic.
type Definition struct {
	Name     string
	FullName string
	Fn       func(s Sample) float64
}

var registry = []Definition{
	{"NO", "Obs Number", func(s Sample) float64 { return float64(len(s.Obs)) }},
	{"NP", "Mod Number", func(s Sample) float64 { return float64(len(s.Mod)) }},
	{"MO", "Obs Mean", func(s Sample) float64 { return mean(s.Obs) }},
	{"MP", "Mod Mean", func(s Sample) float64 { return mean(s.Mod) }},
	{"MdnO", "Obs Median", func(s Sample) float64 { return median(s.Obs) }},
	{"MdnP", "Mod Median", func(s Sample) float64 { return median(s.Mod) }},
	{"STDO", "Obs Standard Deviation", func(s Sample) float64 { return std(s.Obs) }},
	{"STDP", "Mod Standard Deviation", func(s Sample) float64 { return std(s.Mod) }},
	{"MB", "Mean Bias", meanBias},
	{"MdnB", "Median Bias", func(s Sample) float64 { return median(s.diffs()) }},
	{"NMB", "Normalized Mean Bias (%)", normalizedMeanBias},
	{"NMdnB", "Normalized Median Bias (%)", normalizedMedianBias},
	{"FB", "Fractional Bias (%)", fractionalBias},
	{"ME", "Mean Gross Error", func(s Sample) float64 { return mean(s.absDiffs()) }},
	{"MdnE", "Median Gross Error", func(s Sample) float64 { return median(s.absDiffs()) }},
	{"NME", "Normalized Mean Error (%)", normalizedMeanError},
	{"FE", "Fractional Error (%)", fractionalError},
	{"R2", "Coefficient of Determination (R2)", rSquared},
	{"RMSE", "Root Mean Square Error", rootMeanSquareError},
	{"IOA", "Index of Agreement", indexOfAgreement},
	{"AC", "Anomaly Correlation", anomalyCorrelation},
}

var byName = func() map[string]Definition {
	m := make(map[string]Definition, len(registry))
	for _, def := range registry {
		m[def.Name] = def
	}

	return m
}()

// Known reports whether name is a registered statistic.
func Known(name string) bool {
	_, ok := byName[name]

	return ok
}

// FullName returns the display name of the statistic. When spaces is false,
// spaces are replaced by underscores, which is the form used in CSV output.
func FullName(name string, spaces bool) (string, error) {
	def, ok := byName[name]
	if !ok {
		return "", errors.Errorf("unknown statistic %q", name)
	}
	if spaces {
		return def.FullName, nil
	}

	return strings.ReplaceAll(def.FullName, " ", "_"), nil
}

// FullNames maps a stat list to display names.
func FullNames(names []string, spaces bool) ([]string, error) {
	out := make([]string, len(names))
	for i, name := range names {
		full, err := FullName(name, spaces)
		if err != nil {
			return nil, err
		}
		out[i] = full
	}

	return out, nil
}

// Calc computes the named statistic on the sample.
func Calc(name string, s Sample) (float64, error) {
	def, ok := byName[name]
	if !ok {
		return 0, errors.Errorf("unknown statistic %q", name)
	}
	if len(s.Obs) != len(s.Mod) {
		return 0, errors.Errorf("statistic %q: obs and mod lengths differ (%d != %d)", name, len(s.Obs), len(s.Mod))
	}

	return def.Fn(s), nil
}
