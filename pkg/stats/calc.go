package stats

import (
	"math"
	"sort"
)

// wrapDegrees maps an angular difference into [-180, 180].
func wrapDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	switch {
	case d > 180:
		d -= 360
	case d < -180:
		d += 360
	}

	return d
}

// diffs returns mod-obs differences, wrapped for wind directions.
func (s Sample) diffs() []float64 {
	out := make([]float64, len(s.Obs))
	for i := range s.Obs {
		d := s.Mod[i] - s.Obs[i]
		if s.Wind {
			d = wrapDegrees(d)
		}
		out[i] = d
	}

	return out
}

func (s Sample) absDiffs() []float64 {
	out := s.diffs()
	for i, d := range out {
		out[i] = math.Abs(d)
	}

	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}

	return sorted[mid]
}

func std(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}

	return math.Sqrt(sum / float64(len(values)))
}

func meanBias(s Sample) float64 {
	return mean(s.diffs())
}

func normalizedMeanBias(s Sample) float64 {
	var sumObs float64
	for _, o := range s.Obs {
		sumObs += o
	}
	if sumObs == 0 {
		return math.NaN()
	}
	var sumDiff float64
	for _, d := range s.diffs() {
		sumDiff += d
	}

	return sumDiff / sumObs * 100
}

func normalizedMedianBias(s Sample) float64 {
	mdnObs := median(s.Obs)
	if mdnObs == 0 {
		return math.NaN()
	}

	return (median(s.Mod) - mdnObs) / mdnObs * 100
}

func fractionalBias(s Sample) float64 {
	if len(s.Obs) == 0 {
		return math.NaN()
	}
	var sum float64
	var n int
	for i := range s.Obs {
		denom := s.Mod[i] + s.Obs[i]
		if denom == 0 {
			continue
		}
		sum += (s.Mod[i] - s.Obs[i]) / denom
		n++
	}
	if n == 0 {
		return math.NaN()
	}

	return 2 * sum / float64(n) * 100
}

func normalizedMeanError(s Sample) float64 {
	var sumObs float64
	for _, o := range s.Obs {
		sumObs += o
	}
	if sumObs == 0 {
		return math.NaN()
	}
	var sumErr float64
	for _, d := range s.absDiffs() {
		sumErr += d
	}

	return sumErr / sumObs * 100
}

func fractionalError(s Sample) float64 {
	if len(s.Obs) == 0 {
		return math.NaN()
	}
	var sum float64
	var n int
	for i := range s.Obs {
		denom := s.Mod[i] + s.Obs[i]
		if denom == 0 {
			continue
		}
		sum += math.Abs(s.Mod[i]-s.Obs[i]) / denom
		n++
	}
	if n == 0 {
		return math.NaN()
	}

	return 2 * sum / float64(n) * 100
}

// pearson computes the Pearson correlation coefficient.
func pearson(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return math.NaN()
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}

	return sxy / math.Sqrt(sxx*syy)
}

func rSquared(s Sample) float64 {
	r := pearson(s.Obs, s.Mod)

	return r * r
}

func rootMeanSquareError(s Sample) float64 {
	diffs := s.diffs()
	if len(diffs) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, d := range diffs {
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(diffs)))
}

func indexOfAgreement(s Sample) float64 {
	if len(s.Obs) == 0 {
		return math.NaN()
	}
	mo := mean(s.Obs)
	var num, denom float64
	for i, d := range s.diffs() {
		num += d * d
		spread := math.Abs(s.Mod[i]-mo) + math.Abs(s.Obs[i]-mo)
		denom += spread * spread
	}
	if denom == 0 {
		return math.NaN()
	}

	return 1 - num/denom
}

// anomalyCorrelation is the correlation of obs and model anomalies relative
// to the observed mean.
func anomalyCorrelation(s Sample) float64 {
	if len(s.Obs) == 0 {
		return math.NaN()
	}
	mo := mean(s.Obs)
	obsAnom := make([]float64, len(s.Obs))
	modAnom := make([]float64, len(s.Mod))
	for i := range s.Obs {
		obsAnom[i] = s.Obs[i] - mo
		modAnom[i] = s.Mod[i] - mo
	}

	return pearson(obsAnom, modAnom)
}
