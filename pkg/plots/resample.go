package plots

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Resample buckets a time series into window means. Window is "h" (hourly)
// or "d" (daily); an empty window returns the input untouched. NaN values do
// not contribute to a bucket mean.
func Resample(times []time.Time, values []float64, window string) ([]time.Time, []float64, error) {
	if window == "" {
		return times, values, nil
	}

	var truncate func(time.Time) time.Time
	switch window {
	case "h", "H":
		truncate = func(t time.Time) time.Time { return t.Truncate(time.Hour) }
	case "d", "D":
		truncate = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		}
	default:
		return nil, nil, errors.Errorf("unknown averaging window %q", window)
	}

	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	stamps := make(map[int64]time.Time)
	for i, t := range times {
		bucket := truncate(t)
		key := bucket.Unix()
		if _, ok := stamps[key]; !ok {
			stamps[key] = bucket
		}
		if math.IsNaN(values[i]) {
			continue
		}
		sums[key] += values[i]
		counts[key]++
	}

	keys := make([]int64, 0, len(stamps))
	for key := range stamps {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	outTimes := make([]time.Time, len(keys))
	outValues := make([]float64, len(keys))
	for i, key := range keys {
		outTimes[i] = stamps[key]
		if counts[key] == 0 {
			outValues[i] = math.NaN()

			continue
		}
		outValues[i] = sums[key] / float64(counts[key])
	}

	return outTimes, outValues, nil
}
