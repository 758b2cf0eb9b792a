package stats

// Mean returns the arithmetic mean, NaN for an empty slice.
func Mean(values []float64) float64 {
	return mean(values)
}

// StdDev returns the population standard deviation, NaN for an empty slice.
func StdDev(values []float64) float64 {
	return std(values)
}

// Pearson returns the Pearson correlation coefficient of two equally long
// series, NaN when either series has no variance.
func Pearson(x, y []float64) float64 {
	return pearson(x, y)
}
