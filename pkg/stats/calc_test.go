package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalc(t *testing.T) {
	sample := Sample{
		Obs: []float64{1, 2, 3, 4},
		Mod: []float64{2, 3, 4, 5},
	}

	tcs := map[string]struct {
		stat string
		want float64
	}{
		"obs number":      {stat: "NO", want: 4},
		"mod number":      {stat: "NP", want: 4},
		"obs mean":        {stat: "MO", want: 2.5},
		"mod mean":        {stat: "MP", want: 3.5},
		"obs median":      {stat: "MdnO", want: 2.5},
		"mod median":      {stat: "MdnP", want: 3.5},
		"obs std":         {stat: "STDO", want: math.Sqrt(1.25)},
		"mean bias":       {stat: "MB", want: 1},
		"median bias":     {stat: "MdnB", want: 1},
		"nmb":             {stat: "NMB", want: 40},
		"nmdnb":           {stat: "NMdnB", want: 40},
		"mean error":      {stat: "ME", want: 1},
		"median error":    {stat: "MdnE", want: 1},
		"nme":             {stat: "NME", want: 40},
		"r squared":       {stat: "R2", want: 1},
		"rmse":            {stat: "RMSE", want: 1},
		"ioa":             {stat: "IOA", want: 0.84},
		"anomaly correl":  {stat: "AC", want: 1},
		"fractional bias": {stat: "FB", want: 39.365079365079367},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			got, err := Calc(tc.stat, sample)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-9)
		})
	}
}

func TestCalcWindWrapping(t *testing.T) {
	sample := Sample{
		Obs:  []float64{350, 10},
		Mod:  []float64{10, 350},
		Wind: true,
	}

	mb, err := Calc("MB", sample)
	require.NoError(t, err)
	assert.InDelta(t, 0, mb, 1e-9)

	me, err := Calc("ME", sample)
	require.NoError(t, err)
	assert.InDelta(t, 20, me, 1e-9)
}

func TestCalcErrors(t *testing.T) {
	_, err := Calc("XYZ", Sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown statistic")

	_, err = Calc("MB", Sample{Obs: []float64{1}, Mod: []float64{1, 2}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lengths differ")
}

func TestCalcEmptySample(t *testing.T) {
	got, err := Calc("MB", Sample{})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestFullName(t *testing.T) {
	full, err := FullName("MB", true)
	require.NoError(t, err)
	assert.Equal(t, "Mean Bias", full)

	underscored, err := FullName("MB", false)
	require.NoError(t, err)
	assert.Equal(t, "Mean_Bias", underscored)

	_, err = FullName("XYZ", true)
	assert.Error(t, err)
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("RMSE"))
	assert.False(t, Known("rmse"))
}

func TestSummaryHelpers(t *testing.T) {
	assert.InDelta(t, 2, Mean([]float64{1, 2, 3}), 1e-9)
	assert.True(t, math.IsNaN(Mean(nil)))

	assert.InDelta(t, math.Sqrt(2.0/3.0), StdDev([]float64{1, 2, 3}), 1e-9)

	assert.InDelta(t, 1, Pearson([]float64{1, 2, 3}, []float64{2, 4, 6}), 1e-9)
	assert.InDelta(t, -1, Pearson([]float64{1, 2, 3}, []float64{3, 2, 1}), 1e-9)
	assert.True(t, math.IsNaN(Pearson([]float64{1, 1}, []float64{1, 2})))
}
