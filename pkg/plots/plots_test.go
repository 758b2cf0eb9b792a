package plots

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultColors(t *testing.T) {
	got, err := DefaultColors(3)
	require.NoError(t, err)
	assert.Equal(t, []string{"#e41a1c", "#377eb8", "#4daf4a"}, got)

	// Beyond the base palette the ramp fills in distinct colors.
	many, err := DefaultColors(12)
	require.NoError(t, err)
	require.Len(t, many, 12)
	seen := make(map[string]struct{})
	for _, c := range many {
		seen[c] = struct{}{}
	}
	assert.Len(t, seen, 12)
}

func TestBiasColor(t *testing.T) {
	white, err := biasColor(0, 10)
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", white)

	red, err := biasColor(10, 10)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", red)

	blue, err := biasColor(-10, 10)
	require.NoError(t, err)
	assert.Equal(t, "#0000ff", blue)
}

func TestResample(t *testing.T) {
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		base.Add(10 * time.Minute),
		base.Add(40 * time.Minute),
		base.Add(90 * time.Minute),
		base.Add(25 * time.Hour),
	}
	values := []float64{1, 3, 5, 7}

	t.Run("hourly", func(t *testing.T) {
		outTimes, outValues, err := Resample(times, values, "h")
		require.NoError(t, err)
		require.Len(t, outTimes, 3)
		assert.Equal(t, base, outTimes[0])
		assert.InDelta(t, 2, outValues[0], 1e-9)
		assert.InDelta(t, 5, outValues[1], 1e-9)
		assert.InDelta(t, 7, outValues[2], 1e-9)
	})

	t.Run("daily", func(t *testing.T) {
		outTimes, outValues, err := Resample(times, values, "d")
		require.NoError(t, err)
		require.Len(t, outTimes, 2)
		assert.InDelta(t, 3, outValues[0], 1e-9)
		assert.InDelta(t, 7, outValues[1], 1e-9)
	})

	t.Run("nan values skipped", func(t *testing.T) {
		_, outValues, err := Resample(times[:2], []float64{math.NaN(), 4}, "h")
		require.NoError(t, err)
		assert.InDelta(t, 4, outValues[0], 1e-9)
	})

	t.Run("empty window is a no-op", func(t *testing.T) {
		outTimes, outValues, err := Resample(times, values, "")
		require.NoError(t, err)
		assert.Equal(t, times, outTimes)
		assert.Equal(t, values, outValues)
	})

	t.Run("unknown window", func(t *testing.T) {
		_, _, err := Resample(times, values, "w")
		require.Error(t, err)
	})
}

func TestOutName(t *testing.T) {
	start := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2019, 9, 2, 12, 0, 0, 0, time.UTC)

	got := OutName("plot_grp1", "timeseries", "OZONE", start, end, "all", "CONUS", "")
	assert.Equal(t, "plot_grp1.timeseries.OZONE.2019-09-01_00.2019-09-02_12.all.CONUS.svg", got)

	got = OutName("plot_grp2", "spatial_bias", "OZONE", start, end, "epa_region", "R1", "airnow_wrfchem")
	assert.Equal(t, "plot_grp2.spatial_bias.OZONE.2019-09-01_00.2019-09-02_12.epa_region.R1.airnow_wrfchem.svg", got)
}

func TestTimeseries(t *testing.T) {
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)}

	var buf bytes.Buffer
	err := Timeseries(&buf, &TimeseriesInput{
		Title:  "OZONE",
		YLabel: "Ozone (ppbv)",
		Series: []Series{
			{Label: "airnow", Color: ObsColor, Times: times, Values: []float64{30, math.NaN(), 34}},
			{Label: "wrfchem", Color: "#e41a1c", Times: times, Values: []float64{31, 33, 35}},
		},
	})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "OZONE")
	assert.Contains(t, svg, "Ozone (ppbv)")
	assert.Contains(t, svg, "polyline")
	assert.Contains(t, svg, "#e41a1c")
}

func TestTimeseriesErrors(t *testing.T) {
	var buf bytes.Buffer
	err := Timeseries(&buf, &TimeseriesInput{})
	require.Error(t, err)

	err = Timeseries(&buf, &TimeseriesInput{Series: []Series{{Label: "x", Times: nil, Values: []float64{1}}}})
	require.Error(t, err)
}

func TestBoxplotSummary(t *testing.T) {
	summary, err := summarize([]float64{4, 1, 3, 2, math.NaN()})
	require.NoError(t, err)
	assert.InDelta(t, 1, summary.min, 1e-9)
	assert.InDelta(t, 1.75, summary.q1, 1e-9)
	assert.InDelta(t, 2.5, summary.median, 1e-9)
	assert.InDelta(t, 3.25, summary.q3, 1e-9)
	assert.InDelta(t, 4, summary.max, 1e-9)

	_, err = summarize([]float64{math.NaN()})
	require.Error(t, err)
}

func TestBoxplot(t *testing.T) {
	var buf bytes.Buffer
	err := Boxplot(&buf, &BoxplotInput{
		Title:  "OZONE",
		YLabel: "ppbv",
		Boxes: []Box{
			{Label: "airnow", Color: "#d3d3d3", Values: []float64{1, 2, 3, 4, 5}},
			{Label: "wrfchem", Color: "#377eb8", Values: []float64{2, 3, 4, 5, 6}},
		},
	})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "airnow")
	assert.Contains(t, svg, "wrfchem")
	assert.Contains(t, svg, "#377eb8")
}

func TestTaylor(t *testing.T) {
	var buf bytes.Buffer
	err := Taylor(&buf, &TaylorInput{
		Title:  "OZONE",
		Label:  "ppbv",
		RefStd: 8.5,
		Points: []TaylorPoint{{Label: "wrfchem", Color: "#e41a1c", Std: 9.1, Corr: 0.87}},
	})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "Correlation")
	assert.Contains(t, svg, "wrfchem")

	err = Taylor(&buf, &TaylorInput{RefStd: 0})
	require.Error(t, err)
}

func TestSpatialBias(t *testing.T) {
	var buf bytes.Buffer
	err := SpatialBias(&buf, &SpatialBiasInput{
		Title: "OZONE bias",
		Sites: []SitePoint{
			{Lat: 40, Lon: -105, Value: 5},
			{Lat: 35, Lon: -90, Value: -3},
			{Lat: 37, Lon: -95, Value: math.NaN()},
		},
	})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "circle")
	assert.Contains(t, svg, "OZONE bias")

	err = SpatialBias(&buf, &SpatialBiasInput{Sites: []SitePoint{{Value: math.NaN()}}})
	require.Error(t, err)
}

func TestSpatialOverlay(t *testing.T) {
	var buf bytes.Buffer
	err := SpatialOverlay(&buf, &SpatialOverlayInput{
		Title: "OZONE overlay",
		Cells: []SitePoint{
			{Lat: 40, Lon: -105, Value: 30},
			{Lat: 40, Lon: -104, Value: 35},
			{Lat: 41, Lon: -105, Value: 40},
		},
		Sites: []SitePoint{{Lat: 40.2, Lon: -104.8, Value: 33}},
	})
	require.NoError(t, err)

	svg := buf.String()
	assert.Contains(t, svg, "rect")
	assert.Contains(t, svg, "circle")
	assert.Contains(t, svg, "OZONE overlay")
}

func TestNiceTicks(t *testing.T) {
	ticks := niceTicks(0, 10, 6)
	require.NotEmpty(t, ticks)
	assert.InDelta(t, 0, ticks[0], 1e-9)
	assert.InDelta(t, 10, ticks[len(ticks)-1], 1e-9)

	assert.Equal(t, []float64{5}, niceTicks(5, 5, 4))
}
