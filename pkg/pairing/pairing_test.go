package pairing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimod/verimod/pkg/dataset"
)

func TestHaversine(t *testing.T) {
	// One degree of latitude is close to 111.2 km.
	dist := haversineM(40.0, -105.0, 41.0, -105.0)
	assert.InDelta(t, 111200, dist, 1000)

	assert.InDelta(t, 0, haversineM(40.0, -105.0, 40.0, -105.0), 1e-6)
}

func buildModelFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	frame := dataset.NewFrame()
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)

	// Two cells, two times, two levels each.
	cells := []struct{ lat, lon float64 }{{40.0, -105.0}, {35.0, -90.0}}
	values := map[float64]map[int]float64{
		40.0: {0: 33.0, 1: 34.0},
		35.0: {0: 25.0, 1: 26.0},
	}
	frame.Z = []float64{}
	for hour := 0; hour < 2; hour++ {
		for _, cell := range cells {
			for z := 0; z < 2; z++ {
				frame.Times = append(frame.Times, base.Add(time.Duration(hour)*time.Hour))
				frame.Sites = append(frame.Sites, "")
				frame.Lat = append(frame.Lat, cell.lat)
				frame.Lon = append(frame.Lon, cell.lon)
				frame.Z = append(frame.Z, float64(z))
				value := values[cell.lat][hour] + float64(z)*100
				frame.Vars["o3"] = append(frame.Vars["o3"], value)
			}
		}
	}

	return frame
}

func buildObsFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	frame := dataset.NewFrame()
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)

	// A1 sits next to the first model cell, FAR is out of range of both.
	sites := []struct {
		id       string
		lat, lon float64
	}{
		{"A1", 40.1, -105.1},
		{"FAR", -60.0, 100.0},
	}
	for hour := 0; hour < 2; hour++ {
		for _, site := range sites {
			frame.Times = append(frame.Times, base.Add(time.Duration(hour)*time.Hour))
			frame.Sites = append(frame.Sites, site.id)
			frame.Lat = append(frame.Lat, site.lat)
			frame.Lon = append(frame.Lon, site.lon)
			frame.Vars["OZONE"] = append(frame.Vars["OZONE"], 30.0+float64(hour))
		}
	}

	return frame
}

func TestPairPointSurface(t *testing.T) {
	paired, err := PairPointSurface(buildModelFrame(t), buildObsFrame(t),
		map[string]string{"o3": "OZONE"}, "airnow", "wrfchem", 1e6)
	require.NoError(t, err)

	assert.Equal(t, "airnow_wrfchem", paired.Label())
	assert.Equal(t, []string{"OZONE"}, paired.ObsVars)
	assert.Equal(t, []string{"o3"}, paired.ModelVars)

	modVar, err := paired.ModelVarFor("OZONE")
	require.NoError(t, err)
	assert.Equal(t, "o3", modVar)

	frame := paired.Frame
	require.Equal(t, 4, frame.Len())
	for i := range frame.Times {
		switch frame.Sites[i] {
		case "A1":
			// Surface level of the nearest cell at the matching hour.
			hour := frame.Times[i].Hour()
			assert.InDelta(t, 33.0+float64(hour), frame.Vars["o3"][i], 1e-9)
		case "FAR":
			assert.True(t, math.IsNaN(frame.Vars["o3"][i]))
		}
	}
}

func TestPairPointSurfaceNameCollision(t *testing.T) {
	model := buildModelFrame(t)
	obs := buildObsFrame(t)
	obs.Vars["o3"] = obs.Vars["OZONE"]

	paired, err := PairPointSurface(model, obs, map[string]string{"o3": "o3"}, "airnow", "wrfchem", 1e6)
	require.NoError(t, err)

	assert.Equal(t, []string{"o3"}, paired.ObsVars)
	assert.Equal(t, []string{"o3_new"}, paired.ModelVars)
	assert.Contains(t, paired.Frame.Vars, "o3")
	assert.Contains(t, paired.Frame.Vars, "o3_new")
}

func TestPairPointSurfaceErrors(t *testing.T) {
	model := buildModelFrame(t)
	obs := buildObsFrame(t)

	_, err := PairPointSurface(model, obs, map[string]string{"no2": "NO2"}, "airnow", "wrfchem", 1e6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no variable")

	_, err = PairPointSurface(model, obs, map[string]string{"o3": "NO2"}, "airnow", "wrfchem", 1e6)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no variable")

	_, err = PairPointSurface(model, obs, map[string]string{"o3": "OZONE"}, "airnow", "wrfchem", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "radius of influence")
}
