package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	frame := NewFrame()
	base := time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		frame.Times = append(frame.Times, base.Add(time.Duration(i)*time.Hour))
		frame.Sites = append(frame.Sites, "A1")
		frame.Lat = append(frame.Lat, 40.0)
		frame.Lon = append(frame.Lon, -105.0)
	}
	frame.Vars["OZONE"] = []float64{1, math.NaN(), 3, 4}
	frame.Vars["utcoffset"] = []float64{-6, -6, -6, -6}
	frame.Meta["state_name"] = []string{"Colorado", "Colorado", "Texas", "Texas"}

	return frame
}

func TestWindow(t *testing.T) {
	frame := testFrame(t)
	start := time.Date(2019, 9, 1, 1, 0, 0, 0, time.UTC)
	end := time.Date(2019, 9, 1, 2, 0, 0, 0, time.UTC)

	got := frame.Window(start, end)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, start, got.Times[0])
	assert.Equal(t, end, got.Times[1])
}

func TestFilterMeta(t *testing.T) {
	frame := testFrame(t)

	got, err := frame.FilterMeta("state_name", "Texas")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	_, err = frame.FilterMeta("county", "Boulder")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metadata column")
}

func TestDropNaN(t *testing.T) {
	frame := testFrame(t)

	got, err := frame.DropNaN("OZONE")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())

	_, err = frame.DropNaN("PM25")
	require.Error(t, err)
}

func TestCopyIsIndependent(t *testing.T) {
	frame := testFrame(t)
	clone := frame.Copy()
	clone.Vars["OZONE"][0] = 99

	assert.InDelta(t, 1, frame.Vars["OZONE"][0], 1e-9)
	assert.Equal(t, frame.Len(), clone.Len())
}

func TestLocalTimes(t *testing.T) {
	frame := testFrame(t)

	local := frame.LocalTimes()
	assert.Equal(t, frame.Times[0].Add(-6*time.Hour), local[0])

	delete(frame.Vars, "utcoffset")
	assert.Equal(t, frame.Times, frame.LocalTimes())
}

func TestUniqueSitesAndCells(t *testing.T) {
	frame := testFrame(t)
	frame.Sites[2] = "B2"
	frame.Lat[2] = 35.0
	frame.Lon[2] = -90.0

	sites := frame.UniqueSites()
	require.Len(t, sites, 2)
	assert.Equal(t, "A1", sites[0].ID)
	assert.Equal(t, "B2", sites[1].ID)

	cells := frame.UniqueCells()
	require.Len(t, cells, 2)
	assert.InDelta(t, 35.0, cells[0].Lat, 1e-9)
}

func TestMaskAndScale(t *testing.T) {
	tcs := map[string]struct {
		rule Rule
		in   []float64
		want []float64
	}{
		"nan value": {
			rule: Rule{NaNValue: ptr(-1.0)},
			in:   []float64{1, -1, 2},
			want: []float64{1, math.NaN(), 2},
		},
		"min and max": {
			rule: Rule{ObsMin: ptr(0.0), ObsMax: ptr(10.0)},
			in:   []float64{-5, 5, 15},
			want: []float64{math.NaN(), 5, math.NaN()},
		},
		"multiply": {
			rule: Rule{Scale: 1000, Method: "*"},
			in:   []float64{0.04},
			want: []float64{40},
		},
		"divide": {
			rule: Rule{Scale: 2, Method: "/"},
			in:   []float64{10},
			want: []float64{5},
		},
		"add": {
			rule: Rule{Scale: 273.15, Method: "+"},
			in:   []float64{0},
			want: []float64{273.15},
		},
		"subtract": {
			rule: Rule{Scale: 273.15, Method: "-"},
			in:   []float64{273.15},
			want: []float64{0},
		},
		"mask then scale": {
			rule: Rule{NaNValue: ptr(-1.0), Scale: 10, Method: "*"},
			in:   []float64{-1, 2},
			want: []float64{math.NaN(), 20},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			frame := NewFrame()
			frame.Vars["x"] = append([]float64(nil), tc.in...)
			require.NoError(t, MaskAndScale(frame, map[string]Rule{"x": tc.rule}))

			for i, want := range tc.want {
				if math.IsNaN(want) {
					assert.True(t, math.IsNaN(frame.Vars["x"][i]))

					continue
				}
				assert.InDelta(t, want, frame.Vars["x"][i], 1e-9)
			}
		})
	}
}

func TestMaskAndScaleUnknownMethod(t *testing.T) {
	frame := NewFrame()
	frame.Vars["x"] = []float64{1}

	err := MaskAndScale(frame, map[string]Rule{"x": {Scale: 2, Method: "^"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown unit scale method")
}

func ptr(v float64) *float64 {
	return &v
}
