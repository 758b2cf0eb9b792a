package dataset

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const obsCSV = `time,siteid,latitude,longitude,OZONE,state_name
2019-09-01 00:00,A1,40.0,-105.0,31.5,Colorado
2019-09-01 01:00,A1,40.0,-105.0,NaN,Colorado
2019-09-01 00:00,B2,35.0,-90.0,22.0,Tennessee
`

const modelCSV = `time,latitude,longitude,z,o3
2019-09-01 00:00,40.0,-105.0,0,33.0
2019-09-01 00:00,40.0,-105.0,1,38.0
2019-09-01 00:00,35.0,-90.0,0,25.0
`

func TestRead(t *testing.T) {
	frame, err := Read(strings.NewReader(obsCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, frame.Len())
	assert.False(t, frame.HasZ())
	assert.Equal(t, []string{"OZONE"}, frame.VarNames())
	assert.Equal(t, "Colorado", frame.Meta["state_name"][0])
	assert.Equal(t, "A1", frame.Sites[0])
	assert.InDelta(t, 31.5, frame.Vars["OZONE"][0], 1e-9)
	assert.True(t, math.IsNaN(frame.Vars["OZONE"][1]))
	assert.Equal(t, time.Date(2019, 9, 1, 0, 0, 0, 0, time.UTC), frame.Times[0])
}

func TestReadModelWithZ(t *testing.T) {
	frame, err := Read(strings.NewReader(modelCSV))
	require.NoError(t, err)

	assert.True(t, frame.HasZ())
	surface := frame.SurfaceOnly()
	assert.Equal(t, 2, surface.Len())
	assert.False(t, surface.HasZ())
	assert.InDelta(t, 33.0, surface.Vars["o3"][0], 1e-9)
}

func TestReadErrors(t *testing.T) {
	tcs := map[string]struct {
		doc     string
		wantErr string
	}{
		"missing coordinates": {
			doc:     "time,siteid,OZONE\n2019-09-01 00:00,A1,1.0\n",
			wantErr: "must contain",
		},
		"bad time": {
			doc:     "time,latitude,longitude\nyesterday,40.0,-105.0\n",
			wantErr: "row 2",
		},
		"bad latitude": {
			doc:     "time,latitude,longitude\n2019-09-01 00:00,north,-105.0\n",
			wantErr: "invalid latitude",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestReadFilesMergesAndSorts(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "obs_02.csv")
	second := filepath.Join(dir, "obs_01.csv")

	require.NoError(t, os.WriteFile(first, []byte("time,siteid,latitude,longitude,OZONE\n2019-09-01 02:00,A1,40.0,-105.0,3.0\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("time,siteid,latitude,longitude,OZONE\n2019-09-01 01:00,A1,40.0,-105.0,2.0\n"), 0o644))

	frame, err := ReadFiles([]string{first, second})
	require.NoError(t, err)
	require.Equal(t, 2, frame.Len())
	assert.True(t, frame.Times[0].Before(frame.Times[1]))
	assert.InDelta(t, 2.0, frame.Vars["OZONE"][0], 1e-9)
}

func TestWriteCSVRoundTrip(t *testing.T) {
	frame, err := Read(strings.NewReader(obsCSV))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, frame.WriteCSV(&buf))

	again, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, frame.Len(), again.Len())
	assert.Equal(t, frame.Sites, again.Sites)
	assert.Equal(t, frame.Meta["state_name"], again.Meta["state_name"])
	assert.InDelta(t, frame.Vars["OZONE"][0], again.Vars["OZONE"][0], 1e-9)
	assert.True(t, math.IsNaN(again.Vars["OZONE"][1]))
}

func TestExpandFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"m_b.csv", "m_a.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := ExpandFiles(filepath.Join(dir, "m_*.csv"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "m_a.csv"), filepath.Join(dir, "m_b.csv")}, files)

	list := filepath.Join(dir, "files.txt")
	require.NoError(t, os.WriteFile(list, []byte("one.csv\n\ntwo.csv\n"), 0o644))
	files, err = ExpandFiles(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"one.csv", "two.csv"}, files)

	_, err = ExpandFiles(filepath.Join(dir, "missing_*.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}
