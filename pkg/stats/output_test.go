package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableWriteCSV(t *testing.T) {
	table := NewTable([]string{"MB", "RMSE"}, []string{"airnow_wrfchem", "airnow_cmaq"}, 3)
	table.Set(0, 0, 1.23456)
	table.Set(1, 0, 2.5)
	table.Set(1, 1, math.NaN())

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Stat_ID,Stat_FullName,airnow_wrfchem,airnow_cmaq", lines[0])
	assert.Equal(t, "MB,Mean_Bias,1.235,NaN", lines[1])
	assert.Equal(t, "RMSE,Root_Mean_Square_Error,2.500,NaN", lines[2])
}

func TestTableWriteCSVUnknownStat(t *testing.T) {
	table := NewTable([]string{"XYZ"}, []string{"a_b"}, 3)

	var buf bytes.Buffer
	err := table.WriteCSV(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown statistic")
}

func TestTableRenderSVG(t *testing.T) {
	table := NewTable([]string{"MB"}, []string{"airnow_wrfchem"}, 2)
	table.Set(0, 0, 0.5)

	var buf bytes.Buffer
	require.NoError(t, table.RenderSVG(&buf, "OZONE & friends", map[string]any{"fontsize": 14}))

	svg := buf.String()
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "OZONE &amp; friends")
	assert.Contains(t, svg, "Mean Bias")
	assert.Contains(t, svg, "0.50")
	assert.Contains(t, svg, `font-size="14"`)
}
