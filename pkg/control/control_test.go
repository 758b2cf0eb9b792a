package control

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validControl = `
analysis:
  start_time: 2019-09-01 00:00
  end_time: 2019-09-02 00:00
  output_dir: ./out
  save_paired: true
model:
  wrfchem:
    mod_type: wrfchem
    files: testdata/model_*.csv
    mapping:
      airnow:
        o3: OZONE
    variables:
      o3:
        unit_scale_method: "*"
obs:
  airnow:
    obs_type: pt_sfc
    filename: testdata/obs_*.csv
    variables:
      OZONE:
        nan_value: -1.0
        ylabel_plot: Ozone (ppbv)
        vmin_plot: 0
        vmax_plot: 80
plots:
  plot_grp1:
    type: timeseries
    data: [airnow_wrfchem]
    domain_type: [all]
    domain_name: [CONUS]
    data_proc:
      rem_obs_nan: true
      ts_avg_window: h
stats:
  stat_list: [MB, RMSE, IOA]
  round_output: 2
  domain_type: [all]
  domain_name: [CONUS]
  data: [airnow_wrfchem]
`

func TestParse(t *testing.T) {
	cfg, err := Parse(strings.NewReader(validControl))
	require.NoError(t, err)

	assert.Equal(t, "2019-09-01 00:00", cfg.Analysis.StartTime.Format("2006-01-02 15:04"))
	assert.True(t, cfg.Analysis.SavePaired)

	mod := cfg.Models["wrfchem"]
	require.NotNil(t, mod)
	assert.Equal(t, DefaultRadiusOfInfluence, mod.RadiusOfInfluence)
	assert.Equal(t, "OZONE", mod.Mapping["airnow"]["o3"])
	// A conversion method without a factor defaults to the identity factor.
	assert.Equal(t, float64(1), mod.Variables["o3"].UnitScale)

	assert.Equal(t, DefaultWorkers, cfg.Analysis.Workers)
	assert.Equal(t, "time", cfg.Plots["plot_grp1"].DataProc.TsSelectTime)
	assert.Equal(t, 2, cfg.Stats.Round())
	assert.Equal(t, []string{"airnow_wrfchem"}, cfg.PairLabels())
}

func TestParseErrors(t *testing.T) {
	tcs := map[string]struct {
		mutate  func(string) string
		wantErr string
	}{
		"unknown key": {
			mutate:  func(s string) string { return strings.Replace(s, "output_dir:", "output_dirs:", 1) },
			wantErr: "field output_dirs not found",
		},
		"missing mod_type": {
			mutate:  func(s string) string { return strings.Replace(s, "    mod_type: wrfchem\n", "", 1) },
			wantErr: "mod_type",
		},
		"end before start": {
			mutate:  func(s string) string { return strings.Replace(s, "end_time: 2019-09-02 00:00", "end_time: 2019-08-02 00:00", 1) },
			wantErr: "end_time",
		},
		"undeclared pair in plots": {
			mutate:  func(s string) string { return strings.Replace(s, "data: [airnow_wrfchem]", "data: [aqs_wrfchem]", 1) },
			wantErr: "aqs_wrfchem",
		},
		"unknown statistic": {
			mutate:  func(s string) string { return strings.Replace(s, "stat_list: [MB, RMSE, IOA]", "stat_list: [MB, XYZ]", 1) },
			wantErr: "XYZ",
		},
		"domain length mismatch": {
			mutate: func(s string) string {
				return strings.Replace(s, "domain_type: [all]\n    domain_name: [CONUS]\n    data_proc:", "domain_type: [all, epa_region]\n    domain_name: [CONUS]\n    data_proc:", 1)
			},
			wantErr: "domain_name",
		},
		"bad obs_type": {
			mutate:  func(s string) string { return strings.Replace(s, "obs_type: pt_sfc", "obs_type: radar", 1) },
			wantErr: "obs_type",
		},
		"bad unit scale method": {
			mutate:  func(s string) string { return strings.Replace(s, `unit_scale_method: "*"`, `unit_scale_method: "^"`, 1) },
			wantErr: "unit_scale_method",
		},
		"bad plot type": {
			mutate:  func(s string) string { return strings.Replace(s, "type: timeseries", "type: histogram", 1) },
			wantErr: "type",
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tc.mutate(validControl)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTimeLayouts(t *testing.T) {
	tcs := map[string]struct {
		raw  string
		want string
	}{
		"date only": {raw: "2019-09-01", want: "2019-09-01T00:00:00Z"},
		"minute":    {raw: "2019-09-01 06:30", want: "2019-09-01T06:30:00Z"},
		"second":    {raw: "2019-09-01 06:30:15", want: "2019-09-01T06:30:15Z"},
		"rfc3339":   {raw: "2019-09-01T06:30:00Z", want: "2019-09-01T06:30:00Z"},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			cfg := strings.Replace(validControl, "start_time: 2019-09-01 00:00", "start_time: "+tc.raw, 1)
			parsed, err := Parse(strings.NewReader(cfg))
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed.Analysis.StartTime.Format("2006-01-02T15:04:05Z07:00"))
		})
	}
}
