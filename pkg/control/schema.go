package control

import (
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Time is a control-file timestamp. It accepts the layouts commonly found in
// control files: "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02" and
// RFC3339.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func (t *Time) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return errors.Wrap(err, "time must be a string")
	}

	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	return errors.Errorf("unrecognised time %q", raw)
}

// Config is a parsed control file.
type Config struct {
	Analysis Analysis              `yaml:"analysis"`
	Models   map[string]*Model     `yaml:"model" validate:"required,min=1,dive,required"`
	Obs      map[string]*Obs       `yaml:"obs" validate:"required,min=1,dive,required"`
	Plots    map[string]*PlotGroup `yaml:"plots" validate:"dive,required"`
	Stats    *Stats                `yaml:"stats"`
}

// Analysis holds the overarching run options.
type Analysis struct {
	StartTime  Time   `yaml:"start_time"`
	EndTime    Time   `yaml:"end_time"`
	OutputDir  string `yaml:"output_dir"`
	Debug      bool   `yaml:"debug"`
	SavePaired bool   `yaml:"save_paired"`

	// FlowDiagram, when set, is the file the pipeline flow graph is written to.
	FlowDiagram string `yaml:"flow_diagram"`
	// Profile enables per-stage timing collection.
	Profile bool `yaml:"profile"`
	// Workers is the concurrency used to open and pair datasets.
	Workers int `yaml:"workers" validate:"omitempty,min=1"`
}

// Model declares one model dataset.
type Model struct {
	ModType           string  `yaml:"mod_type" validate:"required"`
	Files             string  `yaml:"files" validate:"required"`
	RadiusOfInfluence float64 `yaml:"radius_of_influence" validate:"omitempty,gt=0"`

	// Mapping maps an obs label to model-variable -> obs-variable pairs.
	Mapping map[string]map[string]string `yaml:"mapping" validate:"required,min=1,dive,min=1"`

	Variables  map[string]*VarSpec `yaml:"variables" validate:"omitempty,dive,required"`
	PlotKwargs map[string]any      `yaml:"plot_kwargs"`
}

// Obs declares one observational dataset.
type Obs struct {
	ObsType   string              `yaml:"obs_type" validate:"required,oneof=pt_sfc sat_swath_sfc sat_swath_clm sat_grid_sfc sat_grid_clm sat_swath_prof"`
	Filename  string              `yaml:"filename" validate:"required"`
	Debug     bool                `yaml:"debug"`
	Variables map[string]*VarSpec `yaml:"variables" validate:"omitempty,dive,required"`
}

// VarSpec carries per-variable masking, unit conversion and plot hints.
type VarSpec struct {
	UnitScale       float64  `yaml:"unit_scale"`
	UnitScaleMethod string   `yaml:"unit_scale_method" validate:"omitempty,oneof=* / + -"`
	ObsMin          *float64 `yaml:"obs_min"`
	ObsMax          *float64 `yaml:"obs_max"`
	NaNValue        *float64 `yaml:"nan_value"`

	YlabelPlot  string   `yaml:"ylabel_plot"`
	VMinPlot    *float64 `yaml:"vmin_plot"`
	VMaxPlot    *float64 `yaml:"vmax_plot"`
	VDiffPlot   *float64 `yaml:"vdiff_plot"`
	NLevelsPlot int      `yaml:"nlevels_plot" validate:"omitempty,min=2"`
	TyScale     float64  `yaml:"ty_scale" validate:"omitempty,gt=0"`
}

// Plot types understood by the plots package.
const (
	PlotTimeseries     = "timeseries"
	PlotBoxplot        = "boxplot"
	PlotTaylor         = "taylor"
	PlotSpatialBias    = "spatial_bias"
	PlotSpatialOverlay = "spatial_overlay"
)

// PlotGroup declares one figure group.
type PlotGroup struct {
	Type string `yaml:"type" validate:"required,oneof=timeseries boxplot taylor spatial_bias spatial_overlay"`

	// Data lists the paired datasets to draw, as "<obs>_<model>" labels.
	Data []string `yaml:"data" validate:"required,min=1"`

	// DomainType and DomainName are parallel lists. "all" selects every site;
	// any other type names a site metadata column matched against the name.
	DomainType []string `yaml:"domain_type" validate:"required,min=1"`
	DomainName []string `yaml:"domain_name" validate:"required,min=1"`

	FigKwargs         map[string]any `yaml:"fig_kwargs"`
	DefaultPlotKwargs map[string]any `yaml:"default_plot_kwargs"`
	TextKwargs        map[string]any `yaml:"text_kwargs"`

	DataProc DataProc `yaml:"data_proc"`
}

// DataProc holds the data processing options of a plot group.
type DataProc struct {
	RemObsNan    bool   `yaml:"rem_obs_nan"`
	SetAxis      bool   `yaml:"set_axis"`
	TsSelectTime string `yaml:"ts_select_time" validate:"omitempty,oneof=time time_local"`
	TsAvgWindow  string `yaml:"ts_avg_window" validate:"omitempty,oneof=h H d D"`
}

// Stats declares the statistics output.
type Stats struct {
	StatList          []string       `yaml:"stat_list" validate:"required,min=1"`
	RoundOutput       *int           `yaml:"round_output" validate:"omitempty,min=0"`
	OutputTable       bool           `yaml:"output_table"`
	OutputTableKwargs map[string]any `yaml:"output_table_kwargs"`
	DomainType        []string       `yaml:"domain_type" validate:"required,min=1"`
	DomainName        []string       `yaml:"domain_name" validate:"required,min=1"`
	Data              []string       `yaml:"data" validate:"required,min=1"`
}

// Round returns the configured rounding precision, defaulting to 3.
func (s *Stats) Round() int {
	if s.RoundOutput == nil {
		return 3
	}

	return *s.RoundOutput
}
