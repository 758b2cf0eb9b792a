package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/verimod/verimod/internal/log"
	"github.com/verimod/verimod/pkg/control"
	"github.com/verimod/verimod/pkg/dataset"
	"github.com/verimod/verimod/pkg/pairing"
	"github.com/verimod/verimod/pkg/pipeline/drawer"
	"github.com/verimod/verimod/pkg/pipeline/measure"
	"github.com/verimod/verimod/pkg/pipeline/model"
)

// Analysis is one verification run.
type Analysis struct {
	ControlPath string
	Control     *control.Config

	Models map[string]*dataset.Frame
	Obs    map[string]*dataset.Frame
	Paired map[string]*pairing.Paired

	logger zerolog.Logger
}

// New creates an analysis for the given control file. Nothing is read until
// ReadControl or Run.
func New(controlPath string) *Analysis {
	return &Analysis{
		ControlPath: controlPath,
		Models:      make(map[string]*dataset.Frame),
		Obs:         make(map[string]*dataset.Frame),
		Paired:      make(map[string]*pairing.Paired),
		logger:      log.WithComponent("analysis"),
	}
}

// ReadControl loads and validates the control file.
func (a *Analysis) ReadControl() error {
	cfg, err := control.Load(a.ControlPath)
	if err != nil {
		return err
	}
	a.Control = cfg
	if cfg.Analysis.OutputDir != "" {
		err = os.MkdirAll(cfg.Analysis.OutputDir, 0o755)
		if err != nil {
			return errors.Wrapf(err, "unable to create output directory %s", cfg.Analysis.OutputDir)
		}
	}
	a.logger.Info().
		Str("control", a.ControlPath).
		Time("start", cfg.Analysis.StartTime.Time).
		Time("end", cfg.Analysis.EndTime.Time).
		Msg("control file loaded")

	return nil
}

// Run executes the full analysis: open datasets, pair, plot, compute stats.
func (a *Analysis) Run(ctx context.Context) error {
	if a.Control == nil {
		err := a.ReadControl()
		if err != nil {
			return err
		}
	}

	err := a.OpenData(ctx)
	if err != nil {
		return err
	}
	err = a.PairData(ctx)
	if err != nil {
		return err
	}
	err = a.Plotting()
	if err != nil {
		return err
	}

	return a.StatsOutput()
}

// outputPath places a file under the configured output directory, creating
// the directory on first use.
func (a *Analysis) outputPath(name string) (string, error) {
	dir := a.Control.Analysis.OutputDir
	if dir == "" {
		dir = "."
	}
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return "", errors.Wrapf(err, "unable to create output directory %s", dir)
	}

	return filepath.Join(dir, name), nil
}

// pipelineOptions assembles the options of one pipeline phase: a flow drawer
// when flow_diagram is set, timing collection when profile is set.
func (a *Analysis) pipelineOptions(phase string) []model.PipelineOption {
	opts := make([]model.PipelineOption, 0, 2)

	var msr measure.Measure
	if a.Control.Analysis.Profile {
		msr = measure.NewDefaultMeasure()
		opts = append(opts, measure.PipelineMeasure(msr))
	}
	if a.Control.Analysis.FlowDiagram != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(phaseFileName(a.Control.Analysis.FlowDiagram, phase)), msr))
	}

	return opts
}

// phaseFileName inserts the phase name before the file extension, so one
// flow_diagram setting yields one graph per pipeline phase.
func phaseFileName(name, phase string) string {
	ext := filepath.Ext(name)

	return strings.TrimSuffix(name, ext) + "." + phase + ext
}
