package analysis

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/pairing"
	"github.com/verimod/verimod/pkg/plots"
	"github.com/verimod/verimod/pkg/stats"
)

// StatsOutput computes the configured statistics: one table per obs variable
// and domain, with one column per pair, written as CSV and optionally as an
// SVG table figure.
func (a *Analysis) StatsOutput() error {
	cfg := a.Control.Stats
	if cfg == nil {
		return nil
	}

	pairs, err := a.selectPairs(cfg.Data)
	if err != nil {
		return errors.Wrap(err, "stats")
	}

	for _, obsVar := range unionObsVars(pairs) {
		for i := range cfg.DomainType {
			err := a.statsTable(obsVar, cfg.DomainType[i], cfg.DomainName[i], pairs)
			if err != nil {
				return errors.Wrapf(err, "stats for %s", obsVar)
			}
		}
	}

	return nil
}

func (a *Analysis) statsTable(obsVar, domainType, domainName string, pairs []*pairing.Paired) error {
	cfg := a.Control.Stats

	labels := make([]string, len(pairs))
	for i, p := range pairs {
		labels[i] = p.Label()
	}
	table := stats.NewTable(cfg.StatList, labels, cfg.Round())

	for pairIdx, p := range pairs {
		sample, ok, err := a.statsSample(p, obsVar, domainType, domainName)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		for statIdx, name := range cfg.StatList {
			value, err := stats.Calc(name, sample)
			if err != nil {
				return err
			}
			table.Set(statIdx, pairIdx, round(value, cfg.Round()))
		}
	}

	base := strings.Join([]string{
		"stats",
		obsVar,
		domainType,
		domainName,
		a.Control.Analysis.StartTime.Format(plots.DateFormat),
		a.Control.Analysis.EndTime.Format(plots.DateFormat),
	}, ".")

	csvPath, err := a.outputPath(base + ".csv")
	if err != nil {
		return err
	}
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", csvPath)
	}
	defer csvFile.Close()
	err = table.WriteCSV(csvFile)
	if err != nil {
		return err
	}
	a.logger.Info().Str("file", csvPath).Msg("statistics written")

	if !cfg.OutputTable {
		return nil
	}

	svgPath, err := a.outputPath(base + ".svg")
	if err != nil {
		return err
	}
	svgFile, err := os.Create(svgPath)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", svgPath)
	}
	defer svgFile.Close()
	title := a.plotTitle(obsVar, domainType, domainName)

	return table.RenderSVG(svgFile, title, cfg.OutputTableKwargs)
}

// statsSample prepares the paired sample of one pair for one obs variable and
// domain: domain filtering, then removal of rows where either side is NaN.
func (a *Analysis) statsSample(p *pairing.Paired, obsVar, domainType, domainName string) (stats.Sample, bool, error) {
	modVar, err := p.ModelVarFor(obsVar)
	if err != nil {
		return stats.Sample{}, false, nil
	}

	frame := p.Frame
	if domainType != "all" {
		frame, err = frame.FilterMeta(domainType, domainName)
		if err != nil {
			return stats.Sample{}, false, errors.Wrapf(err, "pair %s", p.Label())
		}
	}

	obsCol, modCol := finitePairs(frame.Vars[obsVar], frame.Vars[modVar])
	if len(obsCol) == 0 {
		return stats.Sample{}, false, nil
	}

	return stats.Sample{Obs: obsCol, Mod: modCol, Wind: obsVar == "WD"}, true, nil
}

func round(v float64, digits int) float64 {
	if math.IsNaN(v) {
		return v
	}
	factor := math.Pow(10, float64(digits))

	return math.Round(v*factor) / factor
}
