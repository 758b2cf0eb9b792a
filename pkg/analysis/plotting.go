package analysis

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/verimod/verimod/pkg/control"
	"github.com/verimod/verimod/pkg/dataset"
	"github.com/verimod/verimod/pkg/pairing"
	"github.com/verimod/verimod/pkg/plots"
	"github.com/verimod/verimod/pkg/stats"
)

// Plotting renders every plot group: one figure per obs variable and domain,
// with the spatial types producing one figure per pair.
func (a *Analysis) Plotting() error {
	grpNames := make([]string, 0, len(a.Control.Plots))
	for name := range a.Control.Plots {
		grpNames = append(grpNames, name)
	}
	sort.Strings(grpNames)

	for _, grpName := range grpNames {
		grp := a.Control.Plots[grpName]
		pairs, err := a.selectPairs(grp.Data)
		if err != nil {
			return errors.Wrapf(err, "plot group %s", grpName)
		}
		palette, err := plots.DefaultColors(len(pairs))
		if err != nil {
			return errors.Wrapf(err, "plot group %s", grpName)
		}

		for _, obsVar := range unionObsVars(pairs) {
			for i := range grp.DomainType {
				err := a.renderGroup(grpName, grp, pairs, palette, obsVar, grp.DomainType[i], grp.DomainName[i])
				if err != nil {
					return errors.Wrapf(err, "plot group %s", grpName)
				}
			}
		}
	}

	return nil
}

func (a *Analysis) renderGroup(grpName string, grp *control.PlotGroup, pairs []*pairing.Paired, palette []string, obsVar, domainType, domainName string) error {
	spec := a.obsVarSpec(pairs, obsVar)
	start := a.Control.Analysis.StartTime.Time
	end := a.Control.Analysis.EndTime.Time

	title := a.plotTitle(obsVar, domainType, domainName)
	ylabel := obsVar
	if spec != nil && spec.YlabelPlot != "" {
		ylabel = spec.YlabelPlot
	}

	write := func(pair string, renderFn func(io.Writer) error) error {
		name := plots.OutName(grpName, grp.Type, obsVar, start, end, domainType, domainName, pair)
		path, err := a.outputPath(name)
		if err != nil {
			return err
		}
		file, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "unable to create %s", path)
		}
		defer file.Close()

		err = renderFn(file)
		if err != nil {
			return errors.Wrapf(err, "unable to render %s", name)
		}
		a.logger.Info().Str("figure", path).Msg("figure written")

		return nil
	}

	switch grp.Type {
	case control.PlotTimeseries:
		in, err := a.timeseriesInput(grp, pairs, palette, obsVar, domainType, domainName, title, ylabel, spec)
		if err != nil || in == nil {
			return err
		}

		return write("", func(w io.Writer) error { return plots.Timeseries(w, in) })

	case control.PlotBoxplot:
		in, err := a.boxplotInput(grp, pairs, palette, obsVar, domainType, domainName, title, ylabel, spec)
		if err != nil || in == nil {
			return err
		}

		return write("", func(w io.Writer) error { return plots.Boxplot(w, in) })

	case control.PlotTaylor:
		in, err := a.taylorInput(grp, pairs, palette, obsVar, domainType, domainName, title, ylabel, spec)
		if err != nil || in == nil {
			return err
		}

		return write("", func(w io.Writer) error { return plots.Taylor(w, in) })

	case control.PlotSpatialBias:
		for _, p := range pairs {
			in, err := a.spatialBiasInput(grp, p, obsVar, domainType, domainName, title, spec)
			if err != nil {
				return err
			}
			if in == nil {
				continue
			}
			err = write(p.Label(), func(w io.Writer) error { return plots.SpatialBias(w, in) })
			if err != nil {
				return err
			}
		}

		return nil

	case control.PlotSpatialOverlay:
		for _, p := range pairs {
			in, err := a.spatialOverlayInput(grp, p, obsVar, domainType, domainName, title, spec)
			if err != nil {
				return err
			}
			if in == nil {
				continue
			}
			err = write(p.Label(), func(w io.Writer) error { return plots.SpatialOverlay(w, in) })
			if err != nil {
				return err
			}
		}

		return nil
	}

	return errors.Errorf("unknown plot type %q", grp.Type)
}

func (a *Analysis) timeseriesInput(grp *control.PlotGroup, pairs []*pairing.Paired, palette []string, obsVar, domainType, domainName, title, ylabel string, spec *control.VarSpec) (*plots.TimeseriesInput, error) {
	in := &plots.TimeseriesInput{
		Title:      title,
		YLabel:     ylabel,
		FigKwargs:  grp.FigKwargs,
		TextKwargs: grp.TextKwargs,
	}
	if grp.DataProc.SetAxis && spec != nil {
		in.VMin = spec.VMinPlot
		in.VMax = spec.VMaxPlot
	}

	for i, p := range pairs {
		frame, modVar, err := a.plotFrame(grp, p, obsVar, domainType, domainName)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}

		times := frame.Times
		if grp.DataProc.TsSelectTime == "time_local" {
			times = frame.LocalTimes()
		}

		if len(in.Series) == 0 {
			obsTimes, obsValues, err := plots.Resample(times, frame.Vars[obsVar], grp.DataProc.TsAvgWindow)
			if err != nil {
				return nil, err
			}
			in.Series = append(in.Series, plots.Series{
				Label:  p.Obs,
				Color:  plots.ObsColor,
				Times:  obsTimes,
				Values: obsValues,
			})
		}

		modTimes, modValues, err := plots.Resample(times, frame.Vars[modVar], grp.DataProc.TsAvgWindow)
		if err != nil {
			return nil, err
		}
		in.Series = append(in.Series, plots.Series{
			Label:  p.Model,
			Color:  a.pairColor(grp, p.Model, palette[i]),
			Times:  modTimes,
			Values: modValues,
		})
	}
	if len(in.Series) == 0 {
		return nil, nil
	}

	return in, nil
}

func (a *Analysis) boxplotInput(grp *control.PlotGroup, pairs []*pairing.Paired, palette []string, obsVar, domainType, domainName, title, ylabel string, spec *control.VarSpec) (*plots.BoxplotInput, error) {
	in := &plots.BoxplotInput{
		Title:      title,
		YLabel:     ylabel,
		FigKwargs:  grp.FigKwargs,
		TextKwargs: grp.TextKwargs,
	}
	if grp.DataProc.SetAxis && spec != nil {
		in.VMin = spec.VMinPlot
		in.VMax = spec.VMaxPlot
	}

	for i, p := range pairs {
		frame, modVar, err := a.plotFrame(grp, p, obsVar, domainType, domainName)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}

		if len(in.Boxes) == 0 {
			in.Boxes = append(in.Boxes, plots.Box{
				Label:  p.Obs,
				Color:  "#d3d3d3",
				Values: frame.Vars[obsVar],
			})
		}
		in.Boxes = append(in.Boxes, plots.Box{
			Label:  p.Model,
			Color:  a.pairColor(grp, p.Model, palette[i]),
			Values: frame.Vars[modVar],
		})
	}
	if len(in.Boxes) == 0 {
		return nil, nil
	}

	return in, nil
}

func (a *Analysis) taylorInput(grp *control.PlotGroup, pairs []*pairing.Paired, palette []string, obsVar, domainType, domainName, title, ylabel string, spec *control.VarSpec) (*plots.TaylorInput, error) {
	in := &plots.TaylorInput{
		Title:      title,
		Label:      ylabel,
		FigKwargs:  grp.FigKwargs,
		TextKwargs: grp.TextKwargs,
	}
	if spec != nil {
		in.Scale = spec.TyScale
	}

	for i, p := range pairs {
		frame, modVar, err := a.plotFrame(grp, p, obsVar, domainType, domainName)
		if err != nil {
			return nil, err
		}
		if frame == nil {
			continue
		}

		obsCol, modCol := finitePairs(frame.Vars[obsVar], frame.Vars[modVar])
		if len(obsCol) == 0 {
			continue
		}
		if in.RefStd == 0 {
			in.RefStd = stats.StdDev(obsCol)
		}
		in.Points = append(in.Points, plots.TaylorPoint{
			Label: p.Model,
			Color: a.pairColor(grp, p.Model, palette[i]),
			Std:   stats.StdDev(modCol),
			Corr:  stats.Pearson(obsCol, modCol),
		})
	}
	if len(in.Points) == 0 {
		return nil, nil
	}

	return in, nil
}

func (a *Analysis) spatialBiasInput(grp *control.PlotGroup, p *pairing.Paired, obsVar, domainType, domainName, title string, spec *control.VarSpec) (*plots.SpatialBiasInput, error) {
	frame, modVar, err := a.plotFrame(grp, p, obsVar, domainType, domainName)
	if err != nil || frame == nil {
		return nil, err
	}

	in := &plots.SpatialBiasInput{
		Title:      title + " " + p.Label(),
		Label:      p.Label(),
		Sites:      siteBias(frame, obsVar, modVar),
		FigKwargs:  grp.FigKwargs,
		TextKwargs: grp.TextKwargs,
	}
	if spec != nil {
		in.VDiff = spec.VDiffPlot
	}
	if len(in.Sites) == 0 {
		return nil, nil
	}

	return in, nil
}

func (a *Analysis) spatialOverlayInput(grp *control.PlotGroup, p *pairing.Paired, obsVar, domainType, domainName, title string, spec *control.VarSpec) (*plots.SpatialOverlayInput, error) {
	frame, _, err := a.plotFrame(grp, p, obsVar, domainType, domainName)
	if err != nil || frame == nil {
		return nil, err
	}

	modelFrame, ok := a.Models[p.Model]
	if !ok {
		return nil, errors.Errorf("model %s was not opened", p.Model)
	}
	modVar, err := a.modelVarName(p, obsVar)
	if err != nil {
		return nil, err
	}

	in := &plots.SpatialOverlayInput{
		Title:      title + " " + p.Label(),
		Cells:      cellMeans(modelFrame.SurfaceOnly(), modVar),
		Sites:      siteMeans(frame, obsVar),
		FigKwargs:  grp.FigKwargs,
		TextKwargs: grp.TextKwargs,
	}
	if spec != nil {
		in.VMin = spec.VMinPlot
		in.VMax = spec.VMaxPlot
		in.NLevels = spec.NLevelsPlot
	}
	if len(in.Cells) == 0 {
		return nil, nil
	}

	return in, nil
}

// plotFrame prepares the paired frame of one pair for one figure: domain
// filtering, then optional removal of rows with missing observations. A nil
// frame means the pair does not carry the variable or the domain is empty.
func (a *Analysis) plotFrame(grp *control.PlotGroup, p *pairing.Paired, obsVar, domainType, domainName string) (*dataset.Frame, string, error) {
	modVar, err := p.ModelVarFor(obsVar)
	if err != nil {
		a.logger.Debug().Str("pair", p.Label()).Str("variable", obsVar).Msg("variable not paired, skipped")

		return nil, "", nil
	}

	frame := p.Frame
	if domainType != "all" {
		frame, err = frame.FilterMeta(domainType, domainName)
		if err != nil {
			return nil, "", errors.Wrapf(err, "pair %s", p.Label())
		}
	}
	if grp.DataProc.RemObsNan {
		frame, err = frame.DropNaN(obsVar)
		if err != nil {
			return nil, "", errors.Wrapf(err, "pair %s", p.Label())
		}
	}
	if frame.Len() == 0 {
		return nil, "", nil
	}

	return frame, modVar, nil
}

// pairColor resolves the series color: per-model plot_kwargs win over the
// group default, which wins over the computed palette.
func (a *Analysis) pairColor(grp *control.PlotGroup, modLabel, fallback string) string {
	if mod, ok := a.Control.Models[modLabel]; ok && mod.PlotKwargs != nil {
		if v, ok := mod.PlotKwargs["color"]; ok {
			return cast.ToString(v)
		}
	}
	if grp.DefaultPlotKwargs != nil {
		if v, ok := grp.DefaultPlotKwargs["color"]; ok {
			return cast.ToString(v)
		}
	}

	return fallback
}

func (a *Analysis) plotTitle(obsVar, domainType, domainName string) string {
	title := fmt.Sprintf("%s  %s to %s", obsVar,
		a.Control.Analysis.StartTime.Format(plots.DateFormat),
		a.Control.Analysis.EndTime.Format(plots.DateFormat))
	if domainType != "all" {
		title += "  " + domainName
	}

	return title
}

// selectPairs resolves the pair labels of a plot or stats section.
func (a *Analysis) selectPairs(labels []string) ([]*pairing.Paired, error) {
	pairs := make([]*pairing.Paired, 0, len(labels))
	for _, label := range labels {
		p, ok := a.Paired[label]
		if !ok {
			return nil, errors.Errorf("pair %s was not built", label)
		}
		pairs = append(pairs, p)
	}

	return pairs, nil
}

// obsVarSpec finds the variable spec for an obs variable across the obs
// networks of the given pairs.
func (a *Analysis) obsVarSpec(pairs []*pairing.Paired, obsVar string) *control.VarSpec {
	for _, p := range pairs {
		obs, ok := a.Control.Obs[p.Obs]
		if !ok {
			continue
		}
		if spec, ok := obs.Variables[obsVar]; ok && spec != nil {
			return spec
		}
	}

	return nil
}

// modelVarName reverses the mapping: the model file variable matching an obs
// variable.
func (a *Analysis) modelVarName(p *pairing.Paired, obsVar string) (string, error) {
	mod, ok := a.Control.Models[p.Model]
	if !ok {
		return "", errors.Errorf("model %s is not declared", p.Model)
	}
	for modVar, mapped := range mod.Mapping[p.Obs] {
		if mapped == obsVar {
			return modVar, nil
		}
	}

	return "", errors.Errorf("model %s has no mapping for %q", p.Model, obsVar)
}

func unionObsVars(pairs []*pairing.Paired) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range pairs {
		for _, name := range p.ObsVars {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)

	return out
}

// finitePairs keeps the rows where both columns are finite.
func finitePairs(obs, mod []float64) ([]float64, []float64) {
	outObs := make([]float64, 0, len(obs))
	outMod := make([]float64, 0, len(mod))
	for i := range obs {
		if math.IsNaN(obs[i]) || math.IsNaN(mod[i]) {
			continue
		}
		outObs = append(outObs, obs[i])
		outMod = append(outMod, mod[i])
	}

	return outObs, outMod
}

type siteAcc struct {
	lat, lon, sum float64
	n             int
}

func accPoints(bySite map[string]*siteAcc) []plots.SitePoint {
	out := make([]plots.SitePoint, 0, len(bySite))
	for _, entry := range bySite {
		out = append(out, plots.SitePoint{Lat: entry.lat, Lon: entry.lon, Value: entry.sum / float64(entry.n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}

		return out[i].Lon < out[j].Lon
	})

	return out
}

// siteBias computes the mean model-obs difference per site.
func siteBias(frame *dataset.Frame, obsVar, modVar string) []plots.SitePoint {
	obsCol := frame.Vars[obsVar]
	modCol := frame.Vars[modVar]

	bySite := make(map[string]*siteAcc)
	for i, site := range frame.Sites {
		if math.IsNaN(obsCol[i]) || math.IsNaN(modCol[i]) {
			continue
		}
		entry, ok := bySite[site]
		if !ok {
			entry = &siteAcc{lat: frame.Lat[i], lon: frame.Lon[i]}
			bySite[site] = entry
		}
		entry.sum += modCol[i] - obsCol[i]
		entry.n++
	}

	return accPoints(bySite)
}

// siteMeans computes the mean value per site.
func siteMeans(frame *dataset.Frame, varName string) []plots.SitePoint {
	col := frame.Vars[varName]

	bySite := make(map[string]*siteAcc)
	for i, site := range frame.Sites {
		if math.IsNaN(col[i]) {
			continue
		}
		entry, ok := bySite[site]
		if !ok {
			entry = &siteAcc{lat: frame.Lat[i], lon: frame.Lon[i]}
			bySite[site] = entry
		}
		entry.sum += col[i]
		entry.n++
	}

	return accPoints(bySite)
}

// cellMeans computes the mean value per model grid cell.
func cellMeans(frame *dataset.Frame, varName string) []plots.SitePoint {
	col, ok := frame.Vars[varName]
	if !ok {
		return nil
	}

	type acc struct {
		sum float64
		n   int
	}
	byCell := make(map[dataset.Cell]*acc)
	for i := range frame.Times {
		if math.IsNaN(col[i]) {
			continue
		}
		cell := dataset.Cell{Lat: frame.Lat[i], Lon: frame.Lon[i]}
		entry, ok := byCell[cell]
		if !ok {
			entry = &acc{}
			byCell[cell] = entry
		}
		entry.sum += col[i]
		entry.n++
	}

	out := make([]plots.SitePoint, 0, len(byCell))
	for cell, entry := range byCell {
		out = append(out, plots.SitePoint{Lat: cell.Lat, Lon: cell.Lon, Value: entry.sum / float64(entry.n)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Lat != out[j].Lat {
			return out[i].Lat < out[j].Lat
		}

		return out[i].Lon < out[j].Lon
	})

	return out
}
