package pairing

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/dataset"
)

// Paired is one obs/model paired dataset. ObsVars and ModelVars are aligned
// by index and name the columns of Frame; when a model variable collides
// with its obs counterpart the model column is suffixed with "_new".
type Paired struct {
	Obs       string
	Model     string
	ObsVars   []string
	ModelVars []string
	Frame     *dataset.Frame
}

// Label returns the "<obs>_<model>" identifier of the pair.
func (p *Paired) Label() string {
	return p.Obs + "_" + p.Model
}

// ModelVarFor returns the paired-frame model column matching the obs variable.
func (p *Paired) ModelVarFor(obsVar string) (string, error) {
	for i, name := range p.ObsVars {
		if name == obsVar {
			return p.ModelVars[i], nil
		}
	}

	return "", errors.Errorf("pair %s has no model variable for %q", p.Label(), obsVar)
}

// PairPointSurface pairs a gridded model frame with a surface point network.
// The mapping maps model variable names to obs variable names. A site pairs
// with the nearest model cell within radiusM meters; sites with no cell in
// range produce NaN model values.
func PairPointSurface(modelFrame, obsFrame *dataset.Frame, mapping map[string]string, obsLabel, modLabel string, radiusM float64) (*Paired, error) {
	if radiusM <= 0 {
		return nil, errors.New("radius of influence must be positive")
	}

	// Only the surface level pairs with surface observations.
	model := modelFrame.SurfaceOnly()

	modVars := make([]string, 0, len(mapping))
	for modVar := range mapping {
		if _, ok := model.Vars[modVar]; !ok {
			return nil, errors.Errorf("model %s has no variable %q", modLabel, modVar)
		}
		modVars = append(modVars, modVar)
	}
	sort.Strings(modVars)
	for _, modVar := range modVars {
		obsVar := mapping[modVar]
		if _, ok := obsFrame.Vars[obsVar]; !ok {
			return nil, errors.Errorf("obs %s has no variable %q", obsLabel, obsVar)
		}
	}

	// Index model rows by cell and timestamp.
	cells := model.UniqueCells()
	if len(cells) == 0 {
		return nil, errors.Errorf("model %s has no data", modLabel)
	}
	rowIdx := make(map[dataset.Cell]map[int64]int, len(cells))
	for i := range model.Times {
		cell := dataset.Cell{Lat: model.Lat[i], Lon: model.Lon[i]}
		byTime, ok := rowIdx[cell]
		if !ok {
			byTime = make(map[int64]int)
			rowIdx[cell] = byTime
		}
		byTime[model.Times[i].Unix()] = i
	}

	// Nearest cell per site, within the radius of influence.
	siteCell := make(map[string]dataset.Cell)
	for _, site := range obsFrame.UniqueSites() {
		best := cells[0]
		bestDist := math.Inf(1)
		for _, cell := range cells {
			dist := haversineM(site.Lat, site.Lon, cell.Lat, cell.Lon)
			if dist < bestDist {
				best, bestDist = cell, dist
			}
		}
		if bestDist <= radiusM {
			siteCell[site.ID] = best
		}
	}

	paired := &Paired{
		Obs:   obsLabel,
		Model: modLabel,
		Frame: obsFrame.Copy(),
	}

	for _, modVar := range modVars {
		obsVar := mapping[modVar]
		outName := modVar
		if outName == obsVar {
			outName += "_new"
		}

		col := make([]float64, paired.Frame.Len())
		for i := range col {
			col[i] = math.NaN()
			cell, ok := siteCell[paired.Frame.Sites[i]]
			if !ok {
				continue
			}
			row, ok := rowIdx[cell][paired.Frame.Times[i].Unix()]
			if !ok {
				continue
			}
			col[i] = model.Vars[modVar][row]
		}
		paired.Frame.Vars[outName] = col

		paired.ObsVars = append(paired.ObsVars, obsVar)
		paired.ModelVars = append(paired.ModelVars, outName)
	}

	return paired, nil
}
