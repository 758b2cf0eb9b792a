package plots

import (
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// SitePoint is one geolocated value, either an obs site or a model cell.
type SitePoint struct {
	Lat   float64
	Lon   float64
	Value float64
}

// SpatialBiasInput describes a per-site mean bias map for one pair.
type SpatialBiasInput struct {
	Title string
	Label string
	Sites []SitePoint

	// VDiff bounds the diverging color ramp at [-VDiff, VDiff]; nil means
	// derived from the data.
	VDiff *float64

	FigKwargs  map[string]any
	TextKwargs map[string]any
}

// SpatialBias renders site markers on a longitude/latitude canvas, sized and
// colored by the magnitude and sign of the mean bias.
func SpatialBias(w io.Writer, in *SpatialBiasInput) error {
	sites := finiteSites(in.Sites)
	if len(sites) == 0 {
		return errors.New("spatial bias needs at least one site with a finite value")
	}

	width, height := figSize(in.FigKwargs, 750, 520)
	font := fontSize(in.TextKwargs, 12)

	geo, err := newGeoCanvas(sites, width, height)
	if err != nil {
		return err
	}

	vDiff := maxAbs(sites)
	if in.VDiff != nil && *in.VDiff > 0 {
		vDiff = *in.VDiff
	}

	doc := &svgDoc{Width: width, Height: height}
	geo.drawFrame(doc, font)

	for _, site := range sites {
		x, y := geo.at(site.Lon, site.Lat)
		fill, err := biasColor(site.Value, vDiff)
		if err != nil {
			return err
		}
		r := 3 + 7*math.Min(1, math.Abs(site.Value)/vDiff)
		doc.Circles = append(doc.Circles, svgCircle{
			CX: x, CY: y, R: r,
			Fill: fill, Stroke: "#333333", StrokeWidth: 0.5,
		})
	}

	err = drawColorBar(doc, geo, font, -vDiff, vDiff, 0, biasColor)
	if err != nil {
		return err
	}

	doc.Texts = append(doc.Texts, svgText{
		X: float64(width) / 2, Y: 22,
		FontSize: font + 4, Anchor: "middle", Fill: "black",
		Text: escapeText(in.Title),
	})

	return render(w, doc)
}

// SpatialOverlayInput describes a model field with the obs sites laid over it.
type SpatialOverlayInput struct {
	Title string
	Cells []SitePoint // window-mean model value per grid cell
	Sites []SitePoint // window-mean obs value per site

	VMin    *float64
	VMax    *float64
	NLevels int

	FigKwargs  map[string]any
	TextKwargs map[string]any
}

// SpatialOverlay renders the model field as shaded grid cells with the obs
// site means drawn on top using the same color scale.
func SpatialOverlay(w io.Writer, in *SpatialOverlayInput) error {
	cells := finiteSites(in.Cells)
	if len(cells) == 0 {
		return errors.New("spatial overlay needs at least one cell with a finite value")
	}
	sites := finiteSites(in.Sites)

	width, height := figSize(in.FigKwargs, 750, 520)
	font := fontSize(in.TextKwargs, 12)

	all := append(append([]SitePoint{}, cells...), sites...)
	geo, err := newGeoCanvas(all, width, height)
	if err != nil {
		return err
	}

	vMin, vMax := valueRange(all)
	if in.VMin != nil {
		vMin = *in.VMin
	}
	if in.VMax != nil {
		vMax = *in.VMax
	}
	if vMax <= vMin {
		vMax = vMin + 1
	}
	levels := in.NLevels
	if levels < 2 {
		levels = 10
	}

	color := func(v, _ float64) (string, error) {
		fraction := (v - vMin) / (vMax - vMin)
		// Discretize onto the configured number of levels.
		fraction = math.Floor(fraction*float64(levels)) / float64(levels-1)

		return rampColor(fraction)
	}

	doc := &svgDoc{Width: width, Height: height}

	cellW, cellH := geo.cellSize(cells)
	for _, cell := range cells {
		x, y := geo.at(cell.Lon, cell.Lat)
		fill, err := color(cell.Value, 0)
		if err != nil {
			return err
		}
		doc.Rects = append(doc.Rects, svgRect{
			X: x - cellW/2, Y: y - cellH/2, W: cellW, H: cellH,
			Fill: fill, Stroke: "none", StrokeWidth: 0,
		})
	}

	for _, site := range sites {
		x, y := geo.at(site.Lon, site.Lat)
		fill, err := color(site.Value, 0)
		if err != nil {
			return err
		}
		doc.Circles = append(doc.Circles, svgCircle{
			CX: x, CY: y, R: 5,
			Fill: fill, Stroke: "#333333", StrokeWidth: 1,
		})
	}

	geo.drawFrame(doc, font)

	err = drawColorBar(doc, geo, font, vMin, vMax, levels, color)
	if err != nil {
		return err
	}

	doc.Texts = append(doc.Texts, svgText{
		X: float64(width) / 2, Y: 22,
		FontSize: font + 4, Anchor: "middle", Fill: "black",
		Text: escapeText(in.Title),
	})

	return render(w, doc)
}

// geoCanvas maps longitude/latitude onto the plot area.
type geoCanvas struct {
	xs, ys                  scale
	left, top, plotW, plotH float64
}

func newGeoCanvas(points []SitePoint, width, height int) (*geoCanvas, error) {
	lonMin, lonMax := math.Inf(1), math.Inf(-1)
	latMin, latMax := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		lonMin = math.Min(lonMin, p.Lon)
		lonMax = math.Max(lonMax, p.Lon)
		latMin = math.Min(latMin, p.Lat)
		latMax = math.Max(latMax, p.Lat)
	}
	if math.IsInf(lonMin, 1) {
		return nil, errors.New("no locations to draw")
	}

	// Pad so border points do not sit on the frame.
	lonPad := math.Max(0.5, (lonMax-lonMin)*0.05)
	latPad := math.Max(0.5, (latMax-latMin)*0.05)

	const (
		left   = 60.0
		right  = 90.0 // leaves room for the color bar
		top    = 45.0
		bottom = 50.0
	)
	plotW := float64(width) - left - right
	plotH := float64(height) - top - bottom

	return &geoCanvas{
		xs:    newScale(lonMin-lonPad, lonMax+lonPad, left, left+plotW),
		ys:    newScale(latMin-latPad, latMax+latPad, top+plotH, top),
		left:  left,
		top:   top,
		plotW: plotW,
		plotH: plotH,
	}, nil
}

func (g *geoCanvas) at(lon, lat float64) (float64, float64) {
	return g.xs.at(lon), g.ys.at(lat)
}

func (g *geoCanvas) drawFrame(doc *svgDoc, font int) {
	doc.Rects = append(doc.Rects, svgRect{
		X: g.left, Y: g.top, W: g.plotW, H: g.plotH,
		Fill: "none", Stroke: "#333333", StrokeWidth: 1,
	})
	for _, tick := range niceTicks(g.xs.dMin, g.xs.dMax, 6) {
		doc.Texts = append(doc.Texts, svgText{
			X: g.xs.at(tick), Y: g.top + g.plotH + 18,
			FontSize: font, Anchor: "middle", Fill: "black",
			Text: formatTick(tick),
		})
	}
	for _, tick := range niceTicks(g.ys.dMax, g.ys.dMin, 6) {
		doc.Texts = append(doc.Texts, svgText{
			X: g.left - 8, Y: g.ys.at(tick) + float64(font)/3,
			FontSize: font, Anchor: "end", Fill: "black",
			Text: formatTick(tick),
		})
	}
}

// cellSize estimates the pixel footprint of one grid cell from the smallest
// spacing between distinct cell coordinates.
func (g *geoCanvas) cellSize(cells []SitePoint) (float64, float64) {
	lonStep := minStep(uniqueSorted(cells, func(p SitePoint) float64 { return p.Lon }))
	latStep := minStep(uniqueSorted(cells, func(p SitePoint) float64 { return p.Lat }))

	w := 12.0
	if lonStep > 0 {
		w = math.Abs(g.xs.at(g.xs.dMin+lonStep) - g.xs.at(g.xs.dMin))
	}
	h := 12.0
	if latStep > 0 {
		h = math.Abs(g.ys.at(g.ys.dMin+latStep) - g.ys.at(g.ys.dMin))
	}

	return w, h
}

// drawColorBar adds a vertical color scale on the right of the plot area. The
// color function receives a value and the symmetric bound used by bias maps.
func drawColorBar(doc *svgDoc, geo *geoCanvas, font int, vMin, vMax float64, _ int, color func(v, bound float64) (string, error)) error {
	const (
		barW   = 16.0
		strips = 40
	)
	barX := geo.left + geo.plotW + 24
	barH := geo.plotH * 0.8
	barY := geo.top + (geo.plotH-barH)/2
	bound := math.Max(math.Abs(vMin), math.Abs(vMax))

	stripH := barH / strips
	for i := 0; i < strips; i++ {
		v := vMax - (vMax-vMin)*(float64(i)+0.5)/strips
		fill, err := color(v, bound)
		if err != nil {
			return err
		}
		doc.Rects = append(doc.Rects, svgRect{
			X: barX, Y: barY + float64(i)*stripH, W: barW, H: stripH + 0.5,
			Fill: fill, Stroke: "none", StrokeWidth: 0,
		})
	}
	doc.Rects = append(doc.Rects, svgRect{
		X: barX, Y: barY, W: barW, H: barH,
		Fill: "none", Stroke: "#333333", StrokeWidth: 0.5,
	})

	vs := newScale(vMin, vMax, barY+barH, barY)
	for _, tick := range niceTicks(vMin, vMax, 5) {
		doc.Texts = append(doc.Texts, svgText{
			X: barX + barW + 6, Y: vs.at(tick) + float64(font)/3,
			FontSize: font - 1, Anchor: "start", Fill: "black",
			Text: formatTick(tick),
		})
	}

	return nil
}

func finiteSites(points []SitePoint) []SitePoint {
	out := make([]SitePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}

	return out
}

func maxAbs(points []SitePoint) float64 {
	max := 0.0
	for _, p := range points {
		max = math.Max(max, math.Abs(p.Value))
	}
	if max == 0 {
		max = 1
	}

	return max
}

func valueRange(points []SitePoint) (float64, float64) {
	min, max := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		min = math.Min(min, p.Value)
		max = math.Max(max, p.Value)
	}

	return min, max
}

func uniqueSorted(points []SitePoint, get func(SitePoint) float64) []float64 {
	seen := make(map[float64]struct{})
	out := make([]float64, 0, len(points))
	for _, p := range points {
		v := get(p)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Float64s(out)

	return out
}

func minStep(sorted []float64) float64 {
	step := 0.0
	for i := 1; i < len(sorted); i++ {
		d := sorted[i] - sorted[i-1]
		if d > 0 && (step == 0 || d < step) {
			step = d
		}
	}

	return step
}
