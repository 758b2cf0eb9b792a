package plots

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Series is one named line of a time series figure.
type Series struct {
	Label  string
	Color  string
	Times  []time.Time
	Values []float64
}

// TimeseriesInput describes a time series figure. The first series is drawn
// on top with emphasis, which by convention is the observation.
type TimeseriesInput struct {
	Title  string
	YLabel string
	Series []Series

	// Axis bounds; nil means derived from the data.
	VMin *float64
	VMax *float64

	FigKwargs  map[string]any
	TextKwargs map[string]any
}

// Timeseries renders one line per series against a shared time axis.
func Timeseries(w io.Writer, in *TimeseriesInput) error {
	if len(in.Series) == 0 {
		return errors.New("timeseries needs at least one series")
	}

	width, height := figSize(in.FigKwargs, 900, 420)
	font := fontSize(in.TextKwargs, 12)

	const (
		left   = 70.0
		right  = 20.0
		top    = 45.0
		bottom = 60.0
	)
	plotW := float64(width) - left - right
	plotH := float64(height) - top - bottom

	tMin, tMax, vMin, vMax, err := timeseriesRange(in)
	if err != nil {
		return err
	}

	xs := newScale(float64(tMin.Unix()), float64(tMax.Unix()), left, left+plotW)
	ys := newScale(vMin, vMax, top+plotH, top)

	doc := &svgDoc{Width: width, Height: height}
	drawFrame(doc, left, top, plotW, plotH)
	drawYAxis(doc, ys, left, plotW, font)
	drawTimeAxis(doc, xs, tMin, tMax, top+plotH, font)

	for i := len(in.Series) - 1; i >= 0; i-- {
		s := in.Series[i]
		strokeWidth := 1.5
		if i == 0 {
			strokeWidth = 2.5
		}
		for _, segment := range polylineSegments(s, xs, ys) {
			doc.Polylines = append(doc.Polylines, svgPolyline{
				Points:      segment,
				Stroke:      s.Color,
				StrokeWidth: strokeWidth,
			})
		}
	}

	drawLegend(doc, in.Series, left, plotW, font)

	doc.Texts = append(doc.Texts,
		svgText{
			X: left + plotW/2, Y: 22,
			FontSize: font + 4, Anchor: "middle", Fill: "black",
			Text: escapeText(in.Title),
		},
		svgText{
			X: 18, Y: top + plotH/2,
			FontSize: font, Anchor: "middle", Fill: "black", Rotate: -90,
			Text: escapeText(in.YLabel),
		},
	)

	return render(w, doc)
}

func timeseriesRange(in *TimeseriesInput) (time.Time, time.Time, float64, float64, error) {
	var tMin, tMax time.Time
	cols := make([][]float64, 0, len(in.Series))
	for _, s := range in.Series {
		if len(s.Times) != len(s.Values) {
			return tMin, tMax, 0, 0, errors.Errorf("series %s has %d timestamps for %d values", s.Label, len(s.Times), len(s.Values))
		}
		for _, t := range s.Times {
			if tMin.IsZero() || t.Before(tMin) {
				tMin = t
			}
			if tMax.IsZero() || t.After(tMax) {
				tMax = t
			}
		}
		cols = append(cols, s.Values)
	}
	if tMin.IsZero() {
		return tMin, tMax, 0, 0, errors.New("timeseries has no timestamps")
	}

	vMin, vMax, found := dataRange(cols...)
	if !found {
		vMin, vMax = 0, 1
	}
	if in.VMin != nil {
		vMin = *in.VMin
	}
	if in.VMax != nil {
		vMax = *in.VMax
	}
	if vMax <= vMin {
		vMax = vMin + 1
	}

	return tMin, tMax, vMin, vMax, nil
}

// polylineSegments converts a series to point strings, split at NaN gaps.
func polylineSegments(s Series, xs, ys scale) []string {
	segments := make([]string, 0, 1)
	current := make([]string, 0, len(s.Values))
	flush := func() {
		if len(current) > 1 {
			segments = append(segments, strings.Join(current, " "))
		}
		current = current[:0]
	}

	for i, v := range s.Values {
		if math.IsNaN(v) {
			flush()

			continue
		}
		current = append(current, point(xs.at(float64(s.Times[i].Unix())), ys.at(v)))
	}
	flush()

	return segments
}

func drawFrame(doc *svgDoc, left, top, plotW, plotH float64) {
	doc.Rects = append(doc.Rects, svgRect{
		X: left, Y: top, W: plotW, H: plotH,
		Fill: "none", Stroke: "#333333", StrokeWidth: 1,
	})
}

func drawYAxis(doc *svgDoc, ys scale, left, plotW float64, font int) {
	for _, tick := range niceTicks(math.Min(ys.dMin, ys.dMax), math.Max(ys.dMin, ys.dMax), 6) {
		y := ys.at(tick)
		doc.Lines = append(doc.Lines, svgLine{
			X1: left, Y1: y, X2: left + plotW, Y2: y,
			Stroke: "#dddddd", StrokeWidth: 0.5,
		})
		doc.Texts = append(doc.Texts, svgText{
			X: left - 8, Y: y + float64(font)/3,
			FontSize: font, Anchor: "end", Fill: "black",
			Text: formatTick(tick),
		})
	}
}

func drawTimeAxis(doc *svgDoc, xs scale, tMin, tMax time.Time, baseline float64, font int) {
	layout := "01-02 15:04"
	if tMax.Sub(tMin) > 3*24*time.Hour {
		layout = "2006-01-02"
	}

	for _, tick := range niceTicks(xs.dMin, xs.dMax, 6) {
		x := xs.at(tick)
		doc.Lines = append(doc.Lines, svgLine{
			X1: x, Y1: baseline, X2: x, Y2: baseline + 5,
			Stroke: "#333333", StrokeWidth: 1,
		})
		doc.Texts = append(doc.Texts, svgText{
			X: x, Y: baseline + 18,
			FontSize: font, Anchor: "middle", Fill: "black",
			Text: time.Unix(int64(tick), 0).UTC().Format(layout),
		})
	}
}

func drawLegend(doc *svgDoc, series []Series, left, plotW float64, font int) {
	x := left + plotW - 10
	y := 52.0
	for i := len(series) - 1; i >= 0; i-- {
		s := series[i]
		doc.Texts = append(doc.Texts, svgText{
			X: x, Y: y + float64(len(series)-1-i)*float64(font+6),
			FontSize: font, Anchor: "end", Fill: s.Color,
			Text: escapeText(s.Label),
		})
	}
}
