package plots

import (
	"io"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// Box is one labelled distribution of a box plot.
type Box struct {
	Label  string
	Color  string
	Values []float64
}

// BoxplotInput describes a box plot figure, one box per data source.
type BoxplotInput struct {
	Title  string
	YLabel string
	Boxes  []Box

	VMin *float64
	VMax *float64

	FigKwargs  map[string]any
	TextKwargs map[string]any
}

type fiveNumber struct {
	min, q1, median, q3, max float64
}

// Boxplot renders quartile boxes with whiskers at the distribution extremes.
func Boxplot(w io.Writer, in *BoxplotInput) error {
	if len(in.Boxes) == 0 {
		return errors.New("boxplot needs at least one box")
	}

	width, height := figSize(in.FigKwargs, 600, 450)
	font := fontSize(in.TextKwargs, 12)

	const (
		left   = 70.0
		right  = 20.0
		top    = 45.0
		bottom = 60.0
	)
	plotW := float64(width) - left - right
	plotH := float64(height) - top - bottom

	summaries := make([]fiveNumber, len(in.Boxes))
	vMin, vMax := math.Inf(1), math.Inf(-1)
	for i, box := range in.Boxes {
		summary, err := summarize(box.Values)
		if err != nil {
			return errors.Wrapf(err, "box %s", box.Label)
		}
		summaries[i] = summary
		vMin = math.Min(vMin, summary.min)
		vMax = math.Max(vMax, summary.max)
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

	ys := newScale(vMin, vMax, top+plotH, top)

	doc := &svgDoc{Width: width, Height: height}
	drawFrame(doc, left, top, plotW, plotH)
	drawYAxis(doc, ys, left, plotW, font)

	slot := plotW / float64(len(in.Boxes))
	boxW := slot * 0.5
	for i, box := range in.Boxes {
		center := left + slot*(float64(i)+0.5)
		drawBox(doc, summaries[i], center, boxW, ys, box.Color)
		doc.Texts = append(doc.Texts, svgText{
			X: center, Y: top + plotH + 18,
			FontSize: font, Anchor: "middle", Fill: "black",
			Text: escapeText(box.Label),
		})
	}

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

func drawBox(doc *svgDoc, s fiveNumber, center, boxW float64, ys scale, color string) {
	yQ1 := ys.at(s.q1)
	yQ3 := ys.at(s.q3)
	yMed := ys.at(s.median)
	yMin := ys.at(s.min)
	yMax := ys.at(s.max)

	doc.Rects = append(doc.Rects, svgRect{
		X: center - boxW/2, Y: yQ3, W: boxW, H: yQ1 - yQ3,
		Fill: color, Stroke: "#333333", StrokeWidth: 1,
	})
	doc.Lines = append(doc.Lines,
		svgLine{X1: center - boxW/2, Y1: yMed, X2: center + boxW/2, Y2: yMed, Stroke: "#333333", StrokeWidth: 2},
		svgLine{X1: center, Y1: yQ3, X2: center, Y2: yMax, Stroke: "#333333", StrokeWidth: 1},
		svgLine{X1: center, Y1: yQ1, X2: center, Y2: yMin, Stroke: "#333333", StrokeWidth: 1},
		svgLine{X1: center - boxW/4, Y1: yMax, X2: center + boxW/4, Y2: yMax, Stroke: "#333333", StrokeWidth: 1},
		svgLine{X1: center - boxW/4, Y1: yMin, X2: center + boxW/4, Y2: yMin, Stroke: "#333333", StrokeWidth: 1},
	)
}

// summarize computes the five-number summary over the finite values.
func summarize(values []float64) (fiveNumber, error) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		finite = append(finite, v)
	}
	if len(finite) == 0 {
		return fiveNumber{}, errors.New("no finite values")
	}
	sort.Float64s(finite)

	return fiveNumber{
		min:    finite[0],
		q1:     quantile(finite, 0.25),
		median: quantile(finite, 0.5),
		q3:     quantile(finite, 0.75),
		max:    finite[len(finite)-1],
	}, nil
}

// quantile interpolates linearly between the closest ranks. The input must be
// sorted and non-empty.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}

	return sorted[lower] + (pos-float64(lower))*(sorted[upper]-sorted[lower])
}
