package plots

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// TaylorPoint is one model placed on a Taylor diagram by its standard
// deviation and its correlation against the observation.
type TaylorPoint struct {
	Label string
	Color string
	Std   float64
	Corr  float64
}

// TaylorInput describes a Taylor diagram figure.
type TaylorInput struct {
	Title  string
	Label  string // variable label on the radial axis
	RefStd float64
	Points []TaylorPoint

	// Scale stretches the radial axis as a multiple of RefStd.
	Scale float64

	FigKwargs  map[string]any
	TextKwargs map[string]any
}

// Taylor renders a quarter-circle Taylor diagram: radius is standard
// deviation, azimuth is the arc cosine of the correlation coefficient.
func Taylor(w io.Writer, in *TaylorInput) error {
	if in.RefStd <= 0 || math.IsNaN(in.RefStd) {
		return errors.New("taylor needs a positive reference deviation")
	}

	width, height := figSize(in.FigKwargs, 560, 560)
	font := fontSize(in.TextKwargs, 12)

	scaleFactor := in.Scale
	if scaleFactor <= 0 {
		scaleFactor = 1.5
	}
	rMax := in.RefStd * scaleFactor

	const (
		left   = 70.0
		top    = 55.0
		margin = 40.0
	)
	radiusPx := math.Min(float64(width)-left-margin, float64(height)-top-margin)
	originX := left
	originY := top + radiusPx

	toPx := func(std, corr float64) (float64, float64) {
		r := std / rMax * radiusPx
		theta := math.Acos(math.Max(-1, math.Min(1, corr)))

		return originX + r*math.Cos(theta), originY - r*math.Sin(theta)
	}

	doc := &svgDoc{Width: width, Height: height}

	// Radial axes.
	doc.Lines = append(doc.Lines,
		svgLine{X1: originX, Y1: originY, X2: originX + radiusPx, Y2: originY, Stroke: "#333333", StrokeWidth: 1},
		svgLine{X1: originX, Y1: originY, X2: originX, Y2: originY - radiusPx, Stroke: "#333333", StrokeWidth: 1},
	)

	// Standard deviation arcs.
	for _, tick := range niceTicks(0, rMax, 5) {
		if tick <= 0 {
			continue
		}
		r := tick / rMax * radiusPx
		doc.Paths = append(doc.Paths, svgPath{
			D:      quarterArc(originX, originY, r),
			Fill:   "none",
			Stroke: "#cccccc", StrokeWidth: 0.7,
		})
		doc.Texts = append(doc.Texts, svgText{
			X: originX + r, Y: originY + 16,
			FontSize: font, Anchor: "middle", Fill: "black",
			Text: formatTick(tick),
		})
	}

	// Correlation rays.
	for _, corr := range []float64{0.2, 0.4, 0.6, 0.8, 0.9, 0.95, 0.99} {
		x, y := toPx(rMax, corr)
		doc.Lines = append(doc.Lines, svgLine{
			X1: originX, Y1: originY, X2: x, Y2: y,
			Stroke: "#cccccc", StrokeWidth: 0.7, Dash: "4 3",
		})
		lx, ly := toPx(rMax*1.04, corr)
		doc.Texts = append(doc.Texts, svgText{
			X: lx, Y: ly,
			FontSize: font - 2, Anchor: "start", Fill: "#555555",
			Text: formatTick(corr),
		})
	}

	// Reference arc and marker.
	refR := in.RefStd / rMax * radiusPx
	doc.Paths = append(doc.Paths, svgPath{
		D:      quarterArc(originX, originY, refR),
		Fill:   "none",
		Stroke: "#333333", StrokeWidth: 1, Dash: "6 4",
	})
	doc.Circles = append(doc.Circles, svgCircle{
		CX: originX + refR, CY: originY, R: 5,
		Fill: ObsColor, Stroke: "white", StrokeWidth: 1,
	})

	legendY := top
	for _, p := range in.Points {
		if math.IsNaN(p.Std) || math.IsNaN(p.Corr) {
			continue
		}
		x, y := toPx(p.Std, p.Corr)
		doc.Circles = append(doc.Circles, svgCircle{
			CX: x, CY: y, R: 5,
			Fill: p.Color, Stroke: "white", StrokeWidth: 1,
		})
		doc.Texts = append(doc.Texts, svgText{
			X: float64(width) - margin, Y: legendY,
			FontSize: font, Anchor: "end", Fill: p.Color,
			Text: escapeText(p.Label),
		})
		legendY += float64(font + 6)
	}

	doc.Texts = append(doc.Texts,
		svgText{
			X: originX + radiusPx/2, Y: 24,
			FontSize: font + 4, Anchor: "middle", Fill: "black",
			Text: escapeText(in.Title),
		},
		svgText{
			X: originX + radiusPx/2, Y: originY + 36,
			FontSize: font, Anchor: "middle", Fill: "black",
			Text: escapeText("Standard deviation (" + in.Label + ")"),
		},
		svgText{
			X: originX + radiusPx*0.78, Y: originY - radiusPx*0.82,
			FontSize: font, Anchor: "middle", Fill: "black", Rotate: 45,
			Text: "Correlation",
		},
	)

	return render(w, doc)
}

// quarterArc draws a quarter circle from the x axis up to the y axis around
// the given origin.
func quarterArc(originX, originY, r float64) string {
	return fmt.Sprintf("M %.1f %.1f A %.1f %.1f 0 0 0 %.1f %.1f",
		originX+r, originY, r, r, originX, originY-r)
}
