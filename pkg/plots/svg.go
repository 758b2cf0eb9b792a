package plots

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

//nolint:lll //this is a template
const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<rect width="{{.Width}}" height="{{.Height}}" fill="white"/>
{{range .Rects}}
<rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"/>
{{end}}
{{range .Lines}}
<line x1="{{.X1}}" y1="{{.Y1}}" x2="{{.X2}}" y2="{{.Y2}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"{{if .Dash}} stroke-dasharray="{{.Dash}}"{{end}}/>
{{end}}
{{range .Polylines}}
<polyline points="{{.Points}}" fill="none" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"{{if .Dash}} stroke-dasharray="{{.Dash}}"{{end}}/>
{{end}}
{{range .Paths}}
<path d="{{.D}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"{{if .Dash}} stroke-dasharray="{{.Dash}}"{{end}}/>
{{end}}
{{range .Circles}}
<circle cx="{{.CX}}" cy="{{.CY}}" r="{{.R}}" fill="{{.Fill}}" stroke="{{.Stroke}}" stroke-width="{{.StrokeWidth}}"/>
{{end}}
{{range .Texts}}
<text x="{{.X}}" y="{{.Y}}" font-size="{{.FontSize}}" text-anchor="{{.Anchor}}" font-family="sans-serif" fill="{{.Fill}}"{{if .Rotate}} transform="rotate({{.Rotate}} {{.X}} {{.Y}})"{{end}}>{{.Text}}</text>
{{end}}
</svg>
`

type svgRect struct {
	X, Y, W, H  float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

type svgLine struct {
	X1, Y1, X2, Y2 float64
	Stroke         string
	StrokeWidth    float64
	Dash           string
}

type svgPolyline struct {
	Points      string
	Stroke      string
	StrokeWidth float64
	Dash        string
}

type svgPath struct {
	D           string
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        string
}

type svgCircle struct {
	CX, CY, R   float64
	Fill        string
	Stroke      string
	StrokeWidth float64
}

type svgText struct {
	X, Y     float64
	FontSize int
	Anchor   string
	Fill     string
	Rotate   int
	Text     string
}

type svgDoc struct {
	Width, Height int

	Rects     []svgRect
	Lines     []svgLine
	Polylines []svgPolyline
	Paths     []svgPath
	Circles   []svgCircle
	Texts     []svgText
}

func render(w io.Writer, doc *svgDoc) error {
	tpl, err := template.New("svgTemplate").Parse(svgTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(w, doc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	return replacer.Replace(fmt.Sprint(s))
}

// figSize reads width/height from fig_kwargs, falling back to the defaults.
func figSize(kwargs map[string]any, defW, defH int) (int, int) {
	w, h := defW, defH
	if v, ok := kwargs["width"]; ok {
		w = cast.ToInt(v)
	}
	if v, ok := kwargs["height"]; ok {
		h = cast.ToInt(v)
	}

	return w, h
}

// fontSize reads fontsize from text_kwargs, falling back to the default.
func fontSize(kwargs map[string]any, def int) int {
	if v, ok := kwargs["fontsize"]; ok {
		return cast.ToInt(v)
	}

	return def
}

// scale is a linear mapping from data space to pixel space.
type scale struct {
	dMin, dMax float64
	pMin, pMax float64
}

func newScale(dMin, dMax, pMin, pMax float64) scale {
	if dMax == dMin {
		dMax = dMin + 1
	}

	return scale{dMin: dMin, dMax: dMax, pMin: pMin, pMax: pMax}
}

func (s scale) at(v float64) float64 {
	return s.pMin + (v-s.dMin)/(s.dMax-s.dMin)*(s.pMax-s.pMin)
}

// niceTicks returns around n round values covering [min, max].
func niceTicks(min, max float64, n int) []float64 {
	if n < 2 {
		n = 2
	}
	span := max - min
	if span <= 0 {
		return []float64{min}
	}

	rawStep := span / float64(n-1)
	mag := math.Pow(10, math.Floor(math.Log10(rawStep)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= rawStep {
			step = m * mag

			break
		}
	}

	ticks := make([]float64, 0, n+2)
	for v := math.Ceil(min/step) * step; v <= max+step/1e6; v += step {
		ticks = append(ticks, v)
	}

	return ticks
}

func formatTick(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e7 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}

	return strconv.FormatFloat(v, 'g', 4, 64)
}

func point(x, y float64) string {
	return strconv.FormatFloat(x, 'f', 1, 64) + "," + strconv.FormatFloat(y, 'f', 1, 64)
}

// dataRange returns the finite min and max across the given columns.
func dataRange(cols ...[]float64) (float64, float64, bool) {
	min, max := math.Inf(1), math.Inf(-1)
	found := false
	for _, col := range cols {
		for _, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			found = true
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	return min, max, found
}
