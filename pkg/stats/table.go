package stats

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

//nolint:lll //this is a template
const tableTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="{{.Width}}" height="{{.Height}}" viewBox="0 0 {{.Width}} {{.Height}}">
<rect width="{{.Width}}" height="{{.Height}}" fill="white"/>
<text x="{{.TitleX}}" y="24" font-size="{{.TitleSize}}" text-anchor="middle" font-family="sans-serif">{{.Title}}</text>
{{range .Cells}}
<rect x="{{.X}}" y="{{.Y}}" width="{{.W}}" height="{{.H}}" fill="{{.Fill}}" stroke="#333333" stroke-width="0.5"/>
<text x="{{.TextX}}" y="{{.TextY}}" font-size="{{.FontSize}}" text-anchor="middle" font-family="sans-serif">{{.Text}}</text>
{{end}}
</svg>
`

type tableCell struct {
	X, Y, W, H   int
	TextX, TextY int
	FontSize     int
	Fill         string
	Text         string
}

type tableDoc struct {
	Width, Height int
	TitleX        int
	TitleSize     int
	Title         string
	Cells         []tableCell
}

// RenderSVG writes the table as an SVG figure. Recognised kwargs:
// fontsize, cell_width, cell_height.
func (t *Table) RenderSVG(w io.Writer, title string, kwargs map[string]any) error {
	fontSize := 12
	cellW := 130
	cellH := 26
	if kwargs != nil {
		if v, ok := kwargs["fontsize"]; ok {
			fontSize = cast.ToInt(v)
		}
		if v, ok := kwargs["cell_width"]; ok {
			cellW = cast.ToInt(v)
		}
		if v, ok := kwargs["cell_height"]; ok {
			cellH = cast.ToInt(v)
		}
	}

	fullNames, err := FullNames(t.StatList, true)
	if err != nil {
		return err
	}

	cols := len(t.PairLabels) + 1
	rows := len(t.StatList) + 1
	const top = 40
	doc := tableDoc{
		Width:     cols*cellW + 20,
		Height:    top + rows*cellH + 10,
		TitleX:    (cols*cellW + 20) / 2,
		TitleSize: fontSize + 4,
		Title:     escapeText(title),
	}

	header := append([]string{"Stat"}, t.PairLabels...)
	for col, text := range header {
		doc.Cells = append(doc.Cells, newCell(col, 0, cellW, cellH, top, fontSize, "#d9e2f3", text))
	}
	for row := range t.StatList {
		doc.Cells = append(doc.Cells, newCell(0, row+1, cellW, cellH, top, fontSize, "#f2f2f2", fullNames[row]))
		for col := range t.PairLabels {
			doc.Cells = append(doc.Cells, newCell(col+1, row+1, cellW, cellH, top, fontSize, "white", t.format(t.Values[row][col])))
		}
	}

	tpl, err := template.New("tableTemplate").Parse(tableTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	return errors.Wrap(tpl.Execute(w, doc), "unable to execute template")
}

func newCell(col, row, cellW, cellH, top, fontSize int, fill, text string) tableCell {
	x := 10 + col*cellW
	y := top + row*cellH

	return tableCell{
		X: x, Y: y, W: cellW, H: cellH,
		TextX:    x + cellW/2,
		TextY:    y + cellH/2 + fontSize/3,
		FontSize: fontSize,
		Fill:     fill,
		Text:     escapeText(text),
	}
}

func escapeText(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	return replacer.Replace(fmt.Sprint(s))
}
