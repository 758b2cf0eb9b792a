package plots

import (
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint
)

// ObsColor is the marker and line color for observations.
const ObsColor = "#000000"

// basePalette follows the conventional red/blue/green lead colors with
// distinguishable follow-ups for additional models.
var basePalette = []string{
	"#e41a1c", // red
	"#377eb8", // blue
	"#4daf4a", // green
	"#ff7f00", // orange
	"#984ea3", // purple
	"#a65628", // brown
	"#f781bf", // pink
	"#999999", // gray
}

// DefaultColors returns n series colors. The first entries come from the base
// palette; extra entries are blended along a red-to-blue ramp so every series
// stays distinguishable.
func DefaultColors(n int) ([]string, error) {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if i < len(basePalette) {
			out = append(out, basePalette[i])

			continue
		}

		fraction := float64(i-len(basePalette)+1) / float64(n-len(basePalette)+1)
		hex, err := rampColor(fraction)
		if err != nil {
			return nil, err
		}
		out = append(out, hex)
	}

	return out, nil
}

const maxRGB = 240

// rampColor maps a fraction in [0, 1] onto a blue-to-red heat ramp.
func rampColor(fraction float64) (string, error) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	red := maxRGB * fraction
	blue := -maxRGB*fraction + maxRGB

	heat, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return heat.ToHEX().String(), nil
}

// biasColor maps a bias value onto a blue-white-red diverging ramp bounded by
// [-vmax, vmax].
func biasColor(v, vmax float64) (string, error) {
	if vmax <= 0 {
		vmax = 1
	}
	fraction := v / vmax
	if fraction < -1 {
		fraction = -1
	}
	if fraction > 1 {
		fraction = 1
	}

	const full = 255.0
	var r, g, b float64
	if fraction < 0 {
		// blue towards white
		r = full * (1 + fraction)
		g = full * (1 + fraction)
		b = full
	} else {
		r = full
		g = full * (1 - fraction)
		b = full * (1 - fraction)
	}

	c, err := colors.RGB(uint8(r), uint8(g), uint8(b)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return c.ToHEX().String(), nil
}
