package plots

import (
	"strings"
	"time"
)

// DateFormat is the timestamp layout used inside output file names.
const DateFormat = "2006-01-02_15"

// OutName builds the figure file name for a plot group iteration. The pair
// label is only part of the name for per-pair figures (the spatial types);
// pass an empty pair for combined figures.
func OutName(grp, plotType, obsVar string, start, end time.Time, domainType, domainName, pair string) string {
	parts := []string{
		grp,
		plotType,
		obsVar,
		start.Format(DateFormat),
		end.Format(DateFormat),
		domainType,
		domainName,
	}
	if pair != "" {
		parts = append(parts, pair)
	}

	return strings.Join(parts, ".") + ".svg"
}
