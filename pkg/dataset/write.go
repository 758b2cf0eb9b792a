package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// WriteCSV writes the frame in the long format understood by Read.
func (f *Frame) WriteCSV(w io.Writer) error {
	varNames := f.VarNames()
	metaNames := make([]string, 0, len(f.Meta))
	for name := range f.Meta {
		metaNames = append(metaNames, name)
	}
	sort.Strings(metaNames)

	header := []string{colTime, colSite, colLat, colLon}
	if f.HasZ() {
		header = append(header, colZ)
	}
	header = append(header, varNames...)
	header = append(header, metaNames...)

	cw := csv.NewWriter(w)
	err := cw.Write(header)
	if err != nil {
		return errors.Wrap(err, "unable to write csv header")
	}

	for i := 0; i < f.Len(); i++ {
		row := make([]string, 0, len(header))
		row = append(row,
			f.Times[i].Format(time.RFC3339),
			f.Sites[i],
			formatFloat(f.Lat[i]),
			formatFloat(f.Lon[i]),
		)
		if f.HasZ() {
			row = append(row, formatFloat(f.Z[i]))
		}
		for _, name := range varNames {
			row = append(row, formatFloat(f.Vars[name][i]))
		}
		for _, name := range metaNames {
			row = append(row, f.Meta[name][i])
		}
		err = cw.Write(row)
		if err != nil {
			return errors.Wrapf(err, "unable to write csv row %d", i)
		}
	}
	cw.Flush()

	return errors.Wrap(cw.Error(), "unable to flush csv")
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
