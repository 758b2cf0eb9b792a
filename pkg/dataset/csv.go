package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Reserved column names. Every other column becomes a variable when all its
// values parse as floats, and a metadata column otherwise.
const (
	colTime = "time"
	colSite = "siteid"
	colLat  = "latitude"
	colLon  = "longitude"
	colZ    = "z"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC3339,
}

func parseTime(raw string) (time.Time, error) {
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, errors.Errorf("unrecognised time %q", raw)
}

func parseFloat(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "nan") {
		return math.NaN(), true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}

	return v, true
}

// ReadFiles reads and merges several CSV files into one frame, sorted by time.
func ReadFiles(paths []string) (*Frame, error) {
	merged := NewFrame()
	for _, path := range paths {
		frame, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		err = merged.append(frame)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to merge %s", path)
		}
	}

	return merged.sortByTime(), nil
}

// ReadFile reads one long-format CSV file.
func ReadFile(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer file.Close()

	frame, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s", path)
	}

	return frame, nil
}

// Read reads one long-format CSV document.
func Read(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read csv header")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	timeIdx, latIdx, lonIdx := -1, -1, -1
	siteIdx, zIdx := -1, -1
	extra := make([]int, 0, len(header))
	for i, name := range header {
		switch name {
		case colTime:
			timeIdx = i
		case colSite:
			siteIdx = i
		case colLat:
			latIdx = i
		case colLon:
			lonIdx = i
		case colZ:
			zIdx = i
		default:
			extra = append(extra, i)
		}
	}
	if timeIdx < 0 || latIdx < 0 || lonIdx < 0 {
		return nil, errors.Errorf("csv header must contain %s, %s and %s columns", colTime, colLat, colLon)
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "unable to read csv rows")
	}

	// Classify extra columns: a column is a variable when every value parses
	// as a float (empty and NaN included), otherwise metadata.
	isVar := make(map[int]bool, len(extra))
	for _, col := range extra {
		isVar[col] = true
		for _, rec := range records {
			if _, ok := parseFloat(rec[col]); !ok {
				isVar[col] = false

				break
			}
		}
	}

	frame := NewFrame()
	if zIdx >= 0 {
		frame.Z = make([]float64, 0, len(records))
	}
	for _, col := range extra {
		if isVar[col] {
			frame.Vars[header[col]] = make([]float64, 0, len(records))
		} else {
			frame.Meta[header[col]] = make([]string, 0, len(records))
		}
	}

	for i, rec := range records {
		t, err := parseTime(rec[timeIdx])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d", i+2)
		}
		lat, ok := parseFloat(rec[latIdx])
		if !ok {
			return nil, errors.Errorf("row %d: invalid latitude %q", i+2, rec[latIdx])
		}
		lon, ok := parseFloat(rec[lonIdx])
		if !ok {
			return nil, errors.Errorf("row %d: invalid longitude %q", i+2, rec[lonIdx])
		}

		frame.Times = append(frame.Times, t)
		frame.Lat = append(frame.Lat, lat)
		frame.Lon = append(frame.Lon, lon)
		if siteIdx >= 0 {
			frame.Sites = append(frame.Sites, strings.TrimSpace(rec[siteIdx]))
		} else {
			frame.Sites = append(frame.Sites, "")
		}
		if zIdx >= 0 {
			z, ok := parseFloat(rec[zIdx])
			if !ok {
				return nil, errors.Errorf("row %d: invalid z %q", i+2, rec[zIdx])
			}
			frame.Z = append(frame.Z, z)
		}
		for _, col := range extra {
			if isVar[col] {
				v, _ := parseFloat(rec[col])
				frame.Vars[header[col]] = append(frame.Vars[header[col]], v)
			} else {
				frame.Meta[header[col]] = append(frame.Meta[header[col]], strings.TrimSpace(rec[col]))
			}
		}
	}

	return frame, nil
}

// append merges another frame with an identical column layout.
func (f *Frame) append(other *Frame) error {
	if f.Len() == 0 {
		*f = *other

		return nil
	}
	if f.HasZ() != other.HasZ() {
		return errors.New("frames disagree on the z column")
	}
	for name := range other.Vars {
		if _, ok := f.Vars[name]; !ok {
			return errors.Errorf("unexpected variable column %q", name)
		}
	}
	for name := range f.Vars {
		col, ok := other.Vars[name]
		if !ok {
			return errors.Errorf("missing variable column %q", name)
		}
		f.Vars[name] = append(f.Vars[name], col...)
	}
	for name := range f.Meta {
		col, ok := other.Meta[name]
		if !ok {
			return errors.Errorf("missing metadata column %q", name)
		}
		f.Meta[name] = append(f.Meta[name], col...)
	}

	f.Times = append(f.Times, other.Times...)
	f.Sites = append(f.Sites, other.Sites...)
	f.Lat = append(f.Lat, other.Lat...)
	f.Lon = append(f.Lon, other.Lon...)
	if f.HasZ() {
		f.Z = append(f.Z, other.Z...)
	}

	return nil
}
