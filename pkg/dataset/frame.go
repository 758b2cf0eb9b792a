package dataset

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Frame is a long-format table: one row per time and location.
type Frame struct {
	Times []time.Time
	Sites []string // empty for gridded model data
	Lat   []float64
	Lon   []float64
	Z     []float64 // nil when the data has no vertical dimension

	Vars map[string][]float64
	Meta map[string][]string
}

// NewFrame returns an empty frame.
func NewFrame() *Frame {
	return &Frame{
		Vars: make(map[string][]float64),
		Meta: make(map[string][]string),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Times)
}

// HasZ reports whether the frame has a vertical dimension.
func (f *Frame) HasZ() bool {
	return f.Z != nil
}

// VarNames returns the variable column names, sorted.
func (f *Frame) VarNames() []string {
	names := make([]string, 0, len(f.Vars))
	for name := range f.Vars {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Var returns a variable column.
func (f *Frame) Var(name string) ([]float64, bool) {
	col, ok := f.Vars[name]

	return col, ok
}

// selectRows returns a new frame containing only the rows at idx.
func (f *Frame) selectRows(idx []int) *Frame {
	out := NewFrame()
	out.Times = make([]time.Time, len(idx))
	out.Sites = make([]string, len(idx))
	out.Lat = make([]float64, len(idx))
	out.Lon = make([]float64, len(idx))
	if f.HasZ() {
		out.Z = make([]float64, len(idx))
	}
	for name := range f.Vars {
		out.Vars[name] = make([]float64, len(idx))
	}
	for name := range f.Meta {
		out.Meta[name] = make([]string, len(idx))
	}

	for i, row := range idx {
		out.Times[i] = f.Times[row]
		out.Sites[i] = f.Sites[row]
		out.Lat[i] = f.Lat[row]
		out.Lon[i] = f.Lon[row]
		if f.HasZ() {
			out.Z[i] = f.Z[row]
		}
		for name, col := range f.Vars {
			out.Vars[name][i] = col[row]
		}
		for name, col := range f.Meta {
			out.Meta[name][i] = col[row]
		}
	}

	return out
}

// Copy returns a deep copy of the frame.
func (f *Frame) Copy() *Frame {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}

	return f.selectRows(idx)
}

// Window returns the rows within [start, end], inclusive.
func (f *Frame) Window(start, end time.Time) *Frame {
	idx := make([]int, 0, f.Len())
	for i, t := range f.Times {
		if !t.Before(start) && !t.After(end) {
			idx = append(idx, i)
		}
	}

	return f.selectRows(idx)
}

// FilterMeta returns the rows whose metadata column equals value.
func (f *Frame) FilterMeta(column, value string) (*Frame, error) {
	col, ok := f.Meta[column]
	if !ok {
		return nil, errors.Errorf("unknown metadata column %q", column)
	}
	idx := make([]int, 0, f.Len())
	for i, v := range col {
		if v == value {
			idx = append(idx, i)
		}
	}

	return f.selectRows(idx), nil
}

// DropNaN returns the rows that have no NaN in any of the named variables.
func (f *Frame) DropNaN(names ...string) (*Frame, error) {
	cols := make([][]float64, len(names))
	for i, name := range names {
		col, ok := f.Vars[name]
		if !ok {
			return nil, errors.Errorf("unknown variable %q", name)
		}
		cols[i] = col
	}

	idx := make([]int, 0, f.Len())
rows:
	for i := 0; i < f.Len(); i++ {
		for _, col := range cols {
			if math.IsNaN(col[i]) {
				continue rows
			}
		}
		idx = append(idx, i)
	}

	return f.selectRows(idx), nil
}

// SurfaceOnly keeps only the rows at the lowest vertical level. Model files
// read through the generic reader order levels such that the lowest value is
// the level nearest to the surface.
func (f *Frame) SurfaceOnly() *Frame {
	if !f.HasZ() || f.Len() == 0 {
		return f
	}
	minZ := f.Z[0]
	for _, z := range f.Z {
		if z < minZ {
			minZ = z
		}
	}
	idx := make([]int, 0, f.Len())
	for i, z := range f.Z {
		if z == minZ {
			idx = append(idx, i)
		}
	}
	out := f.selectRows(idx)
	out.Z = nil

	return out
}

// Site is one unique observation site.
type Site struct {
	ID  string
	Lat float64
	Lon float64
}

// UniqueSites returns the distinct sites of the frame, sorted by ID.
func (f *Frame) UniqueSites() []Site {
	seen := make(map[string]struct{})
	sites := make([]Site, 0)
	for i, id := range f.Sites {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sites = append(sites, Site{ID: id, Lat: f.Lat[i], Lon: f.Lon[i]})
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].ID < sites[j].ID })

	return sites
}

// Cell is one unique model grid location.
type Cell struct {
	Lat float64
	Lon float64
}

// UniqueCells returns the distinct grid locations of the frame.
func (f *Frame) UniqueCells() []Cell {
	seen := make(map[Cell]struct{})
	cells := make([]Cell, 0)
	for i := range f.Times {
		c := Cell{Lat: f.Lat[i], Lon: f.Lon[i]}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Lat != cells[j].Lat {
			return cells[i].Lat < cells[j].Lat
		}

		return cells[i].Lon < cells[j].Lon
	})

	return cells
}

// LocalTimes shifts every timestamp by the utcoffset variable (hours). When
// the frame has no utcoffset column the original timestamps are returned.
func (f *Frame) LocalTimes() []time.Time {
	offsets, ok := f.Vars["utcoffset"]
	if !ok {
		return f.Times
	}
	out := make([]time.Time, f.Len())
	for i, t := range f.Times {
		off := offsets[i]
		if math.IsNaN(off) {
			out[i] = t

			continue
		}
		out[i] = t.Add(time.Duration(off * float64(time.Hour)))
	}

	return out
}

// sortByTime sorts the rows chronologically, keeping site order stable.
func (f *Frame) sortByTime() *Frame {
	idx := make([]int, f.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return f.Times[idx[i]].Before(f.Times[idx[j]]) })

	return f.selectRows(idx)
}
