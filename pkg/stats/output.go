package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Table collects the computed statistics for one obs variable and domain,
// one column per paired dataset.
type Table struct {
	StatList   []string
	PairLabels []string
	Values     [][]float64 // [stat][pair]
	Round      int
}

// NewTable creates an empty table for the given stats and pairs.
func NewTable(statList, pairLabels []string, round int) *Table {
	values := make([][]float64, len(statList))
	for i := range values {
		values[i] = make([]float64, len(pairLabels))
		for j := range values[i] {
			values[i][j] = math.NaN()
		}
	}

	return &Table{
		StatList:   statList,
		PairLabels: pairLabels,
		Values:     values,
		Round:      round,
	}
}

// Set stores the value of one statistic for one pair.
func (t *Table) Set(statIdx, pairIdx int, value float64) {
	t.Values[statIdx][pairIdx] = value
}

func (t *Table) format(value float64) string {
	if math.IsNaN(value) {
		return "NaN"
	}

	return fmt.Sprintf("%.*f", t.Round, value)
}

// WriteCSV writes the table with Stat_ID and Stat_FullName columns followed
// by one column per pair.
func (t *Table) WriteCSV(w io.Writer) error {
	fullNames, err := FullNames(t.StatList, false)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := append([]string{"Stat_ID", "Stat_FullName"}, t.PairLabels...)
	err = cw.Write(header)
	if err != nil {
		return errors.Wrap(err, "unable to write csv header")
	}

	for i, stat := range t.StatList {
		row := make([]string, 0, len(t.PairLabels)+2)
		row = append(row, stat, fullNames[i])
		for j := range t.PairLabels {
			row = append(row, t.format(t.Values[i][j]))
		}
		err = cw.Write(row)
		if err != nil {
			return errors.Wrapf(err, "unable to write csv row for %s", stat)
		}
	}
	cw.Flush()

	return errors.Wrap(cw.Error(), "unable to flush csv")
}
