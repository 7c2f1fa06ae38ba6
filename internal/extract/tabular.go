package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/hyperifyio/schedulecheck/internal/normalize"
	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

// ErrMissingColumn is returned when the header row lacks a required column.
var ErrMissingColumn = errors.New("extract: missing required column")

// Columns names the header cells the tabular extractor reads. Matching is
// case and whitespace insensitive.
type Columns struct {
	Location string
	Day      string
	Time     string
	Class    string
	Trainer  string
	// Cover is optional; a non-empty value replaces Trainer for that row.
	Cover string
}

// DefaultColumns returns the header used by exported schedule sheets.
func DefaultColumns() Columns {
	return Columns{
		Location: "Location",
		Day:      "Day",
		Time:     "Time",
		Class:    "Class",
		Trainer:  "Trainer",
		Cover:    "Cover Trainer",
	}
}

// Tabular reads CSV rows with a header line.
type Tabular struct {
	norm *normalize.Normalizer
	cols Columns
}

// NewTabular returns a Tabular extractor. A nil normalizer uses the defaults.
func NewTabular(n *normalize.Normalizer, cols Columns) *Tabular {
	return &Tabular{norm: orDefault(n), cols: cols}
}

type columnIndex struct {
	location, day, time, class, trainer, cover int
}

func (t *Tabular) index(header []string, needLocation bool) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalize.Clean(h)
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}
	lookup := func(name string, required bool) (int, error) {
		if i, ok := pos[normalize.Clean(name)]; ok && name != "" {
			return i, nil
		}
		if required {
			return -1, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
		return -1, nil
	}
	var (
		idx columnIndex
		err error
	)
	if idx.location, err = lookup(t.cols.Location, needLocation); err != nil {
		return idx, err
	}
	if idx.day, err = lookup(t.cols.Day, true); err != nil {
		return idx, err
	}
	if idx.time, err = lookup(t.cols.Time, true); err != nil {
		return idx, err
	}
	if idx.class, err = lookup(t.cols.Class, true); err != nil {
		return idx, err
	}
	if idx.trainer, err = lookup(t.cols.Trainer, true); err != nil {
		return idx, err
	}
	idx.cover, _ = lookup(t.cols.Cover, false)
	return idx, nil
}

// Extract parses input. Rows missing any required value after normalization
// are skipped. Empty input yields an empty Set.
//
// With an empty location every row is filed under its own Location cell.
// A non-empty location overrides that cell for every row, and the Location
// column becomes optional; this is how a per-site sheet is read.
func (t *Tabular) Extract(input []byte, location string) (*schedule.Set, error) {
	override := t.norm.Location(location)
	b := schedule.NewBuilder()
	b.Touch(override)
	input = bytes.TrimPrefix(input, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(input)) == 0 {
		return b.Build(), nil
	}

	r := csv.NewReader(bytes.NewReader(input))
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx, err := t.index(header, override == "")
	if err != nil {
		return nil, err
	}

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		trainer := t.norm.TrainerName(cell(row, idx.trainer))
		if cover := t.norm.TrainerName(cell(row, idx.cover)); cover != "" {
			trainer = cover
		}
		loc := override
		if loc == "" {
			loc = t.norm.Location(cell(row, idx.location))
		}
		b.Add(schedule.Record{
			Location: loc,
			Day:      t.norm.Day(cell(row, idx.day)),
			Time:     t.norm.Time(cell(row, idx.time)),
			Class:    t.norm.ClassName(cell(row, idx.class)),
			Trainer:  trainer,
		})
	}
	return b.Build(), nil
}
