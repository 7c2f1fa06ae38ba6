// Package compare diffs the tabular schedule against a rendered schedule.
package compare

import (
	"sort"

	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

// Placeholder values used when one side has no record to show.
const (
	NotFound = "NOT FOUND"
	NotInCSV = "NOT IN CSV"
)

// Comparison is one row of the report.
type Comparison struct {
	Location     string `json:"location"`
	Day          string `json:"day"`
	Time         string `json:"time"`
	CSVClass     string `json:"csvClass"`
	CSVTrainer   string `json:"csvTrainer"`
	PDFClass     string `json:"pdfClass"`
	PDFTrainer   string `json:"pdfTrainer"`
	ClassMatch   bool   `json:"classMatch"`
	TrainerMatch bool   `json:"trainerMatch"`
	IsMatch      bool   `json:"isMatch"`
}

// Report is the outcome of one comparison run. Discrepancies is a subset of
// AllComparisons in the same order.
type Report struct {
	TotalClasses   int          `json:"totalClasses"`
	MatchedClasses int          `json:"matchedClasses"`
	Discrepancies  []Comparison `json:"discrepancies"`
	AllComparisons []Comparison `json:"allComparisons"`
}

// LocationSummary aggregates report rows for one location.
type LocationSummary struct {
	Location      string
	Total         int
	Matched       int
	Discrepancies int
}

// ByLocation summarises r per location, sorted by location.
func (r Report) ByLocation() []LocationSummary {
	idx := map[string]*LocationSummary{}
	for _, c := range r.AllComparisons {
		s, ok := idx[c.Location]
		if !ok {
			s = &LocationSummary{Location: c.Location}
			idx[c.Location] = s
		}
		s.Total++
		if c.IsMatch {
			s.Matched++
		} else {
			s.Discrepancies++
		}
	}
	out := make([]LocationSummary, 0, len(idx))
	for _, s := range idx {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location < out[j].Location })
	return out
}

// Options tunes matching.
type Options struct {
	// OneToOne removes a rendered record from the candidate pool once it has
	// matched a tabular record, so duplicates on the tabular side no longer
	// all match the same rendered entry. Rendered records left unused are
	// reported as extras.
	OneToOne bool
}

// Comparator diffs two schedule sets. It holds no state between calls.
type Comparator struct {
	opts Options
}

// New returns a Comparator.
func New(opts Options) *Comparator { return &Comparator{opts: opts} }

// Compare matches every tabular record against the rendered records at the
// same slot. Locations and slot keys are visited in sorted order so the
// output does not depend on input order.
func (c *Comparator) Compare(tabular, rendered *schedule.Set) Report {
	rep := Report{Discrepancies: []Comparison{}, AllComparisons: []Comparison{}}
	add := func(row Comparison) {
		rep.TotalClasses++
		rep.AllComparisons = append(rep.AllComparisons, row)
		if row.IsMatch {
			rep.MatchedClasses++
		} else {
			rep.Discrepancies = append(rep.Discrepancies, row)
		}
	}

	for _, loc := range union(tabular.Locations(), rendered.Locations()) {
		for _, key := range unionKeys(tabular.Keys(loc), rendered.Keys(loc)) {
			location, day, tm := key.Split()
			csvSide := tabular.At(loc, key)
			pdfSide := rendered.At(loc, key)
			used := make([]bool, len(pdfSide))

			for _, want := range csvSide {
				row := Comparison{
					Location:   location,
					Day:        day,
					Time:       tm,
					CSVClass:   want.Class,
					CSVTrainer: want.Trainer,
				}
				shown := schedule.Record{Class: NotFound, Trainer: NotFound}
				if len(pdfSide) > 0 {
					shown = pdfSide[0]
				}
				for i, got := range pdfSide {
					if c.opts.OneToOne && used[i] {
						continue
					}
					if got.Class == want.Class && got.Trainer == want.Trainer {
						used[i] = true
						shown = got
						row.IsMatch = true
						break
					}
				}
				row.PDFClass = shown.Class
				row.PDFTrainer = shown.Trainer
				row.ClassMatch = want.Class == shown.Class
				row.TrainerMatch = want.Trainer == shown.Trainer
				add(row)
			}

			for i, got := range pdfSide {
				if c.isExtra(got, used[i], csvSide) {
					add(Comparison{
						Location:   location,
						Day:        day,
						Time:       tm,
						CSVClass:   NotInCSV,
						CSVTrainer: NotInCSV,
						PDFClass:   got.Class,
						PDFTrainer: got.Trainer,
					})
				}
			}
		}
	}
	return rep
}

// isExtra decides whether a rendered record gets its own "not in CSV" row.
// In one-to-one mode that is every record no tabular record consumed;
// otherwise only records whose class and trainer appear nowhere at the slot.
func (c *Comparator) isExtra(got schedule.Record, used bool, csvSide []schedule.Record) bool {
	if c.opts.OneToOne {
		return !used
	}
	for _, want := range csvSide {
		if want.Class == got.Class && want.Trainer == got.Trainer {
			return false
		}
	}
	return true
}

func union(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range append(append([]string(nil), a...), b...) {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func unionKeys(a, b []schedule.SlotKey) []schedule.SlotKey {
	seen := make(map[schedule.SlotKey]struct{}, len(a)+len(b))
	out := make([]schedule.SlotKey, 0, len(a)+len(b))
	for _, k := range append(append([]schedule.SlotKey(nil), a...), b...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
