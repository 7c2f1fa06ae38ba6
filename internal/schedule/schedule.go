// Package schedule holds canonical class records and the per-source sets they
// are grouped into for comparison.
package schedule

import (
	"sort"
	"strings"
)

// Record is one scheduled class occurrence after normalization.
type Record struct {
	Location string `json:"location"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Class    string `json:"class"`
	Trainer  string `json:"trainer"`
}

// Complete reports whether every required field is present.
func (r Record) Complete() bool {
	return r.Location != "" && r.Day != "" && r.Time != "" && r.Class != "" && r.Trainer != ""
}

// Key returns the slot key of r.
func (r Record) Key() SlotKey { return NewSlotKey(r.Location, r.Day, r.Time) }

// SlotKey identifies a slot as "location|day|time".
type SlotKey string

const keySep = "|"

// NewSlotKey joins the three slot fields.
func NewSlotKey(location, day, time string) SlotKey {
	return SlotKey(location + keySep + day + keySep + time)
}

// Split returns the location, day and time a key was built from. Extra
// separators end up in the time field.
func (k SlotKey) Split() (location, day, time string) {
	parts := strings.SplitN(string(k), keySep, 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}

// Set groups records by location and then by slot key. Records at one slot
// keep the order they were added in. A Set is read-only once built.
type Set struct {
	locations map[string]map[SlotKey][]Record
	dropped   int
}

// Dropped returns how many incomplete records were rejected while the Set
// was built.
func (s *Set) Dropped() int {
	if s == nil {
		return 0
	}
	return s.dropped
}

// Locations returns the locations present, sorted.
func (s *Set) Locations() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.locations))
	for loc := range s.locations {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Keys returns the slot keys present for location, sorted.
func (s *Set) Keys(location string) []SlotKey {
	if s == nil {
		return nil
	}
	slots := s.locations[location]
	out := make([]SlotKey, 0, len(slots))
	for k := range slots {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// At returns a copy of the records stored for location and key.
func (s *Set) At(location string, key SlotKey) []Record {
	if s == nil {
		return nil
	}
	return append([]Record(nil), s.locations[location][key]...)
}

// Count returns the number of records stored for location.
func (s *Set) Count(location string) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, recs := range s.locations[location] {
		n += len(recs)
	}
	return n
}

// Len returns the number of records across all locations.
func (s *Set) Len() int {
	n := 0
	for _, loc := range s.Locations() {
		n += s.Count(loc)
	}
	return n
}

// Merge returns a new Set holding the records of every input in order. The
// dropped counts of the inputs are summed.
func Merge(sets ...*Set) *Set {
	b := NewBuilder()
	for _, s := range sets {
		b.dropped += s.Dropped()
		for _, loc := range s.Locations() {
			b.Touch(loc)
			for _, k := range s.Keys(loc) {
				for _, r := range s.locations[loc][k] {
					b.Add(r)
				}
			}
		}
	}
	return b.Build()
}

// Builder accumulates records for one extraction call.
type Builder struct {
	set     *Set
	dropped int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{set: &Set{locations: map[string]map[SlotKey][]Record{}}}
}

// Add appends r at its slot. Incomplete records are dropped and Add reports
// false.
func (b *Builder) Add(r Record) bool {
	if !r.Complete() {
		b.dropped++
		return false
	}
	slots, ok := b.set.locations[r.Location]
	if !ok {
		slots = map[SlotKey][]Record{}
		b.set.locations[r.Location] = slots
	}
	k := r.Key()
	slots[k] = append(slots[k], r)
	return true
}

// Touch registers location with no records so that it shows up in the built
// Set even when every row was dropped.
func (b *Builder) Touch(location string) {
	if location == "" {
		return
	}
	if _, ok := b.set.locations[location]; !ok {
		b.set.locations[location] = map[SlotKey][]Record{}
	}
}

// Dropped returns how many records Add rejected.
func (b *Builder) Dropped() int { return b.dropped }

// Build returns the accumulated Set, carrying the dropped count. The Builder
// must not be used afterwards.
func (b *Builder) Build() *Set {
	s := b.set
	s.dropped = b.dropped
	b.set = nil
	return s
}
