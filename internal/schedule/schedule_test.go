package schedule

import (
	"reflect"
	"testing"
)

func rec(loc, day, tm, class, trainer string) Record {
	return Record{Location: loc, Day: day, Time: tm, Class: class, Trainer: trainer}
}

func TestBuilder_GroupsBySlotKeepingOrder(t *testing.T) {
	b := NewBuilder()
	b.Add(rec("KEMPS", "MONDAY", "7:15 AM", "BARRE 57", "ANISHA"))
	b.Add(rec("KEMPS", "MONDAY", "7:15 AM", "POWERCYCLE", "BRET"))
	b.Add(rec("BANDRA", "TUESDAY", "9:00 AM", "FIT", "ROHAN"))
	s := b.Build()

	if got, want := s.Locations(), []string{"BANDRA", "KEMPS"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Locations() = %v, want %v", got, want)
	}
	at := s.At("KEMPS", NewSlotKey("KEMPS", "MONDAY", "7:15 AM"))
	if len(at) != 2 || at[0].Class != "BARRE 57" || at[1].Class != "POWERCYCLE" {
		t.Fatalf("unexpected slot contents: %+v", at)
	}
	if s.Len() != 3 || s.Count("KEMPS") != 2 {
		t.Fatalf("unexpected counts: len=%d kemps=%d", s.Len(), s.Count("KEMPS"))
	}
}

func TestBuilder_DropsIncomplete(t *testing.T) {
	b := NewBuilder()
	if b.Add(rec("KEMPS", "MONDAY", "7:15 AM", "", "ANISHA")) {
		t.Fatalf("expected record without class to be rejected")
	}
	b.Add(rec("", "MONDAY", "7:15 AM", "FIT", "ANISHA"))
	b.Touch("KEMPS")
	if b.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", b.Dropped())
	}
	s := b.Build()
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %d records", s.Len())
	}
	if s.Dropped() != 2 {
		t.Fatalf("Set.Dropped() = %d, want 2", s.Dropped())
	}
	if got := s.Locations(); len(got) != 1 || got[0] != "KEMPS" {
		t.Fatalf("touched location missing: %v", got)
	}
}

func TestSet_AtReturnsCopy(t *testing.T) {
	b := NewBuilder()
	b.Add(rec("KEMPS", "MONDAY", "7:15 AM", "FIT", "ANISHA"))
	s := b.Build()
	k := NewSlotKey("KEMPS", "MONDAY", "7:15 AM")
	got := s.At("KEMPS", k)
	got[0].Class = "CHANGED"
	if s.At("KEMPS", k)[0].Class != "FIT" {
		t.Fatalf("At must not expose internal storage")
	}
}

func TestSlotKey_Split(t *testing.T) {
	loc, day, tm := NewSlotKey("KEMPS", "MONDAY", "7:15 AM").Split()
	if loc != "KEMPS" || day != "MONDAY" || tm != "7:15 AM" {
		t.Fatalf("Split() = %q %q %q", loc, day, tm)
	}
	loc, day, tm = SlotKey("ONLY").Split()
	if loc != "ONLY" || day != "" || tm != "" {
		t.Fatalf("Split() on short key = %q %q %q", loc, day, tm)
	}
}

func TestMerge(t *testing.T) {
	a := NewBuilder()
	a.Add(rec("KEMPS", "MONDAY", "7:15 AM", "FIT", "ANISHA"))
	b := NewBuilder()
	b.Add(rec("KEMPS", "MONDAY", "7:15 AM", "MAT 57", "SIMRAN"))
	b.Add(rec("BANDRA", "FRIDAY", "6:00 PM", "FIT", "ROHAN"))
	m := Merge(a.Build(), b.Build(), nil)
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	at := m.At("KEMPS", NewSlotKey("KEMPS", "MONDAY", "7:15 AM"))
	if len(at) != 2 || at[0].Class != "FIT" || at[1].Class != "MAT 57" {
		t.Fatalf("merge order lost: %+v", at)
	}
}

func TestMerge_SumsDroppedAndKeepsEmptyLocations(t *testing.T) {
	a := NewBuilder()
	a.Add(rec("KEMPS", "MONDAY", "7:15 AM", "FIT", ""))
	a.Add(rec("KEMPS", "MONDAY", "8:00 AM", "FIT", "ANISHA"))
	b := NewBuilder()
	b.Touch("BANDRA")
	b.Add(rec("BANDRA", "", "9:00 AM", "FIT", "ROHAN"))

	m := Merge(a.Build(), b.Build(), nil)
	if m.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", m.Dropped())
	}
	if got := m.Locations(); !reflect.DeepEqual(got, []string{"BANDRA", "KEMPS"}) {
		t.Fatalf("Locations() = %v", got)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	var nilSet *Set
	if nilSet.Dropped() != 0 {
		t.Fatalf("nil set should report zero dropped")
	}
}
