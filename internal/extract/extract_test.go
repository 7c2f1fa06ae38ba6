package extract

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/ledongthuc/pdf"

	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

func only(t *testing.T, s *schedule.Set, loc, day, tm string) []schedule.Record {
	t.Helper()
	return s.At(loc, schedule.NewSlotKey(loc, day, tm))
}

func TestTabular_ParsesRowsAndCover(t *testing.T) {
	csv := "Location,Day,Time,Class,Trainer,Cover Trainer\n" +
		"KEMPS,MONDAY,7:15 AM,STRENGTH LAB (PULL),ANISHA,\n" +
		"KEMPS,MONDAY,7:30 AM,BARRE 57,SIMONELLE,RICHARD\n" +
		"BANDRA,TUESDAY,9:00 AM,powerCycle,BRET,\n"

	s, err := NewTabular(nil, DefaultColumns()).Extract([]byte(csv), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", s.Len())
	}
	got := only(t, s, "KEMPS", "MONDAY", "7:30 AM")
	if len(got) != 1 || got[0].Trainer != "RICHARD" {
		t.Fatalf("cover trainer should replace trainer, got %+v", got)
	}
	got = only(t, s, "BANDRA", "TUESDAY", "9:00 AM")
	if len(got) != 1 || got[0].Class != "POWERCYCLE" || got[0].Trainer != "BRET" {
		t.Fatalf("unexpected bandra record: %+v", got)
	}
}

func TestTabular_SkipsPartialRowsAndNormalizes(t *testing.T) {
	csv := "\xef\xbb\xbf location , DAY,time,class,trainer\n" +
		"kwality house,mon,7.15am,cb,anisha\n" +
		"KEMPS,MONDAY,,FIT,ROHAN\n" +
		"KEMPS,FUNDAY,8:00 AM,FIT,ROHAN\n" +
		"KEMPS,TUESDAY,8:00 AM,FIT\n"

	s, err := NewTabular(nil, DefaultColumns()).Extract([]byte(csv), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 complete record, got %d", s.Len())
	}
	got := only(t, s, "KEMPS", "MONDAY", "7:15 AM")
	want := schedule.Record{Location: "KEMPS", Day: "MONDAY", Time: "7:15 AM", Class: "CARDIO BARRE", Trainer: "ANISHA"}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestTabular_MissingColumn(t *testing.T) {
	_, err := NewTabular(nil, DefaultColumns()).Extract([]byte("Location,Day,Time,Class\nKEMPS,MONDAY,7:15 AM,FIT\n"), "")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
}

func TestTabular_EmptyInput(t *testing.T) {
	s, err := NewTabular(nil, DefaultColumns()).Extract([]byte("  \n"), "")
	if err != nil || s.Len() != 0 {
		t.Fatalf("expected empty set and no error, got len=%d err=%v", s.Len(), err)
	}
}

const markupDoc = `<html><body>
<div class="c"><span class="t v0 s5">MONDAY </span></div>
<div class="c"><span class="t v0 s23">7:15 AM</span><span class="t v0 s10">STRENGTH LAB (PULL) - ANISHA</span></div>
<div class="c"><span class="t v0 s9">8:00AM</span><span class="t v0 s10">BARRE 57 - SIMONELLE <span class="badge">THEME</span></span></div>
<div class="c"><span class="t v0 s23">9:00 AM</span><span class="t v0 s10">NO SEPARATOR HERE</span></div>
<div class="c"><span class="t v0 s2">10:00 AM</span><span class="t v0 s10">FIT - IGNORED STYLE</span></div>
<div class="c"><span class="t v0 s5">Tuesday</span></div>
<div class="c"><span class="t v0 s23">6:30 PM</span><span class="x"></span><span class="t v0 s10">Power Cycle - Bret &amp; Co</span></div>
<div class="c"><span class="t v0 s23">7:00 PM</span><span>CB - ROHAN</span><span class="t v0 s23">7:45 PM</span><span>FIT - RICHARD</span></div>
</body></html>`

func TestMarkup_DayCursorAndPairs(t *testing.T) {
	s, err := NewMarkup(nil, nil).Extract([]byte(markupDoc), "kemps")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	cases := []struct {
		day, tm, class, trainer string
	}{
		{"MONDAY", "7:15 AM", "STRENGTH LAB (PULL)", "ANISHA"},
		{"MONDAY", "8:00 AM", "BARRE 57", "SIMONELLE"},
		{"TUESDAY", "6:30 PM", "POWERCYCLE", "BRET & CO"},
		{"TUESDAY", "7:00 PM", "CARDIO BARRE", "ROHAN"},
		{"TUESDAY", "7:45 PM", "FIT", "RICHARD"},
	}
	for _, tc := range cases {
		got := only(t, s, "KEMPS", tc.day, tc.tm)
		if len(got) != 1 || got[0].Class != tc.class || got[0].Trainer != tc.trainer {
			t.Fatalf("%s %s: got %+v, want %s - %s", tc.day, tc.tm, got, tc.class, tc.trainer)
		}
	}
	if s.Len() != len(cases) {
		t.Fatalf("expected %d records, got %d", len(cases), s.Len())
	}
}

func TestMarkup_IgnoresEntriesBeforeFirstDay(t *testing.T) {
	doc := `<span class="t v0 s23">7:15 AM</span><span>FIT - ANISHA</span>`
	s, err := NewMarkup(nil, nil).Extract([]byte(doc), "BANDRA")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected no records, got %d", s.Len())
	}
	if locs := s.Locations(); len(locs) != 1 || locs[0] != "BANDRA" {
		t.Fatalf("location should be present even without records: %v", locs)
	}
}

func TestMarkup_RequiresLocation(t *testing.T) {
	if _, err := NewMarkup(nil, nil).Extract([]byte(markupDoc), "  "); !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
}

func TestFirstSpanText(t *testing.T) {
	cases := map[string]string{
		`<span>A - B</span>`:                         "A - B",
		`<span></span><span> X - Y </span>`:          "X - Y",
		`<span>A<br>B</span>`:                        "AB",
		`<span>A - B <i>(new)</i></span>`:            "A - B",
		`no markup`:                                  "",
		`<span>unterminated - text`:                  "unterminated - text",
		`<div>outside</div><span>in &amp; out</span>`: "in & out",
	}
	for in, want := range cases {
		if got := firstSpanText(in); got != want {
			t.Fatalf("firstSpanText(%q) = %q, want %q", in, got, want)
		}
	}
}

const freeTextDoc = `Weekly Schedule
7:00 AM FIT - NOBODY
MONDAY
7:15 AM Strength Lab (Pull) - Anisha
8:00AM Barre 57 (90s theme) - Simonelle (cover)
9 AM MAT57 - Rohan
not a class line
monday special
Tuesday
6:30 pm Power Cycle - Bret
`

func TestFreeText_DayLinesAndEntries(t *testing.T) {
	s, err := NewFreeText(nil).Extract([]byte(freeTextDoc), "Bandra")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	cases := []struct {
		day, tm, class, trainer string
	}{
		{"MONDAY", "7:15 AM", "STRENGTH LAB (PULL)", "ANISHA"},
		{"MONDAY", "8:00 AM", "BARRE 57", "SIMONELLE"},
		{"MONDAY", "9:00 AM", "MAT 57", "ROHAN"},
		{"TUESDAY", "6:30 PM", "POWERCYCLE", "BRET"},
	}
	for _, tc := range cases {
		got := only(t, s, "BANDRA", tc.day, tc.tm)
		if len(got) != 1 || got[0].Class != tc.class || got[0].Trainer != tc.trainer {
			t.Fatalf("%s %s: got %+v, want %s - %s", tc.day, tc.tm, got, tc.class, tc.trainer)
		}
	}
	if s.Len() != len(cases) {
		t.Fatalf("expected %d records, got %d", len(cases), s.Len())
	}
}

func TestFreeText_RequiresLocation(t *testing.T) {
	if _, err := NewFreeText(nil).Extract([]byte(freeTextDoc), ""); !errors.Is(err, ErrMissingLocation) {
		t.Fatalf("expected ErrMissingLocation, got %v", err)
	}
}

func TestPDFText_RejectsNonPDF(t *testing.T) {
	if _, err := PDFText([]byte("not a pdf at all")); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}

func TestTabular_LocationOverride(t *testing.T) {
	csv := "Day,Time,Class,Trainer\n" +
		"Monday,7:15 AM,FIT,Anisha\n" +
		"Tuesday,8:00 AM,CB,Rohan\n"
	s, err := NewTabular(nil, DefaultColumns()).Extract([]byte(csv), "Supreme HQ")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := s.Locations(); len(got) != 1 || got[0] != "BANDRA" {
		t.Fatalf("Locations() = %v, want [BANDRA]", got)
	}
	if s.Count("BANDRA") != 2 {
		t.Fatalf("expected 2 records under BANDRA, got %d", s.Count("BANDRA"))
	}

	withColumn := "Location,Day,Time,Class,Trainer\nKEMPS,MONDAY,7:15 AM,FIT,ANISHA\n"
	s, err = NewTabular(nil, DefaultColumns()).Extract([]byte(withColumn), "BANDRA")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := only(t, s, "BANDRA", "MONDAY", "7:15 AM"); len(got) != 1 {
		t.Fatalf("override should replace the Location cell, got %v", s.Locations())
	}
}

func TestMarkup_NonBreakingSpaceInTime(t *testing.T) {
	doc := `<div><span class="t v0 s5">MONDAY</span></div>
<div><span class="t v0 s23">7:15&nbsp;AM</span><span class="t v0 s10">FIT - ANISHA</span></div>
<div><span class="t v0 s23">&nbsp;8:15 AM&nbsp;</span><span class="t v0 s10">CB - ROHAN</span></div>`
	s, err := NewMarkup(nil, nil).Extract([]byte(doc), "KEMPS")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
	if got := only(t, s, "KEMPS", "MONDAY", "7:15 AM"); len(got) != 1 || got[0].Class != "FIT" {
		t.Fatalf("7:15 AM entry missing: %+v", got)
	}
}

func TestMarkup_CustomTimeStyles(t *testing.T) {
	doc := `<div><span class="t v1 s2">TUESDAY</span></div>
<div><span class="t v1 s4">6:30 PM</span><span class="t v1 s7">PowerCycle - Bret</span></div>
<div><span class="t v0 s23">7:30 PM</span><span class="t v0 s10">FIT - ROHAN</span></div>`
	s, err := NewMarkup(nil, []string{"t v1 s4"}).Extract([]byte(doc), "BANDRA")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := only(t, s, "BANDRA", "TUESDAY", "6:30 PM"); len(got) != 1 || got[0].Class != "POWERCYCLE" {
		t.Fatalf("custom-styled entry missing: %+v", got)
	}
	if s.Len() != 1 {
		t.Fatalf("default-styled time should be ignored, got %d records", s.Len())
	}
}

func TestFreeText_KnownClassWithExtraAnnotations(t *testing.T) {
	doc := "Monday\n" +
		"7:15 AM Strength Lab (Pull) (new) - Anisha\n" +
		"8:00 AM Barre 57 (90s theme) (sold out) - Simonelle\n" +
		"9:00 AM Strength Lab (Full Body) - Rohan (cover)\n"
	s, err := NewFreeText(nil).Extract([]byte(doc), "KEMPS")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	cases := map[string]string{
		"7:15 AM": "STRENGTH LAB (PULL)",
		"8:00 AM": "BARRE 57",
		"9:00 AM": "STRENGTH LAB (FULL BODY)",
	}
	for tm, want := range cases {
		got := only(t, s, "KEMPS", "MONDAY", tm)
		if len(got) != 1 || got[0].Class != want {
			t.Fatalf("%s: got %+v, want class %q", tm, got, want)
		}
	}
}

// schedulePDF renders each page's lines with gofpdf, one cell per line.
func schedulePDF(t *testing.T, pages ...[]string) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	for _, lines := range pages {
		doc.AddPage()
		for _, l := range lines {
			doc.CellFormat(0, 8, l, "", 1, "L", false, 0, "")
		}
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	return buf.Bytes()
}

func pdfLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func TestPDFText_OneLinePerRow(t *testing.T) {
	page1 := []string{"MONDAY", "7:15 AM Strength Lab (Pull) - Anisha", "8:00 AM Barre 57 - Simonelle"}
	page2 := []string{"TUESDAY", "6:30 PM Power Cycle - Bret"}
	text, err := PDFText(schedulePDF(t, page1, page2))
	if err != nil {
		t.Fatalf("PDFText: %v", err)
	}
	want := append(append([]string(nil), page1...), page2...)
	if got := pdfLines(text); !reflect.DeepEqual(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}

	s, err := NewFreeText(nil).Extract([]byte(text), "BANDRA")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("expected 3 records from pdf text, got %d", s.Len())
	}
	if got := only(t, s, "BANDRA", "TUESDAY", "6:30 PM"); len(got) != 1 || got[0].Class != "POWERCYCLE" {
		t.Fatalf("second page entry missing: %+v", got)
	}
}

func TestPageRows(t *testing.T) {
	glyphs := []pdf.Text{
		{FontSize: 12, X: 16, Y: 700, W: 6, S: "B"},
		{FontSize: 12, X: 10, Y: 800, W: 6, S: "M"},
		{FontSize: 12, X: 16, Y: 800.5, W: 6, S: "O"},
		{FontSize: 12, X: 10, Y: 700, W: 6, S: "A"},
		{FontSize: 12, X: 40, Y: 700, W: 6, S: "C"},
	}
	rows := pageRows(glyphs)
	var got []string
	for _, r := range rows {
		got = append(got, joinRow(r))
	}
	if want := []string{"MO", "AB C"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("rows = %q, want %q", got, want)
	}

	unplaced := []pdf.Text{{S: "M"}, {S: "O"}}
	if rows := pageRows(unplaced); rows != nil {
		t.Fatalf("glyphs without positions should yield no rows, got %v", rows)
	}
}
