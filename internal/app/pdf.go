package app

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/schedulecheck/internal/compare"
)

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Location", 24}, {"Day", 26}, {"Time", 20},
	{"CSV class", 46}, {"CSV trainer", 32},
	{"Schedule class", 46}, {"Schedule trainer", 32}, {"Issue", 40},
}

// writeReportPDF renders the summary and the discrepancy table on landscape
// A4 pages, repeating the table header on every page.
func writeReportPDF(r compare.Report, outPath string) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	header := func() {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range pdfColumns {
			pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, "Schedule validation", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total classes: %d   Matched: %d   Discrepancies: %d",
		r.TotalClasses, r.MatchedClasses, len(r.Discrepancies)), "", 1, "L", false, 0, "")
	for _, l := range r.ByLocation() {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: %d of %d matched", l.Location, l.Matched, l.Total)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(r.Discrepancies) == 0 {
		pdf.CellFormat(0, 6, "No discrepancies.", "", 1, "L", false, 0, "")
		return pdf.OutputFileAndClose(outPath)
	}

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	header()
	for _, d := range r.Discrepancies {
		if pdf.GetY()+6 > pageHeight-bottom-12 {
			pdf.AddPage()
			header()
		}
		values := []string{d.Location, d.Day, d.Time, d.CSVClass, d.CSVTrainer, d.PDFClass, d.PDFTrainer, issue(d)}
		for i, c := range pdfColumns {
			pdf.CellFormat(c.width, 6, tr(fit(pdf, values[i], c.width-2)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.OutputFileAndClose(outPath)
}

// fit shortens s with an ellipsis until it fits width at the current font.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(string(r)+"...") > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
