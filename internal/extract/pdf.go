package extract

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowTolerance is the vertical distance, as a fraction of the font size,
// within which glyphs belong to the same visual row.
const rowTolerance = 0.4

// PDFText extracts the text of a PDF document one visual row per line, top
// to bottom, so that FreeText can read it. Pages whose glyphs carry no
// position fall back to the reader's plain text stream.
func PDFText(input []byte) (text string, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(input), int64(len(input)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, row := range pageRows(page.Content().Text) {
			if line := joinRow(row); line != "" {
				b.WriteString(line)
				b.WriteByte('\n')
			}
		}
	}
	if b.Len() > 0 {
		return b.String(), nil
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract plain text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read plain text: %w", err)
	}
	return buf.String(), nil
}

// pageRows groups glyphs into rows by baseline, top row first, each row
// ordered left to right. Glyphs sharing a position keep content order. It
// returns nil when no glyph has a position.
func pageRows(glyphs []pdf.Text) [][]pdf.Text {
	positioned := false
	for _, g := range glyphs {
		if g.X != 0 || g.Y != 0 {
			positioned = true
			break
		}
	}
	if !positioned {
		return nil
	}

	sorted := append([]pdf.Text(nil), glyphs...)
	// PDF y grows upwards.
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var (
		rows [][]pdf.Text
		cur  []pdf.Text
		rowY float64
	)
	for _, g := range sorted {
		tol := math.Max(1, g.FontSize*rowTolerance)
		if len(cur) > 0 && math.Abs(rowY-g.Y) > tol {
			rows = append(rows, cur)
			cur = nil
		}
		if len(cur) == 0 {
			rowY = g.Y
		}
		cur = append(cur, g)
	}
	if len(cur) > 0 {
		rows = append(rows, cur)
	}
	for _, r := range rows {
		sort.SliceStable(r, func(i, j int) bool { return r[i].X < r[j].X })
	}
	return rows
}

// joinRow concatenates the glyph runs of one row, inserting a space where the
// horizontal gap between runs is wider than a fraction of the font size.
func joinRow(texts []pdf.Text) string {
	var b strings.Builder
	var prevEnd float64
	for i, t := range texts {
		if i > 0 && t.X-prevEnd > t.FontSize*0.15 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	return strings.TrimSpace(b.String())
}
