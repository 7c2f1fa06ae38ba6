package app

import (
	"fmt"
	"strings"

	"github.com/hyperifyio/schedulecheck/internal/compare"
)

// renderMarkdown formats the report as a summary followed by a table of
// discrepancies.
func renderMarkdown(r compare.Report) string {
	var b strings.Builder
	b.WriteString("# Schedule validation\n\n")
	fmt.Fprintf(&b, "- Total classes: %d\n", r.TotalClasses)
	fmt.Fprintf(&b, "- Matched: %d\n", r.MatchedClasses)
	fmt.Fprintf(&b, "- Discrepancies: %d\n", len(r.Discrepancies))

	if locs := r.ByLocation(); len(locs) > 0 {
		b.WriteString("\n## By location\n\n")
		b.WriteString("| Location | Total | Matched | Discrepancies |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, l := range locs {
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", cell(l.Location), l.Total, l.Matched, l.Discrepancies)
		}
	}

	b.WriteString("\n## Discrepancies\n\n")
	if len(r.Discrepancies) == 0 {
		b.WriteString("None.\n")
		return b.String()
	}
	b.WriteString("| Location | Day | Time | CSV class | CSV trainer | Schedule class | Schedule trainer | Issue |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|\n")
	for _, d := range r.Discrepancies {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
			cell(d.Location), cell(d.Day), cell(d.Time),
			cell(d.CSVClass), cell(d.CSVTrainer), cell(d.PDFClass), cell(d.PDFTrainer),
			issue(d))
	}
	return b.String()
}

// issue names what differs in a discrepancy row.
func issue(c compare.Comparison) string {
	switch {
	case c.CSVClass == compare.NotInCSV:
		return "not in CSV"
	case c.PDFClass == compare.NotFound:
		return "missing from schedule"
	case !c.ClassMatch && !c.TrainerMatch:
		return "class and trainer"
	case !c.ClassMatch:
		return "class"
	case !c.TrainerMatch:
		return "trainer"
	default:
		return "duplicate"
	}
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
