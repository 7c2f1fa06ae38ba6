package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/hyperifyio/schedulecheck/internal/normalize"
	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

// DefaultTimeStyles are the span class signatures the schedule exporter uses
// for time cells.
var DefaultTimeStyles = []string{"t v0 s23", "t v0 s9"}

var markupTime = regexp.MustCompile(`(?i)>(?:\s|&nbsp;)*(\d{1,2}[:.]\d{2}(?:\s|&nbsp;)*(?:AM|PM))(?:\s|&nbsp;)*</span>`)

// Markup reads per-site HTML renderings of a weekly schedule. The document is
// scanned line by line: a day header span moves the day cursor, and a time
// span in one of the known styles is paired with the next span on the same
// line holding "CLASS - TRAINER".
type Markup struct {
	norm       *normalize.Normalizer
	styles     []string
	dayHeading *regexp.Regexp
}

// NewMarkup returns a Markup extractor. Empty styles fall back to
// DefaultTimeStyles.
func NewMarkup(n *normalize.Normalizer, styles []string) *Markup {
	n = orDefault(n)
	if len(styles) == 0 {
		styles = DefaultTimeStyles
	}
	m := &Markup{norm: n}
	for _, s := range styles {
		m.styles = append(m.styles, `class="`+s+`"`)
	}
	days := n.Days()
	quoted := make([]string, 0, len(days))
	for _, d := range days {
		quoted = append(quoted, regexp.QuoteMeta(d))
	}
	if len(quoted) > 0 {
		m.dayHeading = regexp.MustCompile(`(?i)>(?:\s|&nbsp;)*(` + strings.Join(quoted, "|") + `)(?:\s|&nbsp;)*</span>`)
	}
	return m
}

// Extract parses input for location. Entries before the first day header, or
// without a time or a "CLASS - TRAINER" pair, are skipped.
func (m *Markup) Extract(input []byte, location string) (*schedule.Set, error) {
	loc, err := requireLocation(m.norm, location)
	if err != nil {
		return nil, err
	}
	b := schedule.NewBuilder()
	b.Touch(loc)

	day := ""
	scanner := bufio.NewScanner(bytes.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m.dayHeading != nil {
			if hm := m.dayHeading.FindStringSubmatch(line); hm != nil {
				day = m.norm.Day(hm[1])
			}
		}
		if day == "" || !m.hasTimeStyle(line) {
			continue
		}
		times := markupTime.FindAllStringSubmatchIndex(line, -1)
		for i, tm := range times {
			end := len(line)
			if i+1 < len(times) {
				end = times[i+1][0]
			}
			class, trainer, ok := splitClassTrainer(firstSpanText(line[tm[1]:end]))
			if !ok {
				continue
			}
			b.Add(schedule.Record{
				Location: loc,
				Day:      day,
				Time:     m.norm.Time(html.UnescapeString(line[tm[2]:tm[3]])),
				Class:    m.norm.ClassName(class),
				Trainer:  m.norm.TrainerName(trainer),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

func (m *Markup) hasTimeStyle(line string) bool {
	for _, s := range m.styles {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

// splitClassTrainer cuts "CLASS - TRAINER" at the first separator. Any
// whitespace run, including non-breaking spaces, counts as one space.
func splitClassTrainer(s string) (class, trainer string, ok bool) {
	s = strings.Join(strings.Fields(s), " ")
	class, trainer, ok = strings.Cut(s, " - ")
	if !ok {
		return "", "", false
	}
	class, trainer = strings.TrimSpace(class), strings.TrimSpace(trainer)
	return class, trainer, class != "" && trainer != ""
}

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
	"track": true, "wbr": true,
}

// firstSpanText returns the text of the first <span> in fragment that has
// any. Only text placed directly inside the span is kept; nested elements
// such as theme badges are dropped together with their content. Entities are
// decoded.
func firstSpanText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	depth := 0
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if voidElements[string(name)] {
				continue
			}
			if depth > 0 {
				depth++
			} else if string(name) == "span" {
				depth = 1
			}
		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				if s := strings.TrimSpace(b.String()); s != "" {
					return s
				}
				b.Reset()
			}
		case html.TextToken:
			if depth == 1 {
				b.Write(z.Text())
			}
		}
	}
}
