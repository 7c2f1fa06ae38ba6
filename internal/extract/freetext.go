package extract

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"github.com/hyperifyio/schedulecheck/internal/normalize"
	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

var (
	freeTextEntry = regexp.MustCompile(`(?i)(\d{1,2}(?:[:.]\d{2})?\s*(?:AM|PM))\s+(.+?)\s*-\s*(.+?)\s*$`)
	parenthesized = regexp.MustCompile(`\(.*?\)`)
)

// FreeText reads plain-text schedule dumps such as text pulled out of a PDF.
// A line holding only a day name moves the day cursor; other lines are
// matched as "<time> <class> - <trainer>".
type FreeText struct {
	norm *normalize.Normalizer
}

// NewFreeText returns a FreeText extractor. A nil normalizer uses the
// defaults.
func NewFreeText(n *normalize.Normalizer) *FreeText {
	return &FreeText{norm: orDefault(n)}
}

// Extract parses input for location.
func (f *FreeText) Extract(input []byte, location string) (*schedule.Set, error) {
	loc, err := requireLocation(f.norm, location)
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
		if f.norm.IsDayName(line) {
			day = f.norm.Day(line)
			continue
		}
		if day == "" {
			continue
		}
		m := freeTextEntry.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		b.Add(schedule.Record{
			Location: loc,
			Day:      day,
			Time:     f.norm.Time(m[1]),
			Class:    f.className(m[2]),
			Trainer:  f.norm.TrainerName(stripAnnotations(m[3])),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.Build(), nil
}

// className keeps parentheses that are part of a known class name, such as
// "STRENGTH LAB (PULL)". Trailing groups are removed one at a time from the
// right until a known name is left; otherwise every group is stripped.
func (f *FreeText) className(raw string) string {
	s := raw
	for {
		if f.norm.KnownClass(s) {
			return f.norm.ClassName(s)
		}
		groups := parenthesized.FindAllStringIndex(s, -1)
		if len(groups) == 0 {
			break
		}
		last := groups[len(groups)-1]
		s = s[:last[0]] + " " + s[last[1]:]
	}
	return f.norm.ClassName(stripAnnotations(raw))
}

func stripAnnotations(s string) string {
	return parenthesized.ReplaceAllString(s, " ")
}
