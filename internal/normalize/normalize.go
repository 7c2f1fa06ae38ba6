// Package normalize turns inconsistently formatted schedule text into the
// canonical strings used as comparison keys.
package normalize

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer resolves class names, trainers, times, days and locations to
// canonical form. It is immutable after construction and safe to share.
type Normalizer struct {
	classes   map[string]string
	locations map[string]string
	days      []string
}

// New builds a Normalizer from t. Alias spellings and canonical labels are
// cleaned the same way inputs are, so lookups are case and spacing
// insensitive. When a spelling is claimed by more than one label, an exact
// label wins over an alias and otherwise the lexicographically smallest label
// wins.
func New(t Tables) *Normalizer {
	n := &Normalizer{
		classes:   buildIndex(t.ClassAliases),
		locations: buildIndex(t.LocationAliases),
	}
	for _, d := range t.Days {
		if c := clean(d); c != "" {
			n.days = append(n.days, c)
		}
	}
	return n
}

// Default returns a Normalizer over DefaultTables.
func Default() *Normalizer { return New(DefaultTables()) }

func buildIndex(aliases map[string][]string) map[string]string {
	byLabel := make(map[string][]string, len(aliases))
	for label, spellings := range aliases {
		if c := clean(label); c != "" {
			byLabel[c] = append(byLabel[c], spellings...)
		}
	}
	labels := make([]string, 0, len(byLabel))
	for label := range byLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	idx := make(map[string]string, len(byLabel)*4)
	// Aliases go in reverse label order so smaller labels overwrite larger
	// ones, then labels themselves so an exact label always wins.
	for i := len(labels) - 1; i >= 0; i-- {
		for _, a := range byLabel[labels[i]] {
			if ca := clean(a); ca != "" {
				idx[ca] = labels[i]
			}
		}
	}
	for _, label := range labels {
		idx[label] = label
	}
	return idx
}

// clean folds compatibility characters (full-width digits, non-breaking
// spaces), trims, uppercases and collapses whitespace runs to one space.
func clean(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToUpper(s)), " ")
}

// Clean exposes the shared cleaning step for callers that need a key without
// alias resolution.
func Clean(s string) string { return clean(s) }

// ClassName returns the canonical label for raw when it is a known label or
// alias, otherwise the cleaned input.
func (n *Normalizer) ClassName(raw string) string {
	c := clean(raw)
	if c == "" {
		return ""
	}
	if canonical, ok := n.classes[c]; ok {
		return canonical
	}
	return c
}

// KnownClass reports whether raw resolves through the alias table.
func (n *Normalizer) KnownClass(raw string) bool {
	_, ok := n.classes[clean(raw)]
	return ok
}

// TrainerName cleans raw without alias resolution.
func (n *Normalizer) TrainerName(raw string) string { return clean(raw) }

// Location resolves raw through the location alias table.
func (n *Normalizer) Location(raw string) string {
	c := clean(raw)
	if canonical, ok := n.locations[c]; ok {
		return canonical
	}
	return c
}

// Day returns the configured day name that raw spells out in full or
// abbreviates to at least three letters. It returns "" when raw is not a day.
func (n *Normalizer) Day(raw string) string {
	c := clean(raw)
	if len(c) < 3 {
		return ""
	}
	for _, d := range n.days {
		if c == d {
			return d
		}
	}
	for _, d := range n.days {
		if strings.HasPrefix(d, c) {
			return d
		}
	}
	return ""
}

// IsDayName reports whether raw equals a full day name, ignoring case and
// surrounding space.
func (n *Normalizer) IsDayName(raw string) bool {
	c := clean(raw)
	for _, d := range n.days {
		if c == d {
			return true
		}
	}
	return false
}

// Days returns the configured day names in week order.
func (n *Normalizer) Days() []string { return append([]string(nil), n.days...) }

// timePatterns are tried in order; the first match wins.
var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d{1,2}):(\d{2})\s*(AM|PM)`),
	regexp.MustCompile(`(\d{1,2})\.(\d{2})\s*(AM|PM)`),
	regexp.MustCompile(`(\d{1,2}):(\d{2})(AM|PM)`),
	regexp.MustCompile(`(\d{1,2})\s*(AM|PM)`),
}

// Time renders raw as "H:MM AM" or "H:MM PM". Input that matches no known
// shape is returned cleaned but otherwise unchanged.
func (n *Normalizer) Time(raw string) string { return Time(raw) }

// Time is the table-independent form of (*Normalizer).Time.
func Time(raw string) string {
	c := clean(raw)
	if c == "" {
		return ""
	}
	for _, re := range timePatterns {
		m := re.FindStringSubmatch(c)
		if m == nil {
			continue
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if len(m) == 4 {
			return strconv.Itoa(hour) + ":" + m[2] + " " + m[3]
		}
		return strconv.Itoa(hour) + ":00 " + m[2]
	}
	return c
}
