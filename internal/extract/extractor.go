// Package extract turns schedule documents into canonical records.
package extract

import (
	"errors"

	"github.com/hyperifyio/schedulecheck/internal/normalize"
	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

// ErrMissingLocation is returned when an extractor that needs an explicit
// location is called without one.
var ErrMissingLocation = errors.New("extract: location is required")

// Extractor defines the contract shared by every schedule source.
// Implementations are deterministic, do not retain input, and return a fresh
// Set per call.
type Extractor interface {
	// Extract parses input into records. location names the site for sources
	// that do not identify it themselves; Tabular ignores it.
	Extract(input []byte, location string) (*schedule.Set, error)
}

var (
	_ Extractor = (*Tabular)(nil)
	_ Extractor = (*Markup)(nil)
	_ Extractor = (*FreeText)(nil)
)

func orDefault(n *normalize.Normalizer) *normalize.Normalizer {
	if n == nil {
		return normalize.Default()
	}
	return n
}

// requireLocation resolves location through n and fails when nothing is left.
func requireLocation(n *normalize.Normalizer, location string) (string, error) {
	loc := n.Location(location)
	if loc == "" {
		return "", ErrMissingLocation
	}
	return loc, nil
}
