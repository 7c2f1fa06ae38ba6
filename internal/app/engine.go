package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/schedulecheck/internal/compare"
	"github.com/hyperifyio/schedulecheck/internal/extract"
	"github.com/hyperifyio/schedulecheck/internal/format"
	"github.com/hyperifyio/schedulecheck/internal/normalize"
	"github.com/hyperifyio/schedulecheck/internal/schedule"
)

// ErrUnsupportedFormat is returned when an upload is not a document any
// extractor understands.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Upload is one rendered schedule document for a location.
type Upload struct {
	Name     string
	Location string
	Data     []byte
}

type extractFunc func(input []byte, location string) (*schedule.Set, error)

// Engine wires format detection, extraction and comparison for one run.
// Build a new Engine per request; it is cheap and holds no shared state.
type Engine struct {
	tabular  *extract.Tabular
	dispatch map[format.Kind]extractFunc
	cmp      *compare.Comparator
}

// NewEngine builds an Engine over the compiled-in tables.
func NewEngine(cfg Config) *Engine {
	return NewEngineWith(normalize.Default(), cfg)
}

// NewEngineWith builds an Engine over n.
func NewEngineWith(n *normalize.Normalizer, cfg Config) *Engine {
	tab := extract.NewTabular(n, extract.DefaultColumns())
	markup := extract.NewMarkup(n, cfg.TimeStyles)
	text := extract.NewFreeText(n)
	return &Engine{
		tabular: tab,
		dispatch: map[format.Kind]extractFunc{
			// A per-site sheet is filed under the upload's location.
			format.Tabular:  tab.Extract,
			format.Markup:   markup.Extract,
			format.FreeText: text.Extract,
			format.PDF: func(input []byte, location string) (*schedule.Set, error) {
				plain, err := extract.PDFText(input)
				if err != nil {
					return nil, err
				}
				return text.Extract([]byte(plain), location)
			},
		},
		cmp: compare.New(compare.Options{OneToOne: cfg.OneToOne}),
	}
}

// Run extracts the tabular schedule and every upload, then compares them.
func (e *Engine) Run(ctx context.Context, csv []byte, uploads []Upload) (compare.Report, error) {
	logger := zerolog.Ctx(ctx)

	tab, err := e.tabular.Extract(csv, "")
	if err != nil {
		return compare.Report{}, fmt.Errorf("csv: %w", err)
	}
	logger.Debug().
		Int("locations", len(tab.Locations())).
		Int("records", tab.Len()).
		Int("dropped", tab.Dropped()).
		Msg("csv parsed")
	for _, loc := range tab.Locations() {
		logger.Debug().Str("location", loc).Int("classes", tab.Count(loc)).Msg("csv location")
	}

	rendered := make([]*schedule.Set, 0, len(uploads))
	for _, up := range uploads {
		kind := format.Sniff(up.Data)
		fn, ok := e.dispatch[kind]
		if !ok {
			return compare.Report{}, fmt.Errorf("%s: %w (%s)", up.Name, ErrUnsupportedFormat, kind)
		}
		set, err := fn(up.Data, up.Location)
		if err != nil {
			return compare.Report{}, fmt.Errorf("%s: %w", up.Name, err)
		}
		logger.Debug().
			Str("upload", up.Name).
			Str("location", up.Location).
			Stringer("format", kind).
			Int("bytes", len(up.Data)).
			Int("classes", set.Len()).
			Int("dropped", set.Dropped()).
			Msg("upload parsed")
		rendered = append(rendered, set)
	}

	return e.cmp.Compare(tab, schedule.Merge(rendered...)), nil
}
