package app

import "time"

// Site maps an upload field to the location its document describes.
type Site struct {
	Field    string `yaml:"field" json:"field"`
	Location string `yaml:"location" json:"location"`
}

// SiteFile is a local document to compare in one-shot mode.
type SiteFile struct {
	Location string
	Path     string
}

// Config holds runtime configuration for the application.
type Config struct {
	// Server
	Addr           string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	// Upload fields
	CSVField string
	Sites    []Site

	// Matching
	OneToOne   bool
	TimeStyles []string

	// One-shot mode
	CSVPath            string
	SiteFiles          []SiteFile
	ReportJSONPath     string
	ReportMarkdownPath string
	ReportPDFPath      string

	Verbose bool
}

// Defaults used by flags and by ApplyFileConfig to detect unset values.
const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 32 << 20
	DefaultCSVField       = "csv"
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
)

// DefaultSites returns the upload fields of the two studios the schedule
// sheet covers.
func DefaultSites() []Site {
	return []Site{
		{Field: "kemps", Location: "KEMPS"},
		{Field: "bandra", Location: "BANDRA"},
	}
}
