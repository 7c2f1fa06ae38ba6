package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Server struct {
		Addr           string        `yaml:"addr" json:"addr"`
		MaxUploadBytes int64         `yaml:"maxUploadBytes" json:"maxUploadBytes"`
		ReadTimeout    time.Duration `yaml:"readTimeout" json:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	} `yaml:"server" json:"server"`

	CSVField string `yaml:"csvField" json:"csvField"`
	Sites    []Site `yaml:"sites" json:"sites"`

	Match struct {
		OneToOne   bool     `yaml:"oneToOne" json:"oneToOne"`
		TimeStyles []string `yaml:"timeStyles" json:"timeStyles"`
	} `yaml:"match" json:"match"`

	Report struct {
		JSON     string `yaml:"json" json:"json"`
		Markdown string `yaml:"markdown" json:"markdown"`
		PDF      string `yaml:"pdf" json:"pdf"`
	} `yaml:"report" json:"report"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from fc onto cfg for fields that still hold
// their zero or flag default, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if (cfg.Addr == "" || cfg.Addr == DefaultAddr) && fc.Server.Addr != "" {
		cfg.Addr = fc.Server.Addr
	}
	if (cfg.MaxUploadBytes == 0 || cfg.MaxUploadBytes == DefaultMaxUploadBytes) && fc.Server.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = fc.Server.MaxUploadBytes
	}
	if (cfg.ReadTimeout == 0 || cfg.ReadTimeout == DefaultReadTimeout) && fc.Server.ReadTimeout > 0 {
		cfg.ReadTimeout = fc.Server.ReadTimeout
	}
	if (cfg.WriteTimeout == 0 || cfg.WriteTimeout == DefaultWriteTimeout) && fc.Server.WriteTimeout > 0 {
		cfg.WriteTimeout = fc.Server.WriteTimeout
	}
	if (cfg.CSVField == "" || cfg.CSVField == DefaultCSVField) && fc.CSVField != "" {
		cfg.CSVField = fc.CSVField
	}
	if len(fc.Sites) > 0 && (len(cfg.Sites) == 0 || sameSites(cfg.Sites, DefaultSites())) {
		cfg.Sites = append([]Site(nil), fc.Sites...)
	}
	if !cfg.OneToOne && fc.Match.OneToOne {
		cfg.OneToOne = true
	}
	if len(cfg.TimeStyles) == 0 && len(fc.Match.TimeStyles) > 0 {
		cfg.TimeStyles = append([]string(nil), fc.Match.TimeStyles...)
	}
	if cfg.ReportJSONPath == "" && fc.Report.JSON != "" {
		cfg.ReportJSONPath = fc.Report.JSON
	}
	if cfg.ReportMarkdownPath == "" && fc.Report.Markdown != "" {
		cfg.ReportMarkdownPath = fc.Report.Markdown
	}
	if cfg.ReportPDFPath == "" && fc.Report.PDF != "" {
		cfg.ReportPDFPath = fc.Report.PDF
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

func sameSites(a, b []Site) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" && cfg.CSVPath == "" {
		return errors.New("config: addr is required in server mode")
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("config: maxUploadBytes must be positive")
	}
	if strings.TrimSpace(cfg.CSVField) == "" {
		return errors.New("config: csvField is required")
	}
	seen := map[string]bool{cfg.CSVField: true}
	for _, s := range cfg.Sites {
		if strings.TrimSpace(s.Field) == "" || strings.TrimSpace(s.Location) == "" {
			return fmt.Errorf("config: site %+v needs both field and location", s)
		}
		if seen[s.Field] {
			return fmt.Errorf("config: upload field %q used twice", s.Field)
		}
		seen[s.Field] = true
	}
	for _, f := range cfg.SiteFiles {
		if strings.TrimSpace(f.Location) == "" || strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("config: -site %q needs LOCATION=PATH", f.Location+"="+f.Path)
		}
	}
	if len(cfg.SiteFiles) > 0 && cfg.CSVPath == "" {
		return errors.New("config: -site requires -csv")
	}
	return nil
}
