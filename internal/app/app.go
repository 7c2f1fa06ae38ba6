package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/schedulecheck/internal/compare"
	"github.com/hyperifyio/schedulecheck/internal/fetch"
)

// RunOnce compares the CSV and schedule documents named in cfg and writes the
// configured reports. Sources may be local paths or http(s) URLs. The JSON
// report goes to out when no JSON path is configured.
func RunOnce(ctx context.Context, cfg Config, out io.Writer) (compare.Report, error) {
	ctx = log.Logger.WithContext(ctx)
	load := sourceLoader(cfg)

	csv, err := load(ctx, cfg.CSVPath)
	if err != nil {
		return compare.Report{}, fmt.Errorf("read csv: %w", err)
	}
	uploads := make([]Upload, 0, len(cfg.SiteFiles))
	for _, sf := range cfg.SiteFiles {
		b, err := load(ctx, sf.Path)
		if err != nil {
			return compare.Report{}, fmt.Errorf("read %s: %w", sf.Path, err)
		}
		uploads = append(uploads, Upload{Name: sourceName(sf.Path), Location: sf.Location, Data: b})
	}

	report, err := NewEngine(cfg).Run(ctx, csv, uploads)
	if err != nil {
		return compare.Report{}, err
	}

	if err := writeReports(cfg, report, out); err != nil {
		return report, err
	}
	log.Info().
		Int("total", report.TotalClasses).
		Int("matched", report.MatchedClasses).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("schedules compared")
	return report, nil
}

// sourceLoader returns a reader for local paths and http(s) URLs.
func sourceLoader(cfg Config) func(context.Context, string) ([]byte, error) {
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	client := &fetch.Client{
		UserAgent:         "schedulecheck/" + BuildVersion,
		MaxAttempts:       3,
		PerRequestTimeout: timeout,
		MaxBytes:          cfg.MaxUploadBytes,
	}
	return func(ctx context.Context, src string) ([]byte, error) {
		if !fetch.IsURL(src) {
			return os.ReadFile(src)
		}
		start := time.Now()
		b, ct, err := client.Get(ctx, src)
		if err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().Str("url", src).Str("content_type", ct).Int("bytes", len(b)).
			Dur("elapsed", time.Since(start)).Msg("fetched source")
		return b, nil
	}
}

func sourceName(src string) string {
	if fetch.IsURL(src) {
		return path.Base(src)
	}
	return filepath.Base(src)
}

func writeReports(cfg Config, report compare.Report, out io.Writer) error {
	js, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	js = append(js, '\n')
	if cfg.ReportJSONPath != "" {
		if err := os.WriteFile(cfg.ReportJSONPath, js, 0o644); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
		log.Info().Str("out", cfg.ReportJSONPath).Msg("wrote json report")
	} else if out != nil {
		if _, err := out.Write(js); err != nil {
			return fmt.Errorf("write json report: %w", err)
		}
	}
	if cfg.ReportMarkdownPath != "" {
		if err := os.WriteFile(cfg.ReportMarkdownPath, []byte(renderMarkdown(report)), 0o644); err != nil {
			return fmt.Errorf("write markdown report: %w", err)
		}
		log.Info().Str("out", cfg.ReportMarkdownPath).Msg("wrote markdown report")
	}
	if cfg.ReportPDFPath != "" {
		if err := writeReportPDF(report, cfg.ReportPDFPath); err != nil {
			return fmt.Errorf("write pdf report: %w", err)
		}
		log.Info().Str("out", cfg.ReportPDFPath).Msg("wrote pdf report")
	}
	return nil
}
