package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/schedulecheck/internal/app"
)

// errDiscrepancies is returned in strict one-shot mode when the schedules
// disagree.
var errDiscrepancies = errors.New("schedules disagree")

// siteFlags collects repeated -site LOCATION=PATH values.
type siteFlags []app.SiteFile

func (s *siteFlags) String() string {
	parts := make([]string, 0, len(*s))
	for _, f := range *s {
		parts = append(parts, f.Location+"="+f.Path)
	}
	return strings.Join(parts, ",")
}

func (s *siteFlags) Set(v string) error {
	loc, path, ok := strings.Cut(v, "=")
	if !ok || strings.TrimSpace(loc) == "" || strings.TrimSpace(path) == "" {
		return fmt.Errorf("want LOCATION=PATH, got %q", v)
	}
	*s = append(*s, app.SiteFile{Location: strings.TrimSpace(loc), Path: strings.TrimSpace(path)})
	return nil
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		envFiles   string
		addr       string
		maxUpload  int64
		csvField   string
		csvPath    string
		sites      siteFlags
		outJSON    string
		outMD      string
		outPDF     string
		oneToOne   bool
		strict     bool
		verbose    bool
	)
	flag.StringVar(&configPath, "config", os.Getenv("SCHEDULECHECK_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load before reading the environment")
	flag.StringVar(&addr, "addr", app.DefaultAddr, "HTTP listen address")
	flag.Int64Var(&maxUpload, "max.upload", app.DefaultMaxUploadBytes, "Maximum multipart body size in bytes")
	flag.StringVar(&csvField, "csv.field", app.DefaultCSVField, "Multipart field holding the CSV schedule")
	flag.StringVar(&csvPath, "csv", "", "CSV schedule path or URL to compare once instead of serving HTTP")
	flag.Var(&sites, "site", "Schedule document for one location as LOCATION=PATH or LOCATION=URL (repeatable, requires -csv)")
	flag.StringVar(&outJSON, "out.json", "", "Write the JSON report here instead of stdout")
	flag.StringVar(&outMD, "out.md", "", "Write a Markdown report")
	flag.StringVar(&outPDF, "out.pdf", "", "Write a PDF report")
	flag.BoolVar(&oneToOne, "one-to-one", false, "Let each schedule entry satisfy at most one CSV row")
	flag.BoolVar(&strict, "strict", false, "Exit with status 2 when any discrepancy is found (one-shot mode)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}

	cfg := app.Config{
		Addr:               addr,
		MaxUploadBytes:     maxUpload,
		CSVField:           csvField,
		CSVPath:            csvPath,
		SiteFiles:          sites,
		ReportJSONPath:     outJSON,
		ReportMarkdownPath: outMD,
		ReportPDFPath:      outPDF,
		OneToOne:           oneToOne,
		Verbose:            verbose,
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("load config")
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	// Precedence: explicit flags > environment > config file > defaults.
	app.ApplyEnvOverrides(&cfg)
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = addr
		case "max.upload":
			cfg.MaxUploadBytes = maxUpload
		case "csv.field":
			cfg.CSVField = csvField
		case "one-to-one":
			cfg.OneToOne = oneToOne
		case "v":
			cfg.Verbose = verbose
		}
	})
	if len(cfg.Sites) == 0 {
		cfg.Sites = app.DefaultSites()
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, strict, os.Stdout); err != nil {
		if errors.Is(err, errDiscrepancies) {
			log.Warn().Msg("discrepancies found")
			os.Exit(2)
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, strict bool, out io.Writer) error {
	if cfg.CSVPath == "" {
		return app.NewServer(cfg).ListenAndServe(ctx)
	}
	report, err := app.RunOnce(ctx, cfg, out)
	if err != nil {
		return err
	}
	if strict && len(report.Discrepancies) > 0 {
		return errDiscrepancies
	}
	return nil
}
