package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides forcefully overrides cfg fields with environment variables
// when they are set. It lets env take precedence over a config file while
// flags stay highest.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}
	if v := os.Getenv("SCHEDULECHECK_ADDR"); v != "" {
		cfg.Addr = v
	}
	if n, ok := envInt64("SCHEDULECHECK_MAX_UPLOAD"); ok {
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("SCHEDULECHECK_CSV_FIELD"); v != "" {
		cfg.CSVField = v
	}
	if sites := parseSites(os.Getenv("SCHEDULECHECK_SITES")); len(sites) > 0 {
		cfg.Sites = sites
	}
	if s := os.Getenv("SCHEDULECHECK_WRITE_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.WriteTimeout = d
		}
	}
	if v, ok := envBool("SCHEDULECHECK_ONE_TO_ONE"); ok {
		cfg.OneToOne = v
	}
	if v, ok := envBool("VERBOSE"); ok {
		cfg.Verbose = v
	}
}

func envInt64(key string) (int64, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func envBool(key string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// parseSites reads "field=LOCATION,field=LOCATION". Malformed pairs are
// skipped.
func parseSites(s string) []Site {
	var out []Site
	for _, part := range strings.Split(s, ",") {
		field, loc, ok := strings.Cut(strings.TrimSpace(part), "=")
		field, loc = strings.TrimSpace(field), strings.TrimSpace(loc)
		if !ok || field == "" || loc == "" {
			continue
		}
		out = append(out, Site{Field: field, Location: loc})
	}
	return out
}
