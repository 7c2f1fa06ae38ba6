package app

// Build information set with -ldflags "-X github.com/hyperifyio/schedulecheck/internal/app.BuildVersion=...".
var (
	BuildVersion = "0.0.0-dev"
	BuildCommit  = "unknown"
	BuildDate    = "unknown"
)

// buildInfo is reported by the health endpoint.
type buildInfo struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func currentBuild() buildInfo {
	return buildInfo{Status: "ok", Version: BuildVersion, Commit: BuildCommit, Date: BuildDate}
}
