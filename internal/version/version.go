// Package version exposes build information stamped in at link time.
package version

import "runtime"

// Set via ldflags at build time:
//
//	-X github.com/mwalther/pulseboard/internal/version.Version=v1.2.3
//	-X github.com/mwalther/pulseboard/internal/version.Commit=abc1234
//	-X github.com/mwalther/pulseboard/internal/version.BuildTime=2026-08-30T12:00:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}
