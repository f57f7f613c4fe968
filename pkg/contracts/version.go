// Package contracts carries the version identity shared by the core and
// the support tools.
package contracts

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current version of the application core.
	Version = "1.4.0"
)

var (
	// BuildTime is set during build using ldflags.
	BuildTime = "unknown"

	// GitCommit is set during build using ldflags.
	GitCommit = "unknown"
)

// VersionInfo contains detailed version information.
type VersionInfo struct {
	Version      string `json:"version"`
	BuildTime    string `json:"build_time"`
	GitCommit    string `json:"git_commit"`
	GoVersion    string `json:"go_version"`
	OS           string `json:"os"`
	Architecture string `json:"architecture"`
}

// GetVersionInfo returns detailed version information.
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:      Version,
		BuildTime:    BuildTime,
		GitCommit:    GitCommit,
		GoVersion:    runtime.Version(),
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
	}
}

// String returns the one-line version banner the tools print.
func (v VersionInfo) String() string {
	return fmt.Sprintf("madaris %s (%s/%s, %s)", v.Version, v.OS, v.Architecture, v.GoVersion)
}
