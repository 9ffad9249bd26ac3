// Package version reports the build of the planner binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X bizplan/internal/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info is the build description served on /api/version and printed by planctl
type Info struct {
	Version     string `json:"version"`
	BuildTime   string `json:"buildTime"`
	GoVersion   string `json:"goVersion"`
	Revision    string `json:"revision,omitempty"`
	CommittedAt string `json:"committedAt,omitempty"`
	Dirty       bool   `json:"dirty"`
}

// Get combines the ldflags values with the VCS stamp of the binary
func Get() Info {
	info := Info{Version: Version, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.CommittedAt = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// ShortRevision is the first eight characters of the commit hash
func (i Info) ShortRevision() string {
	if len(i.Revision) > 8 {
		return i.Revision[:8]
	}
	return i.Revision
}

func (i Info) String() string {
	parts := []string{"bizplan " + i.Version}
	if i.BuildTime != "unknown" {
		parts = append(parts, "built "+i.BuildTime)
	}
	if rev := i.ShortRevision(); rev != "" {
		if i.Dirty {
			rev += "+dirty"
		}
		parts = append(parts, "commit "+rev)
	}
	parts = append(parts, fmt.Sprintf("(%s)", i.GoVersion))
	return strings.Join(parts, " ")
}

// Warning is non-empty for development or modified builds
func (i Info) Warning() string {
	switch {
	case i.Dirty:
		return "built from a modified source tree"
	case i.Revision == "" && i.Version == "dev":
		return "development build without version control information"
	}
	return ""
}
