package version

import (
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// shortCommit is the length of the commit prefix reported.
const shortCommit = 7

// Info is the payload of the /version endpoint.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	BuildTime time.Time `json:"build_time,omitzero"`
	GoVersion string    `json:"go_version"`
	Dirty     bool      `json:"dirty"`
	Release   bool      `json:"release"`
}

// Short is Version with the commit appended, and "-dirty" for builds of a
// modified tree.
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.GitCommit
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// GetVersionInfo combines the ldflags values with the VCS stamp the Go
// toolchain embeds. ldflags win.
func GetVersionInfo() *Info {
	bi, _ := debug.ReadBuildInfo()
	info := resolve(Version, GitCommit, BuildTime, bi)
	return &info
}

// GetShortVersion returns GetVersionInfo().Short().
func GetShortVersion() string {
	return GetVersionInfo().Short()
}

func resolve(version, commit, built string, bi *debug.BuildInfo) Info {
	info := Info{
		Version:   version,
		GitCommit: commit,
		Release:   version != "dev" && !strings.Contains(version, "dirty"),
	}
	if t, err := time.Parse(time.RFC3339, built); err == nil {
		info.BuildTime = t
	}

	if bi == nil {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildTime = t
				}
			}
		}
	}
	if len(info.GitCommit) > shortCommit {
		info.GitCommit = info.GitCommit[:shortCommit]
	}
	if info.Dirty {
		info.Release = false
	}
	return info
}
