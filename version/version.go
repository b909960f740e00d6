package version

import (
	"fmt"
	"runtime/debug"
)

// Product is the name sent in the User-Agent header.
const Product = "apiclient"

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info is the version information reported by the CLI.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the build information, filling gaps from debug.ReadBuildInfo.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = buildInfo.GoVersion
	if info.Version == "dev" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		info.Version = buildInfo.Main.Version
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(setting.Value)
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}

// String returns "VERSION (COMMIT, built TIME)", omitting unknown parts.
func (i Info) String() string {
	s := i.Version
	if i.Dirty {
		s += "-dirty"
	}
	switch {
	case i.GitCommit != "" && i.BuildTime != "":
		s += fmt.Sprintf(" (%s, built %s)", i.GitCommit, i.BuildTime)
	case i.GitCommit != "":
		s += fmt.Sprintf(" (%s)", i.GitCommit)
	case i.BuildTime != "":
		s += fmt.Sprintf(" (built %s)", i.BuildTime)
	}
	return s
}

// String returns the human-readable build version.
func String() string {
	return Get().String()
}

// UserAgent returns the User-Agent sent by clients, e.g. "apiclient/1.2.0".
func UserAgent() string {
	return Product + "/" + Version
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
