// Package build reports the version stackgen was built as. It imports no
// other stackgen package.
package build

import (
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/stackgen/stackgen/internal/build.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info is the build description shown by `stackgen version`.
type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// IsDev reports whether the version was left unset at link time.
func (i Info) IsDev() bool {
	return i.Version == "dev"
}

// Current returns the build description. When the linker flags were not
// set, the commit and date fall back to the VCS stamp `go build` embeds.
func Current() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromVCS(&info, bi.Settings)
	}
	return info
}

func fillFromVCS(info *Info, settings []debug.BuildSetting) {
	dirty := false
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && info.Commit != "unknown" && Commit == "unknown" {
		info.Commit += "-dirty"
	}
}
