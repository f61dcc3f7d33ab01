// Package version exposes build metadata for CLI output.
package version

import (
	"runtime"
	"runtime/debug"
)

var (
	// Version is the application version, set via ldflags.
	Version string

	// Revision is the git commit revision.
	Revision = getRevision()
	// GoVersion is the Go version used to build.
	GoVersion = runtime.Version()
	// GoOS is the operating system target.
	GoOS = runtime.GOOS
	// GoArch is the architecture target.
	GoArch = runtime.GOARCH
)

func getRevision() string {
	rev := "unknown"

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
		case "vcs.modified":
			if v.Value == "true" {
				modified = true
			}
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}

// String renders a single-line version summary for CLI output.
func String() string {
	v := Version
	if v == "" {
		v = "devel"
	}

	return v + " (" + Revision + ", " + GoVersion + ", " + GoOS + "/" + GoArch + ")"
}
