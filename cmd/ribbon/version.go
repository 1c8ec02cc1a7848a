package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
)

// Version information - release builds override these via ldflags
var (
	Version   = "1.0.0"
	Build     = "unknown"
	BuildTime = ""
)

// printVersion writes the version block shown by `ribbon version`.
func printVersion(w io.Writer) {
	_, _ = fmt.Fprintf(w, "ribbon version %s", Version)

	if Build != "unknown" && Build != "" {
		_, _ = fmt.Fprintf(w, " (build: %s)", Build)
	}

	if BuildTime != "" {
		_, _ = fmt.Fprintf(w, " [%s]", BuildTime)
	}

	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintf(w, "Go version: %s\n", runtime.Version())
	_, _ = fmt.Fprintf(w, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// Development builds carry the commit in their build info.
	if Version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" && len(setting.Value) > 7 {
					_, _ = fmt.Fprintf(w, "Commit: %s\n", setting.Value[:7])
					break
				}
			}
		}
	}
}
