// Package version reports the build version of spectra.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/spectra/pkg/version.Version=v1.2.3"
var Version = "v0.2.0"

// Commit is the VCS revision, filled from build info when not set via ldflags.
var Commit = ""

// Revision returns Commit, or the short VCS revision recorded by the Go
// toolchain, or "unknown".
func Revision() string {
	if Commit != "" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				if len(s.Value) > 12 {
					return s.Value[:12]
				}
				return s.Value
			}
		}
	}
	return "unknown"
}

// String returns the one-line version banner.
func String() string {
	return fmt.Sprintf("spectra %s (%s, %s/%s)", Version, Revision(), runtime.GOOS, runtime.GOARCH)
}
