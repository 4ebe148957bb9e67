// Package version reports the build of the accordion binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version is the current application version.
// This is a var (not const) so it can be overridden at build time via:
//
//	go build -ldflags "-X github.com/vanderheijden86/accordion/pkg/version.Version=v1.2.3"
var Version = "v0.1.0"

// Commit returns the VCS revision embedded by the Go toolchain, or "".
func Commit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}

// String returns the one-line version banner.
func String() string {
	if c := Commit(); c != "" {
		return fmt.Sprintf("accordion %s (%s, %s)", Version, c, runtime.Version())
	}
	return fmt.Sprintf("accordion %s (%s)", Version, runtime.Version())
}
