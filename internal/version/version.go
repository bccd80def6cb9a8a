// Package version reports build provenance for --version output.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version is overridden at release time via
// -ldflags "-X github.com/najahiiii/telebot-send/internal/version.Version=v1.2.3".
var Version = "dev"

// Summary renders the multi-line version block: release, toolchain,
// platform and VCS details pulled from the embedded build info.
func Summary() string {
	release := Version
	commit := "unknown"
	built := "unknown"

	if info, ok := debug.ReadBuildInfo(); ok {
		if release == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			release = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				commit = s.Value
				if len(commit) > 12 {
					commit = commit[:12]
				}
			case "vcs.time":
				built = s.Value
			case "vcs.modified":
				if s.Value == "true" {
					commit += "-dirty"
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", release)
	fmt.Fprintf(&b, "Go: %s\n", runtime.Version())
	fmt.Fprintf(&b, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "Commit: %s\n", commit)
	fmt.Fprintf(&b, "Built: %s", built)
	return b.String()
}
