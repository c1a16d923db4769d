// Package buildinfo reports which build of serenity is running.
//
// Release builds stamp the values with ldflags:
//
//	go build -ldflags "-X github.com/iamvince24/serenity-canvas/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/iamvince24/serenity-canvas/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/iamvince24/serenity-canvas/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with go install carry no ldflags; Get then falls back to
// the module version and VCS stamps recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set by ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the resolved build identity.
type Info struct {
	Version string
	Commit  string
	Date    string
}

var (
	resolveOnce sync.Once
	resolved    Info
)

// Get returns the build identity, preferring ldflags values.
func Get() Info {
	resolveOnce.Do(func() {
		bi, _ := debug.ReadBuildInfo()
		resolved = resolve(Info{Version: Version, Commit: Commit, Date: Date}, bi)
	})
	return resolved
}

// resolve fills the unset fields of stamped from bi.
func resolve(stamped Info, bi *debug.BuildInfo) Info {
	if bi == nil {
		return stamped
	}
	out := stamped
	if out.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		out.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && out.Commit == "none":
			out.Commit = s.Value
		case s.Key == "vcs.time" && out.Date == "unknown":
			out.Date = s.Value
		}
	}
	return out
}

func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
