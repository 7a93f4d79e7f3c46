package runtime

import (
	"fmt"
	goruntime "runtime"
	"strings"
)

// Platform identifies a distribution target using the upstream naming
// ("win", "linux", "osx" and "ia32", "x64", "arm64").
type Platform struct {
	OS   string
	Arch string
}

// CurrentPlatform returns the platform the process is running on.
func CurrentPlatform() Platform {
	p := Platform{OS: goruntime.GOOS, Arch: goruntime.GOARCH}
	switch p.OS {
	case "windows":
		p.OS = "win"
	case "darwin":
		p.OS = "osx"
	}
	switch p.Arch {
	case "amd64":
		p.Arch = "x64"
	case "386":
		p.Arch = "ia32"
	}
	return p
}

// ParsePlatform parses "<os>-<arch>", for example "linux-x64".
func ParsePlatform(s string) (Platform, error) {
	osName, arch, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "-")
	if !ok || arch == "" {
		return Platform{}, fmt.Errorf("invalid platform %q: expected <os>-<arch>", s)
	}
	switch osName {
	case "win", "linux", "osx":
	default:
		return Platform{}, fmt.Errorf("invalid platform %q: os must be one of win, linux, osx", s)
	}
	return Platform{OS: osName, Arch: arch}, nil
}

// String implements fmt.Stringer.
func (p Platform) String() string { return p.OS + "-" + p.Arch }

// IsBundle reports whether packages for p are application bundle
// directories rather than a single executable.
func (p Platform) IsBundle() bool { return p.OS == "osx" }

// ExeExt returns the executable file extension including the dot, or "".
func (p Platform) ExeExt() string {
	if p.OS == "win" {
		return ".exe"
	}
	return ""
}

// Launcher returns the name of the runtime launcher inside a distribution.
func (p Platform) Launcher() string {
	switch p.OS {
	case "osx":
		return "nwjs.app"
	case "win":
		return "nw.exe"
	default:
		return "nw"
	}
}

// CompilerName returns the name of the script compiler inside an SDK.
func (p Platform) CompilerName() string {
	return "nwjc" + p.ExeExt()
}
