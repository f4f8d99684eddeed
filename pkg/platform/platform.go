package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform represents a target platform with OS and Architecture.
// Both OS and Arch can be "any" to match any platform.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the current platform (OS and architecture)
func CurrentPlatform() Platform {
	return Platform{
		OS:   NormalizeOS(runtime.GOOS),
		Arch: NormalizeArch(runtime.GOARCH),
	}
}

// Matches checks if this platform matches the target platform.
// Empty fields behave like "any".
func (p Platform) Matches(target Platform) bool {
	return wildcardEq(p.OS, target.OS, AnyOS) && wildcardEq(p.Arch, target.Arch, AnyArch)
}

func wildcardEq(a, b, wild string) bool {
	return a == "" || b == "" || a == wild || b == wild || a == b
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// NormalizeOS maps GOOS values and free-form OS names such as "Windows 11 Pro"
// or "Ubuntu 24.04" to windows, linux or macos.
func NormalizeOS(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case lower == "":
		return OSUnknown
	case lower == AnyOS:
		return AnyOS
	case strings.Contains(lower, "windows"), lower == "win":
		return OSWindows
	case strings.Contains(lower, "linux"),
		strings.Contains(lower, "fedora"),
		strings.Contains(lower, "arch"),
		strings.Contains(lower, "debian"),
		strings.Contains(lower, "ubuntu"):
		return OSLinux
	case strings.Contains(lower, "mac"), strings.Contains(lower, OSDarwin):
		return OSMacOS
	default:
		return OSUnknown
	}
}

// NormalizeArch normalizes architecture names to GOARCH spelling.
func NormalizeArch(arch string) string {
	arch = strings.ToLower(strings.TrimSpace(arch))
	switch arch {
	case "x86_64", "x64":
		return ArchAMD64
	case "x86", "i386", "i686":
		return Arch386
	case "aarch64":
		return ArchARM64
	default:
		return arch
	}
}
