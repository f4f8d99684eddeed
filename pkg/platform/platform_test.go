package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentPlatform(t *testing.T) {
	p := CurrentPlatform()

	assert.Equal(t, NormalizeOS(runtime.GOOS), p.OS)
	assert.Equal(t, NormalizeArch(runtime.GOARCH), p.Arch)
	assert.NotEmpty(t, p.Arch)
}

func TestNormalizeOS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"windows", OSWindows},
		{"Windows 11 Pro", OSWindows},
		{"linux", OSLinux},
		{"Ubuntu 24.04 LTS", OSLinux},
		{"Fedora Linux", OSLinux},
		{"Arch", OSLinux},
		{"darwin", OSMacOS},
		{"macOS Sonoma", OSMacOS},
		{"any", AnyOS},
		{"", OSUnknown},
		{"plan9", OSUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeOS(tt.in))
		})
	}
}

func TestNormalizeArch(t *testing.T) {
	assert.Equal(t, ArchAMD64, NormalizeArch("x86_64"))
	assert.Equal(t, ArchAMD64, NormalizeArch("X64"))
	assert.Equal(t, Arch386, NormalizeArch("i686"))
	assert.Equal(t, ArchARM64, NormalizeArch("aarch64"))
	assert.Equal(t, ArchARM64, NormalizeArch("arm64"))
	assert.Equal(t, "riscv64", NormalizeArch("riscv64"))
}

func TestPlatformMatches(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		target   Platform
		expected bool
	}{
		{"exact", Platform{OSLinux, ArchAMD64}, Platform{OSLinux, ArchAMD64}, true},
		{"os mismatch", Platform{OSLinux, ArchAMD64}, Platform{OSWindows, ArchAMD64}, false},
		{"arch mismatch", Platform{OSLinux, ArchAMD64}, Platform{OSLinux, ArchARM64}, false},
		{"any os", Platform{AnyOS, ArchAMD64}, Platform{OSMacOS, ArchAMD64}, true},
		{"any arch on target", Platform{OSLinux, ArchARM64}, Platform{OSLinux, AnyArch}, true},
		{"empty arch", Platform{OSLinux, ""}, Platform{OSLinux, ArchARM64}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.platform.Matches(tt.target))
		})
	}
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "linux/amd64", Platform{OS: OSLinux, Arch: ArchAMD64}.String())
}

func TestBackendPriority(t *testing.T) {
	assert.Less(t, BackendCUDA.Priority(), BackendHIP.Priority())
	assert.Less(t, BackendHIP.Priority(), BackendVulkan.Priority())
	assert.Less(t, BackendVulkan.Priority(), BackendCPU.Priority())
	assert.Equal(t, 999, Backend("metal").Priority())
}
