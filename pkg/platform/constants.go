// Package platform normalizes operating system, architecture and GPU backend
// names so catalog entries can be matched against the running machine.
package platform

const (
	// OSWindows represents the Windows operating system.
	OSWindows = "windows"
	// OSLinux represents the Linux operating system.
	OSLinux = "linux"
	// OSDarwin is the GOOS value for macOS.
	OSDarwin = "darwin"
	// OSMacOS is the normalized catalog name for macOS.
	OSMacOS = "macos"
	// OSUnknown is returned when an OS name cannot be classified.
	OSUnknown = "unknown"
	// AnyOS represents any possible OS
	AnyOS = "any"

	// ArchAMD64 represents the AMD64 (x86_64) architecture.
	ArchAMD64 = "amd64"
	// Arch386 represents the 32-bit x86 architecture.
	Arch386 = "386"
	// ArchARM represents the ARM architecture (32-bit).
	ArchARM = "arm"
	// ArchARM64 represents the ARM64 (AArch64) architecture.
	ArchARM64 = "arm64"
	// AnyArch represents any possible architecture
	AnyArch = "any"
)

// Backend is the compute backend an inference runtime was built for.
type Backend string

// Known runtime backends.
const (
	BackendCUDA   Backend = "cuda"
	BackendHIP    Backend = "hip"
	BackendVulkan Backend = "vulkan"
	BackendCPU    Backend = "cpu"
)

// Priority orders backends from most to least preferred; unknown backends sort last.
func (b Backend) Priority() int {
	switch b {
	case BackendCUDA:
		return 1
	case BackendHIP:
		return 2
	case BackendVulkan:
		return 3
	case BackendCPU:
		return 4
	default:
		return 999
	}
}
