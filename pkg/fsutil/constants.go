package fsutil

// File and directory permission constants used for everything the
// pipeline writes under the data root.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: downloaded archives, extracted files, manifests
	FileModeSecure  = 0o600 // -rw-------: config files
	FileModeExec    = 0o755 // -rwxr-xr-x: runtime binaries

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: asset storage locations
	DirModeSecure  = 0o750 // drwxr-x---: config directory
)
