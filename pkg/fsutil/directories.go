// Package fsutil provides utility functions and constants for file system operations.
package fsutil

import (
	"os"
	"path/filepath"
)

// EnsureDir creates a directory and all missing parents with DirModeDefault.
// It succeeds when the directory already exists.
func EnsureDir(path string) error {
	return os.MkdirAll(path, DirModeDefault)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// Exists reports whether anything is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
