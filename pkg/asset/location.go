package asset

import (
	"os"
	"path/filepath"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
)

// Resolve returns root/com.resuma.app/<category>s/<name>.
// It is pure: nothing is read from or written to disk.
func Resolve(root, category, name string) string {
	return filepath.Join(root, fsutil.AppNamespace, category+"s", name)
}

// DataRoot returns the platform data directory assets are stored under.
func DataRoot() (string, error) {
	dir, err := fsutil.GetBaseDataDir()
	if err != nil {
		return "", pkgerrors.Classify(pkgerrors.ErrConfiguration, err)
	}
	return dir, nil
}

// IsReady reports whether the asset's storage directory exists.
// Existence is the whole criterion; see Inspect for the manifest-backed view.
func IsReady(root, category, name string) bool {
	_, err := os.Stat(Resolve(root, category, name))
	return err == nil
}
