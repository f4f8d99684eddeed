package asset

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
)

// Installed is one storage location found on disk.
type Installed struct {
	Category string
	Name     string
	State    State
	Manifest *Manifest
}

// List returns every storage location under root, sorted by category and
// name. A root that was never written to yields an empty list.
func List(root string) ([]Installed, error) {
	base := filepath.Join(root, fsutil.AppNamespace)
	categories, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, pkgerrors.Classify(pkgerrors.ErrFileIO, err)
	}

	var out []Installed
	for _, c := range categories {
		if !c.IsDir() || !strings.HasSuffix(c.Name(), "s") {
			continue
		}
		category := strings.TrimSuffix(c.Name(), "s")

		names, err := os.ReadDir(filepath.Join(base, c.Name()))
		if err != nil {
			return nil, pkgerrors.Classify(pkgerrors.ErrFileIO, err)
		}
		for _, n := range names {
			if !n.IsDir() {
				continue
			}
			state, m := Inspect(root, category, n.Name())
			out = append(out, Installed{Category: category, Name: n.Name(), State: state, Manifest: m})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Remove deletes a storage location and everything in it. Removing a
// missing location is not an error.
func Remove(root, category, name string) error {
	if category == "" || name == "" {
		return pkgerrors.ErrInvalidRequest
	}
	dir := Resolve(root, category, name)
	base := filepath.Join(root, fsutil.AppNamespace)
	// Only a direct child of a category directory may be removed.
	if !fsutil.IsWithin(base, dir) || filepath.Dir(dir) != filepath.Join(base, category+"s") {
		return pkgerrors.Classify(pkgerrors.ErrInvalidRequest, pkgerrors.ErrUnsafePath)
	}
	if err := os.RemoveAll(dir); err != nil {
		return pkgerrors.Classify(pkgerrors.ErrFileIO, err)
	}
	return nil
}
