package hooks

import (
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
)

// HookFileExtension is the extension hook scripts are recognized by.
const HookFileExtension = ".tengo"

// LoadFile registers the script at path for hookType.
func (e *TengoExecutor) LoadFile(hookType HookType, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.Classify(pkgerrors.ErrHookLoad, err), "error reading hooks file %s", path)
	}
	e.AddScript(hookType, string(content))
	return nil
}

// LoadDir registers every <hook-type>.tengo script found in dir. Unknown
// names and other files are ignored; a missing directory loads nothing.
func (e *TengoExecutor) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrapf(pkgerrors.Classify(pkgerrors.ErrHookLoad, err), "failed to read hooks directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != HookFileExtension {
			continue
		}
		hookType := HookType(strings.TrimSuffix(entry.Name(), HookFileExtension))
		if !hookType.Valid() {
			continue
		}
		if err := e.LoadFile(hookType, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
