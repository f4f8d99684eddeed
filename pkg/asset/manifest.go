package asset

import (
	"os"
	"path/filepath"
	"time"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"gopkg.in/yaml.v3"
)

// ManifestFile is written into a storage location once an acquisition completes.
const ManifestFile = ".resuma-asset.yaml"

// Manifest records what was placed in a storage location.
type Manifest struct {
	Name        string    `yaml:"name" json:"name"`
	Category    string    `yaml:"category" json:"category"`
	SourceURL   string    `yaml:"source_url" json:"source_url"`
	Version     string    `yaml:"version,omitempty" json:"version,omitempty"`
	Bytes       int64     `yaml:"bytes" json:"bytes"`
	Extracted   bool      `yaml:"extracted" json:"extracted"`
	Files       int       `yaml:"files,omitempty" json:"files,omitempty"`
	CompletedAt time.Time `yaml:"completed_at" json:"completed_at"`
}

// State summarizes a storage location.
type State string

// Storage location states.
const (
	StateMissing  State = "missing"
	StatePartial  State = "partial"
	StateComplete State = "complete"
)

// WriteManifest stores m in dir, replacing any previous manifest.
func WriteManifest(dir string, m Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to encode manifest")
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, ManifestFile), data, fsutil.FileModeDefault); err != nil {
		return pkgerrors.Classify(pkgerrors.ErrFileIO, err)
	}
	return nil
}

// RemoveManifest deletes the manifest in dir. A missing manifest is not an error.
func RemoveManifest(dir string) error {
	if err := os.Remove(filepath.Join(dir, ManifestFile)); err != nil && !pkgerrors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// ReadManifest loads the manifest in dir.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse manifest")
	}
	return &m, nil
}

// Inspect classifies a storage location: missing when the directory is absent,
// partial when it exists without a readable manifest, complete otherwise.
func Inspect(root, category, name string) (State, *Manifest) {
	dir := Resolve(root, category, name)
	if !fsutil.Exists(dir) {
		return StateMissing, nil
	}
	m, err := ReadManifest(dir)
	if err != nil {
		return StatePartial, nil
	}
	return StateComplete, m
}
