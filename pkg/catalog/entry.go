// Package catalog lists the runtimes and models that can be acquired and
// picks the ones that suit the current machine.
package catalog

import (
	"fmt"

	"github.com/hashicorp/go-version"
	"github.com/nikolchaa/resuma/pkg/asset"
	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/platform"
)

// Compatibility is how well an entry fits a machine.
type Compatibility string

// Compatibility levels.
const (
	Confirmed   Compatibility = "confirmed"
	Unknown     Compatibility = "unknown"
	Unsupported Compatibility = "unsupported"
)

// CompatibleGPU lists a GPU model (or "any nvidia", "any amd", "any intel")
// an entry is known to work with.
type CompatibleGPU struct {
	Model  string        `yaml:"model" json:"model"`
	Status Compatibility `yaml:"status" json:"status"`
}

// Entry describes one downloadable asset.
type Entry struct {
	Name     string `yaml:"name" json:"name"`
	Label    string `yaml:"label,omitempty" json:"label,omitempty"`
	Category string `yaml:"category" json:"category"`
	URL      string `yaml:"url" json:"url"`
	Version  string `yaml:"version,omitempty" json:"version,omitempty"`
	// Platform is a normalized OS name; empty matches every OS.
	Platform       string           `yaml:"platform,omitempty" json:"platform,omitempty"`
	Backend        platform.Backend `yaml:"backend,omitempty" json:"backend,omitempty"`
	SkipExtraction bool             `yaml:"skip_extraction,omitempty" json:"skip_extraction,omitempty"`
	CompatibleGPUs []CompatibleGPU  `yaml:"compatible_gpus,omitempty" json:"compatible_gpus,omitempty"`
}

// Validate checks the fields needed to build an acquisition request.
func (e Entry) Validate() error {
	if e.Name == "" || e.Category == "" || e.URL == "" {
		return fmt.Errorf("%w: entry %q needs name, category and url", pkgerrors.ErrConfigValidation, e.Name)
	}
	if e.Version != "" {
		if _, err := version.NewVersion(e.Version); err != nil {
			return fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidVersion, e.Name, err)
		}
	}
	return nil
}

// Request converts the entry into an acquisition request.
func (e Entry) Request() asset.Request {
	return asset.Request{
		Category:       e.Category,
		Name:           e.Name,
		SourceURL:      e.URL,
		SkipExtraction: e.SkipExtraction,
		Version:        e.Version,
	}
}

// Outdated reports whether the entry's version is newer than installed.
// An entry without a version is never outdated; an unversioned install
// always is.
func (e Entry) Outdated(installed string) (bool, error) {
	if e.Version == "" {
		return false, nil
	}
	want, err := version.NewVersion(e.Version)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", pkgerrors.ErrInvalidVersion, e.Name, err)
	}
	if installed == "" {
		return true, nil
	}
	have, err := version.NewVersion(installed)
	if err != nil {
		return false, fmt.Errorf("%w: installed %s: %w", pkgerrors.ErrInvalidVersion, e.Name, err)
	}
	return have.LessThan(want), nil
}
