// Package asset describes acquisition requests and the deterministic on-disk
// layout assets are stored in.
package asset

import (
	"fmt"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
)

// Common asset categories. Any non-empty string is accepted; these are the
// ones the inference layout relies on.
const (
	CategoryModel   = "model"
	CategoryRuntime = "runtime"
)

// Request asks for one asset to be fetched and optionally unpacked.
// It is treated as immutable once handed to the orchestrator.
type Request struct {
	Category       string `json:"category" yaml:"category"`
	Name           string `json:"name" yaml:"name"`
	SourceURL      string `json:"source_url" yaml:"source_url"`
	SkipExtraction bool   `json:"skip_extraction" yaml:"skip_extraction"`
	// Version is recorded in the manifest when known (catalog installs).
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Key identifies the storage location a request writes to.
func (r Request) Key() string {
	return r.Category + "/" + r.Name
}

// Validate rejects requests missing a required field.
// Names and categories are not sanitized beyond that; callers own their shape.
func (r Request) Validate() error {
	switch {
	case r.Category == "":
		return fmt.Errorf("category is required: %w", pkgerrors.ErrInvalidRequest)
	case r.Name == "":
		return fmt.Errorf("name is required: %w", pkgerrors.ErrInvalidRequest)
	case r.SourceURL == "":
		return fmt.Errorf("source url is required: %w", pkgerrors.ErrInvalidRequest)
	}
	return nil
}
