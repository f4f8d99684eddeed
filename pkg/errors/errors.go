// Package errors defines the error taxonomy shared by the acquisition pipeline
// and its surrounding tooling.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Acquisition errors. Every one of them is terminal for the task that raised it.
var (
	ErrDirectoryCreation = fmt.Errorf("failed to create directory")
	ErrNetwork           = fmt.Errorf("network error")
	ErrStreamRead        = fmt.Errorf("download stream error")
	ErrFileIO            = fmt.Errorf("file i/o error")
	ErrFileCreate        = fmt.Errorf("%w: create", ErrFileIO)
	ErrFileWrite         = fmt.Errorf("%w: write", ErrFileIO)
	ErrArchiveOpen       = fmt.Errorf("failed to open archive")
	ErrArchiveEntry      = fmt.Errorf("failed to extract archive entry")
	ErrUnsafePath        = fmt.Errorf("archive entry escapes destination")
	ErrConfiguration     = fmt.Errorf("data directory unavailable")
	ErrInvalidRequest    = fmt.Errorf("invalid acquisition request")

	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrUnknownConfigKey  = fmt.Errorf("unknown configuration key")
	ErrInvalidLogLevel   = fmt.Errorf("invalid log level")

	// Catalog errors.
	ErrAssetNotFound  = fmt.Errorf("asset not found in catalog")
	ErrInvalidVersion = fmt.Errorf("invalid asset version")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")

	// Collaborator errors.
	ErrNotConnected    = fmt.Errorf("presence client not connected")
	ErrRuntimeNotFound = fmt.Errorf("runtime not found")
	ErrInference       = fmt.Errorf("inference process failed")
)

// Stage names the pipeline step an AssetError belongs to.
type Stage string

// Pipeline stages.
const (
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
)

// AssetError scopes a failure to the asset and stage that produced it.
type AssetError struct {
	Asset string
	Stage Stage
	Err   error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Asset, e.Err)
}

func (e *AssetError) Unwrap() error { return e.Err }

// NewAssetError returns nil when err is nil.
func NewAssetError(asset string, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &AssetError{Asset: asset, Stage: stage, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Classify attaches a taxonomy sentinel to err while keeping err in the chain.
func Classify(kind, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", kind, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return stderrors.As(err, target) }
