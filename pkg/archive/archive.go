// Package archive unpacks downloaded zip archives into asset storage and
// packs directories back into zips for publishing.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"github.com/mholt/archives"
)

// Extractor unpacks zip archives.
type Extractor struct{}

// NewExtractor creates an Extractor that removes archives once unpacked.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract unpacks archivePath into destDir, deletes the archive and reports
// how many files were written. Entries are processed in archive order and
// the first failing entry aborts the run; anything already written stays on
// disk.
func (e *Extractor) Extract(ctx context.Context, archivePath, destDir string) (int, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return 0, pkgerrors.Classify(pkgerrors.ErrArchiveOpen, err)
	}

	files := 0
	handler := func(_ context.Context, info archives.FileInfo) error {
		written, err := extractEntry(info, destDir)
		if err != nil {
			return err
		}
		if written {
			files++
		}
		return nil
	}

	err = archives.Zip{}.Extract(ctx, f, handler)
	_ = f.Close()
	if err != nil {
		switch {
		case pkgerrors.Is(err, pkgerrors.ErrArchiveEntry), pkgerrors.Is(err, pkgerrors.ErrUnsafePath):
			return files, err
		case ctx.Err() != nil:
			return files, ctx.Err()
		default:
			return files, pkgerrors.Classify(pkgerrors.ErrArchiveOpen, err)
		}
	}

	if err := os.Remove(archivePath); err != nil {
		return files, pkgerrors.Classify(pkgerrors.ErrFileIO, fmt.Errorf("remove archive: %w", err))
	}
	return files, nil
}

// extractEntry writes a single entry below destDir. It reports whether a
// regular file was written.
func extractEntry(info archives.FileInfo, destDir string) (bool, error) {
	name := info.NameInArchive
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !fsutil.IsWithin(destDir, target) {
		return false, fmt.Errorf("%w: %w: %s", pkgerrors.ErrArchiveEntry, pkgerrors.ErrUnsafePath, name)
	}

	if info.IsDir() || strings.HasSuffix(name, "/") {
		if err := os.MkdirAll(target, fsutil.DirModeDefault); err != nil {
			return false, entryError(name, err)
		}
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), fsutil.DirModeDefault); err != nil {
		return false, entryError(name, err)
	}

	src, err := info.Open()
	if err != nil {
		return false, entryError(name, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := fsutil.CreateFilePerm(target, entryPerm(info))
	if err != nil {
		return false, entryError(name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return false, entryError(name, err)
	}
	if err := dst.Close(); err != nil {
		return false, entryError(name, err)
	}
	return true, nil
}

func entryPerm(info archives.FileInfo) os.FileMode {
	perm := info.Mode().Perm()
	if perm == 0 {
		return fsutil.FileModeDefault
	}
	// Keep files readable and writable by the owner whatever the archive says.
	return perm | 0o600
}

func entryError(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", pkgerrors.ErrArchiveEntry, name, err)
}

// Create packs the contents of sourceDir into a zip at archivePath.
func Create(ctx context.Context, sourceDir, archivePath string) error {
	absolutePath, err := filepath.Abs(sourceDir)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to get absolute path for source directory")
	}

	archiveFiles, err := archives.FilesFromDisk(ctx, nil, map[string]string{
		absolutePath + string(os.PathSeparator): "",
	})
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read files from disk")
	}

	if err := fsutil.EnsureFileDir(archivePath); err != nil {
		return pkgerrors.Classify(pkgerrors.ErrDirectoryCreation, err)
	}
	file, err := os.Create(archivePath)
	if err != nil {
		return pkgerrors.Classify(pkgerrors.ErrFileIO, err)
	}
	defer func() {
		_ = file.Sync()
		_ = file.Close()
	}()

	if err := (archives.Zip{}).Archive(ctx, file, archiveFiles); err != nil {
		return pkgerrors.Wrapf(err, "failed to create archive %s", archivePath)
	}
	return nil
}
