package catalog

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
)

// Syncer downloads catalog files published over HTTP.
type Syncer struct {
	client    *http.Client
	userAgent string
}

// NewSyncer creates a Syncer. A nil client uses http.DefaultClient.
func NewSyncer(client *http.Client, userAgent string) *Syncer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Syncer{client: client, userAgent: userAgent}
}

// Sync downloads the catalog at url to path. When path already exists its
// modification time is sent as If-Modified-Since and a 304 leaves it
// untouched. The download is validated before it replaces path. It reports
// whether path was updated.
func (s *Syncer) Sync(ctx context.Context, url, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return false, pkgerrors.Wrap(err, "failed to create request")
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if info, err := os.Stat(path); err == nil {
		req.Header.Set("If-Modified-Since", info.ModTime().UTC().Format(http.TimeFormat))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, pkgerrors.Classify(pkgerrors.ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return false, nil
	case http.StatusOK:
	default:
		return false, fmt.Errorf("%w: unexpected status code: %d", pkgerrors.ErrNetwork, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, pkgerrors.Classify(pkgerrors.ErrStreamRead, err)
	}
	if _, err := Load(bytes.NewReader(data)); err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeSecure); err != nil {
		return false, pkgerrors.Classify(pkgerrors.ErrDirectoryCreation, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FileModeDefault); err != nil {
		return false, pkgerrors.Classify(pkgerrors.ErrFileWrite, err)
	}

	if lastModified := resp.Header.Get("Last-Modified"); lastModified != "" {
		if t, err := http.ParseTime(lastModified); err == nil {
			if err := os.Chtimes(path, t, t); err != nil {
				return true, pkgerrors.Wrap(err, "could not change times on catalog file")
			}
		}
	}
	return true, nil
}
