package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
)

const (
	defaultUserAgent  = "resuma/1.0"
	defaultBufferSize = 32 * 1024
)

// State tracks one in-flight download. TotalBytes is -1 when the server
// did not announce a content length.
type State struct {
	BytesDownloaded int64
	TotalBytes      int64
}

// Percent returns the completion percentage clamped to [0,100], or 0 when
// the total is unknown.
func (s State) Percent() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	p := float64(s.BytesDownloaded) / float64(s.TotalBytes) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// ProgressFunc is called after every chunk written to disk.
type ProgressFunc func(state State, percent float64)

// Config controls a Fetcher.
type Config struct {
	// Client defaults to a client without a global timeout.
	Client    *http.Client
	UserAgent string
	// InactivityTimeout aborts a download that receives no bytes for this
	// long. Zero disables it.
	InactivityTimeout time.Duration
	BufferSize        int
}

// Fetcher streams remote resources to local files.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	inactivity time.Duration
	bufSize    int
}

// NewFetcher creates a Fetcher, filling unset fields with defaults.
func NewFetcher(cfg Config) *Fetcher {
	f := &Fetcher{
		client:     cfg.Client,
		userAgent:  cfg.UserAgent,
		inactivity: cfg.InactivityTimeout,
		bufSize:    cfg.BufferSize,
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.bufSize <= 0 {
		f.bufSize = defaultBufferSize
	}
	return f
}

// Fetch downloads url into dest, creating or truncating it, and reports
// progress after each chunk. It returns the number of bytes written.
// A partially written file is left in place on failure.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string, onProgress ProgressFunc) (int64, error) {
	ctx, wd := newWatchdog(ctx, f.inactivity)
	defer wd.Stop()

	resp, err := f.doRequest(ctx, url)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	out, err := fsutil.CreateFilePerm(dest, fsutil.FileModeDefault)
	if err != nil {
		return 0, pkgerrors.Classify(pkgerrors.ErrFileCreate, err)
	}
	defer func() { _ = out.Close() }()

	state := State{TotalBytes: resp.ContentLength}
	if state.TotalBytes < 0 {
		state.TotalBytes = -1
	}

	buf := make([]byte, f.bufSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			wd.Kick()
			if _, err := out.Write(buf[:n]); err != nil {
				return state.BytesDownloaded, pkgerrors.Classify(pkgerrors.ErrFileWrite, err)
			}
			state.BytesDownloaded += int64(n)
			if onProgress != nil {
				onProgress(state, state.Percent())
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			if cause := context.Cause(ctx); cause != nil {
				rerr = cause
			}
			return state.BytesDownloaded, pkgerrors.Classify(pkgerrors.ErrStreamRead, rerr)
		}
	}

	if err := out.Close(); err != nil {
		return state.BytesDownloaded, pkgerrors.Classify(pkgerrors.ErrFileWrite, err)
	}
	return state.BytesDownloaded, nil
}

func (f *Fetcher) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, pkgerrors.Classify(pkgerrors.ErrNetwork, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Classify(pkgerrors.ErrNetwork, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status code %d", pkgerrors.ErrNetwork, resp.StatusCode)
	}
	return resp, nil
}
