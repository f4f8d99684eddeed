//go:generate mockgen -destination=./mocks/orchestrator.go -package=mocks . Fetcher,Extractor,HookRunner

package orchestrator

import (
	"context"
	"sync"

	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/download"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/hooks"
)

// Fetcher streams a remote resource to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, url, dest string, onProgress download.ProgressFunc) (int64, error)
}

// Extractor unpacks an archive into a directory and removes the archive.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) (int, error)
}

// HookRunner runs user scripts around an acquisition.
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error
}

// Options configure an Orchestrator.
type Options struct {
	// Root is the data directory assets are stored under.
	Root      string
	Fetcher   Fetcher
	Extractor Extractor
	// Sink receives every event. Nil discards them.
	Sink  events.Sink
	Hooks HookRunner
	// MaxConcurrent caps simultaneous downloads. Zero means no cap.
	MaxConcurrent int
}

// Result describes a finished acquisition.
type Result struct {
	TaskID      string        `json:"task_id"`
	Request     asset.Request `json:"request"`
	Location    string        `json:"location"`
	ArchivePath string        `json:"archive_path"`
	Bytes       int64         `json:"bytes"`
	Files       int           `json:"files"`
	Extracted   bool          `json:"extracted"`
}

// Task is the handle of one acquisition. All callers that joined the same
// acquisition share one Task.
type Task struct {
	ID      string
	Request asset.Request

	done   chan struct{}
	mu     sync.Mutex
	result Result
	err    error
}

// Done is closed once the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done. The returned error is
// the failure that was reported as an error event.
func (t *Task) Wait(ctx context.Context) (Result, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func (t *Task) finish(res Result, err error) {
	t.mu.Lock()
	t.result = res
	t.err = err
	t.mu.Unlock()
	close(t.done)
}
