// Package orchestrator runs asset acquisitions: download, optional
// extraction, bookkeeping and event reporting, one goroutine per request.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/download"
	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"github.com/nikolchaa/resuma/pkg/hooks"
)

// ErrClosed is reported by tasks requested after Shutdown.
var ErrClosed = errors.New("orchestrator is shut down")

// Orchestrator accepts acquisition requests and runs them in the background.
type Orchestrator struct {
	root      string
	fetcher   Fetcher
	extractor Extractor
	sink      events.Sink
	hooks     HookRunner
	sem       chan struct{}

	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]*Task
	closed   bool
	wg       sync.WaitGroup
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		root:      opts.Root,
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		sink:      opts.Sink,
		hooks:     opts.Hooks,
		inflight:  make(map[string]*Task),
	}
	if o.sink == nil {
		o.sink = events.Discard
	}
	if opts.MaxConcurrent > 0 {
		o.sem = make(chan struct{}, opts.MaxConcurrent)
	}
	o.base, o.cancel = context.WithCancel(context.Background())
	return o
}

// Root returns the data directory the orchestrator writes under.
func (o *Orchestrator) Root() string { return o.root }

// Acquire starts acquiring req and returns immediately. If an acquisition
// of the same category and name is already running, its Task is returned
// and shared is true. The request keeps running after ctx is cancelled;
// only Shutdown stops it early.
func (o *Orchestrator) Acquire(ctx context.Context, req asset.Request) (task *Task, shared bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if t, ok := o.inflight[req.Key()]; ok {
		logger.Debug("joining in-flight acquisition", logger.Fields{"asset": req.Key(), "task": t.ID})
		return t, true
	}

	t := &Task{ID: uuid.NewString(), Request: req, done: make(chan struct{})}
	if o.closed {
		go o.fail(context.WithoutCancel(ctx), t, Result{TaskID: t.ID, Request: req}, events.StageDownload,
			"Download failed: "+ErrClosed.Error(), ErrClosed)
		return t, false
	}

	o.inflight[req.Key()] = t
	o.wg.Add(1)

	tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(o.base, cancel)
	go func() {
		defer o.wg.Done()
		defer cancel()
		defer stop()
		o.run(tctx, t)
	}()
	return t, false
}

// InFlight returns the number of running acquisitions.
func (o *Orchestrator) InFlight() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.inflight)
}

// Shutdown stops accepting work and waits for running acquisitions. When
// ctx ends first, running acquisitions are cancelled and ctx's error is
// returned.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.cancel()
		<-done
		return ctx.Err()
	}
}

func (o *Orchestrator) run(ctx context.Context, t *Task) {
	req := t.Request
	location := asset.Resolve(o.root, req.Category, req.Name)
	res := Result{TaskID: t.ID, Request: req, Location: location}
	started := time.Now()
	logger.Info("acquisition started", logger.Fields{"asset": req.Key(), "task": t.ID, "url": req.SourceURL})

	if err := req.Validate(); err != nil {
		o.fail(ctx, t, res, events.StageDownload, "Download failed: "+err.Error(), err)
		return
	}

	if err := fsutil.EnsureDir(location); err != nil {
		err = pkgerrors.Classify(pkgerrors.ErrDirectoryCreation, err)
		o.fail(ctx, t, res, events.StageDownload, "Failed to create directory: "+err.Error(), err)
		return
	}
	// Drop the manifest of an earlier run until this one completes.
	if err := asset.RemoveManifest(location); err != nil {
		err = pkgerrors.Classify(pkgerrors.ErrFileIO, err)
		o.fail(ctx, t, res, events.StageDownload, "Failed writing file: "+err.Error(), err)
		return
	}

	hctx := hooks.HookContext{AssetName: req.Name, AssetCategory: req.Category, AssetPath: location, SourceURL: req.SourceURL}
	if err := o.runHook(ctx, hooks.PreAcquire, hctx); err != nil {
		o.fail(ctx, t, res, events.StageDownload, "Download failed: "+err.Error(), err)
		return
	}

	res.ArchivePath = filepath.Join(location, download.FileNameFromURL(req.SourceURL))

	if err := o.acquireSlot(ctx); err != nil {
		o.fail(ctx, t, res, events.StageDownload, "Download failed: "+err.Error(), err)
		return
	}
	n, err := o.fetcher.Fetch(ctx, req.SourceURL, res.ArchivePath, func(_ download.State, percent float64) {
		o.emit(ctx, t, events.Progress(req.Name, percent))
	})
	o.releaseSlot()
	res.Bytes = n
	if err != nil {
		o.fail(ctx, t, res, events.StageDownload, downloadMessage(err), err)
		return
	}

	lastStage := events.StageDownload
	if !req.SkipExtraction {
		o.emit(ctx, t, events.Complete(req.Name, events.StageDownload, res.ArchivePath))

		lastStage = events.StageExtract
		files, err := o.extractor.Extract(ctx, res.ArchivePath, location)
		res.Files = files
		if err != nil {
			o.fail(ctx, t, res, events.StageExtract, "Extraction failed: "+err.Error(), err)
			return
		}
		res.Extracted = true
	}

	if err := o.runHook(ctx, hooks.PostAcquire, hctx); err != nil {
		o.fail(ctx, t, res, lastStage, "Post-acquire hook failed: "+err.Error(), err)
		return
	}

	o.writeManifest(res)

	donePath := res.ArchivePath
	if res.Extracted {
		donePath = location
	}
	o.emit(ctx, t, events.Complete(req.Name, lastStage, donePath))
	logger.Success("asset ready", logger.Fields{
		"asset":    req.Key(),
		"task":     t.ID,
		"bytes":    res.Bytes,
		"files":    res.Files,
		"duration": time.Since(started).Round(time.Millisecond).String(),
	})
	o.complete(t, res, nil)
}

func (o *Orchestrator) fail(ctx context.Context, t *Task, res Result, stage events.Stage, message string, err error) {
	// The error event is delivered even when the task was cancelled.
	o.emit(context.WithoutCancel(ctx), t, events.Failure(t.Request.Name, stage, message))
	logger.Error("acquisition failed", logger.Fields{"asset": t.Request.Key(), "task": t.ID, "stage": string(stage), "error": err.Error()})
	o.complete(t, res, pkgerrors.NewAssetError(t.Request.Name, pkgerrors.Stage(stage), err))
}

func (o *Orchestrator) complete(t *Task, res Result, err error) {
	o.mu.Lock()
	if o.inflight[t.Request.Key()] == t {
		delete(o.inflight, t.Request.Key())
	}
	o.mu.Unlock()
	t.finish(res, err)
}

func (o *Orchestrator) emit(ctx context.Context, t *Task, e events.Event) {
	e.TaskID = t.ID
	if err := o.sink.Emit(ctx, e); err != nil {
		logger.Debug("event delivery failed", logger.Fields{"event": e.Name(), "error": err.Error()})
	}
}

func (o *Orchestrator) runHook(ctx context.Context, hookType hooks.HookType, hctx hooks.HookContext) error {
	if o.hooks == nil {
		return nil
	}
	return o.hooks.Execute(ctx, hookType, hctx)
}

func (o *Orchestrator) acquireSlot(ctx context.Context) error {
	if o.sem == nil {
		return nil
	}
	select {
	case o.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) releaseSlot() {
	if o.sem != nil {
		<-o.sem
	}
}

// writeManifest records the completed acquisition. Readiness does not depend
// on it, so a failure is only logged.
func (o *Orchestrator) writeManifest(res Result) {
	m := asset.Manifest{
		Name:        res.Request.Name,
		Category:    res.Request.Category,
		SourceURL:   res.Request.SourceURL,
		Version:     res.Request.Version,
		Bytes:       res.Bytes,
		Extracted:   res.Extracted,
		Files:       res.Files,
		CompletedAt: time.Now().UTC(),
	}
	if err := asset.WriteManifest(res.Location, m); err != nil {
		logger.Warn("failed to write asset manifest", logger.Fields{"asset": res.Request.Key(), "error": err.Error()})
	}
}

func downloadMessage(err error) string {
	switch {
	case pkgerrors.Is(err, pkgerrors.ErrFileCreate):
		return "Failed to create file: " + err.Error()
	case pkgerrors.Is(err, pkgerrors.ErrFileWrite), pkgerrors.Is(err, pkgerrors.ErrFileIO):
		return "Failed writing file: " + err.Error()
	case pkgerrors.Is(err, pkgerrors.ErrStreamRead):
		return "Download stream error: " + err.Error()
	default:
		return fmt.Sprintf("Download failed: %v", err)
	}
}
