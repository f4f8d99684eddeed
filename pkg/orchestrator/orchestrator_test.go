package orchestrator

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikolchaa/resuma/pkg/archive"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/download"
	pkgerrors "github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/hooks"
	ocmocks "github.com/nikolchaa/resuma/pkg/orchestrator/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Emit(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name())
	}
	return out
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recorder) withKind(k events.Kind) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

func waitTask(t *testing.T, task *Task) (Result, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "task did not finish")
	return res, err
}

func tinyRequest(url string) asset.Request {
	return asset.Request{Category: "model", Name: "tiny-7b", SourceURL: url, Version: "1.0.0"}
}

func TestAcquire_DownloadAndExtract(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	root := t.TempDir()
	location := asset.Resolve(root, "model", "tiny-7b")
	archivePath := filepath.Join(location, "tiny-7b.zip")

	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), "https://example.test/tiny-7b.zip", archivePath, gomock.Any()).DoAndReturn(
		func(_ context.Context, _, dest string, onProgress download.ProgressFunc) (int64, error) {
			assert.DirExists(t, filepath.Dir(dest), "location exists before the download starts")
			onProgress(download.State{BytesDownloaded: 50, TotalBytes: 100}, 50)
			onProgress(download.State{BytesDownloaded: 100, TotalBytes: 100}, 100)
			return 100, nil
		},
	).Times(1)

	extractor := ocmocks.NewMockExtractor(ctrl)
	extractor.EXPECT().Extract(gomock.Any(), archivePath, location).Return(3, nil).Times(1)

	rec := &recorder{}
	orch := New(Options{Root: root, Fetcher: fetcher, Extractor: extractor, Sink: rec})

	task, shared := orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))
	assert.False(t, shared)
	assert.NotEmpty(t, task.ID)

	res, err := waitTask(t, task)
	require.NoError(t, err)
	assert.Equal(t, location, res.Location)
	assert.Equal(t, archivePath, res.ArchivePath)
	assert.Equal(t, int64(100), res.Bytes)
	assert.Equal(t, 3, res.Files)
	assert.True(t, res.Extracted)

	assert.Equal(t, []string{
		"download_progress:tiny-7b",
		"download_progress:tiny-7b",
		"download_complete:tiny-7b",
		"extract_complete:tiny-7b",
	}, rec.names())
	assert.Equal(t, location, rec.last().Path)
	for _, e := range rec.events {
		assert.Equal(t, task.ID, e.TaskID)
	}

	state, m := asset.Inspect(root, "model", "tiny-7b")
	assert.Equal(t, asset.StateComplete, state)
	require.NotNil(t, m)
	assert.Equal(t, "1.0.0", m.Version)
	assert.True(t, m.Extracted)
	assert.Equal(t, 0, orch.InFlight())
}

func TestAcquire_SkipExtraction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	root := t.TempDir()
	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(10), nil).Times(1)
	extractor := ocmocks.NewMockExtractor(ctrl)

	rec := &recorder{}
	orch := New(Options{Root: root, Fetcher: fetcher, Extractor: extractor, Sink: rec})

	req := asset.Request{Category: "runtime", Name: "cpu-linux", SourceURL: "https://example.test/", SkipExtraction: true}
	res, err := waitTask(t, first(orch.Acquire(context.Background(), req)))
	require.NoError(t, err)
	assert.False(t, res.Extracted)

	wantPath := filepath.Join(asset.Resolve(root, "runtime", "cpu-linux"), download.DefaultFileName)
	assert.Equal(t, wantPath, res.ArchivePath)
	assert.Equal(t, []string{"download_complete:cpu-linux"}, rec.names())
	assert.Equal(t, wantPath, rec.last().Path)
}

func TestAcquire_DownloadErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantPrefix string
	}{
		{"network", pkgerrors.Classify(pkgerrors.ErrNetwork, errors.New("dial tcp: refused")), "Download failed: "},
		{"create", pkgerrors.Classify(pkgerrors.ErrFileCreate, errors.New("read-only file system")), "Failed to create file: "},
		{"write", pkgerrors.Classify(pkgerrors.ErrFileWrite, errors.New("no space left on device")), "Failed writing file: "},
		{"stream", pkgerrors.Classify(pkgerrors.ErrStreamRead, errors.New("unexpected EOF")), "Download stream error: "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			fetcher := ocmocks.NewMockFetcher(ctrl)
			fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(0), tt.err).Times(1)
			extractor := ocmocks.NewMockExtractor(ctrl)

			rec := &recorder{}
			orch := New(Options{Root: t.TempDir(), Fetcher: fetcher, Extractor: extractor, Sink: rec})

			_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var assetErr *pkgerrors.AssetError
			require.ErrorAs(t, err, &assetErr)
			assert.Equal(t, pkgerrors.StageDownload, assetErr.Stage)

			assert.Equal(t, []string{"download_error:tiny-7b"}, rec.names())
			assert.True(t, strings.HasPrefix(rec.last().Message, tt.wantPrefix), rec.last().Message)
		})
	}
}

func TestAcquire_ExtractionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(5), nil)
	extractor := ocmocks.NewMockExtractor(ctrl)
	extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(0, pkgerrors.Classify(pkgerrors.ErrArchiveOpen, errors.New("zip: not a valid zip file")))

	rec := &recorder{}
	root := t.TempDir()
	orch := New(Options{Root: root, Fetcher: fetcher, Extractor: extractor, Sink: rec})

	_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrArchiveOpen)

	assert.Equal(t, []string{"download_complete:tiny-7b", "extract_error:tiny-7b"}, rec.names())
	assert.True(t, strings.HasPrefix(rec.last().Message, "Extraction failed: "))

	state, _ := asset.Inspect(root, "model", "tiny-7b")
	assert.Equal(t, asset.StatePartial, state, "no manifest after a failed extraction")
}

func TestAcquire_DirectoryCreationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	root := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(root, []byte("file in the way"), 0o644))

	rec := &recorder{}
	orch := New(Options{Root: root, Fetcher: ocmocks.NewMockFetcher(ctrl), Extractor: ocmocks.NewMockExtractor(ctrl), Sink: rec})

	_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
	assert.ErrorIs(t, err, pkgerrors.ErrDirectoryCreation)
	assert.Equal(t, []string{"download_error:tiny-7b"}, rec.names())
	assert.True(t, strings.HasPrefix(rec.last().Message, "Failed to create directory: "))
}

func TestAcquire_InvalidRequest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rec := &recorder{}
	orch := New(Options{Root: t.TempDir(), Fetcher: ocmocks.NewMockFetcher(ctrl), Extractor: ocmocks.NewMockExtractor(ctrl), Sink: rec})

	_, err := waitTask(t, first(orch.Acquire(context.Background(), asset.Request{Category: "model", Name: "tiny-7b"})))
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidRequest)
	assert.Equal(t, []string{"download_error:tiny-7b"}, rec.names())
}

func TestAcquire_DeduplicatesInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string, download.ProgressFunc) (int64, error) {
			close(started)
			<-release
			return 1, nil
		},
	).Times(1)

	rec := &recorder{}
	orch := New(Options{Root: t.TempDir(), Fetcher: fetcher, Extractor: ocmocks.NewMockExtractor(ctrl), Sink: rec})

	req := tinyRequest("https://example.test/tiny-7b.zip")
	req.SkipExtraction = true

	t1, shared1 := orch.Acquire(context.Background(), req)
	<-started
	t2, shared2 := orch.Acquire(context.Background(), req)
	assert.False(t, shared1)
	assert.True(t, shared2)
	assert.Same(t, t1, t2)
	assert.Equal(t, 1, orch.InFlight())

	close(release)
	_, err1 := waitTask(t, t1)
	_, err2 := waitTask(t, t2)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Len(t, rec.withKind(events.KindComplete), 1)
}

func TestAcquire_DoesNotDeduplicateDifferentAssets(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil).Times(2)

	orch := New(Options{Root: t.TempDir(), Fetcher: fetcher, Extractor: ocmocks.NewMockExtractor(ctrl)})

	a := asset.Request{Category: "model", Name: "tiny-7b", SourceURL: "https://x.test/a.zip", SkipExtraction: true}
	b := asset.Request{Category: "runtime", Name: "tiny-7b", SourceURL: "https://x.test/b.zip", SkipExtraction: true}
	ta, sharedA := orch.Acquire(context.Background(), a)
	tb, sharedB := orch.Acquire(context.Background(), b)
	assert.False(t, sharedA)
	assert.False(t, sharedB)
	assert.NotSame(t, ta, tb)

	_, err := waitTask(t, ta)
	require.NoError(t, err)
	_, err = waitTask(t, tb)
	require.NoError(t, err)
}

func TestAcquire_Hooks(t *testing.T) {
	t.Run("pre-acquire failure skips the download", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		hookRunner := ocmocks.NewMockHookRunner(ctrl)
		hookRunner.EXPECT().Execute(gomock.Any(), hooks.PreAcquire, gomock.Any()).
			Return(fmt.Errorf("%w: offline", pkgerrors.ErrHookScript))

		rec := &recorder{}
		orch := New(Options{Root: t.TempDir(), Fetcher: ocmocks.NewMockFetcher(ctrl), Extractor: ocmocks.NewMockExtractor(ctrl), Sink: rec, Hooks: hookRunner})

		_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
		assert.ErrorIs(t, err, pkgerrors.ErrHookScript)
		assert.Equal(t, []string{"download_error:tiny-7b"}, rec.names())
	})

	t.Run("post-acquire failure replaces the completion", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		root := t.TempDir()
		fetcher := ocmocks.NewMockFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(int64(1), nil)
		extractor := ocmocks.NewMockExtractor(ctrl)
		extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil)

		hookRunner := ocmocks.NewMockHookRunner(ctrl)
		gomock.InOrder(
			hookRunner.EXPECT().Execute(gomock.Any(), hooks.PreAcquire, gomock.Any()).Return(nil),
			hookRunner.EXPECT().Execute(gomock.Any(), hooks.PostAcquire, gomock.Any()).DoAndReturn(
				func(_ context.Context, _ hooks.HookType, hctx hooks.HookContext) error {
					assert.Equal(t, "tiny-7b", hctx.AssetName)
					assert.Equal(t, asset.Resolve(root, "model", "tiny-7b"), hctx.AssetPath)
					return fmt.Errorf("%w: chmod failed", pkgerrors.ErrHookScript)
				}),
		)

		rec := &recorder{}
		orch := New(Options{Root: root, Fetcher: fetcher, Extractor: extractor, Sink: rec, Hooks: hookRunner})

		_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
		assert.ErrorIs(t, err, pkgerrors.ErrHookScript)
		assert.Equal(t, []string{"download_complete:tiny-7b", "extract_error:tiny-7b"}, rec.names())
		assert.True(t, strings.HasPrefix(rec.last().Message, "Post-acquire hook failed: "))

		state, m := asset.Inspect(root, "model", "tiny-7b")
		assert.Equal(t, asset.StatePartial, state)
		assert.Nil(t, m)
	})
}

func TestAcquire_MaxConcurrent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var mu sync.Mutex
	running, peak := 0, 0
	fetcher := ocmocks.NewMockFetcher(ctrl)
	fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string, download.ProgressFunc) (int64, error) {
			mu.Lock()
			running++
			if running > peak {
				peak = running
			}
			mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return 1, nil
		},
	).Times(4)

	orch := New(Options{Root: t.TempDir(), Fetcher: fetcher, Extractor: ocmocks.NewMockExtractor(ctrl), MaxConcurrent: 1})

	var tasks []*Task
	for i := 0; i < 4; i++ {
		req := asset.Request{Category: "model", Name: "m" + strconv.Itoa(i), SourceURL: "https://x.test/m.zip", SkipExtraction: true}
		tasks = append(tasks, first(orch.Acquire(context.Background(), req)))
	}
	for _, task := range tasks {
		_, err := waitTask(t, task)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, peak)
}

func TestShutdown(t *testing.T) {
	t.Run("rejects new work", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		rec := &recorder{}
		orch := New(Options{Root: t.TempDir(), Fetcher: ocmocks.NewMockFetcher(ctrl), Extractor: ocmocks.NewMockExtractor(ctrl), Sink: rec})
		require.NoError(t, orch.Shutdown(context.Background()))

		_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest("https://example.test/tiny-7b.zip"))))
		assert.ErrorIs(t, err, ErrClosed)
		assert.Equal(t, []string{"download_error:tiny-7b"}, rec.names())
	})

	t.Run("cancels running work when the deadline passes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		started := make(chan struct{})
		fetcher := ocmocks.NewMockFetcher(ctrl)
		fetcher.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _, _ string, _ download.ProgressFunc) (int64, error) {
				close(started)
				<-ctx.Done()
				return 0, pkgerrors.Classify(pkgerrors.ErrStreamRead, ctx.Err())
			},
		)

		orch := New(Options{Root: t.TempDir(), Fetcher: fetcher, Extractor: ocmocks.NewMockExtractor(ctrl)})

		// The caller's context ending does not stop the acquisition.
		callerCtx, callerCancel := context.WithCancel(context.Background())
		task, _ := orch.Acquire(callerCtx, tinyRequest("https://example.test/tiny-7b.zip"))
		<-started
		callerCancel()
		select {
		case <-task.Done():
			t.Fatal("task stopped with the caller context")
		case <-time.After(50 * time.Millisecond):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		assert.ErrorIs(t, orch.Shutdown(ctx), context.DeadlineExceeded)

		_, err := waitTask(t, task)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestTaskWait_ContextDone(t *testing.T) {
	task := &Task{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := task.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// buildZip returns a zip with a directory entry followed by files.
func buildZip(t *testing.T, files int) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	_, err := zw.Create("weights/")
	require.NoError(t, err)
	for i := 0; i < files-1; i++ {
		w, err := zw.Create(fmt.Sprintf("weights/shard-%02d.bin", i))
		require.NoError(t, err)
		_, err = w.Write(bytes.Repeat([]byte{byte(i)}, 4096))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEndToEnd_TinyModel(t *testing.T) {
	payload := buildZip(t, 10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	root := t.TempDir()
	rec := &recorder{}
	orch := New(Options{
		Root:      root,
		Fetcher:   download.NewFetcher(download.Config{BufferSize: 4096}),
		Extractor: archive.NewExtractor(),
		Sink:      rec,
	})

	assert.False(t, asset.IsReady(root, "model", "tiny-7b"))

	res, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest(srv.URL+"/tiny-7b.zip"))))
	require.NoError(t, err)
	assert.Equal(t, 9, res.Files)

	progress := rec.withKind(events.KindProgress)
	require.NotEmpty(t, progress)
	for i, e := range progress {
		assert.GreaterOrEqual(t, e.Percent, 0.0)
		assert.LessOrEqual(t, e.Percent, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, e.Percent, progress[i-1].Percent)
		}
	}
	assert.InDelta(t, 100.0, progress[len(progress)-1].Percent, 0.0001)

	names := rec.names()
	assert.Equal(t, []string{"download_complete:tiny-7b", "extract_complete:tiny-7b"}, names[len(names)-2:])

	location := asset.Resolve(root, "model", "tiny-7b")
	assert.True(t, asset.IsReady(root, "model", "tiny-7b"))
	assert.DirExists(t, filepath.Join(location, "weights"))
	assert.FileExists(t, filepath.Join(location, "weights", "shard-08.bin"))
	assert.NoFileExists(t, filepath.Join(location, "tiny-7b.zip"))
}

func TestEndToEnd_ConnectionDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(bytes.Repeat([]byte("z"), 400))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	root := t.TempDir()
	rec := &recorder{}
	orch := New(Options{Root: root, Fetcher: download.NewFetcher(download.Config{}), Extractor: archive.NewExtractor(), Sink: rec})

	_, err := waitTask(t, first(orch.Acquire(context.Background(), tinyRequest(srv.URL+"/tiny-7b.zip"))))
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrStreamRead)

	assert.Empty(t, rec.withKind(events.KindComplete))
	last := rec.last()
	assert.Equal(t, "download_error:tiny-7b", last.Name())
	assert.True(t, strings.HasPrefix(last.Message, "Download stream error: "))

	info, statErr := os.Stat(filepath.Join(asset.Resolve(root, "model", "tiny-7b"), "tiny-7b.zip"))
	require.NoError(t, statErr)
	assert.Equal(t, int64(400), info.Size())
}

func TestEndToEnd_FailedRefetchClearsManifest(t *testing.T) {
	var drop atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.WriteHeader(http.StatusOK)
		if !drop.Load() {
			_, _ = w.Write(bytes.Repeat([]byte("m"), 1000))
			return
		}
		_, _ = w.Write(bytes.Repeat([]byte("m"), 400))
		w.(http.Flusher).Flush()
		panic(http.ErrAbortHandler)
	}))
	defer srv.Close()

	root := t.TempDir()
	orch := New(Options{Root: root, Fetcher: download.NewFetcher(download.Config{}), Extractor: archive.NewExtractor()})
	req := asset.Request{Category: "model", Name: "m", SourceURL: srv.URL + "/m.gguf", SkipExtraction: true, Version: "1.0.0"}

	_, err := waitTask(t, first(orch.Acquire(context.Background(), req)))
	require.NoError(t, err)
	state, _ := asset.Inspect(root, "model", "m")
	require.Equal(t, asset.StateComplete, state)

	drop.Store(true)
	_, err = waitTask(t, first(orch.Acquire(context.Background(), req)))
	require.ErrorIs(t, err, pkgerrors.ErrStreamRead)

	state, m := asset.Inspect(root, "model", "m")
	assert.Equal(t, asset.StatePartial, state)
	assert.Nil(t, m)
}

func first(task *Task, _ bool) *Task { return task }
