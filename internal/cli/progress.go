package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/internal/tui"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/config"
	"github.com/nikolchaa/resuma/pkg/events"
	"golang.org/x/sync/errgroup"
)

// errAborted is returned when the user leaves the progress view early.
var errAborted = errors.New("aborted by user")

// acquireAll runs reqs through a fresh orchestrator, at most limit at a
// time, and reports progress either as bars or as log lines.
func acquireAll(ctx context.Context, cfg *config.Config, reqs []asset.Request, limit int) error {
	discord, disconnect := presenceSink(ctx, cfg)
	defer disconnect()

	if interactive() {
		return acquireWithTUI(ctx, cfg, reqs, limit, discord)
	}
	return acquireWithLogs(ctx, cfg, reqs, limit, events.Multi(events.LogSink{}, discord))
}

func acquireWithLogs(ctx context.Context, cfg *config.Config, reqs []asset.Request, limit int, sink events.Sink) error {
	orch, err := newOrchestrator(cfg, sink)
	if err != nil {
		return err
	}
	// Shutdown returns at once when every task is done and cancels the
	// remaining ones when ctx was interrupted.
	defer func() { _ = orch.Shutdown(ctx) }()

	return runGroup(ctx, reqs, limit, func(ctx context.Context, req asset.Request) error {
		task, shared := orch.Acquire(ctx, req)
		if shared {
			logger.Info("Already in progress", logger.Fields{"asset": req.Key()})
		}
		_, err := task.Wait(ctx)
		return err
	})
}

func acquireWithTUI(ctx context.Context, cfg *config.Config, reqs []asset.Request, limit int, extra events.Sink) error {
	names := make([]string, 0, len(reqs))
	for _, r := range reqs {
		names = append(names, r.Name)
	}

	program := tea.NewProgram(tui.New(names...), tea.WithContext(ctx))
	orch, err := newOrchestrator(cfg, events.Multi(tui.NewSink(program), extra))
	if err != nil {
		return err
	}

	groupErr := make(chan error, 1)
	go func() {
		groupErr <- runGroup(ctx, reqs, limit, func(ctx context.Context, req asset.Request) error {
			task, _ := orch.Acquire(ctx, req)
			_, err := task.Wait(ctx)
			program.Send(tui.FinishedMsg{Asset: req.Name, Err: err})
			return err
		})
	}()

	final, runErr := program.Run()
	if m, ok := final.(tui.Model); ok && m.Aborted {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_ = orch.Shutdown(cancelled)
		<-groupErr
		return errAborted
	}
	if runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("progress display failed: %w", runErr)
	}

	err = <-groupErr
	_ = orch.Shutdown(ctx)
	return err
}

// runGroup calls fn for every request with bounded concurrency and returns
// the first error once all calls have returned.
func runGroup(ctx context.Context, reqs []asset.Request, limit int, fn func(context.Context, asset.Request) error) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, req := range reqs {
		g.Go(func() error {
			return fn(ctx, req)
		})
	}
	return g.Wait()
}
