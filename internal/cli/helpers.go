package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/archive"
	"github.com/nikolchaa/resuma/pkg/config"
	"github.com/nikolchaa/resuma/pkg/download"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/hooks"
	"github.com/nikolchaa/resuma/pkg/orchestrator"
	"github.com/nikolchaa/resuma/pkg/presence"
)

// These variables will be set by the main package
var (
	ConfigPath *string
	Verbose    *bool
	NoColor    *bool
)

// loadConfig loads the configuration, applies the global flags and
// initializes logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	format := logger.OutputFormat(cfg.Settings.LogFormat)
	if NoColor != nil && *NoColor && (format == logger.FormatAuto || format == logger.FormatColor) {
		format = logger.FormatText
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)

	return cfg, nil
}

func getConfigPath() string {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes LoadConfig/SaveConfig report the problem.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

// newHookRunner loads the configured hook scripts. It returns nil when no
// hooks are configured.
func newHookRunner(cfg *config.Config) (orchestrator.HookRunner, error) {
	h := cfg.Hooks
	if h.Dir == "" && h.PreAcquire == "" && h.PostAcquire == "" {
		return nil, nil
	}

	executor := hooks.NewTengoExecutor()
	if h.Dir != "" {
		if err := executor.LoadDir(h.Dir); err != nil {
			return nil, err
		}
	}
	if h.PreAcquire != "" {
		if err := executor.LoadFile(hooks.PreAcquire, h.PreAcquire); err != nil {
			return nil, err
		}
	}
	if h.PostAcquire != "" {
		if err := executor.LoadFile(hooks.PostAcquire, h.PostAcquire); err != nil {
			return nil, err
		}
	}
	return executor, nil
}

// newOrchestrator wires the pipeline from the configuration.
func newOrchestrator(cfg *config.Config, sink events.Sink) (*orchestrator.Orchestrator, error) {
	root, err := cfg.DataRoot()
	if err != nil {
		return nil, err
	}

	runner, err := newHookRunner(cfg)
	if err != nil {
		return nil, err
	}

	fetcher := download.NewFetcher(download.Config{
		Client:            &http.Client{Timeout: cfg.Settings.HTTPTimeout},
		UserAgent:         cfg.Settings.UserAgent,
		InactivityTimeout: cfg.Settings.InactivityTimeout,
	})

	opts := orchestrator.Options{
		Root:          root,
		Fetcher:       fetcher,
		Extractor:     archive.NewExtractor(),
		Sink:          sink,
		MaxConcurrent: cfg.Settings.MaxConcurrent,
	}
	// A typed nil would look like a configured runner.
	if runner != nil {
		opts.Hooks = runner
	}
	return orchestrator.New(opts), nil
}

// interactive reports whether progress bars can be drawn.
func interactive() bool {
	if NoColor != nil && *NoColor {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// presenceSink connects to Discord when presence is enabled. Failing to
// connect only disables the activity display.
func presenceSink(ctx context.Context, cfg *config.Config) (events.Sink, func()) {
	if !cfg.Presence.Enabled || cfg.Presence.ClientID == "" {
		return nil, func() {}
	}

	client := presence.NewClient(cfg.Presence.ClientID, nil)
	if err := client.Connect(ctx); err != nil {
		logger.Warn("Discord presence unavailable", logger.Fields{"error": err.Error()})
		return nil, func() {}
	}
	return presence.NewSink(client), func() { _ = client.Disconnect() }
}
