package cli

import (
	"context"
	"fmt"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/config"
	"github.com/nikolchaa/resuma/pkg/events"
	"github.com/nikolchaa/resuma/pkg/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var (
		addr string
		sys  systemFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the acquisition API and its WebSocket event stream.

Events are also published to Redis when redis.addr is configured. The
catalog is reloaded whenever the config or catalog file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return runServe(cmd.Context(), cfg, addr, sys)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	sys.register(cmd)

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, addr string, sys systemFlags) error {
	broker := events.NewBroker(0)
	sinks := []events.Sink{events.LogSink{}, broker}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		sinks = append(sinks, events.NewRedisSink(client, cfg.Redis.ChannelPrefix))
		logger.Info("Publishing events to redis", logger.Fields{"addr": cfg.Redis.Addr})
	}

	discord, disconnect := presenceSink(ctx, cfg)
	defer disconnect()
	sinks = append(sinks, discord)

	orch, err := newOrchestrator(cfg, events.Multi(sinks...))
	if err != nil {
		return err
	}
	cat, err := cfg.LoadCatalog()
	if err != nil {
		return err
	}

	srv := server.New(server.Options{
		Acquirer: orch,
		Broker:   broker,
		Catalog:  cat,
		System:   sys.system(),
	})

	catalogPath, err := cfg.CatalogPath()
	if err != nil {
		return err
	}
	watcher, err := config.NewWatcher(getConfigPath(), catalogPath)
	if err != nil {
		return err
	}
	watcher.OnChange(func(next *config.Config) {
		c, err := next.LoadCatalog()
		if err != nil {
			logger.Warn("Catalog reload failed", logger.Fields{"error": err.Error()})
			return
		}
		srv.SetCatalog(c)
		logger.Info("Catalog reloaded", logger.Fields{"entries": len(c.Entries())})
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	g.Go(func() error {
		err := srv.Run(gctx, addr)
		// Running acquisitions finish before the process exits.
		if shutdownErr := orch.Shutdown(context.WithoutCancel(gctx)); err == nil {
			err = shutdownErr
		}
		return err
	})
	return g.Wait()
}
