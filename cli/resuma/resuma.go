package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikolchaa/resuma/internal/cli"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	noColor    bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resuma",
		Short: "Download and unpack runtimes and models",
		Long: `resuma acquires the assets a local LLM setup needs with:
- Acquisition: download, unpack and track runtimes and models
- Catalog: recommend assets that fit the machine
- Service: an HTTP API with live progress events`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: auto-detect)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output and progress bars")

	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.NoColor = &noColor

	cmd.AddCommand(
		cli.NewAcquireCmd(),
		cli.NewInstallCmd(),
		cli.NewReadyCmd(),
		cli.NewStatusCmd(),
		cli.NewListCmd(),
		cli.NewRemoveCmd(),
		cli.NewCleanupCmd(),
		cli.NewCatalogCmd(),
		cli.NewPackCmd(),
		cli.NewServeCmd(),
		cli.NewPromptCmd(),
		cli.NewPresenceCmd(),
		cli.NewConfigCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
