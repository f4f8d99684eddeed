package cli

import (
	"fmt"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	var (
		force       bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "install NAME...",
		Short: "Install assets from the catalog",
		Long: `Install one or more catalog entries by name.

Entries that are already installed at the catalog version are skipped
unless --force is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := cfg.LoadCatalog()
			if err != nil {
				return err
			}
			root, err := cfg.DataRoot()
			if err != nil {
				return err
			}

			var reqs []asset.Request
			for _, name := range args {
				entry, err := cat.Find(name)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}

				if !force {
					state, manifest := asset.Inspect(root, entry.Category, entry.Name)
					if state == asset.StateComplete {
						outdated, err := entry.Outdated(manifest.Version)
						if err != nil {
							return err
						}
						if !outdated {
							logger.Info("Already installed", logger.Fields{"asset": entry.Name, "version": manifest.Version})
							continue
						}
					}
				}
				reqs = append(reqs, entry.Request())
			}

			if len(reqs) == 0 {
				return nil
			}
			if concurrency <= 0 {
				concurrency = cfg.Settings.MaxConcurrent
			}
			return acquireAll(cmd.Context(), cfg, reqs, concurrency)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Reinstall entries that are already installed")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of parallel installs (0=max_concurrent from config)")

	return cmd
}
