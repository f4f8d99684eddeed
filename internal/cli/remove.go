package cli

import (
	"fmt"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewRemoveCmd creates the remove command.
func NewRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove CATEGORY NAME",
		Short: "Delete an installed asset",
		Long: `Delete the storage location of CATEGORY/NAME and everything in it.
Removing an asset that is not installed fails unless --force is given.`,
		Args: cobra.ExactArgs(assetCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := cfg.DataRoot()
			if err != nil {
				return err
			}

			category, name := args[0], args[1]
			if !asset.IsReady(root, category, name) {
				if force {
					logger.Warn("Asset not installed, skipping", logger.Fields{"asset": category + "/" + name})
					return nil
				}
				return fmt.Errorf("%s/%s is not installed", category, name)
			}

			if err := asset.Remove(root, category, name); err != nil {
				return fmt.Errorf("failed to remove %s/%s: %w", category, name, err)
			}
			logger.Success("Asset removed", logger.Fields{"asset": category + "/" + name})
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Do not fail when the asset is not installed")

	return cmd
}
