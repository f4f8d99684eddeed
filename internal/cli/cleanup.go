package cli

import (
	"fmt"

	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewCleanupCmd creates the cleanup command.
func NewCleanupCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove partially acquired assets",
		Long: `Remove storage locations left behind by failed or interrupted acquisitions,
i.e. those without a completion record.

Use --dry-run to see what would be cleaned up without actually removing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCleanup(cmd, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be cleaned up without actually removing anything")

	return cmd
}

func runCleanup(cmd *cobra.Command, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root, err := cfg.DataRoot()
	if err != nil {
		return err
	}

	installed, err := asset.List(root)
	if err != nil {
		return fmt.Errorf("failed to list assets: %w", err)
	}

	var partial []string
	for _, a := range installed {
		if a.State != asset.StatePartial {
			continue
		}
		key := a.Category + "/" + a.Name
		if !dryRun {
			if err := asset.Remove(root, a.Category, a.Name); err != nil {
				return fmt.Errorf("failed to remove %s: %w", key, err)
			}
		}
		partial = append(partial, key)
	}

	out := cmd.OutOrStdout()
	switch {
	case len(partial) == 0:
		_, err = fmt.Fprintln(out, "No partial assets found to clean up")
	case dryRun:
		_, err = fmt.Fprintf(out, "Would clean up %d partial assets: %v\n", len(partial), partial)
	default:
		_, err = fmt.Fprintf(out, "Successfully cleaned up %d partial assets: %v\n", len(partial), partial)
	}
	return err
}
