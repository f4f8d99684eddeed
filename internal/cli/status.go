package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewReadyCmd creates the ready command.
func NewReadyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ready CATEGORY NAME",
		Short: "Check whether an asset's storage location exists",
		Long: `Print "true" when the storage location for CATEGORY/NAME exists and "false"
otherwise. The exit status is 0 in both cases.`,
		Args: cobra.ExactArgs(assetCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := cfg.DataRoot()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), asset.IsReady(root, args[0], args[1]))
			return err
		},
	}
}

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status CATEGORY NAME",
		Short: "Show the state of an installed asset",
		Args:  cobra.ExactArgs(assetCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := cfg.DataRoot()
			if err != nil {
				return err
			}

			category, name := args[0], args[1]
			state, manifest := asset.Inspect(root, category, name)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintf(tw, "Location\t%s\n", asset.Resolve(root, category, name))
			_, _ = fmt.Fprintf(tw, "State\t%s\n", state)
			if manifest != nil {
				_, _ = fmt.Fprintf(tw, "Source\t%s\n", manifest.SourceURL)
				if manifest.Version != "" {
					_, _ = fmt.Fprintf(tw, "Version\t%s\n", manifest.Version)
				}
				_, _ = fmt.Fprintf(tw, "Bytes\t%d\n", manifest.Bytes)
				_, _ = fmt.Fprintf(tw, "Extracted\t%t\n", manifest.Extracted)
				if manifest.Extracted {
					_, _ = fmt.Fprintf(tw, "Files\t%d\n", manifest.Files)
				}
				_, _ = fmt.Fprintf(tw, "Completed\t%s\n", manifest.CompletedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}
