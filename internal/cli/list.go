package cli

import (
	"fmt"
	"strings"

	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewListCmd creates the list command.
func NewListCmd() *cobra.Command {
	var nameFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed assets",
		Long: `List every storage location under the data directory.

A location is "complete" when its acquisition finished and "partial" when
the directory exists without a completion record, e.g. after a failed
download. Use --name to filter assets by name.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, nameFilter)
		},
	}

	cmd.Flags().StringVar(&nameFilter, "name", "", "Filter assets by name (partial match)")

	return cmd
}

func runList(cmd *cobra.Command, nameFilter string) error {
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

	out := cmd.OutOrStdout()
	var rows []asset.Installed
	for _, a := range installed {
		if nameFilter == "" || strings.Contains(a.Name, nameFilter) {
			rows = append(rows, a)
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, "No assets installed")
		return err
	}

	// Header
	_, _ = fmt.Fprintf(out, "%-10s %-30s %-12s %s\n", "CATEGORY", "NAME", "VERSION", "STATE")
	_, _ = fmt.Fprintln(out, strings.Repeat("-", 64))

	// Rows
	for _, a := range rows {
		version := "-"
		if a.Manifest != nil && a.Manifest.Version != "" {
			version = a.Manifest.Version
		}
		_, _ = fmt.Fprintf(out, "%-10s %-30s %-12s %s\n", a.Category, a.Name, version, a.State)
	}

	return nil
}
