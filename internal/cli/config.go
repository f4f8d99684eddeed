package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/config"
	"github.com/nikolchaa/resuma/pkg/errors"
	"github.com/nikolchaa/resuma/pkg/fsutil"
	"github.com/spf13/cobra"
)

// Number of arguments expected by config set.
const setCommandArgs = 2

// NewConfigCmd creates the config command with subcommands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Inspect and edit the resuma configuration file.

Keys are dotted paths such as "server.addr" or "inference.ctx_size". Keys
under "settings." may be given without that prefix.`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigInitCmd(),
		newConfigPathCmd(),
	)

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if asYAML {
				data, err := cfg.ToYAML()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return printSettings(cmd.OutOrStdout(), cfg)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Print the configuration as YAML")

	return cmd
}

// printSettings writes every key with its value, followed by the catalog
// entries kept in the config file.
func printSettings(out io.Writer, cfg *config.Config) error {
	values := cfg.ToMap()
	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KEY\tVALUE")
	for _, key := range cfg.Keys() {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, values[key])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(cfg.Catalog) == 0 {
		return nil
	}
	_, _ = fmt.Fprintf(out, "\ncatalog entries: %d\n", len(cfg.Catalog))
	for _, e := range cfg.Catalog {
		_, _ = fmt.Fprintf(out, "  %s/%s\t%s\n", e.Category, e.Name, e.URL)
	}
	return nil
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			value, err := cfg.GetValue(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one configuration value",
		Long: `Change KEY to VALUE and save the file. The whole configuration is
validated first, so an invalid value leaves the file untouched.`,
		Args: cobra.ExactArgs(setCommandArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.SetValue(key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := getConfigPath()
			if err := cfg.SaveConfig(path); err != nil {
				return fmt.Errorf("saving %s: %w", path, err)
			}
			logger.Success("Configuration updated", logger.Fields{key: value})
			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		RunE: func(_ *cobra.Command, _ []string) error {
			path := getConfigPath()
			if fsutil.Exists(path) && !force {
				return fmt.Errorf("%s: %w", path, errors.ErrConfigFileExists)
			}
			if err := config.DefaultConfig().SaveConfig(path); err != nil {
				return fmt.Errorf("saving %s: %w", path, err)
			}
			logger.Success("Configuration file created", logger.Fields{"path": path})
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), getConfigPath())
			return err
		},
	}
}
