package cli

import (
	"fmt"
	"net/http"
	"runtime"
	"text/tabwriter"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/nikolchaa/resuma/pkg/catalog"
	"github.com/spf13/cobra"
)

// systemFlags describe the machine entries are evaluated against.
type systemFlags struct {
	os        string
	gpuModel  string
	gpuVendor string
	cuda      bool
	vulkan    bool
}

func (f *systemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.os, "os", runtime.GOOS, "Operating system to evaluate for")
	cmd.Flags().StringVar(&f.gpuModel, "gpu", "", "GPU model name, e.g. \"NVIDIA GeForce RTX 4070\"")
	cmd.Flags().StringVar(&f.gpuVendor, "gpu-vendor", "", "GPU vendor (nvidia, amd, intel)")
	cmd.Flags().BoolVar(&f.cuda, "cuda", false, "The machine has a working CUDA driver")
	cmd.Flags().BoolVar(&f.vulkan, "vulkan", false, "The machine has a working Vulkan driver")
}

func (f *systemFlags) system() catalog.System {
	return catalog.System{
		OSName:         f.os,
		GPUModel:       f.gpuModel,
		GPUVendor:      f.gpuVendor,
		SupportsCUDA:   f.cuda,
		SupportsVulkan: f.vulkan,
	}
}

// NewCatalogCmd creates the catalog command with subcommands.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse installable assets",
		Long:  "List catalog entries, pick a runtime for this machine and sync remote catalogs",
	}

	cmd.AddCommand(
		newCatalogListCmd(),
		newCatalogRecommendCmd(),
		newCatalogSyncCmd(),
	)

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var (
		sys      systemFlags
		category string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			evals := cat.Evaluate(sys.system())
			if len(evals) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "Catalog is empty")
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
			_, _ = fmt.Fprintln(tw, "NAME\tCATEGORY\tVERSION\tBACKEND\tCOMPATIBILITY\tINSTALLED")
			for _, ev := range evals {
				e := ev.Entry
				if category != "" && e.Category != category {
					continue
				}
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%t\n",
					e.Name, e.Category, orDash(e.Version), orDash(string(e.Backend)), ev.Status,
					asset.IsReady(root, e.Category, e.Name))
			}
			return tw.Flush()
		},
	}

	sys.register(cmd)
	cmd.Flags().StringVar(&category, "category", "", "Only list entries of this category")

	return cmd
}

func newCatalogRecommendCmd() *cobra.Command {
	var sys systemFlags

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print the best runtime for this machine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			cat, err := cfg.LoadCatalog()
			if err != nil {
				return err
			}

			runtimes, err := catalog.New(cat.Category(asset.CategoryRuntime))
			if err != nil {
				return err
			}
			entry, ok := catalog.Recommend(runtimes.Evaluate(sys.system()))
			if !ok {
				return fmt.Errorf("no confirmed runtime for %s", sys.os)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), entry.Name)
			return err
		},
	}

	sys.register(cmd)

	return cmd
}

func newCatalogSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync URL",
		Short: "Download a published catalog",
		Long: `Download the catalog at URL into the catalog file. The file is only
replaced when the remote copy changed and is a valid catalog.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path, err := cfg.CatalogPath()
			if err != nil {
				return err
			}

			syncer := catalog.NewSyncer(&http.Client{Timeout: cfg.Settings.HTTPTimeout}, cfg.Settings.UserAgent)
			updated, err := syncer.Sync(cmd.Context(), args[0], path)
			if err != nil {
				return fmt.Errorf("failed to sync catalog: %w", err)
			}
			if updated {
				logger.Success("Catalog updated", logger.Fields{"path": path})
			} else {
				logger.Info("Catalog is up to date", logger.Fields{"path": path})
			}
			return nil
		},
	}

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
