package cli

import (
	"github.com/nikolchaa/resuma/pkg/asset"
	"github.com/spf13/cobra"
)

// NewAcquireCmd creates the acquire command.
func NewAcquireCmd() *cobra.Command {
	var (
		skipExtraction bool
		version        string
	)

	cmd := &cobra.Command{
		Use:   "acquire CATEGORY NAME URL",
		Short: "Download and unpack an asset",
		Long: `Download the archive at URL into the storage location for CATEGORY/NAME
and unpack it there. The archive is removed after a successful extraction.

Use --skip-extraction to keep the downloaded file as is.`,
		Args: cobra.ExactArgs(acquireCommandArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			req := asset.Request{
				Category:       args[0],
				Name:           args[1],
				SourceURL:      args[2],
				SkipExtraction: skipExtraction,
				Version:        version,
			}
			if err := req.Validate(); err != nil {
				return err
			}
			return acquireAll(cmd.Context(), cfg, []asset.Request{req}, 1)
		},
	}

	cmd.Flags().BoolVar(&skipExtraction, "skip-extraction", false, "Keep the downloaded file without unpacking it")
	cmd.Flags().StringVar(&version, "version", "", "Version recorded in the asset manifest")

	return cmd
}
