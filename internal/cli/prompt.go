package cli

import (
	"fmt"

	"github.com/nikolchaa/resuma/pkg/inference"
	"github.com/spf13/cobra"
)

// NewPromptCmd creates the prompt command.
func NewPromptCmd() *cobra.Command {
	var (
		ramMB  int
		vramMB int
		vendor string
	)

	cmd := &cobra.Command{
		Use:   "prompt MODEL RUNTIME TEXT",
		Short: "Ask an installed model a question",
		Long: `Run TEXT through the installed MODEL using the installed llama.cpp RUNTIME
and print the answer.

Inference settings come from the config file. When --ram is given, settings
are instead picked for the described hardware.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := cfg.DataRoot()
			if err != nil {
				return err
			}

			settings := cfg.Inference
			if ramMB > 0 {
				settings = inference.AdaptiveSettings(inference.Hardware{RAMMB: ramMB, VRAMMB: vramMB, GPUVendor: vendor})
			}

			answer, err := inference.NewRunner(root, settings).Prompt(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}

	cmd.Flags().IntVar(&ramMB, "ram", 0, "System memory in MB, enables adaptive settings")
	cmd.Flags().IntVar(&vramMB, "vram", 0, "GPU memory in MB for adaptive settings")
	cmd.Flags().StringVar(&vendor, "gpu-vendor", "", "GPU vendor for adaptive settings")

	return cmd
}
