package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/archive"
	"github.com/spf13/cobra"
)

// NewPackCmd creates the pack command.
func NewPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack SOURCE-DIR OUTPUT-FILE",
		Short: "Create a zip archive that acquire can unpack",
		Long: `Pack the contents of SOURCE-DIR into a zip archive. Paths inside the
archive are relative to SOURCE-DIR, so acquiring the archive recreates the
directory's contents in the asset's storage location.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sourceDir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("invalid source directory: %w", err)
			}
			outputFile, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("invalid output file: %w", err)
			}

			info, err := os.Stat(sourceDir)
			if err != nil {
				return fmt.Errorf("source directory does not exist: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("source is not a directory: %s", sourceDir)
			}

			if err := archive.Create(cmd.Context(), sourceDir, outputFile); err != nil {
				return err
			}
			logger.Success("Archive created", logger.Fields{"path": outputFile})
			return nil
		},
	}

	return cmd
}
