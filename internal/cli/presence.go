package cli

import (
	"errors"

	"github.com/nikolchaa/resuma/internal/logger"
	"github.com/nikolchaa/resuma/pkg/presence"
	"github.com/spf13/cobra"
)

// NewPresenceCmd creates the presence command with subcommands.
func NewPresenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presence",
		Short: "Show resuma activity in Discord",
	}

	cmd.AddCommand(newPresenceSetCmd())

	return cmd
}

func newPresenceSetCmd() *cobra.Command {
	var (
		clientID string
		activity presence.Activity
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Display an activity until interrupted",
		Long: `Connect to the local Discord client and display an activity. Discord clears
the activity when the connection closes, so the command keeps running until
it is interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if clientID == "" {
				clientID = cfg.Presence.ClientID
			}
			if clientID == "" {
				return errors.New("no discord client id: set presence.client_id or pass --client-id")
			}

			ctx := cmd.Context()
			client := presence.NewClient(clientID, nil)
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer func() { _ = client.Disconnect() }()

			if err := client.SetActivity(ctx, activity); err != nil {
				return err
			}
			logger.Success("Activity set, press Ctrl+C to clear it", logger.Fields{"details": activity.Details})

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "Discord application ID (default: presence.client_id)")
	cmd.Flags().StringVar(&activity.Details, "details", "", "First line of the activity")
	cmd.Flags().StringVar(&activity.State, "state", "", "Second line of the activity")
	cmd.Flags().StringVar(&activity.SmallImage, "small-image", "", "Small image asset key")
	cmd.Flags().StringVar(&activity.SmallText, "small-text", "", "Small image tooltip")

	return cmd
}
