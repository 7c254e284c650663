package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

func newAckCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
	)

	cmd := &cobra.Command{
		Use:   "ack <message-id> <agent-id>",
		Short: "Acknowledge a message",
		Long:  "Marks a pending message as acknowledged by the given agent and stamps acknowledged_at.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			messageID, agentID := args[0], args[1]

			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).AcknowledgeMessage(cmd.Context(), messageID, agentID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s at %s\n",
					res.MessageID, res.AcknowledgedAt.Format("2006-01-02 15:04:05"))
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			msg, err := openStore(cfg).Acknowledge(messageID, agentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s at %s\n",
				msg.MessageID, msg.AcknowledgedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint; default is the local store")
	return cmd
}
