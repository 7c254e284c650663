package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

func newResolveCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		note       string
	)

	cmd := &cobra.Command{
		Use:   "resolve <message-id> <agent-id>",
		Short: "Resolve a message",
		Long:  "Moves a message to its terminal resolved state, optionally appending a resolution note to the message file.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			messageID, agentID := args[0], args[1]

			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).ResolveMessage(cmd.Context(), messageID, agentID, note)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s at %s\n",
					res.MessageID, res.ResolvedAt.Format("2006-01-02 15:04:05"))
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			msg, err := openStore(cfg).Resolve(messageID, agentID, note)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Resolved %s at %s\n",
				msg.MessageID, msg.ResolvedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint; default is the local store")
	cmd.Flags().StringVar(&note, "note", "", "resolution note appended to the message body")
	return cmd
}
