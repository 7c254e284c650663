package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

func newSendCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		from       string
		to         string
		msgType    string
		priority   string
		subject    string
		content    string
		relTask    string
		relMessage string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message to an agent",
		Long:  "Creates a message from one agent to another, writing to the local store or to a remote A2A server.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).SendMessage(cmd.Context(), rpc.SendMessageParams{
					From:             from,
					To:               to,
					Type:             msgType,
					Priority:         priority,
					Subject:          subject,
					Content:          content,
					RelatedTaskID:    relTask,
					RelatedMessageID: relMessage,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", res.MessageID, to)
				return nil
			}

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			msg, err := openStore(cfg).Create(msgstore.CreateParams{
				From:             from,
				To:               to,
				Type:             msgType,
				Priority:         priority,
				Subject:          subject,
				Content:          content,
				RelatedTaskID:    relTask,
				RelatedMessageID: relMessage,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent %s to %s\n", msg.MessageID, to)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint (e.g. http://host:8700/a2a); default is the local store")
	cmd.Flags().StringVar(&from, "from", "", "sender agent ID (required)")
	cmd.Flags().StringVar(&to, "to", "", "recipient agent ID (required)")
	cmd.Flags().StringVar(&msgType, "type", "notification", "message type (e.g. question, notification)")
	cmd.Flags().StringVar(&priority, "priority", "normal", "message priority (e.g. low, normal, high, urgent)")
	cmd.Flags().StringVar(&subject, "subject", "", "message subject (required)")
	cmd.Flags().StringVar(&content, "content", "", "message body markdown (required)")
	cmd.Flags().StringVar(&relTask, "related-task", "", "related task ID")
	cmd.Flags().StringVar(&relMessage, "related-message", "", "related message ID")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("subject")
	cmd.MarkFlagRequired("content")
	return cmd
}
