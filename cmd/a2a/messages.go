package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

func newMessagesCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
		agent      string
		status     string
		msgType    string
		priority   string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List messages",
		Long:  "Lists messages in creation order, filtered by agent, status, type, and priority.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var msgs []models.Message
			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).GetMessages(cmd.Context(), rpc.GetMessagesParams{
					AgentID:  agent,
					Status:   status,
					Type:     msgType,
					Priority: priority,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
				msgs = res.Messages
			} else {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				msgs, err = openStore(cfg).List(msgstore.ListFilter{
					AgentID:  agent,
					Status:   status,
					Type:     msgType,
					Priority: priority,
					Limit:    limit,
				})
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(msgs) == 0 {
				fmt.Fprintln(out, "No messages")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFROM\tTO\tSTATUS\tPRIORITY\tSUBJECT\tCREATED")
			for i := range msgs {
				m := &msgs[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					m.MessageID, m.FromAgent, m.ToAgent, m.Status, m.Priority,
					m.Subject, m.CreatedAt.Format("2006-01-02 15:04"))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint; default is the local store")
	cmd.Flags().StringVar(&agent, "agent", "", "only messages sent or received by this agent (\"all\" disables)")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (pending, acknowledged, resolved)")
	cmd.Flags().StringVar(&msgType, "type", "", "filter by message type")
	cmd.Flags().StringVar(&priority, "priority", "", "filter by priority")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (default 20)")
	return cmd
}
