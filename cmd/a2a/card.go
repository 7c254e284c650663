package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/rpc"
)

func newCardCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
	)

	cmd := &cobra.Command{
		Use:   "card <agent-id>",
		Short: "Show an agent's capability card",
		Long:  "Displays one agent's capability manifest: name, version, capabilities, and transports.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agentID := args[0]

			var card *models.AgentCard
			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).GetAgentCard(cmd.Context(), agentID)
				if err != nil {
					return err
				}
				card = res.AgentCard
			} else {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				card, err = openRegistry(cfg).Get(agentID)
				if err != nil {
					return err
				}
			}

			printCard(cmd, card)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint; default is the local registry")
	return cmd
}

func printCard(cmd *cobra.Command, card *models.AgentCard) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) v%s\n", card.Name, card.AgentID, card.Version)
	fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(card.Capabilities, ", "))
	for _, tr := range card.Transports {
		fmt.Fprintf(out, "Transport: %s %s", tr.Transport, tr.Endpoint)
		if len(tr.Methods) > 0 {
			fmt.Fprintf(out, " (%s)", strings.Join(tr.Methods, ", "))
		}
		fmt.Fprintln(out)
	}
	if card.Authentication.Type != "" {
		required := "optional"
		if card.Authentication.Required {
			required = "required"
		}
		fmt.Fprintf(out, "Auth: %s (%s)\n", card.Authentication.Type, required)
	}
	fmt.Fprintf(out, "Updated: %s\n", card.UpdatedAt.Format("2006-01-02 15:04"))
}

func newCardsCmd() *cobra.Command {
	var (
		configPath string
		serverURL  string
	)

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List all agent capability cards",
		Long:  "Lists every registered agent card, sorted by agent ID.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cards []models.AgentCard
			if serverURL != "" {
				res, err := rpc.NewClient(serverURL).ListAgentCards(cmd.Context())
				if err != nil {
					return err
				}
				cards = res.AgentCards
			} else {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				cards, err = openRegistry(cfg).List()
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if len(cards) == 0 {
				fmt.Fprintln(out, "No agent cards registered")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "AGENT\tNAME\tVERSION\tCAPABILITIES")
			for i := range cards {
				c := &cards[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					c.AgentID, c.Name, c.Version, strings.Join(c.Capabilities, ", "))
			}
			w.Flush()
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to A2A config file")
	cmd.Flags().StringVar(&serverURL, "server", "", "A2A server endpoint; default is the local registry")
	return cmd
}
