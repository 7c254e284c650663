package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
)

// registerGetAgentCard registers the a2a_get_agent_card tool.
func registerGetAgentCard(s *server.MCPServer, registry *agentcard.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_get_agent_card",
			mcp.WithDescription("Fetch one agent's capability card: name, version, capabilities, transports, and declared authentication. Returns JSON."),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent whose card to fetch (e.g. 'archivist')")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			agentID, _ := args["agent_id"].(string)
			if agentID == "" {
				return nil, fmt.Errorf("agent_id is required")
			}

			card, err := registry.Get(agentID)
			if err != nil {
				return nil, err
			}

			data, err := json.MarshalIndent(card, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal card: %w", err)
			}

			logger.Printf("Card fetched for %s", agentID)
			return mcp.NewToolResultText(string(data)), nil
		},
	)
}

// registerListAgentCards registers the a2a_list_agent_cards tool.
func registerListAgentCards(s *server.MCPServer, registry *agentcard.Registry, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_list_agent_cards",
			mcp.WithDescription("List every registered agent's capability card. Use this to find which agent can handle a task before messaging it. Returns JSON."),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			cards, err := registry.List()
			if err != nil {
				return nil, err
			}

			if len(cards) == 0 {
				return mcp.NewToolResultText("No agent cards registered"), nil
			}

			data, err := json.MarshalIndent(cards, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("marshal cards: %w", err)
			}

			logger.Printf("Listed %d agent cards", len(cards))
			return mcp.NewToolResultText(string(data)), nil
		},
	)
}
