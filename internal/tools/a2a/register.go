// Package a2a exposes the message store and the agent card registry as MCP
// tools, so local agent processes can send and work messages over stdio
// without going through the HTTP endpoint. Both paths share the same data
// directory, so a message sent here is immediately visible to the server
// and the CLI.
package a2a

import (
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Register registers all a2a tools with the mcp-go server.
func Register(s *server.MCPServer, store *msgstore.Store, registry *agentcard.Registry, logger *log.Logger) {
	// Message lifecycle tools (4)
	registerSendMessage(s, store, logger)
	registerGetMessages(s, store, logger)
	registerAcknowledgeMessage(s, store, logger)
	registerResolveMessage(s, store, logger)

	// Discovery tools (2)
	registerGetAgentCard(s, registry, logger)
	registerListAgentCards(s, registry, logger)
}
