package a2a

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// registerSendMessage registers the a2a_send_message tool.
func registerSendMessage(s *server.MCPServer, store *msgstore.Store, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_send_message",
			mcp.WithDescription("Send a message to another homelab agent. The message stays pending until the recipient acknowledges it."),
			mcp.WithString("from", mcp.Required(), mcp.Description("Sending agent ID (e.g. 'squire')")),
			mcp.WithString("to", mcp.Required(), mcp.Description("Recipient agent ID (e.g. 'archivist')")),
			mcp.WithString("subject", mcp.Required(), mcp.Description("One-line summary of the message")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Message body, markdown")),
			mcp.WithString("type", mcp.Description("Message type (e.g. question, notification; default: notification)")),
			mcp.WithString("priority", mcp.Description("Message priority (e.g. low, normal, high, urgent; default: normal)")),
			mcp.WithString("related_task_id", mcp.Description("Task this message relates to")),
			mcp.WithString("related_message_id", mcp.Description("Message this one replies to")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			from, _ := args["from"].(string)
			to, _ := args["to"].(string)
			subject, _ := args["subject"].(string)
			content, _ := args["content"].(string)

			if from == "" || to == "" || subject == "" || content == "" {
				return nil, fmt.Errorf("from, to, subject, and content are required")
			}

			msgType, _ := args["type"].(string)
			if msgType == "" {
				msgType = "notification"
			}
			priority, _ := args["priority"].(string)
			if priority == "" {
				priority = "normal"
			}
			relatedTask, _ := args["related_task_id"].(string)
			relatedMsg, _ := args["related_message_id"].(string)

			msg, err := store.Create(msgstore.CreateParams{
				From:             from,
				To:               to,
				Type:             msgType,
				Priority:         priority,
				Subject:          subject,
				Content:          content,
				RelatedTaskID:    relatedTask,
				RelatedMessageID: relatedMsg,
			})
			if err != nil {
				return nil, err
			}

			logger.Printf("%s sent from %s to %s", msg.MessageID, from, to)
			return mcp.NewToolResultText(fmt.Sprintf("Sent %s to %s", msg.MessageID, to)), nil
		},
	)
}

// registerGetMessages registers the a2a_get_messages tool.
func registerGetMessages(s *server.MCPServer, store *msgstore.Store, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_get_messages",
			mcp.WithDescription("List messages where an agent is sender or recipient, newest last. Check this regularly for pending messages addressed to you."),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent whose messages to list, or 'all' for every agent")),
			mcp.WithString("status", mcp.Description("Filter by lifecycle status"),
				mcp.Enum("pending", "acknowledged", "resolved")),
			mcp.WithString("type", mcp.Description("Filter by message type")),
			mcp.WithString("priority", mcp.Description("Filter by priority")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of messages to return (default: 20, max: 100)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			agentID, _ := args["agent_id"].(string)
			if agentID == "" {
				return nil, fmt.Errorf("agent_id is required")
			}

			status, _ := args["status"].(string)
			msgType, _ := args["type"].(string)
			priority, _ := args["priority"].(string)

			limit := 0
			if v, ok := args["limit"].(float64); ok {
				limit = int(v)
				if limit < 1 {
					limit = 1
				}
				if limit > 100 {
					limit = 100
				}
			}

			msgs, err := store.List(msgstore.ListFilter{
				AgentID:  agentID,
				Status:   status,
				Type:     msgType,
				Priority: priority,
				Limit:    limit,
			})
			if err != nil {
				return nil, err
			}

			if len(msgs) == 0 {
				return mcp.NewToolResultText("No messages"), nil
			}

			var b strings.Builder
			for _, m := range msgs {
				fmt.Fprintf(&b, "--- %s [%s] from %s to %s (%s, %s, %s) ---\nSubject: %s\n\n%s\n\n",
					m.MessageID, m.Status, m.FromAgent, m.ToAgent,
					m.Type, m.Priority, m.CreatedAt.Format("2006-01-02 15:04:05"),
					m.Subject, m.Content)
			}

			logger.Printf("Listed %d messages for %s", len(msgs), agentID)
			return mcp.NewToolResultText(b.String()), nil
		},
	)
}

// registerAcknowledgeMessage registers the a2a_acknowledge_message tool.
func registerAcknowledgeMessage(s *server.MCPServer, store *msgstore.Store, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_acknowledge_message",
			mcp.WithDescription("Acknowledge a pending message so the sender knows it was received. Acknowledge before starting the work it asks for."),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Message to acknowledge (e.g. 'MSG-2026-03-14-001')")),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Acknowledging agent, normally the recipient")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			messageID, _ := args["message_id"].(string)
			agentID, _ := args["agent_id"].(string)
			if messageID == "" || agentID == "" {
				return nil, fmt.Errorf("message_id and agent_id are required")
			}

			msg, err := store.Acknowledge(messageID, agentID)
			if err != nil {
				return nil, err
			}

			logger.Printf("%s acknowledged by %s", messageID, agentID)
			return mcp.NewToolResultText(fmt.Sprintf("Acknowledged %s at %s",
				msg.MessageID, msg.AcknowledgedAt.Format("2006-01-02 15:04:05"))), nil
		},
	)
}

// registerResolveMessage registers the a2a_resolve_message tool.
func registerResolveMessage(s *server.MCPServer, store *msgstore.Store, logger *log.Logger) {
	s.AddTool(
		mcp.NewTool("a2a_resolve_message",
			mcp.WithDescription("Resolve a message once its work is done. Resolution is final; include a resolution_note describing the outcome."),
			mcp.WithString("message_id", mcp.Required(), mcp.Description("Message to resolve")),
			mcp.WithString("agent_id", mcp.Required(), mcp.Description("Resolving agent")),
			mcp.WithString("resolution_note", mcp.Description("What was done; appended to the message content")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := req.GetArguments()
			messageID, _ := args["message_id"].(string)
			agentID, _ := args["agent_id"].(string)
			if messageID == "" || agentID == "" {
				return nil, fmt.Errorf("message_id and agent_id are required")
			}
			note, _ := args["resolution_note"].(string)

			msg, err := store.Resolve(messageID, agentID, note)
			if err != nil {
				return nil, err
			}

			logger.Printf("%s resolved by %s", messageID, agentID)
			return mcp.NewToolResultText(fmt.Sprintf("Resolved %s at %s",
				msg.MessageID, msg.ResolvedAt.Format("2006-01-02 15:04:05"))), nil
		},
	)
}
