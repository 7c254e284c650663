package telegraph

import (
	"fmt"
	"strings"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// CommandHandler processes "!a2a" commands from chat. Queries are
// read-only; ack and resolve mutate the message lifecycle on behalf of
// the named agent.
type CommandHandler struct {
	store    *msgstore.Store
	registry *agentcard.Registry
}

// CommandHandlerOpts holds parameters for creating a CommandHandler.
type CommandHandlerOpts struct {
	Store    *msgstore.Store
	Registry *agentcard.Registry
}

// NewCommandHandler creates a CommandHandler.
func NewCommandHandler(opts CommandHandlerOpts) (*CommandHandler, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("telegraph: command handler: store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("telegraph: command handler: registry is required")
	}
	return &CommandHandler{
		store:    opts.Store,
		registry: opts.Registry,
	}, nil
}

// Execute parses and executes a "!a2a" command string. Returns the
// response text to send back to the chat channel.
func (ch *CommandHandler) Execute(text string) string {
	args := parseCommand(text)
	if len(args) == 0 {
		return ch.helpText()
	}

	switch args[0] {
	case "status":
		return ch.cmdStatus()
	case "pending":
		return ch.cmdPending(args[1:])
	case "ack":
		return ch.cmdAck(args[1:])
	case "resolve":
		return ch.cmdResolve(args[1:])
	case "agents":
		return ch.cmdAgents()
	case "help":
		return ch.helpText()
	default:
		return fmt.Sprintf("Unknown command: `%s`\n\n%s", args[0], ch.helpText())
	}
}

// parseCommand strips the "!a2a" prefix and splits the remaining text.
func parseCommand(text string) []string {
	text = strings.TrimSpace(text)
	if text == commandPrefix {
		return nil
	}
	text = strings.TrimPrefix(text, commandPrefix+" ")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Fields(text)
}

// cmdStatus returns formatted hub status from the store index.
func (ch *CommandHandler) cmdStatus() string {
	idx, err := ch.store.Index()
	if err != nil {
		return fmt.Sprintf("Error getting status: %v", err)
	}

	var pending, acknowledged, resolved, urgent int
	for i := range idx.Messages {
		switch idx.Messages[i].Status {
		case models.StatusPending:
			pending++
			if idx.Messages[i].Priority == "urgent" {
				urgent++
			}
		case models.StatusAcknowledged:
			acknowledged++
		case models.StatusResolved:
			resolved++
		}
	}

	var b strings.Builder
	b.WriteString("**A2A Hub**\n")
	b.WriteString(fmt.Sprintf("Messages: %d total\n", len(idx.Messages)))
	b.WriteString(fmt.Sprintf("Pending: %d | Acknowledged: %d | Resolved: %d\n",
		pending, acknowledged, resolved))
	if urgent > 0 {
		b.WriteString(fmt.Sprintf("Urgent pending: %d\n", urgent))
	}
	return b.String()
}

// cmdPending lists pending messages with an optional recipient filter.
func (ch *CommandHandler) cmdPending(args []string) string {
	filter := msgstore.ListFilter{Status: string(models.StatusPending)}
	for i := 0; i < len(args)-1; i += 2 {
		switch args[i] {
		case "--agent":
			filter.AgentID = args[i+1]
		case "--priority":
			filter.Priority = args[i+1]
		}
	}

	msgs, err := ch.store.List(filter)
	if err != nil {
		return fmt.Sprintf("Error listing messages: %v", err)
	}
	if len(msgs) == 0 {
		return "No pending messages."
	}

	return formatMessageTable(msgs)
}

// cmdAck acknowledges a message on behalf of an agent.
func (ch *CommandHandler) cmdAck(args []string) string {
	if len(args) < 2 {
		return "Usage: `!a2a ack <message-id> <agent-id>`"
	}
	msg, err := ch.store.Acknowledge(args[0], args[1])
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Acknowledged %s for %s", msg.MessageID, args[1])
}

// cmdResolve resolves a message, with everything after the agent ID
// joined into the resolution note.
func (ch *CommandHandler) cmdResolve(args []string) string {
	if len(args) < 2 {
		return "Usage: `!a2a resolve <message-id> <agent-id> [note...]`"
	}
	note := strings.Join(args[2:], " ")
	msg, err := ch.store.Resolve(args[0], args[1], note)
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Resolved %s", msg.MessageID)
}

// cmdAgents lists registered agent cards.
func (ch *CommandHandler) cmdAgents() string {
	cards, err := ch.registry.List()
	if err != nil {
		return fmt.Sprintf("Error listing agents: %v", err)
	}
	if len(cards) == 0 {
		return "No agents registered."
	}

	return formatAgentTable(cards)
}

// helpText returns usage information for all commands.
func (ch *CommandHandler) helpText() string {
	return "**A2A Commands**\n" +
		"`!a2a status` — Hub message counts\n" +
		"`!a2a pending [--agent X] [--priority X]` — List pending messages\n" +
		"`!a2a ack <id> <agent>` — Acknowledge a message\n" +
		"`!a2a resolve <id> <agent> [note]` — Resolve a message\n" +
		"`!a2a agents` — List registered agents\n" +
		"`!a2a help` — This message"
}

// formatMessageTable formats a slice of messages as a monospace table.
func formatMessageTable(msgs []models.Message) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Pending Messages** (%d)\n", len(msgs)))
	b.WriteString(fmt.Sprintf("%-20s %-12s %-12s %-8s %s\n",
		"ID", "FROM", "TO", "PRI", "SUBJECT"))
	for _, m := range msgs {
		subject := m.Subject
		if len(subject) > 40 {
			subject = subject[:37] + "..."
		}
		b.WriteString(fmt.Sprintf("%-20s %-12s %-12s %-8s %s\n",
			m.MessageID, m.FromAgent, m.ToAgent, m.Priority, subject))
	}
	return b.String()
}

// formatAgentTable formats a slice of agent cards as a monospace table.
func formatAgentTable(cards []models.AgentCard) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("**Agents** (%d)\n", len(cards)))
	b.WriteString(fmt.Sprintf("%-16s %-20s %-10s %s\n",
		"ID", "NAME", "VERSION", "CAPABILITIES"))
	for _, c := range cards {
		b.WriteString(fmt.Sprintf("%-16s %-20s %-10s %s\n",
			c.AgentID, c.Name, c.Version, strings.Join(c.Capabilities, ", ")))
	}
	return b.String()
}
