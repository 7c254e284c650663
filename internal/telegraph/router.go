package telegraph

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
)

// commandPrefix is the prefix that triggers command handling.
const commandPrefix = "!a2a"

// Router classifies inbound chat messages and routes recognized commands
// to the command handler. Everything else is ignored: the telegraph is a
// notification bridge, not a conversational bot.
type Router struct {
	cmdHandler *CommandHandler
	adapter    Adapter
	botUserID  string // the bot's own user ID (to filter self-messages)
	out        io.Writer
}

// RouterOpts holds parameters for creating a Router.
type RouterOpts struct {
	CmdHandler *CommandHandler
	Adapter    Adapter
	BotUserID  string    // bot's user ID for self-message filtering
	Out        io.Writer // defaults to os.Stdout
}

// NewRouter creates a Router.
func NewRouter(opts RouterOpts) (*Router, error) {
	if opts.CmdHandler == nil {
		return nil, fmt.Errorf("telegraph: router: command handler is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("telegraph: router: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Router{
		cmdHandler: opts.CmdHandler,
		adapter:    opts.Adapter,
		botUserID:  opts.BotUserID,
		out:        out,
	}, nil
}

// Handle classifies and routes a single inbound message. Routing paths:
//  1. Bot self-message → ignore
//  2. Command prefix "!a2a" → command handler
//  3. @mention followed by a known command → command handler
//  4. Everything else → ignore
func (r *Router) Handle(ctx context.Context, msg InboundMessage) {
	if r.isSelfMessage(msg) {
		return
	}

	text := strings.TrimSpace(msg.Text)
	fmt.Fprintf(r.out, "telegraph: router: recv [ch=%s user=%s] %q\n",
		msg.ChannelID, msg.UserName, truncate(text, 80))

	if isCommand(text) {
		fmt.Fprintf(r.out, "telegraph: router: → command\n")
		r.handleCommand(ctx, msg, text)
		return
	}
	if mentionCmd := r.extractMentionCommand(text); mentionCmd != "" {
		fmt.Fprintf(r.out, "telegraph: router: → mention-command %q\n", mentionCmd)
		r.handleCommand(ctx, msg, commandPrefix+" "+mentionCmd)
		return
	}

	fmt.Fprintf(r.out, "telegraph: router: → ignore\n")
}

// truncate returns s truncated to maxLen with "..." appended if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// handleCommand dispatches a "!a2a" command and sends the response.
func (r *Router) handleCommand(ctx context.Context, msg InboundMessage, text string) {
	response := r.cmdHandler.Execute(text)
	if err := r.adapter.Send(ctx, OutboundMessage{
		ChannelID: msg.ChannelID,
		ThreadID:  msg.ThreadID,
		Text:      response,
	}); err != nil {
		log.Printf("telegraph: router: send command response: %v", err)
	}
}

// isSelfMessage returns true if the message is from the bot itself.
func (r *Router) isSelfMessage(msg InboundMessage) bool {
	return r.botUserID != "" && msg.UserID == r.botUserID
}

// isCommand returns true if the text starts with the command prefix.
func isCommand(text string) bool {
	return strings.HasPrefix(text, commandPrefix+" ") || text == commandPrefix
}

// discordMentionRe matches Discord mention formats: <@ID> or <@!ID>.
var discordMentionRe = regexp.MustCompile(`<@!?\d+>`)

// knownCommands is the set of top-level commands the CommandHandler supports.
var knownCommands = map[string]bool{
	"status":  true,
	"pending": true,
	"ack":     true,
	"resolve": true,
	"agents":  true,
	"help":    true,
}

// extractMentionCommand checks if the message is a bot @mention followed by
// a known command. Returns the command text (without the mention) if so,
// or empty string if not. Handles Discord <@ID> format.
func (r *Router) extractMentionCommand(text string) string {
	stripped := discordMentionRe.ReplaceAllString(text, "")
	stripped = strings.TrimSpace(stripped)

	if stripped == "" {
		return ""
	}

	firstWord := strings.Fields(stripped)[0]
	if knownCommands[firstWord] {
		return stripped
	}

	return ""
}
