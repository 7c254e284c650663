package telegraph

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Escalator raises a stale message to an external tracker. Implementations
// return a reference (e.g. an issue URL) that gets attached to the chat
// notification.
type Escalator interface {
	Escalate(ctx context.Context, event DetectedEvent) (string, error)
}

// Daemon is the main telegraph process. It connects to a chat platform via
// an Adapter, answers "!a2a" commands, and pushes message events detected
// by the Watcher to the configured channel.
type Daemon struct {
	store     *msgstore.Store
	registry  *agentcard.Registry
	cfg       *config.Config
	adapter   Adapter
	escalator Escalator
	out       io.Writer
}

// DaemonOpts holds parameters for creating a new Daemon.
type DaemonOpts struct {
	Store     *msgstore.Store
	Registry  *agentcard.Registry
	Config    *config.Config
	Adapter   Adapter
	Escalator Escalator // optional; enables stale-message escalation
	Out       io.Writer // defaults to os.Stdout
}

// NewDaemon creates a Daemon with the given options.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("telegraph: store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("telegraph: registry is required")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("telegraph: config is required")
	}
	if opts.Adapter == nil {
		return nil, fmt.Errorf("telegraph: adapter is required")
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	if opts.Escalator == nil {
		fmt.Fprintf(out, "telegraph: no escalator configured; issue escalation disabled\n")
	}
	return &Daemon{
		store:     opts.Store,
		registry:  opts.Registry,
		cfg:       opts.Config,
		adapter:   opts.Adapter,
		escalator: opts.Escalator,
		out:       out,
	}, nil
}

// Run starts the telegraph daemon. It connects the adapter, builds all
// subsystems (Router, Watcher, digest scheduler), and blocks until the
// context is cancelled. On shutdown it closes the adapter gracefully.
func (d *Daemon) Run(ctx context.Context) error {
	fmt.Fprintf(d.out, "Telegraph connecting...\n")
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("telegraph: connect: %w", err)
	}

	// Extract bot user ID if the adapter supports it.
	var botUserID string
	if bui, ok := d.adapter.(BotUserIDer); ok {
		botUserID = bui.BotUserID()
	}

	cmdHandler, err := NewCommandHandler(CommandHandlerOpts{
		Store:    d.store,
		Registry: d.registry,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("telegraph: build command handler: %w", err)
	}

	router, err := NewRouter(RouterOpts{
		CmdHandler: cmdHandler,
		Adapter:    d.adapter,
		BotUserID:  botUserID,
		Out:        d.out,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("telegraph: build router: %w", err)
	}

	inbound, err := d.adapter.Listen(ctx)
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("telegraph: listen: %w", err)
	}

	tcfg := d.cfg.Telegraph
	watcher, err := NewWatcher(WatcherOpts{
		Store:        d.store,
		PollInterval: time.Duration(tcfg.PollIntervalSec) * time.Second,
		StaleAfter:   time.Duration(tcfg.StaleAfterMin) * time.Minute,
	})
	if err != nil {
		d.adapter.Close()
		return fmt.Errorf("telegraph: build watcher: %w", err)
	}
	eventsCh := watcher.Run(ctx)

	go d.dispatchEvents(ctx, eventsCh)
	go d.runDigestScheduler(ctx, watcher)

	fmt.Fprintf(d.out, "Telegraph online\n")

	if err := d.adapter.Send(ctx, OutboundMessage{
		Text: "A2A telegraph online",
	}); err != nil {
		log.Printf("telegraph: send online message: %v", err)
	}

	// Main event loop: pump inbound messages until context is cancelled.
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(d.out, "Telegraph shutting down...\n")
			d.sendShutdown()
			if err := d.adapter.Close(); err != nil {
				log.Printf("telegraph: close adapter: %v", err)
			}
			fmt.Fprintf(d.out, "Telegraph stopped\n")
			return nil

		case msg, ok := <-inbound:
			if !ok {
				// Adapter closed the channel.
				fmt.Fprintf(d.out, "Telegraph inbound channel closed\n")
				return nil
			}
			router.Handle(ctx, msg)
		}
	}
}

// dispatchEvents reads detected events from the watcher channel, formats
// them, and sends to the chat platform.
func (d *Daemon) dispatchEvents(ctx context.Context, eventsCh <-chan DetectedEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventsCh:
			if !ok {
				return
			}
			d.handleDetectedEvent(ctx, event)
		}
	}
}

// handleDetectedEvent processes a single detected event: formats it,
// escalates stale messages when an escalator is configured, and sends
// via the adapter.
func (d *Daemon) handleDetectedEvent(ctx context.Context, event DetectedEvent) {
	var formatted FormattedEvent

	switch event.Type {
	case EventNewMessage:
		formatted = FormatMessageEvent(event)
	case EventStaleMessage:
		formatted = FormatStaleEvent(event)
		if d.escalator != nil {
			ref, err := d.escalator.Escalate(ctx, event)
			if err != nil {
				log.Printf("telegraph: escalate %s: %v", event.MessageID, err)
			} else if ref != "" {
				formatted.Fields = append(formatted.Fields, Field{Name: "Issue", Value: ref})
			}
		}
	case EventDigest:
		formatted = FormattedEvent{
			Title:    event.Title,
			Body:     event.Body,
			Severity: "info",
			Color:    ColorInfo,
		}
	default:
		return
	}

	if err := d.adapter.Send(ctx, OutboundMessage{
		Events: []FormattedEvent{formatted},
	}); err != nil {
		log.Printf("telegraph: send event %s: %v", event.Type, err)
	}
}

// runDigestScheduler fires the activity digest on its cron schedule. It
// returns immediately when the digest is disabled or the expression does
// not parse.
func (d *Daemon) runDigestScheduler(ctx context.Context, watcher *Watcher) {
	digestCfg := d.cfg.Telegraph.Digest
	if !digestCfg.Enabled || digestCfg.Cron == "" {
		return
	}

	wait := nextFire(digestCfg.Cron, time.Now())
	if wait <= 0 {
		log.Printf("telegraph: digest cron %q did not parse; digest disabled", digestCfg.Cron)
		return
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			d.fireDigest(ctx, watcher)
			if next := nextFire(digestCfg.Cron, time.Now()); next > 0 {
				timer.Reset(next)
			}
		}
	}
}

// fireDigest builds and sends a single digest.
func (d *Daemon) fireDigest(ctx context.Context, watcher *Watcher) {
	event, err := watcher.BuildDigest()
	if err != nil {
		log.Printf("telegraph: digest: %v", err)
		return
	}
	if event == nil {
		// No activity and no backlog.
		return
	}
	d.handleDetectedEvent(ctx, *event)
}

// sendShutdown posts a shutdown message to the adapter (best-effort).
func (d *Daemon) sendShutdown() {
	ctx := context.Background()
	if err := d.adapter.Send(ctx, OutboundMessage{
		Text: "A2A telegraph shutting down",
	}); err != nil {
		log.Printf("telegraph: send shutdown message: %v", err)
	}
}
