package telegraph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Default watcher intervals.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultStaleAfter   = 60 * time.Minute
)

// EventType identifies the kind of event detected by the watcher.
type EventType string

const (
	EventNewMessage   EventType = "new_message"
	EventStaleMessage EventType = "stale_message"
)

// DetectedEvent is a raw event detected by the watcher before formatting.
type DetectedEvent struct {
	Type      EventType
	Timestamp time.Time

	// Message events
	MessageID   string
	FromAgent   string
	ToAgent     string
	MessageType string
	Priority    string
	Subject     string
	Age         time.Duration // how long the message has been pending (stale events)

	// Digest events
	Title string
	Body  string
}

// Watcher polls the message store for newly created messages and for
// pending messages that have gone unacknowledged past the stale
// threshold. It emits DetectedEvents to a channel for formatting and
// delivery.
type Watcher struct {
	store        *msgstore.Store
	pollInterval time.Duration
	staleAfter   time.Duration

	mu       sync.Mutex
	known    map[string]models.MessageStatus // messageID -> last-known status
	seeded   bool                            // true after first poll (baseline established)
	notified map[string]bool                 // messageID -> stale event already emitted
}

// WatcherOpts holds parameters for creating a Watcher.
type WatcherOpts struct {
	Store        *msgstore.Store
	PollInterval time.Duration // defaults to DefaultPollInterval
	StaleAfter   time.Duration // defaults to DefaultStaleAfter
}

// NewWatcher creates a Watcher.
func NewWatcher(opts WatcherOpts) (*Watcher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("telegraph: watcher: store is required")
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	stale := opts.StaleAfter
	if stale <= 0 {
		stale = DefaultStaleAfter
	}
	return &Watcher{
		store:        opts.Store,
		pollInterval: poll,
		staleAfter:   stale,
		known:        make(map[string]models.MessageStatus),
		notified:     make(map[string]bool),
	}, nil
}

// Poll runs one detection cycle over the store index: new messages first,
// then stale pending messages. Returns all detected events.
func (w *Watcher) Poll(ctx context.Context) ([]DetectedEvent, error) {
	idx, err := w.store.Index()
	if err != nil {
		return nil, fmt.Errorf("telegraph: watcher: index: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	var events []DetectedEvent
	events = append(events, w.detectNewMessages(&idx)...)
	events = append(events, w.detectStale(&idx)...)
	return events, nil
}

// Run starts the watcher loop. It polls on the configured interval and
// sends detected events to the returned channel. The channel is closed
// when the context is cancelled.
func (w *Watcher) Run(ctx context.Context) <-chan DetectedEvent {
	ch := make(chan DetectedEvent, 64)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				events, err := w.Poll(ctx)
				if err != nil {
					continue
				}
				for _, e := range events {
					select {
					case ch <- e:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch
}

// detectNewMessages compares the index against the in-memory baseline and
// emits an event for every message that appeared since the last poll. On
// the first call it seeds the baseline without emitting events (to avoid
// a burst of false positives on startup). Messages first observed in a
// non-pending state were handled before we saw them, so they are recorded
// silently. Caller holds w.mu.
func (w *Watcher) detectNewMessages(idx *models.MessageIndex) []DetectedEvent {
	var events []DetectedEvent

	for i := range idx.Messages {
		e := &idx.Messages[i]
		if _, exists := w.known[e.MessageID]; exists {
			w.known[e.MessageID] = e.Status
			continue
		}
		w.known[e.MessageID] = e.Status
		if w.seeded && e.Status == models.StatusPending {
			events = append(events, DetectedEvent{
				Type:        EventNewMessage,
				Timestamp:   e.CreatedAt,
				MessageID:   e.MessageID,
				FromAgent:   e.FromAgent,
				ToAgent:     e.ToAgent,
				MessageType: e.Type,
				Priority:    e.Priority,
				Subject:     w.subjectOf(e.MessageID),
			})
		}
	}

	if !w.seeded {
		w.seeded = true
	}

	return events
}

// detectStale finds pending messages older than the stale threshold. Each
// message is reported once per process lifetime; a daemon restart re-raises
// still-unacknowledged messages, which is the desired escalation behavior.
// Stale detection is not gated on seeding so that a backlog predating
// startup still gets raised on the first poll. Caller holds w.mu.
func (w *Watcher) detectStale(idx *models.MessageIndex) []DetectedEvent {
	now := time.Now()

	var events []DetectedEvent
	for i := range idx.Messages {
		e := &idx.Messages[i]
		if e.Status != models.StatusPending {
			continue
		}
		age := now.Sub(e.CreatedAt)
		if age < w.staleAfter {
			continue
		}
		if w.notified[e.MessageID] {
			continue
		}
		w.notified[e.MessageID] = true
		events = append(events, DetectedEvent{
			Type:        EventStaleMessage,
			Timestamp:   now,
			MessageID:   e.MessageID,
			FromAgent:   e.FromAgent,
			ToAgent:     e.ToAgent,
			MessageType: e.Type,
			Priority:    e.Priority,
			Subject:     w.subjectOf(e.MessageID),
			Age:         age,
		})
	}
	return events
}

// subjectOf loads the subject line for a message. The index entry does not
// carry the subject, so this opens the message file. A broken file yields
// an empty subject rather than failing the poll.
func (w *Watcher) subjectOf(messageID string) string {
	msg, err := w.store.Get(messageID)
	if err != nil {
		return ""
	}
	return msg.Subject
}

// Seeded returns whether the watcher has completed its initial baseline.
func (w *Watcher) Seeded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seeded
}

// Known returns a copy of the current message baseline (for testing).
func (w *Watcher) Known() map[string]models.MessageStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	cp := make(map[string]models.MessageStatus, len(w.known))
	for k, v := range w.known {
		cp[k] = v
	}
	return cp
}
