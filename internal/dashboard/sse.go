package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// messageEvent holds data for a new-message SSE event.
type messageEvent struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	Pending   int    `json:"pending"`
}

// handleSSE streams new-message events by polling the store index.
func handleSSE(store *msgstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		writeSSE(c.Writer, "connected", map[string]string{"type": "connected"})
		c.Writer.Flush()

		// No store means connected-only; the first write already sent 200.
		if store == nil {
			return
		}

		// Only alert on messages created after the stream opened.
		lastSeen := ""
		if idx, err := store.Index(); err == nil && len(idx.Messages) > 0 {
			lastSeen = idx.Messages[len(idx.Messages)-1].MessageID
		}

		ctx := c.Request.Context()
		ticker := time.NewTicker(3 * time.Second)
		heartbeat := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				writeSSE(c.Writer, "heartbeat", map[string]string{
					"timestamp": time.Now().UTC().Format(time.RFC3339),
				})
				c.Writer.Flush()
			case <-ticker.C:
				idx, err := store.Index()
				if err != nil || len(idx.Messages) == 0 {
					continue
				}
				fresh := entriesAfter(idx.Messages, lastSeen)
				if len(fresh) == 0 {
					continue
				}
				lastSeen = idx.Messages[len(idx.Messages)-1].MessageID

				pending := 0
				for _, e := range idx.Messages {
					if e.Status == models.StatusPending {
						pending++
					}
				}

				latest := fresh[len(fresh)-1]
				writeSSE(c.Writer, "message", messageEvent{
					MessageID: latest.MessageID,
					From:      latest.FromAgent,
					To:        latest.ToAgent,
					Type:      latest.Type,
					Priority:  latest.Priority,
					Pending:   pending,
				})
				c.Writer.Flush()
			}
		}
	}
}

// entriesAfter returns the entries appended after lastSeen. The index is
// append-only, so everything past that position is new.
func entriesAfter(entries []models.IndexEntry, lastSeen string) []models.IndexEntry {
	if lastSeen == "" {
		return entries
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].MessageID == lastSeen {
			return entries[i+1:]
		}
	}
	return entries
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
