package models

import (
	"strings"
	"time"
)

// MessageStatus is the lifecycle state of a message.
type MessageStatus string

const (
	StatusPending      MessageStatus = "pending"
	StatusAcknowledged MessageStatus = "acknowledged"
	StatusResolved     MessageStatus = "resolved"
)

// Valid reports whether s is one of the known lifecycle states.
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusResolved:
		return true
	}
	return false
}

// Message represents one agent-to-agent message. The canonical copy lives in
// a single markdown file with YAML frontmatter; this struct is the parsed
// form used by the store, the RPC handlers, and the dashboard.
type Message struct {
	MessageID        string        `json:"message_id"`
	FromAgent        string        `json:"from_agent"`
	ToAgent          string        `json:"to_agent"`
	Type             string        `json:"type"`
	Priority         string        `json:"priority"`
	Status           MessageStatus `json:"status"`
	Subject          string        `json:"subject"`
	Content          string        `json:"content"`
	CreatedAt        time.Time     `json:"created_at"`
	AcknowledgedAt   *time.Time    `json:"acknowledged_at"`
	ResolvedAt       *time.Time    `json:"resolved_at"`
	RelatedTaskID    string        `json:"related_task_id,omitempty"`
	RelatedMessageID string        `json:"related_message_id,omitempty"`
}

// Resolved reports whether the message has reached its terminal state.
func (m *Message) Resolved() bool { return m.Status == StatusResolved }

// Involves reports whether agentID is the sender or the recipient.
func (m *Message) Involves(agentID string) bool {
	return m.FromAgent == agentID || m.ToAgent == agentID
}

// IndexEntry is the denormalized summary of a message kept in the
// consolidated index so listing never has to open every message file.
// File is the message filename relative to the messages directory.
type IndexEntry struct {
	MessageID      string        `json:"message_id"`
	FromAgent      string        `json:"from_agent"`
	ToAgent        string        `json:"to_agent"`
	Type           string        `json:"type"`
	Priority       string        `json:"priority"`
	Status         MessageStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	AcknowledgedAt *time.Time    `json:"acknowledged_at"`
	File           string        `json:"file"`
}

// Involves reports whether agentID is the sender or the recipient.
func (e *IndexEntry) Involves(agentID string) bool {
	return e.FromAgent == agentID || e.ToAgent == agentID
}

// MessageIndex is the on-disk shape of the consolidated index file.
type MessageIndex struct {
	Messages []IndexEntry `json:"messages"`
}

// CountForDate returns how many entries carry an ID allocated on the given
// YYYY-MM-DD date.
func (idx *MessageIndex) CountForDate(date string) int {
	prefix := "MSG-" + date + "-"
	n := 0
	for i := range idx.Messages {
		if strings.HasPrefix(idx.Messages[i].MessageID, prefix) {
			n++
		}
	}
	return n
}

// Find returns a pointer into the index for the entry with the given ID, or
// nil when absent. The pointer stays valid until Messages is reallocated.
func (idx *MessageIndex) Find(messageID string) *IndexEntry {
	for i := range idx.Messages {
		if idx.Messages[i].MessageID == messageID {
			return &idx.Messages[i]
		}
	}
	return nil
}
