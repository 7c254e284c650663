// Package msgstore owns the on-disk message files and their consolidated
// index, and implements the message lifecycle: create, list, acknowledge,
// resolve.
//
// Every mutation is a read-modify-write of the index file, so all mutations
// serialize through one mutex. Reads work on index snapshots and never
// block writers.
package msgstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
)

const (
	// IndexFile is the consolidated index maintained alongside the
	// message files.
	IndexFile = "index.json"

	// DefaultListLimit caps List results when the caller gives no limit.
	DefaultListLimit = 20

	// FilterAll disables agent filtering when passed as ListFilter.AgentID.
	FilterAll = "all"
)

var (
	// ErrNotFound reports an unknown message ID.
	ErrNotFound = errors.New("message not found")

	// ErrResolved reports an attempted transition out of the resolved
	// state, which the lifecycle forbids.
	ErrResolved = errors.New("message already resolved")
)

// Store reads and writes one directory of message files plus the index.
type Store struct {
	mu   sync.Mutex
	dir  storage.Dir
	idem bool
	now  func() time.Time
}

// Opts holds optional Store behavior.
type Opts struct {
	// IdempotentAck makes re-acknowledging an already-acknowledged message
	// a no-op. Default false: reapplying acknowledge overwrites the
	// acknowledged_at timestamp.
	IdempotentAck bool

	// Now overrides the clock. Tests use this to pin timestamps.
	Now func() time.Time
}

// New returns a Store over the given directory.
func New(dir storage.Dir, opts Opts) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{dir: dir, idem: opts.IdempotentAck, now: now}
}

// CreateParams holds the fields for a new message. From through Content are
// required; the two related IDs are optional cross-references.
type CreateParams struct {
	From             string
	To               string
	Type             string
	Priority         string
	Subject          string
	Content          string
	RelatedTaskID    string
	RelatedMessageID string
}

// Create validates params, allocates the next ID for today, persists the
// message file, and appends the matching index entry.
func (s *Store) Create(p CreateParams) (*models.Message, error) {
	if p.From == "" {
		return nil, fmt.Errorf("msgstore: from is required")
	}
	if p.To == "" {
		return nil, fmt.Errorf("msgstore: to is required")
	}
	if p.Type == "" {
		return nil, fmt.Errorf("msgstore: type is required")
	}
	if p.Priority == "" {
		return nil, fmt.Errorf("msgstore: priority is required")
	}
	if p.Subject == "" {
		return nil, fmt.Errorf("msgstore: subject is required")
	}
	if p.Content == "" {
		return nil, fmt.Errorf("msgstore: content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	now := s.clock()
	id := NextID(&idx, now)
	msg := &models.Message{
		MessageID:        id,
		FromAgent:        p.From,
		ToAgent:          p.To,
		Type:             p.Type,
		Priority:         p.Priority,
		Status:           models.StatusPending,
		Subject:          p.Subject,
		Content:          p.Content,
		CreatedAt:        now,
		RelatedTaskID:    p.RelatedTaskID,
		RelatedMessageID: p.RelatedMessageID,
	}

	file := id + ".md"
	if err := s.writeMessage(file, msg); err != nil {
		return nil, fmt.Errorf("msgstore: create %s: %w", id, err)
	}

	idx.Messages = append(idx.Messages, models.IndexEntry{
		MessageID: id,
		FromAgent: p.From,
		ToAgent:   p.To,
		Type:      p.Type,
		Priority:  p.Priority,
		Status:    models.StatusPending,
		CreatedAt: now,
		File:      file,
	})
	if err := s.writeIndex(&idx); err != nil {
		return nil, fmt.Errorf("msgstore: create %s: %w", id, err)
	}
	return msg, nil
}

// Get returns one message by ID. Unlike List, a referenced file that fails
// to parse is a hard error here.
func (s *Store) Get(messageID string) (*models.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("msgstore: messageID is required")
	}
	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	entry := idx.Find(messageID)
	if entry == nil {
		return nil, fmt.Errorf("msgstore: get %s: %w", messageID, ErrNotFound)
	}
	return s.readMessage(entry.File)
}

// ListFilter narrows List results. Zero values disable each filter;
// AgentID additionally treats FilterAll as disabled and otherwise matches
// messages where the agent is sender or recipient. Filters are conjunctive.
type ListFilter struct {
	AgentID  string
	Status   string
	Type     string
	Priority string
	Limit    int
}

func (f *ListFilter) matches(e *models.IndexEntry) bool {
	if f.AgentID != "" && f.AgentID != FilterAll && !e.Involves(f.AgentID) {
		return false
	}
	if f.Status != "" && string(e.Status) != f.Status {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Priority != "" && e.Priority != f.Priority {
		return false
	}
	return true
}

// List returns messages matching the filter, in index (creation) order,
// truncated to the limit. Filtering and truncation run on the index alone;
// only the surviving entries have their files opened. Entries whose file is
// missing or unparsable are skipped.
func (s *Store) List(f ListFilter) ([]models.Message, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}

	var picked []models.IndexEntry
	for i := range idx.Messages {
		if !f.matches(&idx.Messages[i]) {
			continue
		}
		picked = append(picked, idx.Messages[i])
		if len(picked) == limit {
			break
		}
	}

	msgs := make([]models.Message, 0, len(picked))
	for i := range picked {
		msg, err := s.readMessage(picked[i].File)
		if err != nil {
			continue
		}
		msgs = append(msgs, *msg)
	}
	return msgs, nil
}

// Acknowledge moves a pending message to acknowledged and stamps
// acknowledged_at in both the message file and the index entry. Behavior on
// an already-acknowledged message depends on Opts.IdempotentAck; a resolved
// message is always ErrResolved.
func (s *Store) Acknowledge(messageID, agentID string) (*models.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("msgstore: messageID is required")
	}
	if agentID == "" {
		return nil, fmt.Errorf("msgstore: agentID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	entry := idx.Find(messageID)
	if entry == nil {
		return nil, fmt.Errorf("msgstore: acknowledge %s: %w", messageID, ErrNotFound)
	}
	msg, err := s.readMessage(entry.File)
	if err != nil {
		return nil, err
	}
	if msg.Resolved() {
		return nil, fmt.Errorf("msgstore: acknowledge %s: %w", messageID, ErrResolved)
	}
	if s.idem && msg.Status == models.StatusAcknowledged {
		return msg, nil
	}

	now := s.clock()
	msg.Status = models.StatusAcknowledged
	msg.AcknowledgedAt = &now

	if err := s.writeMessage(entry.File, msg); err != nil {
		return nil, fmt.Errorf("msgstore: acknowledge %s: %w", messageID, err)
	}
	entry.Status = msg.Status
	entry.AcknowledgedAt = msg.AcknowledgedAt
	if err := s.writeIndex(&idx); err != nil {
		return nil, fmt.Errorf("msgstore: acknowledge %s: %w", messageID, err)
	}
	return msg, nil
}

// Resolve moves a message to resolved (directly from pending is allowed)
// and stamps resolved_at. A non-empty note is appended to the content under
// its own heading; existing content is never overwritten.
func (s *Store) Resolve(messageID, agentID, note string) (*models.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("msgstore: messageID is required")
	}
	if agentID == "" {
		return nil, fmt.Errorf("msgstore: agentID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	entry := idx.Find(messageID)
	if entry == nil {
		return nil, fmt.Errorf("msgstore: resolve %s: %w", messageID, ErrNotFound)
	}
	msg, err := s.readMessage(entry.File)
	if err != nil {
		return nil, err
	}
	if msg.Resolved() {
		return nil, fmt.Errorf("msgstore: resolve %s: %w", messageID, ErrResolved)
	}

	now := s.clock()
	msg.Status = models.StatusResolved
	msg.ResolvedAt = &now
	if note != "" {
		msg.Content = msg.Content + "\n\n" + resolutionHeading + "\n\n" + note
	}

	if err := s.writeMessage(entry.File, msg); err != nil {
		return nil, fmt.Errorf("msgstore: resolve %s: %w", messageID, err)
	}
	entry.Status = msg.Status
	if err := s.writeIndex(&idx); err != nil {
		return nil, fmt.Errorf("msgstore: resolve %s: %w", messageID, err)
	}
	return msg, nil
}

// Index returns a point-in-time copy of the consolidated index. Callers own
// the copy; a concurrent mutation is not reflected in it.
func (s *Store) Index() (models.MessageIndex, error) {
	return s.loadIndex()
}

// loadIndex reads and decodes the index. A missing index is an empty store;
// a corrupt one is treated the same way, so the store recovers by
// rebuilding from the next mutation onward.
func (s *Store) loadIndex() (models.MessageIndex, error) {
	var idx models.MessageIndex
	data, err := s.dir.Read(IndexFile)
	if err != nil {
		if storage.NotExist(err) {
			return idx, nil
		}
		return idx, fmt.Errorf("msgstore: read index: %w", err)
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return models.MessageIndex{}, nil
	}
	return idx, nil
}

func (s *Store) writeIndex(idx *models.MessageIndex) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	if err := s.dir.Write(IndexFile, append(data, '\n')); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (s *Store) readMessage(name string) (*models.Message, error) {
	data, err := s.dir.Read(name)
	if err != nil {
		if storage.NotExist(err) {
			return nil, fmt.Errorf("msgstore: read %s: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("msgstore: read %s: %w", name, err)
	}
	return parseMessage(data)
}

func (s *Store) writeMessage(name string, m *models.Message) error {
	data, err := renderMessage(m)
	if err != nil {
		return err
	}
	if err := s.dir.Write(name, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Second)
}
