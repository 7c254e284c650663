// Package agentcard reads the directory of capability manifests maintained
// by the external registry sync. One JSON file per agent, named by agent
// ID. This package never creates or mutates a card.
package agentcard

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
)

// ErrNotFound reports an agent with no card file.
var ErrNotFound = errors.New("agentcard not found")

// Registry looks up and lists cards. List results are cached until
// Invalidate; Get always reads through to storage so a malformed card
// surfaces as a hard error rather than a stale hit.
type Registry struct {
	dir storage.Dir

	mu     sync.Mutex
	cached []models.AgentCard
}

// NewRegistry returns a Registry over the given card directory.
func NewRegistry(dir storage.Dir) *Registry {
	return &Registry{dir: dir}
}

// Get returns the card for one agent. A missing file is ErrNotFound; a file
// that exists but does not decode is an error, not a miss.
func (r *Registry) Get(agentID string) (*models.AgentCard, error) {
	if agentID == "" {
		return nil, fmt.Errorf("agentcard: agentID is required")
	}
	data, err := r.dir.Read(agentID + ".json")
	if err != nil {
		if storage.NotExist(err) {
			return nil, fmt.Errorf("agentcard: get %s: %w", agentID, ErrNotFound)
		}
		return nil, fmt.Errorf("agentcard: get %s: %w", agentID, err)
	}
	var card models.AgentCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("agentcard: decode %s: %w", agentID, err)
	}
	return &card, nil
}

// List returns every readable card, one per JSON file in the directory.
// Unreadable or malformed files are skipped. An empty or missing directory
// lists as empty, never as an error.
func (r *Registry) List() ([]models.AgentCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cached == nil {
		names, err := r.dir.List()
		if err != nil {
			return nil, fmt.Errorf("agentcard: list: %w", err)
		}
		cards := make([]models.AgentCard, 0, len(names))
		for _, name := range names {
			if !strings.HasSuffix(name, ".json") {
				continue
			}
			data, err := r.dir.Read(name)
			if err != nil {
				continue
			}
			var card models.AgentCard
			if err := json.Unmarshal(data, &card); err != nil {
				continue
			}
			cards = append(cards, card)
		}
		r.cached = cards
	}

	out := make([]models.AgentCard, len(r.cached))
	copy(out, r.cached)
	return out, nil
}

// Invalidate drops the cached listing so the next List rereads the
// directory. The watcher calls this on file events; callers that know they
// just changed the directory may call it directly.
func (r *Registry) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}
