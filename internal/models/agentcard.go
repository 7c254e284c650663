package models

import "time"

// AgentCard is the capability manifest for one agent, stored as a single
// JSON file per agent. Cards are written by the external registry-sync
// process; this service only ever reads them.
type AgentCard struct {
	AgentID        string            `json:"agent_id"`
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Capabilities   []string          `json:"capabilities"`
	Transports     []Transport       `json:"transports"`
	Authentication Authentication    `json:"authentication"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Transport describes one way to reach the agent.
type Transport struct {
	Transport string   `json:"transport"`
	Endpoint  string   `json:"endpoint"`
	Methods   []string `json:"methods,omitempty"`
}

// Authentication declares what auth the agent expects. It is descriptive
// only; nothing in this service enforces it.
type Authentication struct {
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// HasCapability reports whether the card lists the given capability tag.
func (c *AgentCard) HasCapability(tag string) bool {
	for _, cap := range c.Capabilities {
		if cap == tag {
			return true
		}
	}
	return false
}
