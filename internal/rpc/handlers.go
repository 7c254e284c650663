package rpc

import (
	"encoding/json"
	"time"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

// Method names in the dispatch table.
const (
	MethodSendMessage        = "a2a.sendMessage"
	MethodGetMessages        = "a2a.getMessages"
	MethodAcknowledgeMessage = "a2a.acknowledgeMessage"
	MethodResolveMessage     = "a2a.resolveMessage"
	MethodGetAgentCard       = "a2a.getAgentCard"
	MethodListAgentCards     = "a2a.listAgentCards"
)

// statusSuccess is the status field every successful result carries.
const statusSuccess = "success"

// The exported param and result structs below are the wire contract, shared
// by the handlers here and by Client.

type SendMessageParams struct {
	From             string `json:"from"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Priority         string `json:"priority"`
	Subject          string `json:"subject"`
	Content          string `json:"content"`
	RelatedTaskID    string `json:"related_task_id,omitempty"`
	RelatedMessageID string `json:"related_message_id,omitempty"`
}

type SendMessageResult struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id"`
}

func (d *Dispatcher) sendMessage(params json.RawMessage) (any, error) {
	var p SendMessageParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params: " + err.Error())
	}
	for _, f := range []struct{ name, value string }{
		{"from", p.From},
		{"to", p.To},
		{"type", p.Type},
		{"priority", p.Priority},
		{"subject", p.Subject},
		{"content", p.Content},
	} {
		if f.value == "" {
			return nil, missingField(f.name)
		}
	}

	msg, err := d.store.Create(msgstore.CreateParams{
		From:             p.From,
		To:               p.To,
		Type:             p.Type,
		Priority:         p.Priority,
		Subject:          p.Subject,
		Content:          p.Content,
		RelatedTaskID:    p.RelatedTaskID,
		RelatedMessageID: p.RelatedMessageID,
	})
	if err != nil {
		return nil, err
	}
	return SendMessageResult{Status: statusSuccess, MessageID: msg.MessageID}, nil
}

type GetMessagesParams struct {
	AgentID  string `json:"agent_id,omitempty"`
	Status   string `json:"status,omitempty"`
	Type     string `json:"type,omitempty"`
	Priority string `json:"priority,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type GetMessagesResult struct {
	Status   string           `json:"status"`
	Count    int              `json:"count"`
	Messages []models.Message `json:"messages"`
}

func (d *Dispatcher) getMessages(params json.RawMessage) (any, error) {
	var p GetMessagesParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params: " + err.Error())
	}

	msgs, err := d.store.List(msgstore.ListFilter{
		AgentID:  p.AgentID,
		Status:   p.Status,
		Type:     p.Type,
		Priority: p.Priority,
		Limit:    p.Limit,
	})
	if err != nil {
		return nil, err
	}
	return GetMessagesResult{Status: statusSuccess, Count: len(msgs), Messages: msgs}, nil
}

type AcknowledgeParams struct {
	MessageID string `json:"message_id"`
	AgentID   string `json:"agent_id"`
}

type AcknowledgeResult struct {
	Status         string     `json:"status"`
	MessageID      string     `json:"message_id"`
	AcknowledgedAt *time.Time `json:"acknowledged_at"`
}

func (d *Dispatcher) acknowledgeMessage(params json.RawMessage) (any, error) {
	var p AcknowledgeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params: " + err.Error())
	}
	if p.MessageID == "" {
		return nil, missingField("message_id")
	}
	if p.AgentID == "" {
		return nil, missingField("agent_id")
	}

	msg, err := d.store.Acknowledge(p.MessageID, p.AgentID)
	if err != nil {
		return nil, err
	}
	return AcknowledgeResult{
		Status:         statusSuccess,
		MessageID:      msg.MessageID,
		AcknowledgedAt: msg.AcknowledgedAt,
	}, nil
}

type ResolveParams struct {
	MessageID      string `json:"message_id"`
	AgentID        string `json:"agent_id"`
	ResolutionNote string `json:"resolution_note,omitempty"`
}

type ResolveResult struct {
	Status     string     `json:"status"`
	MessageID  string     `json:"message_id"`
	ResolvedAt *time.Time `json:"resolved_at"`
}

func (d *Dispatcher) resolveMessage(params json.RawMessage) (any, error) {
	var p ResolveParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params: " + err.Error())
	}
	if p.MessageID == "" {
		return nil, missingField("message_id")
	}
	if p.AgentID == "" {
		return nil, missingField("agent_id")
	}

	msg, err := d.store.Resolve(p.MessageID, p.AgentID, p.ResolutionNote)
	if err != nil {
		return nil, err
	}
	return ResolveResult{
		Status:     statusSuccess,
		MessageID:  msg.MessageID,
		ResolvedAt: msg.ResolvedAt,
	}, nil
}

type GetAgentCardParams struct {
	AgentID string `json:"agent_id"`
}

type GetAgentCardResult struct {
	Status    string            `json:"status"`
	AgentCard *models.AgentCard `json:"agentcard"`
}

func (d *Dispatcher) getAgentCard(params json.RawMessage) (any, error) {
	var p GetAgentCardParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, invalidParams("Invalid params: " + err.Error())
	}
	if p.AgentID == "" {
		return nil, missingField("agent_id")
	}

	card, err := d.registry.Get(p.AgentID)
	if err != nil {
		return nil, err
	}
	return GetAgentCardResult{Status: statusSuccess, AgentCard: card}, nil
}

type ListAgentCardsResult struct {
	Status     string             `json:"status"`
	Count      int                `json:"count"`
	AgentCards []models.AgentCard `json:"agentcards"`
}

func (d *Dispatcher) listAgentCards(json.RawMessage) (any, error) {
	cards, err := d.registry.List()
	if err != nil {
		return nil, err
	}
	return ListAgentCardsResult{Status: statusSuccess, Count: len(cards), AgentCards: cards}, nil
}
