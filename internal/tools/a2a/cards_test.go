package a2a

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

func TestGetAgentCard_ReturnsCardJSON(t *testing.T) {
	srv, _, cardDir := testServer(t)
	seedCard(t, cardDir, "archivist", "Archivist")

	result, err := callTool(t, srv, "a2a_get_agent_card", map[string]any{"agent_id": "archivist"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var card models.AgentCard
	if err := json.Unmarshal([]byte(resultText(t, result)), &card); err != nil {
		t.Fatalf("result is not card JSON: %v", err)
	}
	if card.AgentID != "archivist" || card.Name != "Archivist" || card.Version != "1.2.0" {
		t.Errorf("unexpected card: %+v", card)
	}
	if !card.HasCapability("search") {
		t.Errorf("capabilities = %v, want search", card.Capabilities)
	}
	if len(card.Transports) != 1 || card.Transports[0].Transport != "jsonrpc" {
		t.Errorf("transports = %+v", card.Transports)
	}
	if card.Authentication.Type != "bearer" || !card.Authentication.Required {
		t.Errorf("authentication = %+v", card.Authentication)
	}
}

func TestGetAgentCard_Unknown(t *testing.T) {
	srv, _, _ := testServer(t)

	_, err := callTool(t, srv, "a2a_get_agent_card", map[string]any{"agent_id": "phantom"})
	if err == nil {
		t.Fatal("expected error for unknown agent")
	}
	if !strings.Contains(err.Error(), "agentcard not found") {
		t.Errorf("error = %v, want agentcard not found", err)
	}
}

func TestGetAgentCard_RequiresAgentID(t *testing.T) {
	srv, _, _ := testServer(t)

	if _, err := callTool(t, srv, "a2a_get_agent_card", map[string]any{}); err == nil {
		t.Fatal("expected error for missing agent_id")
	}
}

func TestListAgentCards_Empty(t *testing.T) {
	srv, _, _ := testServer(t)

	result, err := callTool(t, srv, "a2a_list_agent_cards", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "No agent cards registered") {
		t.Errorf("unexpected result text: %s", text)
	}
}

func TestListAgentCards_ReturnsAll(t *testing.T) {
	srv, _, cardDir := testServer(t)
	seedCard(t, cardDir, "archivist", "Archivist")
	seedCard(t, cardDir, "squire", "Squire")

	result, err := callTool(t, srv, "a2a_list_agent_cards", map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var cards []models.AgentCard
	if err := json.Unmarshal([]byte(resultText(t, result)), &cards); err != nil {
		t.Fatalf("result is not card list JSON: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	ids := map[string]bool{}
	for _, c := range cards {
		ids[c.AgentID] = true
	}
	if !ids["archivist"] || !ids["squire"] {
		t.Errorf("unexpected card set: %v", ids)
	}
}
