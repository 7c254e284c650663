package a2a

import (
	"strings"
	"testing"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
)

func TestSendMessage_CreatesMessage(t *testing.T) {
	srv, store, _ := testServer(t)

	result, err := callTool(t, srv, "a2a_send_message", map[string]any{
		"from": "squire", "to": "archivist",
		"subject": "Need index rebuild", "content": "The search index is stale.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Sent MSG-") || !strings.Contains(text, "to archivist") {
		t.Errorf("unexpected result text: %s", text)
	}

	msgs, err := store.List(msgstore.ListFilter{AgentID: msgstore.FilterAll})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	msg := msgs[0]
	if msg.FromAgent != "squire" || msg.ToAgent != "archivist" {
		t.Errorf("unexpected routing: from=%q to=%q", msg.FromAgent, msg.ToAgent)
	}
	if msg.Type != "notification" || msg.Priority != "normal" {
		t.Errorf("defaults not applied: type=%q priority=%q", msg.Type, msg.Priority)
	}
	if msg.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", msg.Status)
	}
}

func TestSendMessage_TypePriorityAndRelatedIDs(t *testing.T) {
	srv, store, _ := testServer(t)

	_, err := callTool(t, srv, "a2a_send_message", map[string]any{
		"from": "squire", "to": "archivist",
		"subject": "Broken link", "content": "See task.",
		"type": "question", "priority": "urgent",
		"related_task_id": "TASK-7", "related_message_id": "MSG-2026-03-01-002",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs, err := store.List(msgstore.ListFilter{AgentID: msgstore.FilterAll})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	msg := msgs[0]
	if msg.Type != "question" || msg.Priority != "urgent" {
		t.Errorf("type=%q priority=%q", msg.Type, msg.Priority)
	}
	if msg.RelatedTaskID != "TASK-7" || msg.RelatedMessageID != "MSG-2026-03-01-002" {
		t.Errorf("related ids not stored: task=%q message=%q", msg.RelatedTaskID, msg.RelatedMessageID)
	}
}

func TestSendMessage_MissingRequired(t *testing.T) {
	srv, _, _ := testServer(t)

	_, err := callTool(t, srv, "a2a_send_message", map[string]any{
		"from": "squire", "to": "archivist", "subject": "No body",
	})
	if err == nil {
		t.Fatal("expected error for missing content")
	}
}

func TestGetMessages_NoMessages(t *testing.T) {
	srv, _, _ := testServer(t)

	result, err := callTool(t, srv, "a2a_get_messages", map[string]any{"agent_id": "squire"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "No messages") {
		t.Errorf("expected 'No messages', got %q", text)
	}
}

func TestGetMessages_FiltersByAgent(t *testing.T) {
	srv, _, _ := testServer(t)

	sendMessage(t, srv, "squire", "archivist", "for the archivist")
	sendMessage(t, srv, "chronicler", "keeper", "for the keeper")

	result, err := callTool(t, srv, "a2a_get_messages", map[string]any{"agent_id": "squire"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "for the archivist") {
		t.Errorf("squire's message missing: %s", text)
	}
	if strings.Contains(text, "for the keeper") {
		t.Errorf("unrelated message leaked in: %s", text)
	}
}

func TestGetMessages_StatusFilter(t *testing.T) {
	srv, store, _ := testServer(t)

	first := sendMessage(t, srv, "squire", "archivist", "first message")
	sendMessage(t, srv, "squire", "archivist", "second message")
	if _, err := store.Acknowledge(first, "archivist"); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	result, err := callTool(t, srv, "a2a_get_messages", map[string]any{
		"agent_id": "archivist", "status": "acknowledged",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "first message") {
		t.Errorf("acknowledged message missing: %s", text)
	}
	if strings.Contains(text, "second message") {
		t.Errorf("pending message should be filtered out: %s", text)
	}
}

func TestGetMessages_Limit(t *testing.T) {
	srv, _, _ := testServer(t)

	sendMessage(t, srv, "squire", "archivist", "oldest message")
	sendMessage(t, srv, "squire", "archivist", "middle message")
	sendMessage(t, srv, "squire", "archivist", "newest message")

	result, err := callTool(t, srv, "a2a_get_messages", map[string]any{
		"agent_id": "squire", "limit": 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "oldest message") || !strings.Contains(text, "middle message") {
		t.Errorf("expected first two messages: %s", text)
	}
	if strings.Contains(text, "newest message") {
		t.Errorf("limit not applied: %s", text)
	}
}

func TestGetMessages_RequiresAgentID(t *testing.T) {
	srv, _, _ := testServer(t)

	if _, err := callTool(t, srv, "a2a_get_messages", map[string]any{}); err == nil {
		t.Fatal("expected error for missing agent_id")
	}
}

func TestAcknowledgeMessage_Acknowledges(t *testing.T) {
	srv, store, _ := testServer(t)
	id := sendMessage(t, srv, "squire", "archivist", "please confirm")

	result, err := callTool(t, srv, "a2a_acknowledge_message", map[string]any{
		"message_id": id, "agent_id": "archivist",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := resultText(t, result)
	if !strings.Contains(text, "Acknowledged "+id) {
		t.Errorf("unexpected result text: %s", text)
	}

	msg, err := store.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if msg.Status != models.StatusAcknowledged {
		t.Errorf("status = %q, want acknowledged", msg.Status)
	}
	if msg.AcknowledgedAt == nil {
		t.Error("AcknowledgedAt not stamped")
	}
}

func TestAcknowledgeMessage_UnknownMessage(t *testing.T) {
	srv, _, _ := testServer(t)

	_, err := callTool(t, srv, "a2a_acknowledge_message", map[string]any{
		"message_id": "MSG-2026-01-01-099", "agent_id": "archivist",
	})
	if err == nil {
		t.Fatal("expected error for unknown message")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestAcknowledgeMessage_MissingArgs(t *testing.T) {
	srv, _, _ := testServer(t)

	if _, err := callTool(t, srv, "a2a_acknowledge_message", map[string]any{"message_id": "MSG-2026-01-01-001"}); err == nil {
		t.Fatal("expected error for missing agent_id")
	}
}

func TestResolveMessage_AppendsNote(t *testing.T) {
	srv, store, _ := testServer(t)
	id := sendMessage(t, srv, "squire", "archivist", "rebuild the index")

	result, err := callTool(t, srv, "a2a_resolve_message", map[string]any{
		"message_id": id, "agent_id": "archivist",
		"resolution_note": "rebuilt and verified",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "Resolved "+id) {
		t.Errorf("unexpected result text: %s", text)
	}

	msg, err := store.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if msg.Status != models.StatusResolved {
		t.Errorf("status = %q, want resolved", msg.Status)
	}
	if !strings.Contains(msg.Content, "rebuilt and verified") {
		t.Errorf("resolution note missing from content: %s", msg.Content)
	}
}

func TestResolveMessage_AlreadyResolved(t *testing.T) {
	srv, store, _ := testServer(t)
	id := sendMessage(t, srv, "squire", "archivist", "one-shot task")
	if _, err := store.Resolve(id, "archivist", ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err := callTool(t, srv, "a2a_resolve_message", map[string]any{
		"message_id": id, "agent_id": "archivist",
	})
	if err == nil {
		t.Fatal("expected error for already-resolved message")
	}
	if !strings.Contains(err.Error(), "already resolved") {
		t.Errorf("error = %v, want already resolved", err)
	}
}

// TestSendAckResolveRoundtrip walks one message through its full lifecycle:
// squire asks, archivist acknowledges, works, and resolves.
func TestSendAckResolveRoundtrip(t *testing.T) {
	srv, _, _ := testServer(t)

	id := sendMessage(t, srv, "squire", "archivist", "Need index rebuild")

	result, err := callTool(t, srv, "a2a_get_messages", map[string]any{
		"agent_id": "archivist", "status": "pending",
	})
	if err != nil {
		t.Fatalf("get pending: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, id) {
		t.Errorf("pending queue missing %s: %s", id, text)
	}

	if _, err := callTool(t, srv, "a2a_acknowledge_message", map[string]any{
		"message_id": id, "agent_id": "archivist",
	}); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	if _, err := callTool(t, srv, "a2a_resolve_message", map[string]any{
		"message_id": id, "agent_id": "archivist", "resolution_note": "done",
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	result, err = callTool(t, srv, "a2a_get_messages", map[string]any{
		"agent_id": "archivist", "status": "pending",
	})
	if err != nil {
		t.Fatalf("get pending after resolve: %v", err)
	}
	if text := resultText(t, result); !strings.Contains(text, "No messages") {
		t.Errorf("queue should be empty after resolve: %s", text)
	}
}
