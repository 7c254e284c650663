package main

import (
	"strings"
	"testing"
)

func TestMessagesCmd_Empty(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")

	out, err := runCmd(t, "messages", "--config", cfgPath)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if !strings.Contains(out, "No messages") {
		t.Errorf("expected 'No messages', got: %s", out)
	}
}

func TestMessagesCmd_ListsMessages(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, "")
	id := seedMessage(t, dataDir, "squire", "archivist", "first subject")
	seedMessage(t, dataDir, "archivist", "squire", "second subject")

	out, err := runCmd(t, "messages", "--config", cfgPath)
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if !strings.Contains(out, "ID") || !strings.Contains(out, "SUBJECT") {
		t.Errorf("expected table header, got: %s", out)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "first subject") {
		t.Errorf("expected first message row, got: %s", out)
	}
	if !strings.Contains(out, "second subject") {
		t.Errorf("expected second message row, got: %s", out)
	}
}

func TestMessagesCmd_StatusFilter(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, "")
	id := seedMessage(t, dataDir, "squire", "archivist", "will ack")
	seedMessage(t, dataDir, "squire", "archivist", "stays pending")
	if _, err := storeAt(t, dataDir).Acknowledge(id, "archivist"); err != nil {
		t.Fatalf("Acknowledge: %v", err)
	}

	out, err := runCmd(t, "messages", "--config", cfgPath, "--status", "acknowledged")
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if !strings.Contains(out, "will ack") {
		t.Errorf("expected acknowledged message, got: %s", out)
	}
	if strings.Contains(out, "stays pending") {
		t.Errorf("pending message should be filtered out, got: %s", out)
	}
}

func TestMessagesCmd_AgentFilter(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, "")
	seedMessage(t, dataDir, "squire", "archivist", "for archivist")
	seedMessage(t, dataDir, "curator", "librarian", "for librarian")

	out, err := runCmd(t, "messages", "--config", cfgPath, "--agent", "librarian")
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if strings.Contains(out, "for archivist") {
		t.Errorf("archivist message should be filtered out, got: %s", out)
	}
	if !strings.Contains(out, "for librarian") {
		t.Errorf("expected librarian message, got: %s", out)
	}
}

func TestMessagesCmd_Limit(t *testing.T) {
	cfgPath, dataDir := writeConfig(t, "")
	seedMessage(t, dataDir, "squire", "archivist", "one")
	seedMessage(t, dataDir, "squire", "archivist", "two")
	seedMessage(t, dataDir, "squire", "archivist", "three")

	out, err := runCmd(t, "messages", "--config", cfgPath, "--limit", "2")
	if err != nil {
		t.Fatalf("messages failed: %v", err)
	}
	if !strings.Contains(out, "one") || !strings.Contains(out, "two") {
		t.Errorf("expected first two messages, got: %s", out)
	}
	if strings.Contains(out, "three") {
		t.Errorf("third message should be cut by limit, got: %s", out)
	}
}

func TestMessagesCmd_ViaServer(t *testing.T) {
	dataDir := t.TempDir()
	endpoint := newTestServer(t, dataDir)
	seedMessage(t, dataDir, "squire", "archivist", "served")

	out, err := runCmd(t, "messages", "--server", endpoint)
	if err != nil {
		t.Fatalf("messages --server failed: %v", err)
	}
	if !strings.Contains(out, "served") {
		t.Errorf("expected remote message, got: %s", out)
	}
}
