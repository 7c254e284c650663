package a2a

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/agentcard"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/msgstore"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/storage"
)

// testServer creates an MCPServer with all tools registered over fresh
// in-memory store and card directories.
func testServer(t *testing.T) (*server.MCPServer, *msgstore.Store, *storage.MemDir) {
	t.Helper()
	store := msgstore.New(storage.NewMem(), msgstore.Opts{})
	cardDir := storage.NewMem()
	registry := agentcard.NewRegistry(cardDir)
	s := server.NewMCPServer("test", "1.0.0")
	Register(s, store, registry, log.New(io.Discard, "", 0))
	return s, store, cardDir
}

// callTool calls a registered tool via the MCPServer's HandleMessage.
// Returns the parsed CallToolResult or an error.
func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()

	reqJSON, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params": map[string]any{
			"name":      name,
			"arguments": args,
		},
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	respJSON := s.HandleMessage(context.Background(), reqJSON)

	respBytes, marshalErr := json.Marshal(respJSON)
	if marshalErr != nil {
		t.Fatalf("marshal response: %v", marshalErr)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	var result mcp.CallToolResult
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}

	return &result, nil
}

// resultText extracts the first text content from a CallToolResult.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no text content in result")
	return ""
}

// sendMessage creates a message through the tool and returns its ID.
func sendMessage(t *testing.T, s *server.MCPServer, from, to, subject string) string {
	t.Helper()
	result, err := callTool(t, s, "a2a_send_message", map[string]any{
		"from": from, "to": to, "subject": subject, "content": "body text",
	})
	if err != nil {
		t.Fatalf("send message: %v", err)
	}
	text := resultText(t, result)
	var id string
	if _, err := fmt.Sscanf(text, "Sent %s", &id); err != nil {
		t.Fatalf("unexpected send result %q: %v", text, err)
	}
	return id
}

// seedCard writes one agent card JSON file into the card directory.
func seedCard(t *testing.T, dir *storage.MemDir, agentID, name string) {
	t.Helper()
	card := models.AgentCard{
		AgentID:      agentID,
		Name:         name,
		Version:      "1.2.0",
		Capabilities: []string{"search", "archive"},
		Transports: []models.Transport{
			{Transport: "jsonrpc", Endpoint: "http://localhost:8700/a2a", Methods: []string{"a2a.sendMessage"}},
		},
		Authentication: models.Authentication{Type: "bearer", Required: true},
		CreatedAt:      time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("marshal card: %v", err)
	}
	if err := dir.Write(agentID+".json", data); err != nil {
		t.Fatalf("write card: %v", err)
	}
}
