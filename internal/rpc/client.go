package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client calls a remote A2A endpoint over HTTP POST. Each request carries a
// random UUID as its correlation id, so concurrent callers never collide.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a client for the given endpoint URL, e.g.
// "http://10.0.0.5:8700/a2a".
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Call invokes method with params and decodes the result into out when out
// is non-nil. An error object in the response comes back as *Error, so
// callers can distinguish protocol failures from transport ones.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	req := Request{JSONRPC: Version, ID: uuid.NewString(), Method: method}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("rpc: encode params: %w", err)
		}
		req.Params = raw
	}
	body, err := json.Marshal(&req)
	if err != nil {
		return fmt.Errorf("rpc: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpc: %s: %w", method, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("rpc: %s: read response: %w", method, err)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("rpc: %s: decode response (http %d): %w", method, httpResp.StatusCode, err)
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out != nil {
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("rpc: %s: decode result: %w", method, err)
		}
	}
	return nil
}

// SendMessage creates a message on the remote store.
func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (*SendMessageResult, error) {
	var out SendMessageResult
	if err := c.Call(ctx, MethodSendMessage, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMessages lists messages matching the filter params.
func (c *Client) GetMessages(ctx context.Context, p GetMessagesParams) (*GetMessagesResult, error) {
	var out GetMessagesResult
	if err := c.Call(ctx, MethodGetMessages, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcknowledgeMessage marks a message acknowledged.
func (c *Client) AcknowledgeMessage(ctx context.Context, messageID, agentID string) (*AcknowledgeResult, error) {
	var out AcknowledgeResult
	p := AcknowledgeParams{MessageID: messageID, AgentID: agentID}
	if err := c.Call(ctx, MethodAcknowledgeMessage, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResolveMessage marks a message resolved, with an optional note.
func (c *Client) ResolveMessage(ctx context.Context, messageID, agentID, note string) (*ResolveResult, error) {
	var out ResolveResult
	p := ResolveParams{MessageID: messageID, AgentID: agentID, ResolutionNote: note}
	if err := c.Call(ctx, MethodResolveMessage, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAgentCard fetches one agent's capability manifest.
func (c *Client) GetAgentCard(ctx context.Context, agentID string) (*GetAgentCardResult, error) {
	var out GetAgentCardResult
	if err := c.Call(ctx, MethodGetAgentCard, GetAgentCardParams{AgentID: agentID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListAgentCards fetches every registered capability manifest.
func (c *Client) ListAgentCards(ctx context.Context) (*ListAgentCardsResult, error) {
	var out ListAgentCardsResult
	if err := c.Call(ctx, MethodListAgentCards, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
