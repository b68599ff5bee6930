// Package api implements the REST client for the backend described by
// the transport contracts: status probe, conversation/message/status
// fetches, and the mark-as-read call.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/zapweb/internal/model"
	"github.com/matheus3301/zapweb/internal/wire"
	"go.uber.org/zap"
)

const requestTimeout = 15 * time.Second

// Client talks to the backend REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, logger *zap.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: u,
		http:    &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}, nil
}

// Status probes backend health. Any failure reads as "offline"; the
// probe is informational only.
func (c *Client) Status(ctx context.Context) string {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, "/api/status", &body); err != nil {
		return "offline"
	}
	if body.Status == "" {
		return "offline"
	}
	return body.Status
}

// FetchConversations returns the conversation list, normalized.
func (c *Client) FetchConversations(ctx context.Context) ([]model.Conversation, error) {
	data, err := c.get(ctx, "/api/chats")
	if err != nil {
		return nil, err
	}
	return wire.DecodeConversations(data)
}

// FetchMessages returns a conversation's messages in whatever order the
// backend produced them; callers sort.
func (c *Client) FetchMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	data, err := c.get(ctx, "/api/chats/"+url.PathEscape(conversationID)+"/messages")
	if err != nil {
		return nil, err
	}
	return wire.DecodeMessages(data)
}

// FetchStatuses returns all contacts' status items, normalized.
func (c *Client) FetchStatuses(ctx context.Context) ([]model.Status, error) {
	data, err := c.get(ctx, "/api/statuses")
	if err != nil {
		return nil, err
	}
	return wire.DecodeStatuses(data)
}

// MarkConversationRead tells the backend the whole conversation was read.
func (c *Client) MarkConversationRead(ctx context.Context, conversationID string) error {
	endpoint := c.baseURL.JoinPath("/api/chats/" + url.PathEscape(conversationID) + "/read")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mark read: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// WebSocketURL returns the real-time channel endpoint derived from the
// base URL.
func (c *Client) WebSocketURL() string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	return u.String()
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
