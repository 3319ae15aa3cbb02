// Package room is the Go client of the room service: bounded fetch, send,
// purge trigger over HTTP and the event subscription over websocket.
package room

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/blinkroom/chat-service/internal/api"
	"github.com/blinkroom/chat-service/internal/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// FetchRecent returns the live messages, newest first, capped at limit.
func (c *Client) FetchRecent(ctx context.Context, limit int) (model.MessageList, error) {
	url := fmt.Sprintf("%s/api/room/messages?limit=%d", c.baseURL, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // .

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var response api.GetMessagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	messages := make(model.MessageList, 0, len(response.Messages))
	for _, msg := range response.Messages {
		parsed, err := fromAPIMessage(msg)
		if err != nil {
			return nil, err
		}
		messages = append(messages, parsed)
	}

	return messages, nil
}

// Send posts a message and returns the server-confirmed row.
func (c *Client) Send(ctx context.Context, content string, replyTo *uuid.UUID) (*model.Message, error) {
	request := api.SendMessageRequest{
		Content: content,
	}
	if replyTo != nil {
		target := replyTo.String()
		request.ReplyTo = &target
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/room/messages", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // .

	if resp.StatusCode != http.StatusOK {
		var errorResp api.Error
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err == nil && errorResp.Error != "" {
			return nil, fmt.Errorf("send rejected: %s", errorResp.Error)
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var confirmed api.Message
	if err := json.NewDecoder(resp.Body).Decode(&confirmed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	message, err := fromAPIMessage(confirmed)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

// TriggerPurge asks the store to delete expired rows. Any viewer may call
// it; redundant concurrent triggers are harmless.
func (c *Client) TriggerPurge(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/room/purge", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // .

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var response api.PurgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}

	return response.Purged, nil
}

// Subscribe streams room events into the channel until the context is
// cancelled or the connection drops. It blocks; run it in its own goroutine.
func (c *Client) Subscribe(ctx context.Context, events chan<- model.RoomEvent) error {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/api/room/events"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close() //nolint:errcheck // .

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var event model.RoomEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("event stream closed: %w", err)
		}

		select {
		case events <- event:
		case <-ctx.Done():
			return nil
		}
	}
}

func fromAPIMessage(msg api.Message) (model.Message, error) {
	id, err := uuid.Parse(msg.Id)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid message id %q: %w", msg.Id, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, msg.CreatedAt)
	if err != nil {
		return model.Message{}, fmt.Errorf("invalid created_at %q: %w", msg.CreatedAt, err)
	}

	var replyTo *uuid.UUID
	if msg.ReplyTo != nil {
		target, err := uuid.Parse(*msg.ReplyTo)
		if err != nil {
			return model.Message{}, fmt.Errorf("invalid reply_to %q: %w", *msg.ReplyTo, err)
		}
		replyTo = &target
	}

	return model.Message{
		ID:        id,
		Content:   msg.Content,
		CreatedAt: createdAt,
		ReplyTo:   replyTo,
	}, nil
}
