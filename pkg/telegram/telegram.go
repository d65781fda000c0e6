package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config locates the messaging gateway that relays texts and photos to chats.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client delivers outbound chat messages through the gateway's HTTP API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
}

type sendMessagePayload struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

type sendPhotoPayload struct {
	ChatID  int64  `json:"chat_id"`
	Photo   string `json:"photo"`
	Caption string `json:"caption,omitempty"`
}

type gatewayResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// New constructs a gateway client.
func New(cfg Config, logger zerolog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("gateway base url must be provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "telegram_gateway").Logger(),
	}, nil
}

// Notify sends a plain text message to the chat.
func (c *Client) Notify(ctx context.Context, chatID int64, message string) error {
	return c.post(ctx, "/sendMessage", sendMessagePayload{ChatID: chatID, Text: message})
}

// NotifyPhoto sends a photo by URL with an optional caption.
func (c *Client) NotifyPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	return c.post(ctx, "/sendPhoto", sendPhotoPayload{ChatID: chatID, Photo: photoURL, Caption: caption})
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode gateway payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded gatewayResponse
	if err := json.Unmarshal(raw, &decoded); err == nil && !decoded.OK && decoded.Description != "" {
		return fmt.Errorf("gateway rejected message: %s", decoded.Description)
	}

	c.logger.Debug().Str("path", path).Msg("gateway message delivered")

	return nil
}
