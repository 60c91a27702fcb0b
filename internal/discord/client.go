// Package discord implements the platform abstraction on top of the
// Discord REST API and gateway. Only the handful of endpoints the bot
// needs are covered; this is not a general API client.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/platform"
)

const apiBase = "https://discord.com/api/v10"

// Client is a minimal authenticated Discord REST client.
type Client struct {
	token    string
	http     *http.Client
	base     string
	logger   *zap.Logger
	channels *gocache.Cache
}

func NewClient(token string, logger *zap.Logger) *Client {
	return &Client{
		token:    token,
		http:     &http.Client{Timeout: 30 * time.Second},
		base:     apiBase,
		logger:   logger,
		channels: gocache.New(15*time.Minute, 30*time.Minute),
	}
}

type apiError struct {
	Status  int
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("discord: %d %s (code %d)", e.Status, e.Message, e.Code)
}

// Unwrap maps permission and missing-target responses onto the platform
// sentinel errors so callers can errors.Is against them.
func (e *apiError) Unwrap() error {
	switch e.Status {
	case http.StatusForbidden:
		return platform.ErrPermissionDenied
	case http.StatusNotFound:
		return platform.ErrNotFound
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(raw), "application/json", out)
}

// DeleteMessage removes a message from a channel.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.do(ctx, http.MethodDelete,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, "", nil)
}

// SendMessage posts plain content as the bot itself.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) error {
	payload := map[string]any{
		"content":          content,
		"allowed_mentions": map[string]any{"parse": []string{}},
	}
	return c.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID), payload, nil)
}

// Webhook is the send-as-identity resource Discord provides.
type Webhook struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// ChannelWebhooks lists a channel's webhooks.
func (c *Client) ChannelWebhooks(ctx context.Context, channelID string) ([]Webhook, error) {
	var hooks []Webhook
	err := c.do(ctx, http.MethodGet,
		fmt.Sprintf("/channels/%s/webhooks", channelID), nil, "", &hooks)
	if err != nil {
		return nil, err
	}
	return hooks, nil
}

// CreateWebhook provisions a webhook in a channel.
func (c *Client) CreateWebhook(ctx context.Context, channelID, name string) (*Webhook, error) {
	var hook Webhook
	payload := map[string]any{"name": name}
	err := c.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("/channels/%s/webhooks", channelID), payload, &hook)
	if err != nil {
		return nil, err
	}
	return &hook, nil
}

// DeleteWebhook destroys a webhook by ID.
func (c *Client) DeleteWebhook(ctx context.Context, webhookID string) error {
	return c.do(ctx, http.MethodDelete, "/webhooks/"+webhookID, nil, "", nil)
}

// ExecuteWebhook posts through a webhook under an arbitrary username
// and avatar, with optional file uploads.
func (c *Client) ExecuteWebhook(ctx context.Context, hook *Webhook, content, username, avatarURL string, files []platform.File) error {
	payload := map[string]any{
		"content":          content,
		"username":         username,
		"allowed_mentions": map[string]any{"parse": []string{}},
	}
	if avatarURL != "" {
		payload["avatar_url"] = avatarURL
	}

	path := fmt.Sprintf("/webhooks/%s/%s?wait=true", hook.ID, hook.Token)

	if len(files) == 0 {
		return c.doJSON(ctx, http.MethodPost, path, payload, nil)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}
	if err := w.WriteField("payload_json", string(raw)); err != nil {
		return fmt.Errorf("writing payload_json part: %w", err)
	}
	for i, f := range files {
		part, err := w.CreateFormFile(fmt.Sprintf("files[%d]", i), f.Name)
		if err != nil {
			return fmt.Errorf("creating file part %s: %w", f.Name, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("writing file part %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), nil)
}

type channelInfo struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	GuildID  string `json:"guild_id"`
}

// ChannelParent returns a channel's category ID ("" when uncategorized).
// Results are cached; the gateway does not carry category IDs on
// message events.
func (c *Client) ChannelParent(ctx context.Context, channelID string) (string, error) {
	if x, found := c.channels.Get(channelID); found {
		return x.(string), nil
	}

	var info channelInfo
	if err := c.do(ctx, http.MethodGet, "/channels/"+channelID, nil, "", &info); err != nil {
		return "", err
	}
	c.channels.Set(channelID, info.ParentID, gocache.DefaultExpiration)
	return info.ParentID, nil
}

// FetchBytes downloads arbitrary content (attachments, avatars) without
// API authentication.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building fetch request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
