package discord

import (
	"context"

	"github.com/pixelbot/pixel-bot/internal/platform"
)

// channel adapts one Discord channel to platform.Channel.
type channel struct {
	client    *Client
	channelID string
}

// OpenChannel returns the platform handle for a channel ID.
func (c *Client) OpenChannel(channelID string) platform.Channel {
	return &channel{client: c, channelID: channelID}
}

func (ch *channel) DeleteMessage(ctx context.Context, messageID string) error {
	return ch.client.DeleteMessage(ctx, ch.channelID, messageID)
}

func (ch *channel) Send(ctx context.Context, content string) error {
	return ch.client.SendMessage(ctx, ch.channelID, content)
}

func (ch *channel) FindRelay(ctx context.Context, name string) (platform.Relay, bool, error) {
	hooks, err := ch.client.ChannelWebhooks(ctx, ch.channelID)
	if err != nil {
		return nil, false, err
	}
	for i := range hooks {
		// Webhooks created by other applications come back without a
		// token and cannot be executed; skip them.
		if hooks[i].Name == name && hooks[i].Token != "" {
			return &relay{client: ch.client, hook: hooks[i]}, true, nil
		}
	}
	return nil, false, nil
}

func (ch *channel) CreateRelay(ctx context.Context, name string) (platform.Relay, error) {
	hook, err := ch.client.CreateWebhook(ctx, ch.channelID, name)
	if err != nil {
		return nil, err
	}
	return &relay{client: ch.client, hook: *hook}, nil
}

// relay adapts a Discord webhook to platform.Relay.
type relay struct {
	client *Client
	hook   Webhook
}

func (r *relay) Send(ctx context.Context, content, displayName, avatarURL string, files []platform.File) error {
	return r.client.ExecuteWebhook(ctx, &r.hook, content, displayName, avatarURL, files)
}

func (r *relay) Destroy(ctx context.Context) error {
	return r.client.DeleteWebhook(ctx, r.hook.ID)
}
