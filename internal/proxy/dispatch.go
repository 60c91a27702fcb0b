package proxy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
)

// DefaultRelayName is the well-known name dispatch reuses for its relay
// in every channel, so repeated proxying does not churn resources.
const DefaultRelayName = "pixel-proxy"

const deleteWarning = "⚠️ I need the **Manage Messages** permission to remove the original message. " +
	"Your message was not proxied."

// Executor performs the suppress-and-re-emit half of proxying: download
// attachments, delete the original, post the content through a relay
// under the alter's identity.
type Executor struct {
	fetcher   platform.Fetcher
	relayName string
	logger    *zap.Logger

	warnMu sync.Mutex
	warned map[string]bool
}

func NewExecutor(fetcher platform.Fetcher, logger *zap.Logger) *Executor {
	return &Executor{
		fetcher:   fetcher,
		relayName: DefaultRelayName,
		logger:    logger,
		warned:    make(map[string]bool),
	}
}

// Dispatch re-emits msg's matched content as the given alter. It
// reports handled=true whenever the message must not fall through to
// command parsing, including the degraded permission-failure paths. A
// non-nil error only accompanies handled=false and means an unexpected
// transport failure the host should log.
func (e *Executor) Dispatch(ctx context.Context, ch platform.Channel, msg *platform.Message, name string, alter *models.Alter, inner, systemTag string) (handled bool, err error) {
	displayName := alter.Label(name)
	if systemTag != "" {
		displayName = displayName + " " + systemTag
	}
	avatarURL := alter.EffectiveAvatar()

	// Attachments must come down before the original is deleted;
	// deletion invalidates their URLs.
	content := inner
	var files []platform.File
	for _, att := range msg.Attachments {
		data, fetchErr := e.fetcher.FetchBytes(ctx, att.URL)
		if fetchErr != nil {
			e.logger.Warn("Failed to download attachment, inlining link",
				zap.Error(fetchErr),
				zap.String("attachment_id", att.ID),
				zap.String("channel_id", msg.ChannelID))
			content = appendLine(content, att.URL)
			continue
		}
		files = append(files, platform.File{Name: att.Filename, Data: data})
	}

	switch deleteErr := ch.DeleteMessage(ctx, msg.ID); {
	case deleteErr == nil:
	case errors.Is(deleteErr, platform.ErrNotFound):
		// Already gone; nothing left to suppress.
	case errors.Is(deleteErr, platform.ErrPermissionDenied):
		e.warnOnce(ctx, ch, msg.ChannelID)
		return true, nil
	default:
		return false, fmt.Errorf("deleting original message %s: %w", msg.ID, deleteErr)
	}

	relay, err := e.acquireRelay(ctx, ch)
	if err != nil {
		if errors.Is(err, platform.ErrPermissionDenied) {
			return true, e.plainFallback(ctx, ch, displayName, content)
		}
		return false, fmt.Errorf("acquiring relay in channel %s: %w", msg.ChannelID, err)
	}

	if err := relay.Send(ctx, content, displayName, avatarURL, files); err != nil {
		if errors.Is(err, platform.ErrPermissionDenied) {
			return true, e.plainFallback(ctx, ch, displayName, content)
		}
		return false, fmt.Errorf("relaying message in channel %s: %w", msg.ChannelID, err)
	}

	return true, nil
}

func (e *Executor) acquireRelay(ctx context.Context, ch platform.Channel) (platform.Relay, error) {
	relay, ok, err := ch.FindRelay(ctx, e.relayName)
	if err != nil {
		return nil, err
	}
	if ok {
		return relay, nil
	}
	return ch.CreateRelay(ctx, e.relayName)
}

// plainFallback posts the content as the bot itself with the display
// name prepended. The degraded path still counts as handled.
func (e *Executor) plainFallback(ctx context.Context, ch platform.Channel, displayName, content string) error {
	if err := ch.Send(ctx, fmt.Sprintf("**%s:** %s", displayName, content)); err != nil {
		e.logger.Error("Plain fallback send failed", zap.Error(err))
	}
	return nil
}

func (e *Executor) warnOnce(ctx context.Context, ch platform.Channel, channelID string) {
	e.warnMu.Lock()
	already := e.warned[channelID]
	e.warned[channelID] = true
	e.warnMu.Unlock()
	if already {
		return
	}
	if err := ch.Send(ctx, deleteWarning); err != nil {
		e.logger.Error("Failed to send delete-permission warning",
			zap.Error(err),
			zap.String("channel_id", channelID))
	}
}

func appendLine(content, line string) string {
	if content == "" {
		return line
	}
	return content + "\n" + line
}
