package proxy

import (
	"context"

	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/storage"
)

// Guard decides whether proxy interception is allowed in a channel.
// A blocked channel only suppresses proxying; commands still run there.
type Guard struct {
	store  storage.Storage
	logger *zap.Logger
}

func NewGuard(store storage.Storage, logger *zap.Logger) *Guard {
	return &Guard{store: store, logger: logger}
}

// Allowed reports whether proxying may happen for a message in the
// given guild/channel/category. Direct messages (empty guild ID) are
// always allowed since no blocklist can scope them. A storage failure
// fails open: losing blocklist enforcement for one message beats
// dropping the message.
func (g *Guard) Allowed(ctx context.Context, guildID, channelID, categoryID string) bool {
	if guildID == "" {
		return true
	}

	blocklist, err := g.store.GetBlocklist(ctx, guildID)
	if err != nil {
		g.logger.Warn("Failed to load blocklist, allowing message",
			zap.Error(err),
			zap.String("guild_id", guildID))
		return true
	}

	if blocklist.HasChannel(channelID) {
		return false
	}
	if categoryID != "" && blocklist.HasCategory(categoryID) {
		return false
	}
	return true
}
