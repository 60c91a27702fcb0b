package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
)

// handleExport sends the owner's full profile back as a JSON snapshot.
// The snapshot round-trips through handleImport.
func (b *Bot) handleExport(ctx context.Context, msg *platform.Message, ch platform.Channel) {
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if len(profile.Alters) == 0 && profile.System == nil {
		b.reply(ctx, ch, "❌ You don't have anything to export yet.")
		return
	}

	raw, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		b.logger.Error("Failed to encode export",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID))
		b.reply(ctx, ch, "❌ Something went wrong building your export.")
		return
	}

	exportID := uuid.New().String()[:8]
	b.reply(ctx, ch, fmt.Sprintf("📦 Export `%s` — save this somewhere safe:\n```json\n%s\n```", exportID, raw))
}

// handleImport restores a profile from an exported JSON snapshot, given
// either as a message attachment or a URL argument. Imported data is
// normalized through the model defaults so older exports load cleanly.
func (b *Bot) handleImport(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	var url string
	switch {
	case len(msg.Attachments) > 0:
		url = msg.Attachments[0].URL
	case len(args) > 0:
		url = args[0]
	default:
		b.reply(ctx, ch, "Usage: attach your exported JSON file to the `!import` message, or pass its URL.")
		return
	}

	raw, err := b.client.FetchBytes(ctx, url)
	if err != nil {
		b.logger.Warn("Failed to download import file",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID))
		b.reply(ctx, ch, "❌ Failed to download the file. Please try again.")
		return
	}

	var imported models.Profile
	if err := json.Unmarshal(raw, &imported); err != nil {
		b.reply(ctx, ch, "❌ That file doesn't look like a PixelBot export.")
		return
	}
	imported.OwnerID = msg.AuthorID
	imported.Normalize()

	if err := b.storage.SaveProfile(ctx, &imported); err != nil {
		b.logger.Error("Failed to save imported profile",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID))
		b.reply(ctx, ch, "❌ Something went wrong saving the import. Please try again.")
		return
	}

	system := ""
	if imported.System != nil {
		system = "system and "
	}
	b.reply(ctx, ch, fmt.Sprintf("✅ Your %s%d profiles have been imported successfully!", system, len(imported.Alters)))
}
