package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
)

func (b *Bot) handleCreateFolder(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!create_folder <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if _, exists := profile.Folders[name]; exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ A folder named **%s** already exists.", name))
		return
	}
	profile.Folders[name] = models.NewFolder()
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Folder **%s** created.", name))
	}
}

func (b *Bot) handleDeleteFolder(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!delete_folder <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if _, exists := profile.Folders[name]; !exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ Folder '%s' does not exist.", name))
		return
	}
	delete(profile.Folders, name)
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Folder **%s** deleted.", name))
	}
}

func (b *Bot) handleShowFolder(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!show_folder <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	folder, exists := profile.Folders[name]
	if !exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ Folder '%s' does not exist.", name))
		return
	}

	// Membership can outlive the alters it names; dangling entries are
	// simply skipped.
	var lines []string
	for _, alterName := range folder.Alters {
		if alter, ok := profile.Alters[alterName]; ok {
			lines = append(lines, fmt.Sprintf("• **%s**", alter.Label(alterName)))
		}
	}
	if len(lines) == 0 {
		b.reply(ctx, ch, fmt.Sprintf("Folder **%s** is empty.", name))
		return
	}
	b.reply(ctx, ch, fmt.Sprintf("**%s**\n%s", name, strings.Join(lines, "\n")))
}

func (b *Bot) handleFolderAdd(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!add_alters <folder> <alter> [alter ...]`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	folder, exists := profile.Folders[args[0]]
	if !exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ Folder '%s' does not exist.", args[0]))
		return
	}

	var added, unknown []string
	for _, name := range args[1:] {
		if _, ok := profile.Alters[name]; !ok {
			unknown = append(unknown, name)
			continue
		}
		if containsName(folder.Alters, name) {
			continue
		}
		folder.Alters = append(folder.Alters, name)
		added = append(added, name)
	}

	if !b.saveProfile(ctx, profile, ch) {
		return
	}
	out := fmt.Sprintf("✅ Added %d alters to **%s**.", len(added), args[0])
	if len(unknown) > 0 {
		out += fmt.Sprintf(" Unknown: %s.", strings.Join(unknown, ", "))
	}
	b.reply(ctx, ch, out)
}

func (b *Bot) handleFolderRemove(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!remove_alters <folder> <alter> [alter ...]`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	folder, exists := profile.Folders[args[0]]
	if !exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ Folder '%s' does not exist.", args[0]))
		return
	}

	removed := 0
	for _, name := range args[1:] {
		for i, member := range folder.Alters {
			if member == name {
				folder.Alters = append(folder.Alters[:i], folder.Alters[i+1:]...)
				removed++
				break
			}
		}
	}

	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Removed %d alters from **%s**.", removed, args[0]))
	}
}

func containsName(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
