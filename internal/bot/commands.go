package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
	"github.com/pixelbot/pixel-bot/internal/proxy"
)

func (b *Bot) loadProfile(ctx context.Context, msg *platform.Message, ch platform.Channel) (*models.Profile, bool) {
	profile, err := b.storage.GetProfile(ctx, msg.AuthorID)
	if err != nil {
		b.logger.Error("Failed to load profile",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID))
		b.reply(ctx, ch, "❌ Something went wrong loading your data. Please try again.")
		return nil, false
	}
	return profile, true
}

func (b *Bot) saveProfile(ctx context.Context, profile *models.Profile, ch platform.Channel) bool {
	if err := b.storage.SaveProfile(ctx, profile); err != nil {
		b.logger.Error("Failed to save profile",
			zap.Error(err),
			zap.String("owner_id", profile.OwnerID))
		b.reply(ctx, ch, "❌ Something went wrong saving your data. Please try again.")
		return false
	}
	return true
}

// --- system commands ---

func (b *Bot) handleCreateSystem(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!create_system <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if profile.System != nil {
		b.reply(ctx, ch, "You already have a system set up. Use `!edit_system` to modify it.")
		return
	}
	profile.System = models.NewSystem(name)
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ System '%s' created successfully!", name))
	}
}

func (b *Bot) handleEditSystem(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!edit_system <name|description|pronouns|avatar|banner|color|tag> <value>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if profile.System == nil {
		b.reply(ctx, ch, "❌ You don't have a system set up yet. Use `!create_system` to create one.")
		return
	}

	field := strings.ToLower(args[0])
	value := strings.Join(args[1:], " ")
	sys := profile.System

	switch field {
	case "name":
		sys.Name = value
	case "description":
		sys.Description = value
	case "pronouns":
		sys.Pronouns = value
	case "avatar":
		sys.Avatar = value
	case "banner":
		sys.Banner = value
	case "tag":
		sys.Tag = value
	case "color":
		color, err := parseColor(value)
		if err != nil {
			b.reply(ctx, ch, "❌ Invalid color code. Please provide a **hex code** like `#8A2BE2`.")
			return
		}
		sys.Color = color
	default:
		b.reply(ctx, ch, fmt.Sprintf("❌ Invalid field '%s'. Use 'name', 'description', 'pronouns', 'avatar', 'banner', 'color', or 'tag'.", field))
		return
	}

	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ %s for your system updated successfully!", capitalize(field)))
	}
}

func (b *Bot) handleDeleteSystem(ctx context.Context, msg *platform.Message, ch platform.Channel) {
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if profile.System == nil {
		b.reply(ctx, ch, "❌ You don't have a system set up yet.")
		return
	}
	profile.System = nil
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, "✅ Your system has been reset.")
	}
}

func (b *Bot) handleShowSystem(ctx context.Context, msg *platform.Message, ch platform.Channel) {
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if profile.System == nil {
		b.reply(ctx, ch, "❌ You don't have a system set up yet. Use `!create_system` to create one.")
		return
	}
	sys := profile.System
	out := fmt.Sprintf("**%s**\n%s\n**Pronouns:** %s\n**Alters:** %d",
		sys.Name, sys.Description, sys.Pronouns, len(profile.Alters))
	if sys.Tag != "" {
		out += fmt.Sprintf("\n**Tag:** %s", sys.Tag)
	}
	b.reply(ctx, ch, out)
}

// --- alter commands ---

func (b *Bot) handleCreateAlter(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) == 0 {
		b.reply(ctx, ch, "Usage: `!create <name> [pronouns] [description]`")
		return
	}
	name := args[0]
	pronouns := ""
	description := ""
	if len(args) > 1 {
		pronouns = args[1]
	}
	if len(args) > 2 {
		description = strings.Join(args[2:], " ")
	}

	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if !profile.AddAlter(name, models.NewAlter(pronouns, description)) {
		b.reply(ctx, ch, fmt.Sprintf("❌ An alter with the name **%s** already exists.", name))
		return
	}
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Profile **%s** created successfully!", name))
	}
}

func (b *Bot) handleEditAlter(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 3 {
		b.reply(ctx, ch, "Usage: `!edit <name> <displayname|pronouns|description|avatar|proxyavatar|banner|color|embed> <value>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	key, alter, found := profile.FindAlter(args[0])
	if !found {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[0]))
		return
	}

	field := strings.ToLower(args[1])
	value := strings.Join(args[2:], " ")

	switch field {
	case "displayname":
		alter.DisplayName = value
	case "pronouns":
		alter.Pronouns = value
	case "description":
		alter.Description = value
	case "avatar":
		alter.Avatar = value
	case "proxyavatar":
		alter.ProxyAvatar = value
	case "banner":
		alter.Banner = value
	case "color":
		color, err := parseColor(value)
		if err != nil {
			b.reply(ctx, ch, "❌ Invalid color code. Please provide a **hex code** like `#8A2BE2`.")
			return
		}
		alter.Color = color
	case "embed":
		alter.UseEmbed = value == "yes" || value == "y" || value == "true"
	default:
		b.reply(ctx, ch, fmt.Sprintf("❌ Invalid field '%s'.", field))
		return
	}

	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ %s for **%s** updated successfully!", capitalize(field), key))
	}
}

func (b *Bot) handleDeleteAlter(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!delete <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	if _, exists := profile.Alters[name]; !exists {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", name))
		return
	}
	// Folder membership is a weak reference and is left as-is; folder
	// views skip names that no longer resolve.
	delete(profile.Alters, name)
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Profile **%s** deleted.", name))
	}
}

func (b *Bot) handleWipeAlters(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) == 0 || args[0] != "confirm" {
		b.reply(ctx, ch, "⚠️ This deletes **all** your alters. Run `!wipe_alters confirm` if you're sure.")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	count := len(profile.Alters)
	profile.Alters = make(map[string]*models.Alter)
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Deleted %d alters.", count))
	}
}

func (b *Bot) handleAlias(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!alias <name> <alias>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	key, alter, found := profile.FindAlter(args[0])
	if !found {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[0]))
		return
	}
	alias := strings.Join(args[1:], " ")
	for _, a := range alter.Aliases {
		if a == alias {
			b.reply(ctx, ch, fmt.Sprintf("❌ **%s** already has the alias **%s**.", key, alias))
			return
		}
	}
	alter.Aliases = append(alter.Aliases, alias)
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Added alias **%s** for **%s**.", alias, key))
	}
}

func (b *Bot) handleRemoveAlias(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!remove_alias <name> <alias>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	key, alter, found := profile.FindAlter(args[0])
	if !found {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[0]))
		return
	}
	alias := strings.Join(args[1:], " ")
	for i, a := range alter.Aliases {
		if a == alias {
			alter.Aliases = append(alter.Aliases[:i], alter.Aliases[i+1:]...)
			if b.saveProfile(ctx, profile, ch) {
				b.reply(ctx, ch, fmt.Sprintf("✅ Removed alias **%s** from **%s**.", alias, key))
			}
			return
		}
	}
	b.reply(ctx, ch, fmt.Sprintf("❌ **%s** has no alias **%s**.", key, alias))
}

func (b *Bot) handleSetProxy(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) < 2 {
		b.reply(ctx, ch, "Usage: `!proxy <name> <pattern>` — e.g. `!proxy Al A:` or `!proxy Al A:...!` — or `!proxy <name> off`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	key, alter, found := profile.FindAlter(args[0])
	if !found {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[0]))
		return
	}

	pattern := strings.Join(args[1:], " ")
	if pattern == "off" {
		alter.Proxy = ""
		if b.saveProfile(ctx, profile, ch) {
			b.reply(ctx, ch, fmt.Sprintf("✅ Proxy removed from **%s**.", key))
		}
		return
	}

	warning := ""
	if overlaps := proxy.Overlapping(profile, pattern, key); len(overlaps) > 0 {
		warning = fmt.Sprintf("\n⚠️ This pattern overlaps with: %s. Whichever alter was created first wins when both match.",
			strings.Join(overlaps, ", "))
	}

	alter.Proxy = pattern
	if b.saveProfile(ctx, profile, ch) {
		b.reply(ctx, ch, fmt.Sprintf("✅ Proxy for **%s** set to `%s`.%s", key, pattern, warning))
	}
}

func (b *Bot) handleShowAlter(ctx context.Context, msg *platform.Message, ch platform.Channel, name string) {
	if name == "" {
		b.reply(ctx, ch, "Usage: `!show <name>`")
		return
	}
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	key, alter, found := profile.FindAlter(name)
	if !found {
		b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", name))
		return
	}

	proxyText := alter.Proxy
	if !alter.HasProxy() {
		proxyText = models.NoProxySentinel
	}
	out := fmt.Sprintf("**%s**\n**Pronouns:** %s\n%s\n**Proxy:** `%s`",
		alter.Label(key), alter.Pronouns, alter.Description, proxyText)
	if len(alter.Aliases) > 0 {
		out += fmt.Sprintf("\n**Aliases:** %s", strings.Join(alter.Aliases, ", "))
	}
	b.reply(ctx, ch, out)
}

func (b *Bot) handleListAlters(ctx context.Context, msg *platform.Message, ch platform.Channel) {
	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}
	var lines []string
	for _, entry := range profile.OrderedAlters() {
		if !entry.Alter.ShowInList {
			continue
		}
		proxyText := entry.Alter.Proxy
		if !entry.Alter.HasProxy() {
			proxyText = models.NoProxySentinel
		}
		lines = append(lines, fmt.Sprintf("• **%s** — `%s`", entry.Name, proxyText))
	}
	if len(lines) == 0 {
		b.reply(ctx, ch, "You don't have any alters yet. Use `!create <name>` to add one.")
		return
	}
	b.reply(ctx, ch, strings.Join(lines, "\n"))
}

// --- autoproxy ---

func (b *Bot) handleAutoproxy(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string) {
	if len(args) == 0 {
		b.reply(ctx, ch, "Usage: `!autoproxy off` | `!autoproxy front <name>` | `!autoproxy latch [name]` — append `global` to apply everywhere")
		return
	}

	scope := msg.GuildID
	if len(args) > 0 && args[len(args)-1] == "global" {
		scope = models.GlobalScope
		args = args[:len(args)-1]
	}
	if scope == "" {
		b.reply(ctx, ch, "❌ Use this in a server, or append `global` to set account-wide autoproxy.")
		return
	}
	if len(args) == 0 {
		b.reply(ctx, ch, "Usage: `!autoproxy off|front <name>|latch [name]`")
		return
	}

	profile, ok := b.loadProfile(ctx, msg, ch)
	if !ok {
		return
	}

	mode := strings.ToLower(args[0])
	state := profile.AutoproxyFor(scope)
	if state == nil {
		state = models.NewAutoproxyState()
		profile.SetAutoproxy(scope, state)
	}

	switch mode {
	case "off":
		state.Mode = models.AutoproxyOff
		if b.saveProfile(ctx, profile, ch) {
			b.reply(ctx, ch, "✅ Autoproxy turned off.")
		}
	case "front":
		if len(args) < 2 {
			b.reply(ctx, ch, "Usage: `!autoproxy front <name>`")
			return
		}
		key, _, found := profile.FindAlter(args[1])
		if !found {
			b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[1]))
			return
		}
		state.Mode = models.AutoproxyFront
		state.Alter = key
		if b.saveProfile(ctx, profile, ch) {
			b.reply(ctx, ch, fmt.Sprintf("✅ Autoproxy set to front as **%s**.", key))
		}
	case "latch":
		state.Mode = models.AutoproxyLatch
		if len(args) > 1 {
			key, _, found := profile.FindAlter(args[1])
			if !found {
				b.reply(ctx, ch, fmt.Sprintf("❌ Profile '%s' does not exist.", args[1]))
				return
			}
			state.LastProxied = key
		}
		if b.saveProfile(ctx, profile, ch) {
			b.reply(ctx, ch, "✅ Autoproxy set to latch — untagged messages follow whichever alter you proxied last.")
		}
	default:
		b.reply(ctx, ch, fmt.Sprintf("❌ Unknown autoproxy mode '%s'. Use off, front, or latch.", mode))
	}
}

// --- admin blocklist ---

func (b *Bot) handleBlacklistChannel(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string, add bool) {
	if msg.DM() {
		b.reply(ctx, ch, "❌ This command only works in a server.")
		return
	}
	if len(args) == 0 {
		b.reply(ctx, ch, "Usage: provide a channel mention or ID.")
		return
	}
	channelID := stripChannelMention(args[0])

	blocklist, err := b.storage.GetBlocklist(ctx, msg.GuildID)
	if err != nil {
		b.logger.Error("Failed to load blocklist", zap.Error(err), zap.String("guild_id", msg.GuildID))
		b.reply(ctx, ch, "❌ Something went wrong. Please try again.")
		return
	}

	if add {
		if !blocklist.AddChannel(channelID) {
			b.reply(ctx, ch, "🚫 That channel is already blacklisted.")
			return
		}
	} else {
		if !blocklist.RemoveChannel(channelID) {
			b.reply(ctx, ch, "⚠️ That channel is not blacklisted.")
			return
		}
	}

	if err := b.storage.SaveBlocklist(ctx, blocklist); err != nil {
		b.logger.Error("Failed to save blocklist", zap.Error(err), zap.String("guild_id", msg.GuildID))
		b.reply(ctx, ch, "❌ Something went wrong. Please try again.")
		return
	}
	if add {
		b.reply(ctx, ch, fmt.Sprintf("🚫 Channel <#%s> has been blacklisted — messages there won't be proxied.", channelID))
	} else {
		b.reply(ctx, ch, fmt.Sprintf("✅ Channel <#%s> has been removed from the blacklist.", channelID))
	}
}

func (b *Bot) handleBlacklistCategory(ctx context.Context, msg *platform.Message, ch platform.Channel, args []string, add bool) {
	if msg.DM() {
		b.reply(ctx, ch, "❌ This command only works in a server.")
		return
	}
	if len(args) == 0 {
		b.reply(ctx, ch, "Usage: provide a category ID.")
		return
	}
	categoryID := args[0]

	blocklist, err := b.storage.GetBlocklist(ctx, msg.GuildID)
	if err != nil {
		b.logger.Error("Failed to load blocklist", zap.Error(err), zap.String("guild_id", msg.GuildID))
		b.reply(ctx, ch, "❌ Something went wrong. Please try again.")
		return
	}

	if add {
		if !blocklist.AddCategory(categoryID) {
			b.reply(ctx, ch, "🚫 That category is already blacklisted.")
			return
		}
	} else {
		if !blocklist.RemoveCategory(categoryID) {
			b.reply(ctx, ch, "⚠️ That category is not blacklisted.")
			return
		}
	}

	if err := b.storage.SaveBlocklist(ctx, blocklist); err != nil {
		b.logger.Error("Failed to save blocklist", zap.Error(err), zap.String("guild_id", msg.GuildID))
		b.reply(ctx, ch, "❌ Something went wrong. Please try again.")
		return
	}
	if add {
		b.reply(ctx, ch, "🚫 Category blacklisted — messages in its channels won't be proxied.")
	} else {
		b.reply(ctx, ch, "✅ Category removed from the blacklist.")
	}
}

// --- helpers ---

func stripChannelMention(s string) string {
	s = strings.TrimPrefix(s, "<#")
	return strings.TrimSuffix(s, ">")
}

func parseColor(s string) (int, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
