package bot

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/discord"
	"github.com/pixelbot/pixel-bot/internal/platform"
	"github.com/pixelbot/pixel-bot/internal/proxy"
	"github.com/pixelbot/pixel-bot/internal/storage"
)

const commandPrefix = "!"

type Bot struct {
	client  *discord.Client
	gateway *discord.Gateway
	storage storage.Storage
	proxy   *proxy.Handler
	logger  *zap.Logger
}

func New(token string, store storage.Storage, logger *zap.Logger) *Bot {
	client := discord.NewClient(token, logger)
	gateway := discord.NewGateway(client, token, logger)

	guard := proxy.NewGuard(store, logger)
	exec := proxy.NewExecutor(client, logger)
	handler := proxy.NewHandler(store, guard, exec, logger)

	return &Bot{
		client:  client,
		gateway: gateway,
		storage: store,
		proxy:   handler,
		logger:  logger,
	}
}

// Start connects the gateway and processes messages until ctx is
// cancelled.
func (b *Bot) Start(ctx context.Context) error {
	go func() {
		if err := b.gateway.Run(ctx); err != nil {
			b.logger.Error("Gateway stopped", zap.Error(err))
		}
	}()

	for msg := range b.gateway.Messages() {
		if msg.AuthorBot {
			continue
		}
		go b.handleMessage(ctx, msg)
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *platform.Message) {
	ch := b.client.OpenChannel(msg.ChannelID)

	handled, err := b.proxy.HandleMessage(ctx, msg, ch)
	if err != nil {
		// The message is dropped here rather than fed to command
		// parsing, so a failed dispatch can't cause double handling.
		b.logger.Error("Proxy pipeline failed",
			zap.Error(err),
			zap.String("message_id", msg.ID),
			zap.String("owner_id", msg.AuthorID))
		return
	}
	if handled {
		return
	}

	if strings.HasPrefix(msg.Content, commandPrefix) {
		b.handleCommand(ctx, msg, ch)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *platform.Message, ch platform.Channel) {
	fields := strings.Fields(strings.TrimPrefix(msg.Content, commandPrefix))
	if len(fields) == 0 {
		return
	}
	command := fields[0]
	args := fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg.Content, commandPrefix+command), " "))

	switch command {
	case "create_system":
		b.handleCreateSystem(ctx, msg, ch, rest)
	case "edit_system":
		b.handleEditSystem(ctx, msg, ch, args)
	case "delete_system":
		b.handleDeleteSystem(ctx, msg, ch)
	case "system":
		b.handleShowSystem(ctx, msg, ch)
	case "create":
		b.handleCreateAlter(ctx, msg, ch, args)
	case "edit":
		b.handleEditAlter(ctx, msg, ch, args)
	case "delete":
		b.handleDeleteAlter(ctx, msg, ch, rest)
	case "wipe_alters":
		b.handleWipeAlters(ctx, msg, ch, args)
	case "alias":
		b.handleAlias(ctx, msg, ch, args)
	case "remove_alias":
		b.handleRemoveAlias(ctx, msg, ch, args)
	case "proxy":
		b.handleSetProxy(ctx, msg, ch, args)
	case "show":
		b.handleShowAlter(ctx, msg, ch, rest)
	case "list":
		b.handleListAlters(ctx, msg, ch)
	case "autoproxy":
		b.handleAutoproxy(ctx, msg, ch, args)
	case "create_folder":
		b.handleCreateFolder(ctx, msg, ch, rest)
	case "delete_folder":
		b.handleDeleteFolder(ctx, msg, ch, rest)
	case "show_folder":
		b.handleShowFolder(ctx, msg, ch, rest)
	case "add_alters":
		b.handleFolderAdd(ctx, msg, ch, args)
	case "remove_alters":
		b.handleFolderRemove(ctx, msg, ch, args)
	case "blacklist_channel":
		b.handleBlacklistChannel(ctx, msg, ch, args, true)
	case "unblacklist_channel":
		b.handleBlacklistChannel(ctx, msg, ch, args, false)
	case "blacklist_category":
		b.handleBlacklistCategory(ctx, msg, ch, args, true)
	case "unblacklist_category":
		b.handleBlacklistCategory(ctx, msg, ch, args, false)
	case "export":
		b.handleExport(ctx, msg, ch)
	case "import":
		b.handleImport(ctx, msg, ch, args)
	case "pixelhelp":
		b.handleHelp(ctx, ch)
	}
}

func (b *Bot) reply(ctx context.Context, ch platform.Channel, text string) {
	if err := ch.Send(ctx, text); err != nil {
		b.logger.Error("Failed to send reply", zap.Error(err))
	}
}

func (b *Bot) handleHelp(ctx context.Context, ch platform.Channel) {
	help := `**PixelBot commands**
System: ` + "`!create_system`, `!edit_system <field> <value>`, `!delete_system`, `!system`" + `
Alters: ` + "`!create <name> [pronouns] [description]`, `!edit <name> <field> <value>`, `!delete <name>`, `!show <name>`, `!list`" + `
Proxy: ` + "`!proxy <name> <pattern|off>` — patterns look like `A:` or `A:...!`" + `
Autoproxy: ` + "`!autoproxy off|front <name>|latch [name]` (append `global` for all servers)" + `
Folders: ` + "`!create_folder`, `!add_alters`, `!remove_alters`, `!show_folder`, `!delete_folder`" + `
Admin: ` + "`!blacklist_channel`, `!blacklist_category` (and the `un` variants)" + `
Data: ` + "`!export`, `!import`"
	b.reply(ctx, ch, help)
}
