package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
	"github.com/pixelbot/pixel-bot/internal/storage"
)

// replyChannel captures outgoing replies; the command layer never
// touches the other channel operations.
type replyChannel struct {
	sent []string
}

func (c *replyChannel) DeleteMessage(ctx context.Context, messageID string) error { return nil }

func (c *replyChannel) Send(ctx context.Context, content string) error {
	c.sent = append(c.sent, content)
	return nil
}

func (c *replyChannel) FindRelay(ctx context.Context, name string) (platform.Relay, bool, error) {
	return nil, false, nil
}

func (c *replyChannel) CreateRelay(ctx context.Context, name string) (platform.Relay, error) {
	return nil, platform.ErrPermissionDenied
}

type commandFixture struct {
	bot   *Bot
	store *storage.MemoryStorage
	ch    *replyChannel
}

func newCommandFixture(t *testing.T) *commandFixture {
	t.Helper()
	store := storage.NewMemoryStorage()
	return &commandFixture{
		bot:   New("test-token", store, zap.NewNop()),
		store: store,
		ch:    &replyChannel{},
	}
}

func (f *commandFixture) run(t *testing.T, content string) {
	t.Helper()
	msg := &platform.Message{
		ID:        "msg-1",
		GuildID:   "guild-1",
		ChannelID: "chan-1",
		AuthorID:  "owner",
		Content:   content,
	}
	f.bot.handleCommand(context.Background(), msg, f.ch)
}

func (f *commandFixture) lastReply(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.ch.sent)
	return f.ch.sent[len(f.ch.sent)-1]
}

func (f *commandFixture) profile(t *testing.T) *models.Profile {
	t.Helper()
	p, err := f.store.GetProfile(context.Background(), "owner")
	require.NoError(t, err)
	return p
}

func TestCreateSystemCommand(t *testing.T) {
	f := newCommandFixture(t)

	f.run(t, "!create_system The Garden")
	assert.Contains(t, f.lastReply(t), "created successfully")
	require.NotNil(t, f.profile(t).System)
	assert.Equal(t, "The Garden", f.profile(t).System.Name)

	// A second create is rejected.
	f.run(t, "!create_system Another")
	assert.Contains(t, f.lastReply(t), "already have a system")
}

func TestEditSystemTag(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create_system The Garden")

	f.run(t, "!edit_system tag 🌱")
	assert.Equal(t, "🌱", f.profile(t).System.Tag)

	f.run(t, "!edit_system color #FF0000")
	assert.Equal(t, 0xFF0000, f.profile(t).System.Color)

	f.run(t, "!edit_system color notacolor")
	assert.Contains(t, f.lastReply(t), "Invalid color")
}

func TestCreateAlterCommand(t *testing.T) {
	f := newCommandFixture(t)

	f.run(t, "!create Al they/them a quiet one")
	p := f.profile(t)
	require.Contains(t, p.Alters, "Al")
	assert.Equal(t, "they/them", p.Alters["Al"].Pronouns)
	assert.Equal(t, "a quiet one", p.Alters["Al"].Description)

	f.run(t, "!create Al")
	assert.Contains(t, f.lastReply(t), "already exists")
}

func TestSetProxyCommand(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al")

	f.run(t, "!proxy Al A:...!")
	assert.Equal(t, "A:...!", f.profile(t).Alters["Al"].Proxy)

	f.run(t, "!proxy Al off")
	assert.Equal(t, "", f.profile(t).Alters["Al"].Proxy)
}

func TestSetProxyWarnsOnOverlap(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al")
	f.run(t, "!create Bee")
	f.run(t, "!proxy Al a:")

	f.run(t, "!proxy Bee a:b:")
	reply := f.lastReply(t)
	assert.Contains(t, reply, "overlaps")
	assert.Contains(t, reply, "Al")
	// The pattern is still stored; matching stays first-match-wins.
	assert.Equal(t, "a:b:", f.profile(t).Alters["Bee"].Proxy)
}

func TestAutoproxyCommand(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al")

	f.run(t, "!autoproxy front Al")
	state := f.profile(t).AutoproxyFor("guild-1")
	require.NotNil(t, state)
	assert.Equal(t, models.AutoproxyFront, state.Mode)
	assert.Equal(t, "Al", state.Alter)

	f.run(t, "!autoproxy latch")
	assert.Equal(t, models.AutoproxyLatch, f.profile(t).AutoproxyFor("guild-1").Mode)

	f.run(t, "!autoproxy off")
	assert.Equal(t, models.AutoproxyOff, f.profile(t).AutoproxyFor("guild-1").Mode)

	f.run(t, "!autoproxy front Al global")
	global := f.profile(t).AutoproxyFor(models.GlobalScope)
	require.NotNil(t, global)
	assert.Equal(t, models.AutoproxyFront, global.Mode)
}

func TestAutoproxyRejectsUnknownAlter(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!autoproxy front Ghost")
	assert.Contains(t, f.lastReply(t), "does not exist")
	state := f.profile(t).AutoproxyFor("guild-1")
	if state != nil {
		assert.Equal(t, models.AutoproxyOff, state.Mode)
	}
}

func TestBlacklistChannelCommand(t *testing.T) {
	f := newCommandFixture(t)

	f.run(t, "!blacklist_channel <#chan-9>")
	b, err := f.store.GetBlocklist(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.True(t, b.HasChannel("chan-9"))

	f.run(t, "!blacklist_channel <#chan-9>")
	assert.Contains(t, f.lastReply(t), "already")

	f.run(t, "!unblacklist_channel chan-9")
	b, err = f.store.GetBlocklist(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.False(t, b.HasChannel("chan-9"))
}

func TestFolderCommands(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al")
	f.run(t, "!create Bee")
	f.run(t, "!create_folder daytime")
	f.run(t, "!add_alters daytime Al Bee Ghost")

	p := f.profile(t)
	require.Contains(t, p.Folders, "daytime")
	assert.Equal(t, []string{"Al", "Bee"}, p.Folders["daytime"].Alters)
	assert.Contains(t, f.lastReply(t), "Ghost")

	// Deleting an alter leaves the folder reference dangling; the view
	// just skips it.
	f.run(t, "!delete Al")
	assert.Equal(t, []string{"Al", "Bee"}, f.profile(t).Folders["daytime"].Alters)
	f.run(t, "!show_folder daytime")
	assert.NotContains(t, f.lastReply(t), "Al —")

	f.run(t, "!remove_alters daytime Bee")
	assert.Equal(t, []string{"Al"}, f.profile(t).Folders["daytime"].Alters)
}

func TestExportEmitsJSONSnapshot(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al they/them")
	f.run(t, "!proxy Al A:...!")
	f.run(t, "!export")

	reply := f.lastReply(t)
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	require.Greater(t, end, start, "export reply must contain a JSON body")
}

func TestWipeAltersRequiresConfirm(t *testing.T) {
	f := newCommandFixture(t)
	f.run(t, "!create Al")

	f.run(t, "!wipe_alters")
	assert.Contains(t, f.profile(t).Alters, "Al")

	f.run(t, "!wipe_alters confirm")
	assert.Empty(t, f.profile(t).Alters)
}
