package proxy

import (
	"context"

	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/models"
	"github.com/pixelbot/pixel-bot/internal/platform"
	"github.com/pixelbot/pixel-bot/internal/storage"
)

const dmNotice = "❌ Proxying isn't available in DMs — it needs a server channel to re-send your message in."

// origin records which resolver produced a dispatch target; latch
// bookkeeping differs between the two.
type origin int

const (
	originTag origin = iota
	originAutoproxy
)

// Handler runs the whole interception pipeline for one inbound message:
// blocklist guard, tag match, autoproxy fallback, dispatch, then latch
// state bookkeeping.
type Handler struct {
	store  storage.Storage
	guard  *Guard
	exec   *Executor
	locks  *ownerLocks
	logger *zap.Logger
}

func NewHandler(store storage.Storage, guard *Guard, exec *Executor, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		guard:  guard,
		exec:   exec,
		locks:  newOwnerLocks(),
		logger: logger,
	}
}

// HandleMessage returns handled=true when the message was intercepted
// (successfully or via a degraded path) and must not reach command
// parsing. handled=false with a nil error means "not ours, fall
// through"; a non-nil error means an unexpected failure the host should
// log, and the message is dropped rather than reprocessed.
func (h *Handler) HandleMessage(ctx context.Context, msg *platform.Message, ch platform.Channel) (bool, error) {
	if !h.guard.Allowed(ctx, msg.GuildID, msg.ChannelID, msg.CategoryID) {
		return false, nil
	}

	// The full resolve/dispatch/update path holds the owner's lock so
	// two rapid messages can't both read a stale latch target.
	lock := h.locks.lock(msg.AuthorID)
	defer lock.Unlock()

	profile, err := h.store.GetProfile(ctx, msg.AuthorID)
	if err != nil {
		return false, err
	}
	if len(profile.Alters) == 0 {
		return false, nil
	}

	hasAttachments := len(msg.Attachments) > 0

	var (
		name    string
		alter   *models.Alter
		inner   string
		from    origin
		apScope string
	)

	if match, ok := Match(profile, msg.Content, hasAttachments); ok {
		name, alter, inner = match.Name, match.Alter, match.Inner
		from = originTag
	} else if res, ok := ResolveAutoproxy(profile, msg.GuildID); ok {
		// Autoproxy re-emits the whole message body as-is.
		name, alter, inner = res.Name, res.Alter, msg.Content
		from = originAutoproxy
		apScope = res.Scope
	} else {
		return false, nil
	}

	if msg.DM() {
		if err := ch.Send(ctx, dmNotice); err != nil {
			h.logger.Error("Failed to send DM notice",
				zap.Error(err),
				zap.String("owner_id", msg.AuthorID))
		}
		return true, nil
	}

	handled, err := h.exec.Dispatch(ctx, ch, msg, name, alter, inner, profile.SystemTag())
	if err != nil {
		return false, err
	}
	if !handled {
		return false, nil
	}

	h.recordProxied(ctx, msg, name, from, apScope)
	return true, nil
}

// recordProxied updates last_proxied after a handled dispatch. It
// re-reads the profile so the write lands on the latest persisted
// state, not on the copy the match ran against.
func (h *Handler) recordProxied(ctx context.Context, msg *platform.Message, name string, from origin, apScope string) {
	profile, err := h.store.GetProfile(ctx, msg.AuthorID)
	if err != nil {
		h.logger.Error("Failed to reload profile for latch update",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID))
		return
	}

	scope := apScope
	if from == originTag {
		// Explicit tags refresh whichever latch record the current
		// scope resolves to, so untagged messages follow the switch.
		scope = latchScope(profile, msg.GuildID)
	}
	if scope == "" {
		return
	}

	state := profile.AutoproxyFor(scope)
	if state == nil || state.LastProxied == name {
		return
	}
	state.LastProxied = name

	if err := h.store.SaveProfile(ctx, profile); err != nil {
		h.logger.Error("Failed to persist latch update",
			zap.Error(err),
			zap.String("owner_id", msg.AuthorID),
			zap.String("scope", scope))
	}
}
