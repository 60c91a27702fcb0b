// Package platform defines the chat-platform surface the proxy engine
// talks to. Implementations live elsewhere (internal/discord for the
// real thing, fakes in tests); the engine only sees these interfaces.
package platform

import (
	"context"
	"errors"
)

var (
	// ErrPermissionDenied is returned when the bot lacks the permission
	// an operation needs. The engine recovers from it locally.
	ErrPermissionDenied = errors.New("platform: permission denied")

	// ErrNotFound is returned when the target of an operation no longer
	// exists (already-deleted message, vanished relay).
	ErrNotFound = errors.New("platform: not found")
)

// Message is one inbound message event as the engine sees it.
type Message struct {
	ID          string
	GuildID     string // empty for direct messages
	ChannelID   string
	CategoryID  string // empty when the channel has no category
	AuthorID    string
	AuthorBot   bool
	Content     string
	Attachments []Attachment
}

// DM reports whether the message arrived outside any guild.
func (m *Message) DM() bool { return m.GuildID == "" }

// Attachment is one file attached to an inbound message.
type Attachment struct {
	ID       string
	Filename string
	URL      string
}

// File is attachment content already downloaded and ready to re-send.
type File struct {
	Name string
	Data []byte
}

// Channel is the engine's handle on the channel a message arrived in.
type Channel interface {
	// DeleteMessage removes the original message. ErrPermissionDenied
	// and ErrNotFound are the recoverable failures.
	DeleteMessage(ctx context.Context, messageID string) error

	// Send posts a plain message as the bot itself.
	Send(ctx context.Context, content string) error

	// FindRelay looks up an existing relay by name; ok is false when
	// none exists.
	FindRelay(ctx context.Context, name string) (Relay, bool, error)

	// CreateRelay provisions the send-as-identity mechanism for this
	// channel under a well-known name.
	CreateRelay(ctx context.Context, name string) (Relay, error)
}

// Relay re-emits content under an arbitrary display name and avatar.
type Relay interface {
	Send(ctx context.Context, content, displayName, avatarURL string, files []File) error
	Destroy(ctx context.Context) error
}

// Fetcher downloads attachment or avatar bytes. Best effort: a failure
// affects only the one fetch.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}
