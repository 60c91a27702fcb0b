package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pixelbot/pixel-bot/internal/platform"
)

const gatewayURL = "wss://gateway.discord.gg/?v=10&encoding=json"

// Gateway intents: guilds, guild messages, DMs, message content.
const intents = 1<<0 | 1<<9 | 1<<12 | 1<<15

const (
	opDispatch     = 0
	opHeartbeat    = 1
	opIdentify     = 2
	opReconnect    = 7
	opInvalidSess  = 9
	opHello        = 10
	opHeartbeatAck = 11
)

// Gateway maintains the websocket connection to Discord and turns
// MESSAGE_CREATE events into platform messages on a channel, the same
// way a polling bot exposes its update stream.
type Gateway struct {
	client *Client
	token  string
	logger *zap.Logger
	events chan *platform.Message
}

func NewGateway(client *Client, token string, logger *zap.Logger) *Gateway {
	return &Gateway{
		client: client,
		token:  token,
		logger: logger,
		events: make(chan *platform.Message, 64),
	}
}

// Messages is the inbound event stream. Closed when Run returns.
func (g *Gateway) Messages() <-chan *platform.Message {
	return g.events
}

// Run connects and reads until ctx is cancelled, redialing after
// connection failures.
func (g *Gateway) Run(ctx context.Context) error {
	defer close(g.events)

	for {
		if err := g.session(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			g.logger.Warn("Gateway session ended, reconnecting", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(5 * time.Second):
		}
	}
}

type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d,omitempty"`
	S  int64           `json:"s,omitempty"`
	T  string          `json:"t,omitempty"`
}

type helloData struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

func (g *Gateway) session(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("dialing gateway: %w", err)
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(p payload) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(p)
	}

	var hello payload
	if err := conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("reading hello: %w", err)
	}
	if hello.Op != opHello {
		return fmt.Errorf("expected hello, got op %d", hello.Op)
	}
	var hd helloData
	if err := json.Unmarshal(hello.D, &hd); err != nil {
		return fmt.Errorf("decoding hello: %w", err)
	}

	identify, err := json.Marshal(map[string]any{
		"token":   g.token,
		"intents": intents,
		"properties": map[string]string{
			"os":      "linux",
			"browser": "pixel-bot",
			"device":  "pixel-bot",
		},
	})
	if err != nil {
		return fmt.Errorf("encoding identify: %w", err)
	}
	if err := send(payload{Op: opIdentify, D: identify}); err != nil {
		return fmt.Errorf("sending identify: %w", err)
	}

	var seqMu sync.Mutex
	var lastSeq int64
	heartbeat := func() error {
		seqMu.Lock()
		seq, _ := json.Marshal(lastSeq)
		seqMu.Unlock()
		return send(payload{Op: opHeartbeat, D: seq})
	}

	hbCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		ticker := time.NewTicker(time.Duration(hd.HeartbeatInterval) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-hbCtx.Done():
				return
			case <-ticker.C:
				if err := heartbeat(); err != nil {
					g.logger.Warn("Heartbeat failed", zap.Error(err))
					conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		<-hbCtx.Done()
		conn.Close()
	}()

	for {
		var p payload
		if err := conn.ReadJSON(&p); err != nil {
			return fmt.Errorf("reading gateway frame: %w", err)
		}
		if p.S != 0 {
			seqMu.Lock()
			lastSeq = p.S
			seqMu.Unlock()
		}

		switch p.Op {
		case opDispatch:
			if p.T == "MESSAGE_CREATE" {
				g.handleMessageCreate(ctx, p.D)
			}
		case opHeartbeat:
			if err := heartbeat(); err != nil {
				return fmt.Errorf("answering heartbeat request: %w", err)
			}
		case opReconnect, opInvalidSess:
			return fmt.Errorf("gateway requested reconnect (op %d)", p.Op)
		case opHeartbeatAck:
		}
	}
}

type messageCreate struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	GuildID   string `json:"guild_id"`
	Content   string `json:"content"`
	Author    struct {
		ID  string `json:"id"`
		Bot bool   `json:"bot"`
	} `json:"author"`
	Attachments []struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		URL      string `json:"url"`
	} `json:"attachments"`
}

func (g *Gateway) handleMessageCreate(ctx context.Context, raw json.RawMessage) {
	var mc messageCreate
	if err := json.Unmarshal(raw, &mc); err != nil {
		g.logger.Warn("Failed to decode MESSAGE_CREATE", zap.Error(err))
		return
	}

	msg := &platform.Message{
		ID:        mc.ID,
		GuildID:   mc.GuildID,
		ChannelID: mc.ChannelID,
		AuthorID:  mc.Author.ID,
		AuthorBot: mc.Author.Bot,
		Content:   mc.Content,
	}
	for _, att := range mc.Attachments {
		msg.Attachments = append(msg.Attachments, platform.Attachment{
			ID:       att.ID,
			Filename: att.Filename,
			URL:      att.URL,
		})
	}

	// Category lookups only matter inside guilds.
	if mc.GuildID != "" {
		parent, err := g.client.ChannelParent(ctx, mc.ChannelID)
		if err != nil {
			g.logger.Warn("Failed to resolve channel category",
				zap.Error(err),
				zap.String("channel_id", mc.ChannelID))
		} else {
			msg.CategoryID = parent
		}
	}

	select {
	case g.events <- msg:
	case <-ctx.Done():
	}
}
