package proxy

import (
	"context"
	"fmt"

	"github.com/pixelbot/pixel-bot/internal/platform"
)

// oplog records the order of side effects across the fakes so tests can
// assert sequencing (attachments download before deletion, etc).
type oplog struct {
	ops []string
}

func (l *oplog) add(format string, args ...any) {
	l.ops = append(l.ops, fmt.Sprintf(format, args...))
}

type fakeRelay struct {
	log       *oplog
	name      string
	sendErr   error
	sends     []relaySend
	destroyed bool
}

type relaySend struct {
	Content     string
	DisplayName string
	AvatarURL   string
	Files       []platform.File
}

func (r *fakeRelay) Send(ctx context.Context, content, displayName, avatarURL string, files []platform.File) error {
	if r.sendErr != nil {
		return r.sendErr
	}
	r.log.add("relay-send %s", displayName)
	r.sends = append(r.sends, relaySend{content, displayName, avatarURL, files})
	return nil
}

func (r *fakeRelay) Destroy(ctx context.Context) error {
	r.destroyed = true
	return nil
}

type fakeChannel struct {
	log *oplog

	deleteErr error
	deleted   []string

	sent []string

	relays    map[string]*fakeRelay
	createErr error
	sendErr   error
}

func newFakeChannel(log *oplog) *fakeChannel {
	return &fakeChannel{log: log, relays: make(map[string]*fakeRelay)}
}

func (c *fakeChannel) DeleteMessage(ctx context.Context, messageID string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.log.add("delete %s", messageID)
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChannel) Send(ctx context.Context, content string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.log.add("send")
	c.sent = append(c.sent, content)
	return nil
}

func (c *fakeChannel) FindRelay(ctx context.Context, name string) (platform.Relay, bool, error) {
	if r, ok := c.relays[name]; ok {
		return r, true, nil
	}
	return nil, false, nil
}

func (c *fakeChannel) CreateRelay(ctx context.Context, name string) (platform.Relay, error) {
	if c.createErr != nil {
		return nil, c.createErr
	}
	c.log.add("create-relay %s", name)
	r := &fakeRelay{log: c.log, name: name}
	c.relays[name] = r
	return r, nil
}

type fakeFetcher struct {
	log  *oplog
	data map[string][]byte
	errs map[string]error
}

func newFakeFetcher(log *oplog) *fakeFetcher {
	return &fakeFetcher{log: log, data: make(map[string][]byte), errs: make(map[string]error)}
}

func (f *fakeFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	f.log.add("fetch %s", url)
	if data, ok := f.data[url]; ok {
		return data, nil
	}
	return []byte("bytes:" + url), nil
}
