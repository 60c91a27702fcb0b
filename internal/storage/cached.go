package storage

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pixelbot/pixel-bot/internal/models"
)

// CachedStorage wraps another Storage with a read-through cache. Writes
// go to the backing store first and replace the cached entry only after
// the write succeeds, so the cache never serves state that was not
// persisted. Entries expire on their own in case another process ever
// writes behind our back.
type CachedStorage struct {
	backend Storage
	cache   *gocache.Cache
}

func NewCachedStorage(backend Storage, ttl time.Duration) *CachedStorage {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedStorage{
		backend: backend,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

func profileKey(ownerID string) string   { return "profile:" + ownerID }
func blocklistKey(guildID string) string { return "blocklist:" + guildID }

func (s *CachedStorage) GetProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	if x, found := s.cache.Get(profileKey(ownerID)); found {
		return x.(*models.Profile).Clone(), nil
	}

	profile, err := s.backend.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(profileKey(ownerID), profile.Clone(), gocache.DefaultExpiration)
	return profile, nil
}

func (s *CachedStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.backend.SaveProfile(ctx, profile); err != nil {
		// A failed write leaves the cache stale; drop the entry so the
		// next read goes back to the store.
		s.cache.Delete(profileKey(profile.OwnerID))
		return err
	}
	s.cache.Set(profileKey(profile.OwnerID), profile.Clone(), gocache.DefaultExpiration)
	return nil
}

func (s *CachedStorage) DeleteProfile(ctx context.Context, ownerID string) error {
	s.cache.Delete(profileKey(ownerID))
	return s.backend.DeleteProfile(ctx, ownerID)
}

func (s *CachedStorage) GetBlocklist(ctx context.Context, guildID string) (*models.Blocklist, error) {
	if x, found := s.cache.Get(blocklistKey(guildID)); found {
		return copyBlocklist(x.(*models.Blocklist)), nil
	}

	blocklist, err := s.backend.GetBlocklist(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(blocklistKey(guildID), copyBlocklist(blocklist), gocache.DefaultExpiration)
	return blocklist, nil
}

func copyBlocklist(b *models.Blocklist) *models.Blocklist {
	cp := *b
	cp.Channels = append([]string{}, b.Channels...)
	cp.Categories = append([]string{}, b.Categories...)
	return &cp
}

func (s *CachedStorage) SaveBlocklist(ctx context.Context, blocklist *models.Blocklist) error {
	if err := s.backend.SaveBlocklist(ctx, blocklist); err != nil {
		s.cache.Delete(blocklistKey(blocklist.GuildID))
		return err
	}
	s.cache.Set(blocklistKey(blocklist.GuildID), copyBlocklist(blocklist), gocache.DefaultExpiration)
	return nil
}

func (s *CachedStorage) Close() error {
	return s.backend.Close()
}
