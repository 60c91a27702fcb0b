package storage

import (
	"context"
	"sync"

	"github.com/pixelbot/pixel-bot/internal/models"
)

type MemoryStorage struct {
	mu         sync.RWMutex
	profiles   map[string]*models.Profile
	blocklists map[string]*models.Blocklist
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		profiles:   make(map[string]*models.Profile),
		blocklists: make(map[string]*models.Blocklist),
	}
}

func (s *MemoryStorage) GetProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, exists := s.profiles[ownerID]; exists {
		return p.Clone(), nil
	}
	return models.NewProfile(ownerID), nil
}

func (s *MemoryStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.OwnerID] = profile.Clone()
	return nil
}

func (s *MemoryStorage) DeleteProfile(ctx context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.profiles, ownerID)
	return nil
}

func (s *MemoryStorage) GetBlocklist(ctx context.Context, guildID string) (*models.Blocklist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, exists := s.blocklists[guildID]; exists {
		cp := *b
		cp.Channels = append([]string{}, b.Channels...)
		cp.Categories = append([]string{}, b.Categories...)
		return &cp, nil
	}
	return models.NewBlocklist(guildID), nil
}

func (s *MemoryStorage) SaveBlocklist(ctx context.Context, blocklist *models.Blocklist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *blocklist
	cp.Channels = append([]string{}, blocklist.Channels...)
	cp.Categories = append([]string{}, blocklist.Categories...)
	s.blocklists[blocklist.GuildID] = &cp
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}
