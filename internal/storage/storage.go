package storage

import (
	"context"

	"github.com/pixelbot/pixel-bot/internal/models"
)

// Storage owns profile and blocklist persistence. GetProfile creates an
// empty profile implicitly on first access; callers always get a copy
// they can mutate and must write back with SaveProfile.
type Storage interface {
	GetProfile(ctx context.Context, ownerID string) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error
	DeleteProfile(ctx context.Context, ownerID string) error

	GetBlocklist(ctx context.Context, guildID string) (*models.Blocklist, error)
	SaveBlocklist(ctx context.Context, blocklist *models.Blocklist) error

	Close() error
}
