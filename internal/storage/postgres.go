package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/pixelbot/pixel-bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM profiles WHERE owner_id = $1`, ownerID).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.NewProfile(ownerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile: %w", err)
	}

	var profile models.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", ownerID, err)
	}
	profile.OwnerID = ownerID
	profile.Normalize()
	return &profile, nil
}

func (s *PostgresStorage) SaveProfile(ctx context.Context, profile *models.Profile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("error encoding profile %s: %w", profile.OwnerID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (owner_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE SET data = $2, updated_at = NOW()`,
		profile.OwnerID, raw)
	if err != nil {
		return fmt.Errorf("error saving profile %s: %w", profile.OwnerID, err)
	}
	return nil
}

func (s *PostgresStorage) DeleteProfile(ctx context.Context, ownerID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM profiles WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("error deleting profile %s: %w", ownerID, err)
	}
	return nil
}

func (s *PostgresStorage) GetBlocklist(ctx context.Context, guildID string) (*models.Blocklist, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM blocklists WHERE guild_id = $1`, guildID).Scan(&raw)
	if err == sql.ErrNoRows {
		return models.NewBlocklist(guildID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying blocklist: %w", err)
	}

	var blocklist models.Blocklist
	if err := json.Unmarshal(raw, &blocklist); err != nil {
		return nil, fmt.Errorf("error decoding blocklist %s: %w", guildID, err)
	}
	blocklist.GuildID = guildID
	return &blocklist, nil
}

func (s *PostgresStorage) SaveBlocklist(ctx context.Context, blocklist *models.Blocklist) error {
	raw, err := json.Marshal(blocklist)
	if err != nil {
		return fmt.Errorf("error encoding blocklist %s: %w", blocklist.GuildID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blocklists (guild_id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (guild_id) DO UPDATE SET data = $2, updated_at = NOW()`,
		blocklist.GuildID, raw)
	if err != nil {
		return fmt.Errorf("error saving blocklist %s: %w", blocklist.GuildID, err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
