package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/config"
	"github.com/meur/moonshade/internal/events"
)

const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backend is everything the server needs from a storage engine
type Backend interface {
	events.Persister
	events.ShareRepository
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*Store)(nil)
	_ Backend = (*RedisStore)(nil)
	_ Backend = (*Memory)(nil)
)

// Open builds the backend selected by cfg.StorageBackend
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	logger := log.With().Str("backend", cfg.StorageBackend).Str("key", cfg.StateKey).Logger()

	switch cfg.StorageBackend {
	case BackendSQLite, "":
		logger.Info().Str("path", cfg.DBPath).Msg("opening storage")
		store, err := New(cfg.DBPath, cfg.StateKey)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendRedis:
		logger.Info().Str("addr", cfg.RedisAddr).Msg("opening storage")
		store, err := NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.StateKey)
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on restart")
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
