package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/meur/moonshade/internal/events"
	"github.com/meur/moonshade/internal/models"
)

// ShareTTL bounds how long a short share link stays resolvable in Redis
const ShareTTL = 30 * 24 * time.Hour

// RedisStore keeps the document as a single string key, mirroring the
// browser's local storage record.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, addr, password string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage.NewRedis: ping: %w", err)
	}
	if key == "" {
		key = DefaultKey
	}

	return &RedisStore{client: client, key: key}, nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("storage.RedisStore.Close: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// ShareKey returns the Redis key holding a share token
func ShareKey(code string) string {
	return "share:" + code
}

func (r *RedisStore) Load(ctx context.Context) (*models.Document, error) {
	body, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.RedisStore.Load: %w", err)
	}

	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("storage.RedisStore.Load: decode: %w", err)
	}
	return &doc, nil
}

func (r *RedisStore) Save(ctx context.Context, doc *models.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage.RedisStore.Save: encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key, body, 0).Err(); err != nil {
		return fmt.Errorf("storage.RedisStore.Save: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("storage.RedisStore.Clear: %w", err)
	}
	return nil
}

func (r *RedisStore) PutShare(ctx context.Context, code, token string) error {
	ok, err := r.client.SetNX(ctx, ShareKey(code), token, ShareTTL).Result()
	if err != nil {
		return fmt.Errorf("storage.RedisStore.PutShare: %w", err)
	}
	if !ok {
		return fmt.Errorf("storage.RedisStore.PutShare %q: %w", code, events.ErrShareCodeTaken)
	}
	return nil
}

func (r *RedisStore) GetShare(ctx context.Context, code string) (string, error) {
	token, err := r.client.Get(ctx, ShareKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage.RedisStore.GetShare: %w", err)
	}
	return token, nil
}
