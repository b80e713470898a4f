package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/pantrypal/backend/internal/types"
)

// historyKey mirrors the key the browser-local variant has always used, so
// a Redis-backed deployment stays compatible with exported histories.
const historyKey = "pantrypal_history"

// RedisStore keeps the whole history as a single JSON array under one key,
// the key-value analog of the file store.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore creates a Redis-backed store and verifies connectivity.
func NewRedisStore(ctx context.Context, client *redis.Client, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisStore{client: client, key: historyKey, logger: logger}, nil
}

func (s *RedisStore) Load(ctx context.Context) ([]types.Entry, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return []types.Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read history from Redis: %w", err)
	}

	var entries []types.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("history key is malformed, treating as empty",
			zap.String("key", s.key), zap.Error(err))
		return []types.Entry{}, nil
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, nil
}

func (s *RedisStore) Save(ctx context.Context, recipe types.Recipe, imageURL string, userIngs []string, subs map[string][]string) (types.Entry, error) {
	entries, err := s.Load(ctx)
	if err != nil {
		return types.Entry{}, err
	}

	entry := newEntry(recipe, imageURL, userIngs, subs)
	entries = append(entries, entry)

	if err := s.write(ctx, entries); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	entries, err := s.Load(ctx)
	if err != nil {
		return err
	}

	filtered := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return s.write(ctx, filtered)
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history in Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) write(ctx context.Context, entries []types.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write history to Redis: %w", err)
	}
	return nil
}
