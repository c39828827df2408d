package store

import (
	"context"
	"errors"
	"fmt"
	"github.com/PedroLeon917/cybdates/common/schedule"
	"github.com/redis/go-redis/v9"
	"time"
)

const DefaultRedisKey = "flights"

// RedisClient is the subset of *redis.Client used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisStore struct {
	rc  RedisClient
	key string
}

func NewRedisStore(rc RedisClient, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisStore{
		rc:  rc,
		key: key,
	}
}

func (s *RedisStore) Get(ctx context.Context) (schedule.Document, error) {
	data, err := s.rc.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return schedule.Document{}, ErrNotFound
		}

		return schedule.Document{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}

	var doc schedule.Document
	if err = json.Unmarshal(data, &doc); err != nil {
		return schedule.Document{}, fmt.Errorf("unmarshal stored document: %w", err)
	}

	return doc, nil
}

func (s *RedisStore) Put(ctx context.Context, doc schedule.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err = s.rc.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}

	return nil
}
