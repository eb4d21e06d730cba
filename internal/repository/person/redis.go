package personrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	domain "github.com/safeguardhq/safeguard/internal/domain/person"
	"github.com/safeguardhq/safeguard/internal/logger"
)

// RedisRepository persists the person records as one JSON document under a
// single Redis key. The single-document layout keeps saves a full,
// self-consistent replacement, matching the file backend's guarantees.
type RedisRepository struct {
	// client is the shared Redis connection.
	client *redis.Client
	// key is the Redis key holding the record set document.
	key string
}

// NewRedisRepository creates a repository backed by the provided Redis client.
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	return &RedisRepository{
		client: client,
		key:    key,
	}
}

// Load reads the record set from Redis.
// A missing key or undecodable value yields an empty record set.
func (r *RedisRepository) Load(ctx context.Context) (map[string]*domain.Person, error) {
	value, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]*domain.Person{}, nil
		}

		return nil, fmt.Errorf("get records key: %w", err)
	}

	records := map[string]*domain.Person{}
	if err = json.Unmarshal([]byte(value), &records); err != nil {
		logger.WarnKV(ctx, "Stored record set is corrupt, starting with an empty one",
			"key", r.key, "error", err)

		return map[string]*domain.Person{}, nil
	}

	return records, nil
}

// Save writes the full record set to Redis as one JSON document.
func (r *RedisRepository) Save(ctx context.Context, records map[string]*domain.Person) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err = r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set records key: %w", err)
	}

	return nil
}
