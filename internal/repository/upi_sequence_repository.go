package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/ecde-votmis-api/pkg/cache"
)

// UPISequenceRepository reserves sequence numbers from a Postgres counter table.
// Each call increments the counter for the prefix atomically, so concurrent
// callers never receive the same value.
type UPISequenceRepository struct {
	db *sqlx.DB
}

// NewUPISequenceRepository constructs a UPISequenceRepository.
func NewUPISequenceRepository(db *sqlx.DB) *UPISequenceRepository {
	return &UPISequenceRepository{db: db}
}

// Next reserves and returns the next sequence number for prefix, starting at 1.
func (r *UPISequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	const query = `INSERT INTO upi_sequences (prefix, last_value, updated_at) VALUES ($1, 1, $2)
ON CONFLICT (prefix) DO UPDATE SET last_value = upi_sequences.last_value + 1, updated_at = EXCLUDED.updated_at
RETURNING last_value`
	var value int64
	if err := r.db.GetContext(ctx, &value, query, prefix, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("reserve upi sequence %s: %w", prefix, err)
	}
	return value, nil
}

type redisCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisSequenceRepository reserves sequence numbers with Redis INCR.
type RedisSequenceRepository struct {
	client redisCounter
}

// NewRedisSequenceRepository constructs a RedisSequenceRepository.
func NewRedisSequenceRepository(client *redis.Client) *RedisSequenceRepository {
	return &RedisSequenceRepository{client: client}
}

// Next reserves and returns the next sequence number for prefix, starting at 1.
func (r *RedisSequenceRepository) Next(ctx context.Context, prefix string) (int64, error) {
	key := cache.Key("upi", "seq", prefix)
	value, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return value, nil
}
