package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dumu-tech/pearl-street-teahouse/internal/core"
	"github.com/redis/go-redis/v9"
)

const (
	// QueueSnapshotKey is the key holding the cached production queue
	QueueSnapshotKey = "production:queue"
	// DefaultQueueTTL bounds snapshot staleness when no TTL is given
	DefaultQueueTTL = 15 * time.Second
)

// Repository implements QueueCache using Redis
type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Get retrieves the cached queue snapshot. A cache miss returns
// core.ErrNotFound so callers can fall through to the database.
func (r *Repository) Get(ctx context.Context) (*core.QueueSnapshot, error) {
	val, err := r.client.Get(ctx, QueueSnapshotKey).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("queue snapshot: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue snapshot: %w", err)
	}

	var snapshot core.QueueSnapshot
	if err := json.Unmarshal([]byte(val), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal queue snapshot: %w", err)
	}

	return &snapshot, nil
}

// Set stores the queue snapshot with a TTL
func (r *Repository) Set(ctx context.Context, snapshot *core.QueueSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal queue snapshot: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultQueueTTL
	}

	if err := r.client.Set(ctx, QueueSnapshotKey, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set queue snapshot: %w", err)
	}

	return nil
}

// Invalidate removes the cached snapshot so the next read rebuilds it
func (r *Repository) Invalidate(ctx context.Context) error {
	if err := r.client.Del(ctx, QueueSnapshotKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate queue snapshot: %w", err)
	}
	return nil
}
