// Package redis stores rendered exports in Redis.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valislegal/valis/internal/export"
)

// Verify interface compliance
var _ export.Cache = (*ExportCache)(nil)

const exportPrefix = "valis:export:"

// DefaultTTL is used when the cache is created with a zero TTL.
const DefaultTTL = 24 * time.Hour

// ExportCache implements export.Cache using Redis. Entries expire after ttl.
type ExportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewExportCache creates a new Redis-backed export cache
func NewExportCache(client *redis.Client, ttl time.Duration) *ExportCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ExportCache{client: client, ttl: ttl}
}

// NewClient connects to addr and verifies the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// Get returns a cached artifact
func (c *ExportCache) Get(ctx context.Context, key string) (*export.Artifact, bool, error) {
	data, err := c.client.Get(ctx, exportPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get export: %w", err)
	}

	var artifact export.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal export: %w", err)
	}
	return &artifact, true, nil
}

// Set stores an artifact
func (c *ExportCache) Set(ctx context.Context, key string, artifact *export.Artifact) error {
	data, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal export: %w", err)
	}
	if err := c.client.Set(ctx, exportPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save export: %w", err)
	}
	return nil
}
