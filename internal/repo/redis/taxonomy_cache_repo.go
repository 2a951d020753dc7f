package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const taxonomyPrefix = "taxonomy:"

// TaxonomyCacheRepo caches taxonomy id -> display name pairs as plain string
// keys with a TTL.
type TaxonomyCacheRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewTaxonomyCacheRepo(client *goredis.Client, ttl time.Duration) *TaxonomyCacheRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TaxonomyCacheRepo{client: client, ttl: ttl}
}

// GetMany returns the cached names for ids; misses are absent from the map.
func (r *TaxonomyCacheRepo) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	if r.client == nil {
		return out, fmt.Errorf("redis client is nil")
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = taxonomyPrefix + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return out, fmt.Errorf("mget taxonomy names: %w", err)
	}
	for i, v := range values {
		if s, ok := v.(string); ok {
			out[ids[i]] = s
		}
	}
	return out, nil
}

func (r *TaxonomyCacheRepo) SetMany(ctx context.Context, names map[string]string) error {
	if len(names) == 0 {
		return nil
	}
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	pipe := r.client.Pipeline()
	for id, name := range names {
		pipe.Set(ctx, taxonomyPrefix+id, name, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache taxonomy names: %w", err)
	}
	return nil
}
