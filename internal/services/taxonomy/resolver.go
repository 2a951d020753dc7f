package taxonomy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Store interface {
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type Cache interface {
	GetMany(ctx context.Context, ids []string) (map[string]string, error)
	SetMany(ctx context.Context, names map[string]string) error
}

// Resolver maps taxonomy ids to names, reading through the cache. Cache
// failures degrade to store reads.
type Resolver struct {
	store  Store
	cache  Cache
	logger *zap.Logger
}

func NewResolver(store Store, cache Cache, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{store: store, cache: cache, logger: logger}
}

func (r *Resolver) Names(ctx context.Context, ids []string) (map[string]string, error) {
	ids = dedupe(ids)
	out := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	missing := ids
	if r.cache != nil {
		cached, err := r.cache.GetMany(ctx, ids)
		if err != nil {
			r.logger.Warn("taxonomy cache read failed", zap.Error(err))
		}
		missing = missing[:0:0]
		for _, id := range ids {
			if name, ok := cached[id]; ok {
				out[id] = name
				continue
			}
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 || r.store == nil {
		return out, nil
	}

	loaded, err := r.store.NamesByIDs(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("resolve taxonomy names: %w", err)
	}
	for id, name := range loaded {
		out[id] = name
	}
	if r.cache != nil && len(loaded) > 0 {
		if err := r.cache.SetMany(ctx, loaded); err != nil {
			r.logger.Warn("taxonomy cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
