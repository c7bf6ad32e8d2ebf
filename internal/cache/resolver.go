package cache

import (
	"context"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Resolver maps a mod id and display name to a slug.
type Resolver interface {
	Resolve(ctx context.Context, id, name string) (string, bool)
}

// CachedResolver answers from the store first and records every slug the
// wrapped resolver finds. Misses are never cached.
type CachedResolver struct {
	store *Store
	next  Resolver
}

// Wrap puts the store in front of next.
func Wrap(store *Store, next Resolver) *CachedResolver {
	return &CachedResolver{store: store, next: next}
}

func (r *CachedResolver) Resolve(ctx context.Context, id, name string) (string, bool) {
	logger := logutil.GetLogger(ctx).With(zap.String("mod_id", id))

	slug, ok, err := r.store.Lookup(ctx, id)
	if err != nil {
		logger.Warn("read slug cache failed", zap.Error(err))
	}
	if ok {
		logger.Debug("slug served from cache", zap.String("slug", slug))
		return slug, true
	}

	slug, ok = r.next.Resolve(ctx, id, name)
	if !ok {
		return "", false
	}
	if err := r.store.Upsert(ctx, id, slug); err != nil {
		logger.Warn("write slug cache failed", zap.Error(err))
	}
	return slug, true
}
