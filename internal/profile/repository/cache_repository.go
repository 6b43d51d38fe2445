package repository

import (
	"context"
	"encoding/json"
	"log"

	profiledomain "gearhead/internal/profile/domain"
	"gearhead/pkg/kvstore"
)

const profileCacheKey = "user_profile_cache"

// CacheRepository is the persisted tier of the profile cache.
type CacheRepository interface {
	// Get returns nil, nil when nothing usable is stored.
	Get(ctx context.Context) (*profiledomain.CacheEntry, error)
	Save(ctx context.Context, entry *profiledomain.CacheEntry) error
	Remove(ctx context.Context) error
}

type cacheRepository struct {
	store kvstore.Store
}

func NewCacheRepository(store kvstore.Store) CacheRepository {
	return &cacheRepository{
		store: store,
	}
}

func (r *cacheRepository) Get(ctx context.Context) (*profiledomain.CacheEntry, error) {
	raw, err := r.store.Get(ctx, profileCacheKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var entry profiledomain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry is a cache miss.
		log.Printf("[Profile] Ignoring unreadable cache entry: %v", err)
		return nil, nil
	}
	if entry.Profile == nil {
		return nil, nil
	}
	return &entry, nil
}

func (r *cacheRepository) Save(ctx context.Context, entry *profiledomain.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, profileCacheKey, raw)
}

func (r *cacheRepository) Remove(ctx context.Context) error {
	return r.store.Delete(ctx, profileCacheKey)
}
