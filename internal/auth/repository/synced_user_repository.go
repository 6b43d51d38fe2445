package repository

import (
	"context"
	"encoding/json"
	"fmt"

	authdomain "gearhead/internal/auth/domain"
	"gearhead/pkg/kvstore"
)

const syncedUserKey = "synced_user"

type SyncedUserRepository interface {
	// Get returns nil, nil when no record is stored.
	Get(ctx context.Context) (*authdomain.SyncedUser, error)
	Save(ctx context.Context, user *authdomain.SyncedUser) error
	Remove(ctx context.Context) error
}

type syncedUserRepository struct {
	store kvstore.Store
}

func NewSyncedUserRepository(store kvstore.Store) SyncedUserRepository {
	return &syncedUserRepository{
		store: store,
	}
}

func (r *syncedUserRepository) Get(ctx context.Context) (*authdomain.SyncedUser, error) {
	raw, err := r.store.Get(ctx, syncedUserKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var user authdomain.SyncedUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode synced user: %w", err)
	}
	return &user, nil
}

func (r *syncedUserRepository) Save(ctx context.Context, user *authdomain.SyncedUser) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, syncedUserKey, raw)
}

func (r *syncedUserRepository) Remove(ctx context.Context) error {
	return r.store.Delete(ctx, syncedUserKey)
}
