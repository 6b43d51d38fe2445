package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	authrepo "gearhead/internal/auth/repository"
	profiledomain "gearhead/internal/profile/domain"
	profiledto "gearhead/internal/profile/dto"
	"gearhead/internal/profile/repository"
	"gearhead/pkg/gateway"
)

// DefaultTTL is the freshness window of a cached profile.
const DefaultTTL = 5 * time.Minute

var (
	// ErrIdentityMissing is returned by mutations when no synced user is stored.
	ErrIdentityMissing = errors.New("no signed-in user")
	errInvalidated     = errors.New("profile cache was invalidated during the fetch")
)

// syncMode selects which synced user fields follow a committed profile.
type syncMode int

const (
	syncNone syncMode = iota
	syncAvatar
	syncNameAndAvatar
)

type Option func(*profileUsecase)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(u *profileUsecase) {
		u.now = now
	}
}

type profileUsecase struct {
	api   API
	users authrepo.SyncedUserRepository
	cache repository.CacheRepository
	ttl   time.Duration
	now   func() time.Time

	// writeMu serializes commits and invalidation across both tiers.
	writeMu sync.Mutex

	mu         sync.Mutex
	memory     *profiledomain.CacheEntry
	generation uint64
	loadErr    error
	revalErr   error
	refreshing int
	bgRunning  bool
	bgAgain    bool

	group singleflight.Group
	wg    sync.WaitGroup
}

func NewProfileUsecase(api API, users authrepo.SyncedUserRepository, cache repository.CacheRepository, ttl time.Duration, opts ...Option) ProfileUsecase {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	u := &profileUsecase{
		api:   api,
		users: users,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *profileUsecase) Current(ctx context.Context) profiledomain.Snapshot {
	id, err := u.userID(ctx)
	if err != nil {
		return u.identitySnapshot(err)
	}
	return u.read(ctx, id)
}

func (u *profileUsecase) Load(ctx context.Context) (profiledomain.Snapshot, error) {
	id, err := u.userID(ctx)
	if err != nil {
		return u.identitySnapshot(err), err
	}
	if entry := u.entry(ctx, id); entry != nil {
		return u.read(ctx, id), nil
	}

	type result struct {
		entry *profiledomain.CacheEntry
		err   error
	}
	done := make(chan result, 1)
	bgCtx := context.WithoutCancel(ctx)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		entry, err := u.fetchShared(bgCtx, id)
		done <- result{entry: entry, err: err}
	}()

	select {
	case <-ctx.Done():
		return u.snapshot(profiledomain.StateColdStart, nil, nil), ctx.Err()
	case res := <-done:
		if res.err != nil {
			return u.snapshot(profiledomain.StateErrored, nil, res.err), res.err
		}
		return u.snapshot(profiledomain.StateFresh, res.entry, nil), nil
	}
}

func (u *profileUsecase) Refresh(ctx context.Context) (profiledomain.Snapshot, error) {
	id, err := u.userID(ctx)
	if err != nil {
		return u.identitySnapshot(err), err
	}

	u.mu.Lock()
	u.refreshing++
	u.mu.Unlock()

	entry, err := u.fetch(ctx, id, syncNameAndAvatar)

	u.mu.Lock()
	u.refreshing--
	u.mu.Unlock()

	if err != nil {
		log.Printf("[Profile] Refresh failed: %v", err)
		return u.peek(ctx, id, err), err
	}
	return u.snapshot(profiledomain.StateFresh, entry, nil), nil
}

// UpdateNameBio waits for a full refresh after the PATCH so the cache holds exactly
// what the backend stored.
func (u *profileUsecase) UpdateNameBio(ctx context.Context, req *profiledto.UpdateProfileRequest) (profiledomain.Snapshot, error) {
	id, err := u.userID(ctx)
	if err != nil {
		return u.identitySnapshot(err), err
	}
	if err := req.Validate(); err != nil {
		return u.peek(ctx, id, err), err
	}

	if err := u.api.Patch(ctx, "/users/"+id, req, nil); err != nil {
		return u.peek(ctx, id, err), err
	}
	return u.Refresh(ctx)
}

func (u *profileUsecase) UpdateAvatar(ctx context.Context, upload *profiledto.ImageUpload) (profiledomain.Snapshot, error) {
	return u.uploadImage(ctx, upload, "/users/update-picture/", syncAvatar)
}

func (u *profileUsecase) UpdateBanner(ctx context.Context, upload *profiledto.ImageUpload) (profiledomain.Snapshot, error) {
	return u.uploadImage(ctx, upload, "/users/update-banner/", syncNone)
}

func (u *profileUsecase) Revalidate(ctx context.Context) {
	id, err := u.userID(ctx)
	if err != nil {
		log.Printf("[Profile] Skipping revalidation: %v", err)
		return
	}
	u.startBackground(ctx, id, true)
}

func (u *profileUsecase) Invalidate(ctx context.Context) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	u.mu.Lock()
	u.generation++
	u.memory = nil
	u.loadErr = nil
	u.revalErr = nil
	u.mu.Unlock()

	if err := u.cache.Remove(ctx); err != nil {
		return fmt.Errorf("remove cached profile: %w", err)
	}
	return nil
}

func (u *profileUsecase) Wait() {
	u.wg.Wait()
}

// uploadImage commits the returned profile to both tiers at once, then revalidates.
func (u *profileUsecase) uploadImage(ctx context.Context, upload *profiledto.ImageUpload, pathPrefix string, mode syncMode) (profiledomain.Snapshot, error) {
	id, err := u.userID(ctx)
	if err != nil {
		return u.identitySnapshot(err), err
	}
	if err := upload.Validate(); err != nil {
		return u.peek(ctx, id, err), err
	}

	gen := u.currentGeneration()
	form := &gateway.Form{
		Files: []gateway.File{{
			FieldName:   "file",
			FileName:    upload.FileName,
			ContentType: upload.ContentType,
			Content:     upload.Content,
		}},
	}

	var p profiledomain.Profile
	if err := u.api.PostMultipart(ctx, pathPrefix+id, form, &p); err != nil {
		return u.peek(ctx, id, err), err
	}

	var committed *profiledomain.CacheEntry
	if p.ID == id {
		entry := profiledomain.NewCacheEntry(&p, u.now())
		if err := u.commit(ctx, id, gen, entry, mode); err == nil {
			committed = entry
		}
	} else {
		log.Printf("[Profile] Upload to %s%s returned no profile", pathPrefix, id)
	}

	u.startBackground(ctx, id, true)

	if committed != nil {
		return u.snapshot(profiledomain.StateFresh, committed, nil), nil
	}
	return u.peek(ctx, id, nil), nil
}

// read is the non-blocking lookup behind Current.
func (u *profileUsecase) read(ctx context.Context, id string) profiledomain.Snapshot {
	entry := u.entry(ctx, id)
	if entry == nil {
		u.mu.Lock()
		loadErr := u.loadErr
		u.mu.Unlock()

		if loadErr != nil {
			return u.snapshot(profiledomain.StateErrored, nil, loadErr)
		}
		u.startBackground(ctx, id, false)
		return u.snapshot(profiledomain.StateColdStart, nil, nil)
	}

	if entry.Stale(u.now(), u.ttl) {
		u.startBackground(ctx, id, false)
		return u.snapshot(profiledomain.StateStale, entry, nil)
	}
	return u.snapshot(profiledomain.StateFresh, entry, nil)
}

// peek describes the cache without scheduling anything.
func (u *profileUsecase) peek(ctx context.Context, id string, err error) profiledomain.Snapshot {
	entry := u.entry(ctx, id)
	if entry == nil {
		state := profiledomain.StateColdStart
		u.mu.Lock()
		if u.loadErr != nil {
			state = profiledomain.StateErrored
			if err == nil {
				err = u.loadErr
			}
		}
		u.mu.Unlock()
		return u.snapshot(state, nil, err)
	}

	state := profiledomain.StateFresh
	if entry.Stale(u.now(), u.ttl) {
		state = profiledomain.StateStale
	}
	return u.snapshot(state, entry, err)
}

// entry returns the memory tier, else the persisted tier (copied into memory), for id.
func (u *profileUsecase) entry(ctx context.Context, id string) *profiledomain.CacheEntry {
	u.mu.Lock()
	mem := u.memory
	u.mu.Unlock()
	if mem.Belongs(id) {
		return mem
	}

	stored, err := u.cache.Get(ctx)
	if err != nil {
		log.Printf("[Profile] Failed to read cached profile: %v", err)
		return nil
	}
	if !stored.Belongs(id) {
		return nil
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.memory.Belongs(id) {
		return u.memory
	}
	u.memory = stored
	return stored
}

func (u *profileUsecase) startBackground(ctx context.Context, id string, force bool) {
	u.mu.Lock()
	if u.bgRunning {
		u.bgAgain = u.bgAgain || force
		u.mu.Unlock()
		return
	}
	u.bgRunning = true
	u.wg.Add(1)
	u.mu.Unlock()

	// Background fetches outlive the caller; the HTTP client timeout bounds them.
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		defer u.wg.Done()
		for {
			var err error
			if force {
				// A forced fetch follows a mutation, so a GET already in flight may predate it.
				_, err = u.fetch(bgCtx, id, syncNameAndAvatar)
			} else {
				_, err = u.fetchShared(bgCtx, id)
			}
			if errors.Is(err, errInvalidated) {
				err = nil
			}
			if err != nil {
				log.Printf("[Profile] Background revalidation failed: %v", err)
			}

			u.mu.Lock()
			u.revalErr = err
			again := u.bgAgain
			u.bgAgain = false
			if !again {
				u.bgRunning = false
			}
			u.mu.Unlock()

			if !again {
				return
			}
			// bgAgain is only set by forced callers.
			force = true
		}
	}()
}

// fetchShared coalesces concurrent non-explicit fetches for the same user.
func (u *profileUsecase) fetchShared(ctx context.Context, id string) (*profiledomain.CacheEntry, error) {
	v, err, _ := u.group.Do(id, func() (interface{}, error) {
		return u.fetch(ctx, id, syncNameAndAvatar)
	})
	if err != nil {
		return nil, err
	}
	return v.(*profiledomain.CacheEntry), nil
}

func (u *profileUsecase) fetch(ctx context.Context, id string, mode syncMode) (*profiledomain.CacheEntry, error) {
	gen := u.currentGeneration()

	var p profiledomain.Profile
	if err := u.api.Get(ctx, "/users/"+id, &p); err != nil {
		u.recordLoadFailure(id, err)
		return nil, err
	}
	if p.ID != id {
		err := fmt.Errorf("profile response is for user %q, expected %q", p.ID, id)
		u.recordLoadFailure(id, err)
		return nil, err
	}

	entry := profiledomain.NewCacheEntry(&p, u.now())
	if err := u.commit(ctx, id, gen, entry, mode); err != nil {
		return nil, err
	}
	return entry, nil
}

// commit writes memory, then the persisted tier, then the synced user.
func (u *profileUsecase) commit(ctx context.Context, id string, gen uint64, entry *profiledomain.CacheEntry, mode syncMode) error {
	u.writeMu.Lock()
	defer u.writeMu.Unlock()

	u.mu.Lock()
	if gen != u.generation {
		u.mu.Unlock()
		return errInvalidated
	}
	u.memory = entry
	u.loadErr = nil
	u.mu.Unlock()

	if err := u.cache.Save(ctx, entry); err != nil {
		log.Printf("[Profile] Failed to persist profile: %v", err)
	}
	u.syncUser(ctx, id, entry.Profile, mode)
	return nil
}

// syncUser keeps the synced user's name and avatar in line with the profile.
func (u *profileUsecase) syncUser(ctx context.Context, id string, p *profiledomain.Profile, mode syncMode) {
	if mode == syncNone {
		return
	}
	user, err := u.users.Get(ctx)
	if err != nil || user == nil || user.ID != id {
		return
	}

	updated := *user
	if mode == syncNameAndAvatar {
		updated.Name = p.Name
	}
	if p.AvatarURL != nil {
		updated.AvatarURL = p.AvatarURL
	}
	if err := u.users.Save(ctx, &updated); err != nil {
		log.Printf("[Profile] Failed to update synced user: %v", err)
	}
}

func (u *profileUsecase) recordLoadFailure(id string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.memory.Belongs(id) {
		u.loadErr = err
	}
}

func (u *profileUsecase) currentGeneration() uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.generation
}

func (u *profileUsecase) userID(ctx context.Context) (string, error) {
	user, err := u.users.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("read synced user: %w", err)
	}
	if user == nil || user.ID == "" {
		return "", ErrIdentityMissing
	}
	return user.ID, nil
}

func (u *profileUsecase) identitySnapshot(err error) profiledomain.Snapshot {
	if errors.Is(err, ErrIdentityMissing) {
		return profiledomain.Snapshot{State: profiledomain.StateUninitialized, Err: err}
	}
	return profiledomain.Snapshot{State: profiledomain.StateErrored, Err: err}
}

func (u *profileUsecase) snapshot(state profiledomain.State, entry *profiledomain.CacheEntry, err error) profiledomain.Snapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.refreshing > 0 {
		state = profiledomain.StateRefreshing
	}
	s := profiledomain.Snapshot{
		State:           state,
		Err:             err,
		RevalidationErr: u.revalErr,
	}
	if entry != nil {
		p := *entry.Profile
		s.Profile = &p
		s.CapturedAt = entry.CapturedAt()
	}
	return s
}
