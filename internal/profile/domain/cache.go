package domain

import "time"

// CacheEntry is a profile snapshot plus the unix-millisecond time it was captured.
type CacheEntry struct {
	Profile   *Profile `json:"profile"`
	Timestamp int64    `json:"timestamp"`
}

func NewCacheEntry(p *Profile, capturedAt time.Time) *CacheEntry {
	return &CacheEntry{Profile: p, Timestamp: capturedAt.UnixMilli()}
}

func (e *CacheEntry) CapturedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Stale reports whether the entry is older than ttl at now.
func (e *CacheEntry) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CapturedAt()) > ttl
}

// Belongs reports whether the entry holds the profile of userID.
func (e *CacheEntry) Belongs(userID string) bool {
	return e != nil && e.Profile != nil && e.Profile.ID == userID
}

type State string

const (
	StateUninitialized State = "uninitialized"
	StateColdStart     State = "cold_start"
	StateFresh         State = "fresh"
	StateStale         State = "stale"
	StateRefreshing    State = "refreshing"
	StateErrored       State = "errored"
)

// Snapshot is the read-only view of the cache handed to callers.
type Snapshot struct {
	State      State
	Profile    *Profile
	CapturedAt time.Time
	// Err is the failure that left the cache without a profile, or of the last explicit call.
	Err error
	// RevalidationErr is the last background refresh failure. It never reaches callers as an error.
	RevalidationErr error
}
