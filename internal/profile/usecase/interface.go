package usecase

import (
	"context"

	profiledomain "gearhead/internal/profile/domain"
	profiledto "gearhead/internal/profile/dto"
	"gearhead/pkg/gateway"
)

// ProfileUsecase serves the signed-in user's profile from a two-tier cache
// (memory, then the persisted store) and keeps it in step with the backend.
type ProfileUsecase interface {
	// Current never blocks on the network. A stale or missing entry starts a background fetch.
	Current(ctx context.Context) profiledomain.Snapshot
	// Load is Current, except that with nothing cached it waits for the first fetch.
	Load(ctx context.Context) (profiledomain.Snapshot, error)
	// Refresh always fetches and waits. On failure the last good profile is kept.
	Refresh(ctx context.Context) (profiledomain.Snapshot, error)
	UpdateNameBio(ctx context.Context, req *profiledto.UpdateProfileRequest) (profiledomain.Snapshot, error)
	UpdateAvatar(ctx context.Context, upload *profiledto.ImageUpload) (profiledomain.Snapshot, error)
	UpdateBanner(ctx context.Context, upload *profiledto.ImageUpload) (profiledomain.Snapshot, error)
	// Revalidate schedules a background fetch regardless of freshness.
	Revalidate(ctx context.Context)
	// Invalidate drops both tiers.
	Invalidate(ctx context.Context) error
	// Wait blocks until background fetches started so far have finished.
	Wait()
}

type API interface {
	Get(ctx context.Context, path string, out interface{}, opts ...gateway.Option) error
	Patch(ctx context.Context, path string, body, out interface{}, opts ...gateway.Option) error
	PostMultipart(ctx context.Context, path string, form *gateway.Form, out interface{}, opts ...gateway.Option) error
}
