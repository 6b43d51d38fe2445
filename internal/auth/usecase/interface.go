package usecase

import (
	"context"

	authdomain "gearhead/internal/auth/domain"
	authdto "gearhead/internal/auth/dto"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
)

type AuthUsecase interface {
	Login(ctx context.Context, req *authdto.LoginRequest) (*authdomain.SyncedUser, error)
	Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.SyncedUser, error)
	// LoginWithCustomToken signs in with an Admin SDK custom token, then syncs like Login.
	LoginWithCustomToken(ctx context.Context, token string) (*authdomain.SyncedUser, error)
	ForgotPassword(ctx context.Context, req *authdto.ForgotPasswordRequest) error
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*authdomain.SyncedUser, error)
	EnsureSession(ctx context.Context) (*authdomain.SyncedUser, error)
	// SetSignOutCallback registers a hook run on every sign-out, before the identity session ends.
	SetSignOutCallback(callback func(ctx context.Context))
}

// IdentityProvider is the part of identity.Provider the auth flows drive.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*identity.Principal, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identity.Principal, error)
	SignInWithCustomToken(ctx context.Context, token string) (*identity.Principal, error)
	SendPasswordReset(ctx context.Context, email string) error
	CurrentPrincipal() *identity.Principal
	SignOut(ctx context.Context) error
}

type API interface {
	Post(ctx context.Context, path string, body, out interface{}, opts ...gateway.Option) error
}
