package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	authdomain "gearhead/internal/auth/domain"
	authdto "gearhead/internal/auth/dto"
	"gearhead/internal/auth/repository"
	"gearhead/pkg/gateway"
	"gearhead/pkg/validation"
)

var (
	// ErrSyncFailed marks a sign-in whose POST /users/sync call failed.
	ErrSyncFailed = errors.New("failed to sync with the server")
	// ErrBackendProvisioning marks a sign-up whose anonymous POST /users call failed.
	ErrBackendProvisioning = errors.New("failed to create the account on the server")
	ErrSessionInvalid      = errors.New("session is not provisioned on the server, signed out")
	ErrNotSignedIn         = errors.New("not signed in")
)

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	identity IdentityProvider
	api      API
	userRepo repository.SyncedUserRepository

	mu        sync.RWMutex
	onSignOut func(ctx context.Context)
}

func NewAuthUsecase(identity IdentityProvider, api API, userRepo repository.SyncedUserRepository) AuthUsecase {
	return &authUsecase{
		identity: identity,
		api:      api,
		userRepo: userRepo,
	}
}

func (u *authUsecase) SetSignOutCallback(callback func(ctx context.Context)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onSignOut = callback
}

func (u *authUsecase) Login(ctx context.Context, req *authdto.LoginRequest) (*authdomain.SyncedUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := u.identity.SignIn(ctx, req.Email, req.Password); err != nil {
		return nil, err
	}

	user, err := u.sync(ctx)
	if err != nil {
		u.abort(ctx)
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	log.Printf("[Auth] Logged in as %s", user.ID)
	return user, nil
}

func (u *authUsecase) Register(ctx context.Context, req *authdto.RegisterRequest) (*authdomain.SyncedUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := u.identity.SignUp(ctx, req.Email, req.Password, req.Name); err != nil {
		return nil, err
	}

	// The backend account is created before a session exists on its side.
	body := &authdto.CreateUserRequest{Name: req.Name, Email: req.Email}
	if err := u.api.Post(ctx, "/users", body, nil, gateway.SkipAuth()); err != nil {
		log.Printf("[Auth] Failed to create backend user: %v", err)
		u.abort(ctx)
		return nil, fmt.Errorf("%w: %w", ErrBackendProvisioning, err)
	}

	user, err := u.sync(ctx)
	if err != nil {
		u.abort(ctx)
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	log.Printf("[Auth] Registered %s", user.ID)
	return user, nil
}

func (u *authUsecase) LoginWithCustomToken(ctx context.Context, token string) (*authdomain.SyncedUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &validation.ValidationError{Errors: map[string]string{"token": "token is required"}}
	}

	principal, err := u.identity.SignInWithCustomToken(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := u.sync(ctx)
	if err != nil {
		u.abort(ctx)
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	log.Printf("[Auth] Logged in as %s with a custom token for %s", user.ID, principal.UID)
	return user, nil
}

func (u *authUsecase) ForgotPassword(ctx context.Context, req *authdto.ForgotPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return u.identity.SendPasswordReset(ctx, req.Email)
}

// Logout always removes the synced user, even if the identity sign-out fails.
func (u *authUsecase) Logout(ctx context.Context) error {
	removeErr := u.userRepo.Remove(ctx)
	if removeErr != nil {
		log.Printf("[Auth] Failed to remove synced user: %v", removeErr)
	}

	u.runSignOutCallback(ctx)

	if err := u.identity.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return removeErr
}

func (u *authUsecase) CurrentUser(ctx context.Context) (*authdomain.SyncedUser, error) {
	return u.userRepo.Get(ctx)
}

func (u *authUsecase) EnsureSession(ctx context.Context) (*authdomain.SyncedUser, error) {
	if u.identity.CurrentPrincipal() == nil {
		return nil, ErrNotSignedIn
	}

	user, err := u.userRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		log.Println("[Auth] Signed in without a synced user, terminating session")
		u.abort(ctx)
		return nil, ErrSessionInvalid
	}
	return user, nil
}

func (u *authUsecase) sync(ctx context.Context) (*authdomain.SyncedUser, error) {
	var user authdomain.SyncedUser
	if err := u.api.Post(ctx, "/users/sync", nil, &user); err != nil {
		log.Printf("[Auth] Sync failed: %v", err)
		return nil, err
	}
	if user.ID == "" {
		return nil, errors.New("sync response has no user id")
	}
	if err := u.userRepo.Save(ctx, &user); err != nil {
		return nil, fmt.Errorf("save synced user: %w", err)
	}
	return &user, nil
}

// abort ends the identity session after a failed provisioning step.
func (u *authUsecase) abort(ctx context.Context) {
	if err := u.userRepo.Remove(ctx); err != nil {
		log.Printf("[Auth] Failed to remove synced user: %v", err)
	}
	u.runSignOutCallback(ctx)
	if err := u.identity.SignOut(ctx); err != nil {
		log.Printf("[Auth] Failed to sign out: %v", err)
	}
}

func (u *authUsecase) runSignOutCallback(ctx context.Context) {
	u.mu.RLock()
	callback := u.onSignOut
	u.mu.RUnlock()

	if callback != nil {
		callback(ctx)
	}
}
