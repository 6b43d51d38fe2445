package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdto "gearhead/internal/auth/dto"
	"gearhead/internal/auth/repository"
	"gearhead/internal/devserver"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
	"gearhead/pkg/kvstore"
	"gearhead/pkg/validation"
)

type fixture struct {
	dev      *devserver.Server
	provider *identity.Provider
	repo     repository.SyncedUserRepository
	uc       AuthUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dev := devserver.New("test-secret")
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	store := kvstore.NewMemoryStore()
	provider, err := identity.NewProvider(context.Background(), identity.Options{
		APIKey:          "test-key",
		ToolkitEndpoint: srv.URL + "/identitytoolkit/v3/relyingparty/",
		SecureTokenURL:  srv.URL + "/v1/token",
		HTTPClient:      srv.Client(),
	}, store)
	require.NoError(t, err)

	api := gateway.NewClient(srv.URL, provider, 5*time.Second)
	repo := repository.NewSyncedUserRepository(store)
	return &fixture{
		dev:      dev,
		provider: provider,
		repo:     repo,
		uc:       NewAuthUsecase(provider, api, repo),
	}
}

// backendRequests drops identity provider traffic.
func (f *fixture) backendRequests() []devserver.Request {
	var out []devserver.Request
	for _, r := range f.dev.Requests() {
		if strings.HasPrefix(r.Path, "/identitytoolkit/") || r.Path == "/v1/token" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func registerRequest() *authdto.RegisterRequest {
	return &authdto.RegisterRequest{
		Name:            "Jane",
		Email:           "a@b.com",
		Password:        "abcdef",
		ConfirmPassword: "abcdef",
		AcceptTerms:     true,
	}
}

func TestRegister_CreatesThenSyncs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, "a@b.com", user.Email)

	reqs := f.backendRequests()
	require.Len(t, reqs, 2)

	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/users", reqs[0].Path)
	assert.False(t, reqs[0].Authorized)
	assert.JSONEq(t, `{"name":"Jane","email":"a@b.com"}`, string(reqs[0].Body))

	assert.Equal(t, http.MethodPost, reqs[1].Method)
	assert.Equal(t, "/users/sync", reqs[1].Path)
	assert.True(t, reqs[1].Authorized)

	stored, err := f.repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestRegister_TrimsNameAndEmail(t *testing.T) {
	f := newFixture(t)

	req := registerRequest()
	req.Name = "  Jane  "
	req.Email = " a@b.com "
	_, err := f.uc.Register(context.Background(), req)
	require.NoError(t, err)

	var body authdto.CreateUserRequest
	require.NoError(t, json.Unmarshal(f.backendRequests()[0].Body, &body))
	assert.Equal(t, authdto.CreateUserRequest{Name: "Jane", Email: "a@b.com"}, body)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*authdto.RegisterRequest)
		field  string
		want   string
	}{
		{"missing name", func(r *authdto.RegisterRequest) { r.Name = "   " }, "name", "name is required"},
		{"short password", func(r *authdto.RegisterRequest) { r.Password, r.ConfirmPassword = "abc", "abc" }, "password", "password must be at least 6 characters long"},
		{"mismatch", func(r *authdto.RegisterRequest) { r.ConfirmPassword = "abcdeg" }, "confirmPassword", "passwords do not match"},
		{"terms", func(r *authdto.RegisterRequest) { r.AcceptTerms = false }, "acceptTerms", "you must accept the terms of use and privacy policy"},
		{"blank password", func(r *authdto.RegisterRequest) { r.Password = "      " }, "password", "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := registerRequest()
			tt.mutate(req)

			_, err := f.uc.Register(context.Background(), req)
			var verr *validation.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.want, verr.Field(tt.field))
			assert.Empty(t, f.dev.Requests())
		})
	}
}

func TestRegister_ProvisioningFailureSignsOut(t *testing.T) {
	f := newFixture(t)
	f.dev.Fail(http.MethodPost, "/users", http.StatusInternalServerError)

	_, err := f.uc.Register(context.Background(), registerRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBackendProvisioning)
	assert.ErrorIs(t, err, gateway.ErrBackend)
	assert.Nil(t, f.provider.CurrentPrincipal())
	assert.Zero(t, f.dev.Count(http.MethodPost, "/users/sync"))
}

func TestLogin_SyncFailureTerminatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, f.uc.Logout(ctx))

	f.dev.Fail(http.MethodPost, "/users/sync", http.StatusInternalServerError)

	_, err = f.uc.Login(ctx, &authdto.LoginRequest{Email: "a@b.com", Password: "abcdef"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyncFailed)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))

	assert.Nil(t, f.provider.CurrentPrincipal())
	stored, err := f.repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLogin_Succeeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NoError(t, f.uc.Logout(ctx))

	user, err := f.uc.Login(ctx, &authdto.LoginRequest{Email: "  a@b.com ", Password: "abcdef"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	current, err := f.uc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, current)
}

func TestLogin_IdentityErrorsSkipSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Login(ctx, &authdto.LoginRequest{Email: "a@b.com", Password: "abcdef"})
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	_, err = f.uc.Login(ctx, &authdto.LoginRequest{Email: "a@b.com"})
	var verr *validation.ValidationError
	assert.True(t, errors.As(err, &verr))

	assert.Empty(t, f.backendRequests())
}

func TestLogout_ClearsRecordAndRunsCallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	called := 0
	f.uc.SetSignOutCallback(func(context.Context) { called++ })

	_, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, f.uc.Logout(ctx))
	assert.Equal(t, 1, called)
	assert.Nil(t, f.provider.CurrentPrincipal())

	current, err := f.uc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, current)
}

func TestEnsureSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.EnsureSession(ctx)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	// Signed in with the identity provider, never synced.
	_, err = f.provider.SignUp(ctx, "ghost@example.com", "abcdef", "Ghost")
	require.NoError(t, err)

	_, err = f.uc.EnsureSession(ctx)
	assert.ErrorIs(t, err, ErrSessionInvalid)
	assert.Nil(t, f.provider.CurrentPrincipal())

	_, err = f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)
	user, err := f.uc.EnsureSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)
}

func TestForgotPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, f.uc.ForgotPassword(ctx, &authdto.ForgotPasswordRequest{Email: " a@b.com "}))
	assert.Equal(t, []string{"a@b.com"}, f.dev.PasswordResets())

	err = f.uc.ForgotPassword(ctx, &authdto.ForgotPasswordRequest{Email: "nope"})
	var verr *validation.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestLoginWithCustomToken_ResumesExistingUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered, err := f.uc.Register(ctx, registerRequest())
	require.NoError(t, err)
	uid := f.provider.CurrentPrincipal().UID
	require.NoError(t, f.uc.Logout(ctx))

	token, err := f.dev.CustomToken(uid)
	require.NoError(t, err)

	user, err := f.uc.LoginWithCustomToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, uid, f.provider.CurrentPrincipal().UID)

	stored, err := f.repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user, stored)
}

func TestLoginWithCustomToken_Rejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.LoginWithCustomToken(ctx, "   ")
	var verr *validation.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.uc.LoginWithCustomToken(ctx, "not-a-token")
	require.Error(t, err)
	assert.Nil(t, f.provider.CurrentPrincipal())
	assert.Zero(t, f.dev.Count(http.MethodPost, "/users/sync"))
}
