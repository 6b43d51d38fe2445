// Package identity signs principals in and out of Firebase Authentication and hands
// out fresh bearer credentials for them.
package identity

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"gearhead/pkg/kvstore"
)

type Options struct {
	APIKey string
	// ToolkitEndpoint overrides the Identity Toolkit base path, e.g. for an emulator.
	ToolkitEndpoint string
	SecureTokenURL  string
	// HTTPClient is used for token refresh calls.
	HTTPClient *http.Client
}

// Provider is the Firebase-backed identity provider. It is safe for concurrent use.
type Provider struct {
	toolkit    *identitytoolkit.RelyingpartyService
	oauthCfg   *oauth2.Config
	httpClient *http.Client
	store      kvstore.Store

	mu      sync.Mutex
	session *Session
	source  oauth2.TokenSource
	now     func() time.Time
}

func NewProvider(ctx context.Context, opts Options, store kvstore.Store) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("FIREBASE_API_KEY is required")
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.ToolkitEndpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.ToolkitEndpoint))
	}
	svc, err := identitytoolkit.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create identity toolkit service: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	tokenURL := opts.SecureTokenURL
	if tokenURL == "" {
		tokenURL = "https://securetoken.googleapis.com/v1/token"
	}

	return &Provider{
		toolkit: svc.Relyingparty,
		oauthCfg: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL + "?key=" + opts.APIKey,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		store:      store,
		now:        time.Now,
	}, nil
}

// Restore reloads the persisted session, if any. It returns the restored principal or nil.
func (p *Provider) Restore(ctx context.Context) (*Principal, error) {
	s, err := p.loadSession(ctx)
	if err != nil || s == nil {
		return nil, err
	}
	p.activate(s)
	principal := s.Principal
	return &principal, nil
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*Principal, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	s := newSession(resp.LocalId, resp.Email, resp.DisplayName, resp.IdToken, resp.RefreshToken, resp.ExpiresIn, p.now())
	return p.start(ctx, s)
}

func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*Principal, error) {
	resp, err := p.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       strings.TrimSpace(email),
		Password:    password,
		DisplayName: strings.TrimSpace(displayName),
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	s := newSession(resp.LocalId, resp.Email, resp.DisplayName, resp.IdToken, resp.RefreshToken, resp.ExpiresIn, p.now())
	return p.start(ctx, s)
}

// SignInWithCustomToken exchanges a custom token minted by the Admin SDK.
func (p *Provider) SignInWithCustomToken(ctx context.Context, token string) (*Principal, error) {
	resp, err := p.toolkit.VerifyCustomToken(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyCustomTokenRequest{
		Token:             token,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}

	s := newSession("", "", "", resp.IdToken, resp.RefreshToken, resp.ExpiresIn, p.now())
	if s.UID == "" {
		return nil, fmt.Errorf("custom token exchange returned an id token without a uid")
	}
	return p.start(ctx, s)
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.toolkit.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType: "PASSWORD_RESET",
		Email:       strings.TrimSpace(email),
	}).Context(ctx).Do()
	if err != nil {
		return mapError(err)
	}
	return nil
}

// CurrentPrincipal returns the signed-in principal or nil.
func (p *Provider) CurrentPrincipal() *Principal {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}
	principal := p.session.Principal
	return &principal
}

// IDToken returns a fresh bearer credential, refreshing it when it is about to expire.
// With nobody signed in it returns "" and no error.
func (p *Provider) IDToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	src := p.source
	p.mu.Unlock()

	if src == nil {
		return "", nil
	}
	t, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("refresh id token: %w", err)
	}
	return bearer(t), nil
}

// SignOut forgets the current session, in memory and on disk.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.session = nil
	p.source = nil
	p.mu.Unlock()

	if err := p.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("delete persisted session: %w", err)
	}
	log.Println("[Identity] Signed out")
	return nil
}

func (p *Provider) start(ctx context.Context, s *Session) (*Principal, error) {
	p.activate(s)
	if err := p.saveSession(ctx, s); err != nil {
		log.Printf("[Identity] Failed to persist session: %v", err)
	}
	log.Printf("[Identity] Signed in as %s", s.UID)
	principal := s.Principal
	return &principal, nil
}

func (p *Provider) activate(s *Session) {
	token := &oauth2.Token{
		AccessToken:  s.IDToken,
		RefreshToken: s.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       s.Expiry,
	}

	refreshCtx := context.WithValue(context.Background(), oauth2.HTTPClient, p.httpClient)
	src := &notifyTokenSource{
		src:     p.oauthCfg.TokenSource(refreshCtx, token),
		current: token,
		callback: func(t *oauth2.Token) error {
			return p.onRefresh(s.UID, t)
		},
	}

	p.mu.Lock()
	p.session = s
	p.source = src
	p.mu.Unlock()
}

func (p *Provider) onRefresh(uid string, t *oauth2.Token) error {
	p.mu.Lock()
	if p.session == nil || p.session.UID != uid {
		p.mu.Unlock()
		return nil
	}
	updated := *p.session
	updated.IDToken = bearer(t)
	if t.RefreshToken != "" {
		updated.RefreshToken = t.RefreshToken
	}
	updated.Expiry = t.Expiry
	p.session = &updated
	p.mu.Unlock()

	log.Printf("[Identity] Refreshed id token for %s", uid)
	return p.saveSession(context.Background(), &updated)
}
