// Package app builds every service of the client from one configuration and owns their
// lifetimes.
package app

import (
	"context"
	"fmt"
	"log"
	"net/http"

	authRepo "gearhead/internal/auth/repository"
	authUsecase "gearhead/internal/auth/usecase"
	"gearhead/internal/devserver"
	eventUsecase "gearhead/internal/event/usecase"
	garagedomain "gearhead/internal/garage/domain"
	garageUsecase "gearhead/internal/garage/usecase"
	profileRepo "gearhead/internal/profile/repository"
	profileUsecase "gearhead/internal/profile/usecase"
	"gearhead/pkg/config"
	"gearhead/pkg/fipe"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
	"gearhead/pkg/kvstore"
)

type App struct {
	Config   *config.Config
	Store    kvstore.Store
	Identity *identity.Provider
	API      *gateway.Client

	Auth    authUsecase.AuthUsecase
	Profile profileUsecase.ProfileUsecase
	Garage  garageUsecase.GarageUsecase
	Events  eventUsecase.EventUsecase
	Catalog *fipe.Client

	// DevMode mints custom tokens with the devserver secret instead of the Admin SDK.
	DevMode bool
}

// New opens the store selected by cfg and wires the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := kvstore.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a, err := NewWithStore(ctx, cfg, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func NewWithStore(ctx context.Context, cfg *config.Config, store kvstore.Store) (*App, error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	provider, err := identity.NewProvider(ctx, identity.Options{
		APIKey:          cfg.FirebaseAPIKey,
		ToolkitEndpoint: cfg.IdentityToolkitEndpoint,
		SecureTokenURL:  cfg.SecureTokenURL,
		HTTPClient:      httpClient,
	}, store)
	if err != nil {
		return nil, fmt.Errorf("init identity provider: %w", err)
	}
	if principal, err := provider.Restore(ctx); err != nil {
		log.Printf("[App] Failed to restore session: %v", err)
	} else if principal != nil {
		log.Printf("[App] Restored session for %s", principal.UID)
	}

	api := gateway.NewClientWithHTTP(cfg.APIURL, provider, httpClient)

	// Initialize repositories
	userRepository := authRepo.NewSyncedUserRepository(store)
	cacheRepository := profileRepo.NewCacheRepository(store)

	// Initialize use cases
	authUsecaseInstance := authUsecase.NewAuthUsecase(provider, api, userRepository)
	profileUsecaseInstance := profileUsecase.NewProfileUsecase(api, userRepository, cacheRepository, cfg.ProfileCacheTTL)
	garageUsecaseInstance := garageUsecase.NewGarageUsecase(provider, api)
	eventUsecaseInstance := eventUsecase.NewEventUsecase(api, nil)

	// Signing out drops the cached profile of the previous principal
	authUsecaseInstance.SetSignOutCallback(func(ctx context.Context) {
		if err := profileUsecaseInstance.Invalidate(ctx); err != nil {
			log.Printf("[App] Failed to invalidate profile cache: %v", err)
		}
	})
	// A new car changes the garage and stats shown on the profile
	garageUsecaseInstance.SetCarCreatedCallback(func(ctx context.Context, _ *garagedomain.Car) {
		profileUsecaseInstance.Revalidate(ctx)
	})

	return &App{
		Config:   cfg,
		Store:    store,
		Identity: provider,
		API:      api,
		Auth:     authUsecaseInstance,
		Profile:  profileUsecaseInstance,
		Garage:   garageUsecaseInstance,
		Events:   eventUsecaseInstance,
		Catalog:  fipe.NewClient(cfg.FipeBaseURL, api, cfg.FipeRateLimit),
	}, nil
}

// CustomToken mints a sign-in token for uid. Outside dev mode it needs service-account
// credentials (FIREBASE_CREDENTIALS or Application Default Credentials).
func (a *App) CustomToken(ctx context.Context, uid string) (string, error) {
	if a.DevMode {
		return devserver.New(a.Config.DevServerSecret).CustomToken(uid)
	}
	impersonator, err := identity.NewImpersonator(ctx, a.Config.FirebaseCredentials, a.Config.FirebaseProjectID)
	if err != nil {
		return "", err
	}
	return impersonator.CustomToken(ctx, uid)
}

// Close waits for background profile fetches, then closes the store.
func (a *App) Close() error {
	a.Profile.Wait()
	return a.Store.Close()
}
