package usecase

import (
	"context"

	garagedomain "gearhead/internal/garage/domain"
	garagedto "gearhead/internal/garage/dto"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
)

type GarageUsecase interface {
	CreateCar(ctx context.Context, req *garagedto.CreateCarRequest) (*garagedomain.Car, error)
	// SetCarCreatedCallback registers a hook run after every car the backend accepted.
	SetCarCreatedCallback(callback func(ctx context.Context, car *garagedomain.Car))
}

// Principals exposes the signed-in identity principal, if any.
type Principals interface {
	CurrentPrincipal() *identity.Principal
}

type API interface {
	Post(ctx context.Context, path string, body, out interface{}, opts ...gateway.Option) error
}
