package usecase

import (
	"context"
	"errors"
	"log"
	"net/url"
	"sync"

	garagedomain "gearhead/internal/garage/domain"
	garagedto "gearhead/internal/garage/dto"
)

var ErrNotAuthenticated = errors.New("user is not authenticated")

type garageUsecase struct {
	principals Principals
	api        API

	mu           sync.RWMutex
	onCarCreated func(ctx context.Context, car *garagedomain.Car)
}

func NewGarageUsecase(principals Principals, api API) GarageUsecase {
	return &garageUsecase{
		principals: principals,
		api:        api,
	}
}

func (u *garageUsecase) SetCarCreatedCallback(callback func(ctx context.Context, car *garagedomain.Car)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onCarCreated = callback
}

// CreateCar adds a car to the garage of the signed-in principal. The path carries the
// identity uid, not the backend user id.
func (u *garageUsecase) CreateCar(ctx context.Context, req *garagedto.CreateCarRequest) (*garagedomain.Car, error) {
	principal := u.principals.CurrentPrincipal()
	if principal == nil || principal.UID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var car garagedomain.Car
	if err := u.api.Post(ctx, "/garage/"+url.PathEscape(principal.UID), req, &car); err != nil {
		log.Printf("[Garage] Failed to create car: %v", err)
		return nil, err
	}
	log.Printf("[Garage] Added %s %s (%d) as %s", car.Brand, car.Model, car.Year, car.ID)

	u.mu.RLock()
	callback := u.onCarCreated
	u.mu.RUnlock()
	if callback != nil {
		callback(ctx, &car)
	}
	return &car, nil
}
