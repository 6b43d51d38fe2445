package usecase

import (
	"context"

	eventdomain "gearhead/internal/event/domain"
	eventdto "gearhead/internal/event/dto"
	"gearhead/pkg/gateway"
)

type EventUsecase interface {
	CreateEvent(ctx context.Context, req *eventdto.CreateEventRequest) (*eventdomain.Event, error)
}

type API interface {
	Post(ctx context.Context, path string, body, out interface{}, opts ...gateway.Option) error
}
