package usecase

import (
	"context"
	"log"
	"time"

	eventdomain "gearhead/internal/event/domain"
	eventdto "gearhead/internal/event/dto"
)

type eventUsecase struct {
	api API
	now func() time.Time
}

// NewEventUsecase builds the event flow. now supplies the date of requests that leave it
// unset; nil means time.Now.
func NewEventUsecase(api API, now func() time.Time) EventUsecase {
	if now == nil {
		now = time.Now
	}
	return &eventUsecase{
		api: api,
		now: now,
	}
}

func (u *eventUsecase) CreateEvent(ctx context.Context, req *eventdto.CreateEventRequest) (*eventdomain.Event, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.EventDate.IsZero() {
		req.EventDate = u.now()
	}

	var event eventdomain.Event
	if err := u.api.Post(ctx, "/events", req.Payload(), &event); err != nil {
		log.Printf("[Event] Failed to create event: %v", err)
		return nil, err
	}
	log.Printf("[Event] Created %s event %q (%s)", event.Type, event.Title, event.ID)
	return &event, nil
}
