package dto

import (
	"strings"
	"time"

	eventdomain "gearhead/internal/event/domain"
	"gearhead/pkg/validation"
)

// ISO8601 is the millisecond UTC layout the backend expects for eventDate.
const ISO8601 = "2006-01-02T15:04:05.000Z07:00"

type AddressRequest struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	ZipCode      string `json:"zipCode"`
}

type CreateEventRequest struct {
	Title       string                `json:"title" validate:"required"`
	Type        eventdomain.EventType `json:"type" validate:"omitempty,oneof=MEET RACE CRUISE SHOWOFF DRIFT TIME_ATTACK OFFROAD"`
	Description string                `json:"description"`
	EventDate   time.Time             `json:"eventDate"`
	Address     AddressRequest        `json:"address"`
}

var eventMessages = map[string]string{
	"title.required": "event title is required",
	"city.required":  "city and state are required",
	"state.required": "city and state are required",
}

func (r *CreateEventRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Type = eventdomain.EventType(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	r.Address.Street = strings.TrimSpace(r.Address.Street)
	r.Address.Number = strings.TrimSpace(r.Address.Number)
	r.Address.Neighborhood = strings.TrimSpace(r.Address.Neighborhood)
	r.Address.City = strings.TrimSpace(r.Address.City)
	r.Address.State = strings.TrimSpace(r.Address.State)
	r.Address.ZipCode = strings.TrimSpace(r.Address.ZipCode)
	return validation.Struct(r, eventMessages)
}

// CreateEventPayload is the POST /events body.
type CreateEventPayload struct {
	Title       string                `json:"title"`
	Type        eventdomain.EventType `json:"type"`
	Description string                `json:"description"`
	EventDate   string                `json:"eventDate"`
	Address     eventdomain.Address   `json:"address"`
}

// Payload builds the wire body of a validated request. Blank address parts are left out.
func (r *CreateEventRequest) Payload() *CreateEventPayload {
	eventType := r.Type
	if eventType == "" {
		eventType = eventdomain.EventMeet
	}
	return &CreateEventPayload{
		Title:       r.Title,
		Type:        eventType,
		Description: r.Description,
		EventDate:   r.EventDate.UTC().Format(ISO8601),
		Address: eventdomain.Address{
			Street:       r.Address.Street,
			Number:       r.Address.Number,
			Neighborhood: r.Address.Neighborhood,
			City:         r.Address.City,
			State:        r.Address.State,
			ZipCode:      r.Address.ZipCode,
		},
	}
}
