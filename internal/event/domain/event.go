package domain

type EventType string

const (
	EventMeet       EventType = "MEET"
	EventRace       EventType = "RACE"
	EventCruise     EventType = "CRUISE"
	EventShowoff    EventType = "SHOWOFF"
	EventDrift      EventType = "DRIFT"
	EventTimeAttack EventType = "TIME_ATTACK"
	EventOffroad    EventType = "OFFROAD"
)

type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zipCode,omitempty"`
}

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        EventType `json:"type"`
	Description string    `json:"description"`
	EventDate   string    `json:"eventDate"`
	Address     Address   `json:"address"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}
