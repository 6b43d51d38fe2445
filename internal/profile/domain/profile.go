package domain

import (
	"encoding/json"

	garagedomain "gearhead/internal/garage/domain"
)

type Stats struct {
	TotalEvents int `json:"totalEvents"`
	TotalCars   int `json:"totalCars"`
	TotalBadges int `json:"totalBadges"`
}

type Crew struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Tag         string `json:"tag"`
	InsigniaURL string `json:"insigniaUrl"`
	IsLeader    bool   `json:"isLeader"`
}

// Profile is the backend's view of a user, as returned by GET /users/{id}.
type Profile struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Bio          string             `json:"bio"`
	AvatarURL    *string            `json:"avatarUrl"`
	BannerURL    *string            `json:"bannerUrl,omitempty"`
	IsOnline     bool               `json:"isOnline"`
	JoinedAt     string             `json:"joinedAt"`
	Stats        Stats              `json:"stats"`
	Crew         *Crew              `json:"crew,omitempty"`
	Garage       []garagedomain.Car `json:"garage,omitempty"`
	Achievements []json.RawMessage  `json:"achievements,omitempty"`
}

func (p *Profile) Avatar() string {
	if p == nil || p.AvatarURL == nil {
		return ""
	}
	return *p.AvatarURL
}

func (p *Profile) Banner() string {
	if p == nil || p.BannerURL == nil {
		return ""
	}
	return *p.BannerURL
}
