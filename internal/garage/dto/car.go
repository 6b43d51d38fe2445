package dto

import (
	"strings"

	garagedomain "gearhead/internal/garage/domain"
	"gearhead/pkg/validation"
)

type SpecsRequest struct {
	Engine       string                    `json:"engine"`
	Horsepower   int                       `json:"horsepower" validate:"gte=0"`
	Torque       int                       `json:"torque" validate:"gte=0"`
	Transmission garagedomain.Transmission `json:"transmission" validate:"omitempty,oneof=MANUAL AUTOMATIC DUAL_CLUTCH CVT"`
	Drivetrain   garagedomain.Drivetrain   `json:"drivetrain" validate:"omitempty,oneof=FWD RWD AWD"`
	FuelType     garagedomain.FuelType     `json:"fuelType" validate:"omitempty,oneof=GASOLINE ETHANOL DIESEL HYBRID ELECTRIC FLEX"`
}

// CreateCarRequest is the POST /garage/{userId} body. An empty mods list is left out.
type CreateCarRequest struct {
	Brand    string       `json:"brand" validate:"required"`
	Model    string       `json:"model" validate:"required"`
	Year     int          `json:"year" validate:"gt=0"`
	Color    string       `json:"color"`
	Nickname string       `json:"nickname"`
	Trim     string       `json:"trim"`
	Specs    SpecsRequest `json:"specs"`
	ModsList []string     `json:"modsList,omitempty"`
}

func (r *CreateCarRequest) Validate() error {
	r.Brand = strings.TrimSpace(r.Brand)
	r.Model = strings.TrimSpace(r.Model)
	r.Color = strings.TrimSpace(r.Color)
	r.Nickname = strings.TrimSpace(r.Nickname)
	r.Trim = strings.TrimSpace(r.Trim)
	r.Specs.Engine = strings.TrimSpace(r.Specs.Engine)

	mods := r.ModsList[:0:0]
	for _, mod := range r.ModsList {
		if mod = strings.TrimSpace(mod); mod != "" {
			mods = append(mods, mod)
		}
	}
	if len(mods) == 0 {
		mods = nil
	}
	r.ModsList = mods

	return validation.Struct(r, nil)
}
