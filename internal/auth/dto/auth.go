package dto

import (
	"strings"

	"gearhead/pkg/validation"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r, nil)
}

type RegisterRequest struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms" validate:"required"`
}

var registerMessages = map[string]string{
	"confirmPassword.eqfield": "passwords do not match",
	"acceptTerms.required":    "you must accept the terms of use and privacy policy",
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	if strings.TrimSpace(r.Password) == "" {
		r.Password = ""
	}
	if strings.TrimSpace(r.ConfirmPassword) == "" {
		r.ConfirmPassword = ""
	}
	return validation.Struct(r, registerMessages)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validation.Struct(r, nil)
}

// CreateUserRequest is the body of the anonymous POST /users call made after sign-up.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}
