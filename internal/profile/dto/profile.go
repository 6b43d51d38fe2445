package dto

import (
	"io"
	"strings"

	"gearhead/pkg/validation"
)

// UpdateProfileRequest is the PATCH /users/{id} body.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
	Bio  string `json:"bio"`
}

func (r *UpdateProfileRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Bio = strings.TrimSpace(r.Bio)
	return validation.Struct(r, nil)
}

// ImageUpload is an avatar or banner picture.
type ImageUpload struct {
	FileName    string    `json:"fileName" validate:"required"`
	ContentType string    `json:"contentType"`
	Content     io.Reader `json:"-"`
}

func (u *ImageUpload) Validate() error {
	u.FileName = strings.TrimSpace(u.FileName)
	if err := validation.Struct(u, nil); err != nil {
		return err
	}
	if u.Content == nil {
		return &validation.ValidationError{Errors: map[string]string{"content": "image content is required"}}
	}
	return nil
}
