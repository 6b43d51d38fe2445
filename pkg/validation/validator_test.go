package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Confirm  string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Kind     string `json:"kind" validate:"omitempty,oneof=A B"`
	Terms    bool   `json:"acceptTerms" validate:"required"`
}

func TestStruct_Valid(t *testing.T) {
	err := Struct(signup{Name: "Jane", Email: "a@b.com", Password: "abcdef", Confirm: "abcdef", Terms: true}, nil)
	assert.NoError(t, err)
}

func TestStruct_Messages(t *testing.T) {
	err := Struct(signup{Email: "nope", Password: "abc", Confirm: "abd", Kind: "C"}, map[string]string{
		"acceptTerms.required": "you must accept the terms",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name is required", verr.Field("name"))
	assert.Equal(t, "email must be a valid email address", verr.Field("email"))
	assert.Equal(t, "password must be at least 6 characters long", verr.Field("password"))
	assert.Equal(t, "confirmPassword must match password", verr.Field("confirmPassword"))
	assert.Equal(t, "kind must be one of A, B", verr.Field("kind"))
	assert.Equal(t, "you must accept the terms", verr.Field("acceptTerms"))
	assert.Empty(t, verr.Field("missing"))

	// sorted by field name
	assert.Equal(t, "you must accept the terms; confirmPassword must match password; email must be a valid email address; kind must be one of A, B; name is required; password must be at least 6 characters long", verr.Error())
}
