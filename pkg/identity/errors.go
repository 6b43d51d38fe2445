package identity

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

var (
	ErrInvalidEmail      = errors.New("invalid email")
	ErrUserNotFound      = errors.New("user not found")
	ErrWrongPassword     = errors.New("wrong password")
	ErrInvalidCredential = errors.New("invalid credentials")
	ErrEmailInUse        = errors.New("email already in use")
	ErrWeakPassword      = errors.New("password is too weak")
	ErrUserDisabled      = errors.New("user disabled")
	ErrTokenExpired      = errors.New("session expired, sign in again")
)

// mapError turns Identity Toolkit error codes into the sentinels above.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	code := apiErr.Message
	if i := strings.Index(code, " : "); i >= 0 {
		code = code[:i]
	}

	var sentinel error
	switch strings.TrimSpace(code) {
	case "INVALID_EMAIL", "MISSING_EMAIL":
		sentinel = ErrInvalidEmail
	case "EMAIL_NOT_FOUND":
		sentinel = ErrUserNotFound
	case "INVALID_PASSWORD", "MISSING_PASSWORD":
		sentinel = ErrWrongPassword
	case "INVALID_LOGIN_CREDENTIALS", "INVALID_IDP_RESPONSE", "INVALID_CUSTOM_TOKEN":
		sentinel = ErrInvalidCredential
	case "EMAIL_EXISTS":
		sentinel = ErrEmailInUse
	case "WEAK_PASSWORD":
		sentinel = ErrWeakPassword
	case "USER_DISABLED":
		sentinel = ErrUserDisabled
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND":
		sentinel = ErrTokenExpired
	default:
		return err
	}
	return fmt.Errorf("%w (%s)", sentinel, apiErr.Message)
}
