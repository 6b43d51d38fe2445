package gateway

import (
	"errors"
	"fmt"
)

var (
	ErrTransport = errors.New("transport failure")
	ErrBackend   = errors.New("backend failure")
)

// Kind classifies a failed call.
type Kind int

const (
	KindTransport Kind = iota
	KindBackend
)

// Error is returned for every failed call. Message is what the user should see.
type Error struct {
	Kind       Kind
	Method     string
	URL        string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrBackend:
		return e.Kind == KindBackend
	}
	return false
}

func transportError(method, url string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Method:  method,
		URL:     url,
		Message: err.Error(),
		Err:     err,
	}
}

func backendError(method, url string, status int, message string) *Error {
	return &Error{
		Kind:       KindBackend,
		Method:     method,
		URL:        url,
		StatusCode: status,
		Message:    message,
		Err:        fmt.Errorf("%s %s: status %d", method, url, status),
	}
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.StatusCode
	}
	return 0
}
