package identity

import (
	"log"
	"sync"

	"golang.org/x/oauth2"
)

// TokenUpdateFunc is called after the secure token endpoint issued a new credential.
type TokenUpdateFunc func(*oauth2.Token) error

// notifyTokenSource is shared by every request of a Provider. mu serializes Token so a
// rotated credential is reported exactly once.
type notifyTokenSource struct {
	mu       sync.Mutex
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback TokenUpdateFunc
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.current != nil && s.current.AccessToken == t.AccessToken {
		return t, nil
	}
	s.current = t
	if s.callback != nil {
		if err := s.callback(t); err != nil {
			log.Printf("[Identity] Failed to persist refreshed token: %v", err)
		}
	}
	return t, nil
}

// bearer picks the ID token out of a secure token response.
func bearer(t *oauth2.Token) string {
	if id, ok := t.Extra("id_token").(string); ok && id != "" {
		return id
	}
	return t.AccessToken
}
