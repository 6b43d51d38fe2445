package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionKey = "identity_session"

// Principal is the signed-in identity.
type Principal struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Session is the persisted state of a signed-in principal.
type Session struct {
	Principal
	IDToken      string    `json:"idToken"`
	RefreshToken string    `json:"refreshToken"`
	Expiry       time.Time `json:"expiry"`
}

// idTokenClaims is the subset of a Firebase ID token this client reads.
type idTokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// parseIDToken reads claims without verifying the signature. The backend verifies
// the token; the client only needs the uid and expiry it carries.
func parseIDToken(raw string) (*idTokenClaims, error) {
	claims := &idTokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("parse id token: %w", err)
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return claims, nil
}

func newSession(uid, email, displayName, idToken, refreshToken string, expiresIn int64, now time.Time) *Session {
	s := &Session{
		Principal: Principal{
			UID:         uid,
			Email:       email,
			DisplayName: displayName,
		},
		IDToken:      idToken,
		RefreshToken: refreshToken,
	}
	if expiresIn > 0 {
		s.Expiry = now.Add(time.Duration(expiresIn) * time.Second)
	}

	if claims, err := parseIDToken(idToken); err == nil {
		if s.UID == "" {
			s.UID = claims.UserID
		}
		if s.Email == "" {
			s.Email = claims.Email
		}
		if s.DisplayName == "" {
			s.DisplayName = claims.Name
		}
		if s.Expiry.IsZero() && claims.ExpiresAt != nil {
			s.Expiry = claims.ExpiresAt.Time
		}
	}
	return s
}

func (p *Provider) loadSession(ctx context.Context) (*Session, error) {
	raw, err := p.store.Get(ctx, sessionKey)
	if err != nil || raw == nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode persisted session: %w", err)
	}
	return &s, nil
}

func (p *Provider) saveSession(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, sessionKey, raw)
}
