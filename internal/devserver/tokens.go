package devserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const customTokenAudience = "https://identitytoolkit.googleapis.com/google.identity.identitytoolkit.v1.IdentityToolkit"

type idClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type customClaims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

func (s *Server) issueIDToken(acc *account, ttl time.Duration) (string, error) {
	now := s.now()
	claims := idClaims{
		UserID: acc.UID,
		Email:  acc.Email,
		Name:   acc.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    "https://securetoken.google.com/" + s.projectID,
			Audience:  jwt.ClaimStrings{s.projectID},
			Subject:   acc.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verifyIDToken(raw string) (*idClaims, error) {
	claims := &idClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	if claims.UserID == "" {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

// CustomToken mints a token accepted by verifyCustomToken, the way the Admin SDK would.
func (s *Server) CustomToken(uid string) (string, error) {
	if uid == "" {
		return "", fmt.Errorf("uid is required")
	}
	now := s.now()
	claims := customClaims{
		UID: uid,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{customTokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) verifyCustomTokenString(raw string) (string, error) {
	claims := &customClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(customTokenAudience), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid || claims.UID == "" {
		return "", errors.New("invalid custom token")
	}
	return claims.UID, nil
}

// newRefreshToken must be called with s.mu held.
func (s *Server) newRefreshToken(uid string) string {
	token := uuid.New().String()
	s.refreshTokens[token] = uid
	return token
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
