package devserver

import (
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type verifyPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type oobCodeRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

type customTokenRequest struct {
	Token string `json:"token"`
}

// toolkitError writes an error body in the shape the Google API client decodes.
func toolkitError(c *gin.Context, status int, code string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    status,
			"message": code,
			"errors": []gin.H{
				{"message": code, "domain": "global", "reason": "invalid"},
			},
		},
	})
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "":
		toolkitError(c, http.StatusBadRequest, "MISSING_EMAIL")
		return
	case !validEmail(email):
		toolkitError(c, http.StatusBadRequest, "INVALID_EMAIL")
		return
	case req.Password == "":
		toolkitError(c, http.StatusBadRequest, "MISSING_PASSWORD")
		return
	case len(req.Password) < 6:
		toolkitError(c, http.StatusBadRequest, "WEAK_PASSWORD : Password should be at least 6 characters")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		toolkitError(c, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[email]; exists {
		s.mu.Unlock()
		toolkitError(c, http.StatusBadRequest, "EMAIL_EXISTS")
		return
	}
	acc := &account{
		UID:          strings.ReplaceAll(uuid.New().String(), "-", "")[:28],
		Email:        email,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		PasswordHash: hash,
	}
	s.accounts[email] = acc
	s.accountsByUID[acc.UID] = acc
	s.mu.Unlock()

	s.writeSession(c, acc, gin.H{"kind": "identitytoolkit#SignupNewUserResponse"})
}

func (s *Server) verifyPassword(c *gin.Context) {
	var req verifyPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		toolkitError(c, http.StatusBadRequest, "INVALID_EMAIL")
		return
	}
	if req.Password == "" {
		toolkitError(c, http.StatusBadRequest, "MISSING_PASSWORD")
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[email]
	s.mu.Unlock()

	if !ok {
		toolkitError(c, http.StatusBadRequest, "EMAIL_NOT_FOUND")
		return
	}
	if acc.Disabled {
		toolkitError(c, http.StatusBadRequest, "USER_DISABLED")
		return
	}
	if !checkPasswordHash(req.Password, acc.PasswordHash) {
		toolkitError(c, http.StatusBadRequest, "INVALID_PASSWORD")
		return
	}

	s.writeSession(c, acc, gin.H{"kind": "identitytoolkit#VerifyPasswordResponse", "registered": true})
}

func (s *Server) sendOobCode(c *gin.Context) {
	var req oobCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_JSON")
		return
	}
	if req.RequestType != "PASSWORD_RESET" {
		toolkitError(c, http.StatusBadRequest, "INVALID_REQ_TYPE")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !validEmail(email) {
		toolkitError(c, http.StatusBadRequest, "INVALID_EMAIL")
		return
	}

	s.mu.Lock()
	_, ok := s.accounts[email]
	if ok {
		s.passwordResets = append(s.passwordResets, email)
	}
	s.mu.Unlock()

	if !ok {
		toolkitError(c, http.StatusBadRequest, "EMAIL_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, gin.H{"kind": "identitytoolkit#GetOobConfirmationCodeResponse", "email": email})
}

func (s *Server) verifyCustomToken(c *gin.Context) {
	var req customTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_JSON")
		return
	}

	uid, err := s.verifyCustomTokenString(req.Token)
	if err != nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_CUSTOM_TOKEN")
		return
	}

	s.mu.Lock()
	acc, ok := s.accountsByUID[uid]
	if !ok {
		acc = &account{UID: uid}
		s.accountsByUID[uid] = acc
	}
	s.mu.Unlock()

	if acc.Disabled {
		toolkitError(c, http.StatusBadRequest, "USER_DISABLED")
		return
	}

	s.writeSession(c, acc, gin.H{"kind": "identitytoolkit#VerifyCustomTokenResponse", "isNewUser": !ok})
}

// refreshToken serves the Secure Token grant used by oauth2 token sources.
func (s *Server) refreshToken(c *gin.Context) {
	if c.PostForm("grant_type") != "refresh_token" {
		toolkitError(c, http.StatusBadRequest, "INVALID_GRANT_TYPE")
		return
	}

	s.mu.Lock()
	uid, ok := s.refreshTokens[c.PostForm("refresh_token")]
	acc := s.accountsByUID[uid]
	ttl := s.tokenTTL
	s.mu.Unlock()

	if !ok || acc == nil {
		toolkitError(c, http.StatusBadRequest, "INVALID_REFRESH_TOKEN")
		return
	}
	if acc.Disabled {
		toolkitError(c, http.StatusBadRequest, "USER_DISABLED")
		return
	}

	idToken, err := s.issueIDToken(acc, ttl)
	if err != nil {
		toolkitError(c, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	expiresIn := strconv.Itoa(int(ttl.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"access_token":  idToken,
		"expires_in":    expiresIn,
		"token_type":    "Bearer",
		"refresh_token": c.PostForm("refresh_token"),
		"id_token":      idToken,
		"user_id":       acc.UID,
		"project_id":    s.projectID,
	})
}

func (s *Server) writeSession(c *gin.Context, acc *account, extra gin.H) {
	s.mu.Lock()
	ttl := s.tokenTTL
	refresh := s.newRefreshToken(acc.UID)
	s.mu.Unlock()

	idToken, err := s.issueIDToken(acc, ttl)
	if err != nil {
		toolkitError(c, http.StatusInternalServerError, "INTERNAL_ERROR")
		return
	}

	body := gin.H{
		"localId":      acc.UID,
		"email":        acc.Email,
		"displayName":  acc.DisplayName,
		"idToken":      idToken,
		"refreshToken": refresh,
		"expiresIn":    strconv.Itoa(int(ttl.Seconds())),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
