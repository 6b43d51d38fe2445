package devserver

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authdomain "gearhead/internal/auth/domain"
	eventdomain "gearhead/internal/event/domain"
	garagedomain "gearhead/internal/garage/domain"
	profiledomain "gearhead/internal/profile/domain"
)

type imageKind int

const (
	avatarImage imageKind = iota
	bannerImage
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateUserRequest struct {
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

func (s *Server) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || !validEmail(email) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name and a valid email are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.userByEmail(email) != nil {
		c.JSON(http.StatusConflict, gin.H{"message": "user already exists"})
		return
	}
	u := &backendUser{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		CreatedAt: s.now().UTC(),
	}
	s.users[u.ID] = u
	c.JSON(http.StatusCreated, s.syncedUser(u))
}

// syncUser links the token's principal to its backend user, creating one if needed.
func (s *Server) syncUser(c *gin.Context) {
	claims := currentClaims(c)

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.userByExternalID(claims.UserID)
	if u == nil && claims.Email != "" {
		if u = s.userByEmail(claims.Email); u != nil && u.ExternalAuthID == "" {
			u.ExternalAuthID = claims.UserID
		} else {
			u = nil
		}
	}
	if u == nil {
		name := claims.Name
		if name == "" {
			name, _, _ = strings.Cut(claims.Email, "@")
		}
		u = &backendUser{
			ID:             uuid.New().String(),
			Name:           name,
			Email:          claims.Email,
			ExternalAuthID: claims.UserID,
			CreatedAt:      s.now().UTC(),
		}
		s.users[u.ID] = u
	}
	c.JSON(http.StatusOK, s.syncedUser(u))
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}
	c.JSON(http.StatusOK, s.profile(u))
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, status, msg := s.ownedUser(c)
	if u == nil {
		c.JSON(status, gin.H{"message": msg})
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "name cannot be empty"})
			return
		}
		u.Name = name
	}
	if req.Bio != nil {
		u.Bio = strings.TrimSpace(*req.Bio)
	}
	c.JSON(http.StatusOK, s.profile(u))
}

func (s *Server) uploadImage(kind imageKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "file is required"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "unreadable file"})
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}
		if !strings.HasPrefix(contentType, "image/") {
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"message": "only images are accepted"})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		u, status, msg := s.ownedUser(c)
		if u == nil {
			c.JSON(status, gin.H{"message": msg})
			return
		}

		name := uuid.New().String() + strings.ToLower(filepath.Ext(fh.Filename))
		s.media[name] = mediaFile{ContentType: contentType, Data: data}
		url := fmt.Sprintf("http://%s/media/%s", c.Request.Host, name)
		if kind == avatarImage {
			u.AvatarURL = &url
		} else {
			u.BannerURL = &url
		}
		c.JSON(http.StatusOK, s.profile(u))
	}
}

func (s *Server) getMedia(c *gin.Context) {
	s.mu.Lock()
	m, ok := s.media[c.Param("name")]
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "media not found"})
		return
	}
	c.Data(http.StatusOK, m.ContentType, m.Data)
}

func (s *Server) createCar(c *gin.Context) {
	claims := currentClaims(c)
	if c.Param("userId") != claims.UserID {
		c.JSON(http.StatusForbidden, gin.H{"message": "cannot add cars to another user's garage"})
		return
	}

	var car garagedomain.Car
	if err := c.ShouldBindJSON(&car); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if strings.TrimSpace(car.Brand) == "" || strings.TrimSpace(car.Model) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "brand and model are required"})
		return
	}
	car.ID = uuid.New().String()
	if car.ModsList == nil {
		car.ModsList = []string{}
	}

	s.mu.Lock()
	s.cars[claims.UserID] = append(s.cars[claims.UserID], car)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, car)
}

func (s *Server) createEvent(c *gin.Context) {
	claims := currentClaims(c)

	var ev eventdomain.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if strings.TrimSpace(ev.Title) == "" || strings.TrimSpace(ev.Address.City) == "" || strings.TrimSpace(ev.Address.State) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "title, city and state are required"})
		return
	}
	if _, err := time.Parse(time.RFC3339, ev.EventDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "eventDate must be ISO 8601"})
		return
	}
	if ev.Type == "" {
		ev.Type = eventdomain.EventMeet
	}

	now := s.now().UTC().Format(time.RFC3339Nano)
	ev.ID = uuid.New().String()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	s.mu.Lock()
	s.events = append(s.events, storedEvent{Event: ev, CreatorUID: claims.UserID})
	s.mu.Unlock()

	c.JSON(http.StatusCreated, ev)
}

// ownedUser resolves :id and checks it belongs to the caller. Requires s.mu.
func (s *Server) ownedUser(c *gin.Context) (*backendUser, int, string) {
	u, ok := s.users[c.Param("id")]
	if !ok {
		return nil, http.StatusNotFound, "user not found"
	}
	if u.ExternalAuthID != currentClaims(c).UserID {
		return nil, http.StatusForbidden, "cannot modify another user"
	}
	return u, 0, ""
}

func (s *Server) userByEmail(email string) *backendUser {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u
		}
	}
	return nil
}

func (s *Server) userByExternalID(uid string) *backendUser {
	for _, u := range s.users {
		if u.ExternalAuthID == uid {
			return u
		}
	}
	return nil
}

func (s *Server) syncedUser(u *backendUser) *authdomain.SyncedUser {
	return &authdomain.SyncedUser{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		ExternalAuthID: u.ExternalAuthID,
		IsOnline:       u.ExternalAuthID != "",
		AvatarURL:      u.AvatarURL,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339Nano),
	}
}

func (s *Server) profile(u *backendUser) *profiledomain.Profile {
	garage := append([]garagedomain.Car(nil), s.cars[u.ExternalAuthID]...)

	events := 0
	for _, ev := range s.events {
		if ev.CreatorUID != "" && ev.CreatorUID == u.ExternalAuthID {
			events++
		}
	}

	return &profiledomain.Profile{
		ID:        u.ID,
		Name:      u.Name,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		BannerURL: u.BannerURL,
		IsOnline:  u.ExternalAuthID != "",
		JoinedAt:  u.CreatedAt.Format(time.RFC3339Nano),
		Stats: profiledomain.Stats{
			TotalEvents: events,
			TotalCars:   len(garage),
		},
		Garage: garage,
	}
}
