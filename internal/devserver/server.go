// Package devserver is an in-memory stand-in for the GEARHEAD backend and for the
// Firebase Authentication REST endpoints. The CLI runs it for local development and
// the test suites run it behind httptest.
package devserver

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	eventdomain "gearhead/internal/event/domain"
	garagedomain "gearhead/internal/garage/domain"
)

const defaultTokenTTL = time.Hour

// Request is a call observed by the server, recorded before any handler runs.
type Request struct {
	Method     string
	Path       string
	Authorized bool
	Body       []byte
}

type account struct {
	UID          string
	Email        string
	DisplayName  string
	PasswordHash string
	Disabled     bool
}

type backendUser struct {
	ID             string
	Name           string
	Email          string
	ExternalAuthID string
	Bio            string
	AvatarURL      *string
	BannerURL      *string
	CreatedAt      time.Time
}

type storedEvent struct {
	eventdomain.Event
	CreatorUID string
}

type mediaFile struct {
	ContentType string
	Data        []byte
}

type Server struct {
	secret    []byte
	projectID string
	now       func() time.Time

	mu             sync.Mutex
	tokenTTL       time.Duration
	accounts       map[string]*account // by email
	accountsByUID  map[string]*account
	refreshTokens  map[string]string // refresh token -> uid
	users          map[string]*backendUser
	cars           map[string][]garagedomain.Car // by identity uid
	events         []storedEvent
	media          map[string]mediaFile
	faults         map[string]int
	requests       []Request
	passwordResets []string

	engine *gin.Engine
}

func New(secret string) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		secret:        []byte(secret),
		projectID:     "gearhead-dev",
		now:           time.Now,
		tokenTTL:      defaultTokenTTL,
		accounts:      make(map[string]*account),
		accountsByUID: make(map[string]*account),
		refreshTokens: make(map[string]string),
		users:         make(map[string]*backendUser),
		cars:          make(map[string][]garagedomain.Car),
		media:         make(map[string]mediaFile),
		faults:        make(map[string]int),
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests(), s.recordRequests(), s.injectFaults())
	s.setupRoutes(r)
	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until the listener fails.
func (s *Server) Run(addr string) error {
	log.Printf("[DevServer] Listening on %s", addr)
	return s.engine.Run(addr)
}

func (s *Server) setupRoutes(r *gin.Engine) {
	toolkit := r.Group("/identitytoolkit/v3/relyingparty")
	toolkit.Use(requireAPIKey())
	{
		toolkit.POST("/signupNewUser", s.signUp)
		toolkit.POST("/verifyPassword", s.verifyPassword)
		toolkit.POST("/getOobConfirmationCode", s.sendOobCode)
		toolkit.POST("/verifyCustomToken", s.verifyCustomToken)
	}
	r.POST("/v1/token", requireAPIKey(), s.refreshToken)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/media/:name", s.getMedia)
	r.GET("/fipe/brands", s.listBrands)
	r.GET("/fipe/brands/:code/models", s.listModels)

	// Account creation precedes any backend session.
	r.POST("/users", s.createUser)

	authed := r.Group("/")
	authed.Use(s.AuthMiddleware())
	{
		authed.POST("/users/sync", s.syncUser)
		authed.GET("/users/:id", s.getProfile)
		authed.PATCH("/users/:id", s.updateProfile)
		authed.POST("/users/update-picture/:id", s.uploadImage(avatarImage))
		authed.POST("/users/update-banner/:id", s.uploadImage(bannerImage))
		authed.POST("/garage/:userId", s.createCar)
		authed.POST("/events", s.createEvent)
	}
}

// Fail makes every following method+path call answer status until ClearFaults.
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+path] = status
}

func (s *Server) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]int)
}

// SetTokenTTL changes the lifetime of ID tokens issued from now on.
func (s *Server) SetTokenTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenTTL = ttl
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many method+path calls were observed.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// PasswordResets lists the emails a reset link was requested for.
func (s *Server) PasswordResets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.passwordResets...)
}

// DisableAccount blocks further sign-ins for email.
func (s *Server) DisableAccount(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if acc, ok := s.accounts[email]; ok {
		acc.Disabled = true
	}
}

func (s *Server) recordRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Authorized: c.GetHeader("Authorization") != "",
			Body:       body,
		})
		s.mu.Unlock()

		c.Next()
	}
}

func (s *Server) injectFaults() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		status, ok := s.faults[c.Request.Method+" "+c.Request.URL.Path]
		s.mu.Unlock()

		if ok {
			c.AbortWithStatusJSON(status, gin.H{"message": "injected failure"})
			return
		}
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[DevServer] %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
