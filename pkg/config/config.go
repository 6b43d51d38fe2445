package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultAPIURL = "https://street-legal-backend.onrender.com"

type Config struct {
	APIURL      string
	HTTPTimeout time.Duration

	// Identity provider
	FirebaseAPIKey          string
	FirebaseProjectID       string
	FirebaseCredentials     string
	IdentityToolkitEndpoint string
	SecureTokenURL          string

	// Persisted key-value store
	StoreDriver string
	StorePath   string
	RedisURL    string
	PostgresDSN string

	ProfileCacheTTL time.Duration

	FipeBaseURL   string
	FipeRateLimit float64

	DevServerAddr   string
	DevServerSecret string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		APIURL:                  getEnv("GEARHEAD_API_URL", getEnv("EXPO_PUBLIC_API_URL", defaultAPIURL)),
		HTTPTimeout:             getDuration("HTTP_TIMEOUT", 30*time.Second),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials:     getEnv("FIREBASE_CREDENTIALS", ""),
		IdentityToolkitEndpoint: getEnv("IDENTITY_TOOLKIT_ENDPOINT", ""),
		SecureTokenURL:          getEnv("SECURE_TOKEN_URL", "https://securetoken.googleapis.com/v1/token"),
		StoreDriver:             getEnv("STORE_DRIVER", "sqlite"),
		StorePath:               getEnv("STORE_PATH", defaultStorePath()),
		RedisURL:                getEnv("REDIS_URL", "redis://localhost:6379/0"),
		PostgresDSN:             getEnv("POSTGRES_DSN", ""),
		ProfileCacheTTL:         getDuration("PROFILE_CACHE_TTL", 5*time.Minute),
		FipeBaseURL:             getEnv("FIPE_BASE_URL", "https://fipe.parallelum.com.br/api/v2/cars"),
		FipeRateLimit:           getFloat("FIPE_RATE_LIMIT", 2),
		DevServerAddr:           getEnv("DEVSERVER_ADDR", ":8080"),
		DevServerSecret:         getEnv("DEVSERVER_SECRET", "gearhead-dev-secret"),
	}
}

// UseDevServer points the API, identity and catalog endpoints at a local devserver.
func (c *Config) UseDevServer(baseURL string) {
	c.APIURL = baseURL
	c.IdentityToolkitEndpoint = baseURL + "/identitytoolkit/v3/relyingparty/"
	c.SecureTokenURL = baseURL + "/v1/token"
	c.FipeBaseURL = baseURL + "/fipe"
	if c.FirebaseAPIKey == "" {
		c.FirebaseAPIKey = "devserver"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "gearhead", "state.db")
}
