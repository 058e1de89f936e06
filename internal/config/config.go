package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultEnvFile is where both binaries look for a .env file.
const DefaultEnvFile = "configs/.env"

// devJWTSecret is the development fallback only, refused in release mode.
const devJWTSecret = "default_super_secret_key"

// Server holds the API server configuration.
type Server struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName     string `envconfig:"DB_NAME" default:"postgres"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret string        `envconfig:"JWT_SECRET"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"1h"`

	// An ADMIN account is created at startup when both are set and the username is free.
	AdminUsername string `envconfig:"ADMIN_USERNAME"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`

	CORSOrigins        []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	RateLimitPerMinute int      `envconfig:"RATE_LIMIT_PER_MINUTE" default:"1200"`
	SSLRedirect        bool     `envconfig:"SSL_REDIRECT" default:"false"`

	LogEnv   string `envconfig:"LOG_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// IsRelease reports whether gin runs in release mode.
func (s *Server) IsRelease() bool { return s.GinMode == "release" }

// DSN builds the postgres connection string.
func (s *Server) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(s.DBUser, s.DBPassword),
		Host:     s.DBHost + ":" + s.DBPort,
		Path:     "/" + s.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(s.DBSSLMode),
	}
	return u.String()
}

// Client holds the wmsctl configuration.
type Client struct {
	APIURL          string        `envconfig:"WMS_API_URL" default:"http://localhost:8080"`
	RequestTimeout  time.Duration `envconfig:"WMS_REQUEST_TIMEOUT" default:"10s"`
	HealthInterval  time.Duration `envconfig:"WMS_HEALTH_INTERVAL" default:"4s"`
	LogoutCountdown time.Duration `envconfig:"WMS_LOGOUT_COUNTDOWN" default:"5s"`
	CountdownTick   time.Duration `envconfig:"WMS_COUNTDOWN_TICK" default:"1s"`

	Username string `envconfig:"WMS_USERNAME"`
	Password string `envconfig:"WMS_PASSWORD"`

	LogEnv   string `envconfig:"LOG_ENV" default:"dev"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
}

// LoadServer reads envFile (if it exists) and then the environment.
func LoadServer(envFile string) (*Server, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	var cfg Server
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	if cfg.JWTSecret == "" {
		if cfg.IsRelease() {
			return nil, errors.New("JWT_SECRET is required in release mode")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, errors.New("TOKEN_TTL must be positive")
	}
	return &cfg, nil
}

// LoadClient reads envFile (if it exists) and then the environment.
func LoadClient(envFile string) (*Client, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}
	var cfg Client
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.APIURL); err != nil {
		return nil, fmt.Errorf("WMS_API_URL: %w", err)
	}
	if cfg.CountdownTick <= 0 || cfg.LogoutCountdown < cfg.CountdownTick {
		return nil, errors.New("WMS_COUNTDOWN_TICK must be positive and not exceed WMS_LOGOUT_COUNTDOWN")
	}
	return &cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
