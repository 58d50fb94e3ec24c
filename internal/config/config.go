package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Database holds the connection settings for the selected driver.
type Database struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// Media selects where uploaded post images live.
type Media struct {
	Backend     string
	Root        string
	URL         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3PublicURL string
}

// Twilio is optional; SMS notifications are disabled when AccountSID is empty.
type Twilio struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

type Config struct {
	Port               string
	GinMode            string
	LogLevel           string
	JWTSecret          string
	SessionTTL         time.Duration
	CookieSecure       bool
	TimeZone           *time.Location
	PostsPerPage       int
	LoginRateLimit     int
	CorsAllowedOrigins []string
	TrustedProxies     []string

	Database Database
	Media    Media
	Twilio   Twilio
}

// Load reads the process environment, after merging an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		TrustedProxies:     listCSV(getEnv("TRUSTED_PROXIES", "")),
		Database: Database{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", ""),
			User:       getEnv("DB_USER", ""),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "blogicum"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "blogicum.db"),
		},
		Media: Media{
			Backend:     strings.ToLower(getEnv("MEDIA_BACKEND", "local")),
			Root:        getEnv("MEDIA_ROOT", "media"),
			URL:         getEnv("MEDIA_URL", "/media/"),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
		Twilio: Twilio{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		},
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "72h")); err != nil {
		return Config{}, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.CookieSecure, err = strconv.ParseBool(getEnv("COOKIE_SECURE", "false")); err != nil {
		return Config{}, fmt.Errorf("COOKIE_SECURE: %w", err)
	}
	if cfg.TimeZone, err = time.LoadLocation(getEnv("TIME_ZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("TIME_ZONE: %w", err)
	}
	if cfg.PostsPerPage, err = strconv.Atoi(getEnv("POSTS_PER_PAGE", "10")); err != nil || cfg.PostsPerPage < 1 {
		return Config{}, errors.New("POSTS_PER_PAGE must be a positive integer")
	}
	if cfg.LoginRateLimit, err = strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "5")); err != nil || cfg.LoginRateLimit < 1 {
		return Config{}, errors.New("LOGIN_RATE_LIMIT must be a positive integer")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
	case "mysql":
		if c.Database.Port == "" {
			c.Database.Port = "3306"
		}
	case "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER %q is not supported", c.Database.Driver)
	}
	switch c.Media.Backend {
	case "local":
		if !strings.HasSuffix(c.Media.URL, "/") {
			c.Media.URL += "/"
		}
	case "s3":
		if c.Media.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when MEDIA_BACKEND=s3")
		}
	default:
		return fmt.Errorf("MEDIA_BACKEND %q is not supported", c.Media.Backend)
	}
	if c.GinMode != "debug" && c.GinMode != "release" && c.GinMode != "test" {
		return fmt.Errorf("GIN_MODE %q is not supported", c.GinMode)
	}
	return nil
}

// SMSEnabled reports whether all Twilio credentials are present.
func (c Config) SMSEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.FromNumber != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitCSV(value string) []string {
	out := listCSV(value)
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// listCSV splits a comma-separated list; empty input yields nil.
func listCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}
