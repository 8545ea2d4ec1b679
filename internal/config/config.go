package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	BackendAirtable = "airtable"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env      string // "development", "production", etc.
	LogLevel string

	// Server
	ServerAddr  string
	BaseURL     string
	CORSOrigins string // Comma-separated allowed origins

	// Store
	StoreBackend      string // airtable, postgres or memory
	AirtableAPIURL    string
	AirtableAPIKey    string
	AirtableBaseID    string
	AirtableRateLimit float64 // requests per second per base
	DatabaseURL       string

	// Table names
	ClubsTable          string
	ClubMembersTable    string
	AccessRequestsTable string
	UsersTable          string
	EventsTable         string

	// Sessions and tokens
	RedisURL      string // Session storage; in-memory when empty
	SessionSecret string // Used for cookie encryption (min 32 chars)
	JWTSecret     string
	JWTTTL        time.Duration

	// OIDC
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// Email
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // none, tls or starttls
	ResendAPIKey string
	ResendAPIURL string
	SendGridKey  string
	SendGridURL  string
	EmailFrom    string // Sender address for HTTP providers; SMTPFrom is used for SMTP

	// Notification recipients and switches
	AdminNotify                []string
	AccessRequestNotify        []string
	EmailNotifyOnClubSubmit    bool
	EmailNotifyOnAccessRequest bool
	EmailNotifyOnDecision      bool

	// Cache
	CacheSweepInterval time.Duration
	CacheMaxStale      time.Duration

	// Diagnostics
	EnableDebugEndpoints bool

	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	env := getEnv("ENV", "development")
	dev := env == "development" || env == "dev"

	return &Config{
		Env:         env,
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		StoreBackend:      getEnv("STORE_BACKEND", BackendAirtable),
		AirtableAPIURL:    getEnv("AIRTABLE_API_URL", "https://api.airtable.com/v0"),
		AirtableAPIKey:    getEnv("AIRTABLE_API_KEY", ""),
		AirtableBaseID:    getEnv("AIRTABLE_BASE_ID", ""),
		AirtableRateLimit: getEnvFloat("AIRTABLE_REQUESTS_PER_SECOND", 5),
		DatabaseURL:       getEnv("DATABASE_URL", "postgres://localhost:5432/clubdir?sslmode=disable"),

		ClubsTable:          getEnv("AIRTABLE_CLUBS_TABLE", "Clubs"),
		ClubMembersTable:    getEnv("AIRTABLE_CLUB_MEMBERS_TABLE", "ClubMembers"),
		AccessRequestsTable: getEnv("AIRTABLE_ACCESS_REQUESTS_TABLE", "AccessRequests"),
		UsersTable:          getEnv("AIRTABLE_USERS_TABLE", "Users"),
		EventsTable:         getEnv("AIRTABLE_EVENTS_TABLE", "Events"),

		RedisURL:      getEnv("REDIS_URL", ""),
		SessionSecret: getEnv("SESSION_SECRET", "change-me-in-production-min-32-chars"),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTL:        getEnvDuration("JWT_TTL", 24*time.Hour),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/oidc/callback"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),
		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		ResendAPIURL: getEnv("RESEND_API_URL", "https://api.resend.com/emails"),
		SendGridKey:  getEnv("SENDGRID_API_KEY", ""),
		SendGridURL:  getEnv("SENDGRID_API_URL", "https://api.sendgrid.com/v3/mail/send"),
		EmailFrom:    getEnv("EMAIL_FROM", ""),

		AdminNotify:                splitList(getEnv("ADMIN_NOTIFY", "")),
		AccessRequestNotify:        splitList(getEnv("ACCESS_REQUEST_NOTIFY", "communityrag-group@ucsc.edu")),
		EmailNotifyOnClubSubmit:    getEnv("EMAIL_NOTIFY_CLUB_SUBMIT", "true") == "true",
		EmailNotifyOnAccessRequest: getEnv("EMAIL_NOTIFY_ACCESS_REQUEST", "true") == "true",
		EmailNotifyOnDecision:      getEnv("EMAIL_NOTIFY_DECISION", "true") == "true",

		CacheSweepInterval: getEnvDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),
		CacheMaxStale:      getEnvDuration("CACHE_MAX_STALE", time.Hour),

		EnableDebugEndpoints: dev || getEnv("ENABLE_DEBUG_ENDPOINTS", "") != "",

		SiteTitle: getEnv("SITE_TITLE", "Club Directory"),
	}
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendAirtable:
		if c.AirtableAPIKey == "" || c.AirtableBaseID == "" {
			errs = append(errs, errors.New("AIRTABLE_API_KEY and AIRTABLE_BASE_ID are required for the airtable backend"))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendMemory:
		if !c.IsDev() {
			errs = append(errs, errors.New("the memory backend is only allowed in development"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if !c.IsDev() && len(c.SessionSecret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 characters"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if any outbound email transport is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.ResendAPIKey != "" || c.SendGridKey != "" || (c.SMTPHost != "" && c.SMTPFrom != "")
}

// IsOIDCEnabled returns true if an OIDC issuer is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
