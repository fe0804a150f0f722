package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSiteURL is where confirmation emails redirect when SITE_URL is unset.
const DefaultSiteURL = "https://chicken-stall-sebastian-rafhael-garcias-projects.vercel.app"

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Supabase SupabaseConfig
	CORS     CORSConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Calendar CalendarConfig
	Report   ReportConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BasePath              string
	RequestTimeoutSeconds int
}

// SupabaseConfig holds the identity/store endpoint and its privileged key.
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
	SiteURL        string
	TimeoutSeconds int
}

// CORSConfig holds the explicit origin allow-list. Empty means "reflect the caller".
type CORSConfig struct {
	AllowedOrigins []string
}

// PostgresConfig holds DB connection values. An empty DSN selects the REST store.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr                  string
	Password              string
	DB                    int
	InviteCooldownSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines bearer verification parameters.
type AuthConfig struct {
	// JWTSecret enables local verification of access tokens when set.
	JWTSecret string
}

// CalendarConfig selects the civil timezone for every date computation.
type CalendarConfig struct {
	Timezone string
}

// ReportConfig bounds reporting queries.
type ReportConfig struct {
	MaxRangeDays int
}

// ErrMissingSupabase is returned when the privileged endpoint is not configured.
var ErrMissingSupabase = errors.New("SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required")

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "stall-admin"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BasePath:              normalizeBasePath(os.Getenv("APP_BASE_PATH")),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			ServiceRoleKey: os.Getenv("SUPABASE_SERVICE_ROLE_KEY"),
			SiteURL:        strings.TrimRight(getEnv("SITE_URL", DefaultSiteURL), "/"),
			TimeoutSeconds: getEnvAsInt("SUPABASE_TIMEOUT_SECONDS", 15),
		},
		CORS: CORSConfig{
			AllowedOrigins: ParseOrigins(os.Getenv("ALLOWED_ORIGIN")),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", false),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:                  os.Getenv("REDIS_ADDR"),
			Password:              os.Getenv("REDIS_PASSWORD"),
			DB:                    redisDB,
			InviteCooldownSeconds: getEnvAsInt("INVITE_COOLDOWN_SECONDS", 60),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		},
		Calendar: CalendarConfig{
			Timezone: getEnv("CIVIL_TIMEZONE", "Asia/Manila"),
		},
		Report: ReportConfig{
			MaxRangeDays: getEnvAsInt("REPORT_MAX_RANGE_DAYS", 366),
		},
	}

	if cfg.Supabase.URL == "" || cfg.Supabase.ServiceRoleKey == "" {
		return nil, ErrMissingSupabase
	}

	return cfg, nil
}

// ParseOrigins splits a comma separated allow-list. "*" and "" both mean no list.
func ParseOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the HTTP client timeout for provider calls.
func (s SupabaseConfig) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ConfirmationRedirect is the link target embedded in confirmation emails.
func (s SupabaseConfig) ConfirmationRedirect() string {
	return s.SiteURL + "/login"
}

// InviteCooldown returns the resend dedupe window.
func (r RedisConfig) InviteCooldown() time.Duration {
	if r.InviteCooldownSeconds <= 0 {
		return 0
	}
	return time.Duration(r.InviteCooldownSeconds) * time.Second
}

func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
