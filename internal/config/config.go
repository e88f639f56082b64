package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers understood by the persistence layer.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const sessionSecretBytes = 32

// Config aggregates runtime configuration for the service.
type Config struct {
	App    AppConfig
	Store  StoreConfig
	Redis  RedisConfig
	Logger LoggerConfig
	Auth   AuthConfig
	Admin  AdminConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects and tunes the relational store.
type StoreConfig struct {
	Driver        string
	Path          string
	DSN           string
	MaxConns      int
	RunMigrations bool
}

// RedisConfig holds Redis connection values. An empty Addr disables Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	SessionSecret     []byte
	SessionTTLMinutes int
	BcryptCost        int
	CookieSecure      bool
}

// AdminConfig holds the credentials used to seed the first admin account.
type AdminConfig struct {
	Username string
	Password string
}

// Load reads configuration from environment variables, applying defaults where possible.
// envFiles are passed to godotenv; missing files are ignored.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", driver)
	}

	secret, err := sessionSecret(os.Getenv("AUTH_SESSION_SECRET"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "helpdesk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:        driver,
			Path:          getEnv("STORE_PATH", "helpdesk.db"),
			DSN:           os.Getenv("STORE_DSN"),
			MaxConns:      getEnvAsInt("STORE_MAX_CONNS", 10),
			RunMigrations: getEnvAsBool("STORE_RUN_MIGRATIONS", true),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			SessionSecret:     secret,
			SessionTTLMinutes: getEnvAsInt("AUTH_SESSION_TTL_MINUTES", 720),
			BcryptCost:        getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", "admin123"),
		},
	}

	if cfg.Store.Driver == DriverPostgres && cfg.Store.DSN == "" {
		return nil, fmt.Errorf("STORE_DSN is required for driver %q", DriverPostgres)
	}

	return cfg, nil
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

// SessionTTL returns how long an issued session stays valid.
func (a AuthConfig) SessionTTL() time.Duration {
	if a.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(a.SessionTTLMinutes) * time.Minute
}

// sessionSecret returns the configured secret or a fresh random one.
// A random secret means sessions do not survive a restart.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	buf := make([]byte, sessionSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}
	return buf, nil
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
