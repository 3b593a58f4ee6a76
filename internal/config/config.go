package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App         AppConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Workflow    WorkflowConfig
	DigitalTwin CollaboratorConfig
	Directory   CollaboratorConfig
	Insight     CollaboratorConfig
	Notify      NotificationConfig
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

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines machine-to-machine authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// WorkflowConfig tunes the ticket workflow engine.
type WorkflowConfig struct {
	// MappedIntegrationEnabled switches on status-transition enforcement
	// against the transitions allow-list.
	MappedIntegrationEnabled bool
	// MappedSourceName is the display name substituted for tickets whose
	// source is the external CMMS integration.
	MappedSourceName      string
	TwinCacheTTLSeconds   int
	StatusCacheTTLSeconds int
}

// NotificationConfig controls outbound webhook notifications.
type NotificationConfig struct {
	WebhookURL     string
	TimeoutSeconds int
}

// CollaboratorConfig describes an outbound dependency endpoint.
type CollaboratorConfig struct {
	BaseURL        string
	TimeoutSeconds int
	RetryCount     int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "twin-workflow-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Workflow: WorkflowConfig{
			MappedIntegrationEnabled: getEnvAsBool("WORKFLOW_MAPPED_INTEGRATION_ENABLED", false),
			MappedSourceName:         getEnv("WORKFLOW_MAPPED_SOURCE_NAME", "Mapped"),
			TwinCacheTTLSeconds:      getEnvAsInt("WORKFLOW_TWIN_CACHE_TTL_SECONDS", 300),
			StatusCacheTTLSeconds:    getEnvAsInt("WORKFLOW_STATUS_CACHE_TTL_SECONDS", 600),
		},
		DigitalTwin: CollaboratorConfig{
			BaseURL:        getEnv("DIGITAL_TWIN_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("DIGITAL_TWIN_TIMEOUT_SECONDS", 10),
			RetryCount:     getEnvAsInt("DIGITAL_TWIN_RETRY_COUNT", 2),
		},
		Directory: CollaboratorConfig{
			BaseURL:        getEnv("DIRECTORY_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("DIRECTORY_TIMEOUT_SECONDS", 10),
			RetryCount:     getEnvAsInt("DIRECTORY_RETRY_COUNT", 2),
		},
		Insight: CollaboratorConfig{
			BaseURL:        getEnv("INSIGHT_BASE_URL", ""),
			TimeoutSeconds: getEnvAsInt("INSIGHT_TIMEOUT_SECONDS", 10),
			RetryCount:     getEnvAsInt("INSIGHT_RETRY_COUNT", 0),
		},
		Notify: NotificationConfig{
			WebhookURL:     getEnv("NOTIFY_WEBHOOK_URL", ""),
			TimeoutSeconds: getEnvAsInt("NOTIFY_WEBHOOK_TIMEOUT_SECONDS", 5),
		},
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

// TwinCacheTTL returns the twin-resolution cache TTL.
func (w WorkflowConfig) TwinCacheTTL() time.Duration {
	return time.Duration(w.TwinCacheTTLSeconds) * time.Second
}

// StatusCacheTTL returns the status-configuration cache TTL.
func (w WorkflowConfig) StatusCacheTTL() time.Duration {
	return time.Duration(w.StatusCacheTTLSeconds) * time.Second
}

// Timeout returns the collaborator request timeout.
func (c CollaboratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Timeout returns the webhook request timeout.
func (n NotificationConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSeconds) * time.Second
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
