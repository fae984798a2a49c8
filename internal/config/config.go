package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for every binary in the repo.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	OpenAI   OpenAIConfig
	Policy   PolicyConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	RequestTimeoutSeconds int
	MaxMessageChars       int
	AllowedOrigins        string
	DefaultUserID         string // used by the REPL when no user is given
	UserSeedFile          string // optional YAML/JSON seed; switches the CLI to the in-memory store
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds the conversation history backend.
type RedisConfig struct {
	Addr          string
	Password      string
	DB            int
	HistoryWindow int // number of user/assistant turns kept per user
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string // zap output path, "stdout" unless overridden
}

// AuthConfig defines bearer token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// OpenAIConfig configures both the chat agent and the internal intent router.
type OpenAIConfig struct {
	APIKey              string
	BaseURL             string
	GenerationModel     string
	RouterModel         string
	Temperature         float64
	MaxOutputTokens     int
	RouterTimeoutSecond int
	MaxAgentSteps       int
}

// PolicyConfig tunes the company policy retriever.
type PolicyConfig struct {
	TopK int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	temperature, err := strconv.ParseFloat(getEnv("GENERATION_DEFAULT_TEMPERATURE", "0.1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid GENERATION_DEFAULT_TEMPERATURE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hr-assistant"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
			MaxMessageChars:       getEnvAsInt("INPUT_DEFAULT_MAX_CHARACTERS", 1400),
			AllowedOrigins:        os.Getenv("ALLOWED_ORIGINS"),
			DefaultUserID:         os.Getenv("DEFAULT_USER_ID"),
			UserSeedFile:          os.Getenv("USER_SEED_FILE"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("DATABASE_URL"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:          getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:      os.Getenv("REDIS_PASSWORD"),
			DB:            redisDB,
			HistoryWindow: getEnvAsInt("HISTORY_WINDOW", 5),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		OpenAI: OpenAIConfig{
			APIKey:              os.Getenv("OPENAI_API_KEY"),
			BaseURL:             os.Getenv("OPENAI_API_URL"),
			GenerationModel:     getEnv("GENERATION_MODEL_ID", "gpt-4o"),
			RouterModel:         getEnv("ROUTER_MODEL_ID", "gpt-4o-mini"),
			Temperature:         temperature,
			MaxOutputTokens:     getEnvAsInt("GENERATION_DEFAULT_MAX_TOKENS", 1024),
			RouterTimeoutSecond: getEnvAsInt("ROUTER_TIMEOUT_SECONDS", 15),
			MaxAgentSteps:       getEnvAsInt("AGENT_MAX_STEPS", 6),
		},
		Policy: PolicyConfig{
			TopK: getEnvAsInt("POLICY_TOP_K", 3),
		},
	}

	return cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is not set"))
	}
	if c.Postgres.DSN == "" && c.App.UserSeedFile == "" {
		errs = append(errs, errors.New("DATABASE_URL or USER_SEED_FILE must be set"))
	}
	if c.OpenAI.RouterTimeoutSecond <= 0 {
		errs = append(errs, errors.New("ROUTER_TIMEOUT_SECONDS must be positive"))
	}
	if c.App.Env == "production" && c.Auth.JWTSecret == "dev-secret" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET must be changed in production"))
	}
	return errors.Join(errs...)
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

// RouterTimeout bounds a single intent classification call.
func (o OpenAIConfig) RouterTimeout() time.Duration {
	if o.RouterTimeoutSecond <= 0 {
		return 15 * time.Second
	}
	return time.Duration(o.RouterTimeoutSecond) * time.Second
}

// AccessTokenTTL returns the lifetime of minted bearer tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
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
