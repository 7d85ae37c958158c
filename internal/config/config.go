// Package config loads CashAI settings from defaults, an optional TOML file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverSupabase = "supabase"
)

// Text service backends.
const (
	TextAgent  = "agent"
	TextGemini = "gemini"
	TextNone   = "none"
)

// ConfigEnv names the variable holding the TOML config path.
const ConfigEnv = "CASHAI_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Store      StoreConfig      `toml:"store"`
	Text       TextConfig       `toml:"text"`
	Resilience ResilienceConfig `toml:"resilience"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Auth       AuthConfig       `toml:"auth"`

	// OTLPEndpoint enables trace export when set.
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

type ServerConfig struct {
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

type StoreConfig struct {
	Driver             string `toml:"driver"`
	SQLitePath         string `toml:"sqlite_path"`
	DatabaseURL        string `toml:"database_url"`
	SupabaseURL        string `toml:"supabase_url"`
	SupabaseAnonKey    string `toml:"supabase_anon_key"`
	SupabaseServiceKey string `toml:"supabase_service_role_key"`
}

type TextConfig struct {
	Service         string        `toml:"service"`
	URL             string        `toml:"url"`
	APIKey          string        `toml:"api_key"`
	GeminiAPIKey    string        `toml:"gemini_api_key"`
	GeminiModel     string        `toml:"gemini_model"`
	ContextMaxChars int           `toml:"context_max_chars"`
	CacheTTL        time.Duration `toml:"cache_ttl"`
}

type ResilienceConfig struct {
	HTTPTimeout    time.Duration `toml:"http_timeout"`
	MaxRetries     int           `toml:"max_retries"`
	InitialBackoff time.Duration `toml:"initial_backoff"`
	MaxConcurrency int           `toml:"max_concurrency"`
}

type ForecastConfig struct {
	HorizonDays    int `toml:"horizon_days"`
	MaxHorizonDays int `toml:"max_horizon_days"`
}

type AuthConfig struct {
	JWTSecret    string        `toml:"jwt_secret"`
	JWTAccessTTL time.Duration `toml:"jwt_access_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:     8080,
			LogLevel: "info",
		},
		Store: StoreConfig{
			Driver:     DriverSQLite,
			SQLitePath: "data/cashai.db",
		},
		Text: TextConfig{
			Service:         TextAgent,
			URL:             "http://localhost:8090",
			ContextMaxChars: 4000,
			CacheTTL:        time.Hour,
		},
		Resilience: ResilienceConfig{
			HTTPTimeout:    10 * time.Second,
			MaxRetries:     3,
			InitialBackoff: 100 * time.Millisecond,
			MaxConcurrency: 50,
		},
		Forecast: ForecastConfig{HorizonDays: 30, MaxHorizonDays: 366},
		Auth: AuthConfig{
			JWTAccessTTL: 15 * time.Minute,
		},
	}
}

// Load builds the configuration. path names a TOML file; when empty the
// CASHAI_CONFIG variable is consulted, and when both are empty only defaults
// and the environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		if err := LoadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile decodes the TOML file at path over cfg. Keys absent from the file
// keep their current values.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvInt("PORT", cfg.Server.Port)
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", cfg.Server.LogLevel)

	cfg.Store.Driver = getEnv("STORE_DRIVER", cfg.Store.Driver)
	cfg.Store.SQLitePath = getEnv("SQLITE_PATH", cfg.Store.SQLitePath)
	cfg.Store.DatabaseURL = getEnv("DATABASE_URL", cfg.Store.DatabaseURL)
	cfg.Store.SupabaseURL = getEnv("SUPABASE_URL", cfg.Store.SupabaseURL)
	cfg.Store.SupabaseAnonKey = getEnv("SUPABASE_ANON_KEY", cfg.Store.SupabaseAnonKey)
	cfg.Store.SupabaseServiceKey = getEnv("SUPABASE_SERVICE_ROLE_KEY", cfg.Store.SupabaseServiceKey)

	cfg.Text.Service = getEnv("TEXT_SERVICE", cfg.Text.Service)
	cfg.Text.URL = getEnv("TEXT_SERVICE_URL", cfg.Text.URL)
	cfg.Text.APIKey = getEnv("TEXT_SERVICE_API_KEY", cfg.Text.APIKey)
	cfg.Text.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.Text.GeminiAPIKey)
	cfg.Text.GeminiModel = getEnv("GEMINI_MODEL", cfg.Text.GeminiModel)
	cfg.Text.ContextMaxChars = getEnvInt("TEXT_CONTEXT_MAX_CHARS", cfg.Text.ContextMaxChars)
	cfg.Text.CacheTTL = getEnvDuration("CACHE_TTL", cfg.Text.CacheTTL)

	cfg.Resilience.HTTPTimeout = getEnvDuration("HTTP_TIMEOUT", cfg.Resilience.HTTPTimeout)
	cfg.Resilience.MaxRetries = getEnvInt("MAX_RETRIES", cfg.Resilience.MaxRetries)
	cfg.Resilience.InitialBackoff = getEnvDuration("INITIAL_BACKOFF", cfg.Resilience.InitialBackoff)
	cfg.Resilience.MaxConcurrency = getEnvInt("MAX_CONCURRENCY", cfg.Resilience.MaxConcurrency)

	cfg.Forecast.HorizonDays = getEnvInt("FORECAST_HORIZON_DAYS", cfg.Forecast.HorizonDays)
	cfg.Forecast.MaxHorizonDays = getEnvInt("FORECAST_MAX_HORIZON_DAYS", cfg.Forecast.MaxHorizonDays)

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", cfg.Auth.JWTSecret)
	cfg.Auth.JWTAccessTTL = getEnvDuration("JWT_ACCESS_TTL", cfg.Auth.JWTAccessTTL)

	cfg.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTLPEndpoint)
}

// Validate reports the first setting that makes the service unable to start.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite store")
		}
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres store")
		}
	case DriverSupabase:
		if c.Store.SupabaseURL == "" || c.Store.SupabaseServiceKey == "" {
			return errors.New("config: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY are required for the supabase store")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Text.Service {
	case TextAgent:
		if c.Text.URL == "" {
			return errors.New("config: TEXT_SERVICE_URL is required for the agent text service")
		}
	case TextGemini:
		if c.Text.GeminiAPIKey == "" {
			return errors.New("config: GEMINI_API_KEY is required for the gemini text service")
		}
	case TextNone:
	default:
		return fmt.Errorf("config: unknown TEXT_SERVICE %q", c.Text.Service)
	}

	if c.Forecast.HorizonDays < 1 {
		return errors.New("config: FORECAST_HORIZON_DAYS must be at least 1")
	}
	if c.Forecast.HorizonDays > c.Forecast.MaxHorizonDays {
		return fmt.Errorf("config: FORECAST_HORIZON_DAYS must not exceed FORECAST_MAX_HORIZON_DAYS (%d)", c.Forecast.MaxHorizonDays)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
