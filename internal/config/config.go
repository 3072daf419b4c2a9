package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeHybrid = "hybrid"
	ModeTable  = "table"

	// MinRateLimitCapacity es el costo de la ruta más cara (/api/diagnose).
	MinRateLimitCapacity = 30
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Chat      ChatConfig      `mapstructure:"chat"`
	Auth      AuthConfig      `mapstructure:"auth"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	DSN            string `mapstructure:"dsn"`
	MigrateOnStart bool   `mapstructure:"migrate_on_start"`
}

type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	PrimaryModel      string        `mapstructure:"primary_model"`
	LegacyModel       string        `mapstructure:"legacy_model"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type AnalysisConfig struct {
	Mode      string        `mapstructure:"mode"`
	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type CalendarConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	CalendarName string        `mapstructure:"calendar_name"`
	TimeZone     string        `mapstructure:"time_zone"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	HistoryLimit int           `mapstructure:"history_limit"`
	Retention    time.Duration `mapstructure:"retention"`
	PruneAt      string        `mapstructure:"prune_at"`
}

type AuthConfig struct {
	GoogleClientID string `mapstructure:"google_client_id"`
	TokenInfoURL   string `mapstructure:"tokeninfo_url"`
}

type RateLimitConfig struct {
	Rate     float64 `mapstructure:"rate"`
	Capacity int64   `mapstructure:"capacity"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	App    string `mapstructure:"app"`
}

// Addr arma host:port para http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee config.yaml (opcional), variables SAFEDOSE_* y los nombres
// heredados (PORT, DB_DSN, GEMINI_API_KEY, ...). Si path no está vacío se usa ese archivo.
func Load(path string) (*Config, error) {
	v := viper.New()

	if strings.TrimSpace(path) != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/safedose/")
	}

	v.SetEnvPrefix("SAFEDOSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.migrate_on_start", false)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.primary_model", "gemini-3-flash-preview")
	v.SetDefault("gemini.legacy_model", "gemini-1.5-flash")
	v.SetDefault("gemini.timeout", "20s")
	v.SetDefault("gemini.requests_per_second", 2)
	v.SetDefault("gemini.burst", 4)
	v.SetDefault("gemini.breaker.max_requests", 5)
	v.SetDefault("gemini.breaker.interval", "30s")
	v.SetDefault("gemini.breaker.timeout", "60s")
	v.SetDefault("gemini.breaker.failure_ratio", 0.6)
	v.SetDefault("gemini.breaker.min_requests", 3)

	v.SetDefault("analysis.mode", ModeHybrid)
	v.SetDefault("analysis.cache_size", 512)
	v.SetDefault("analysis.cache_ttl", "30m")

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("calendar.base_url", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("calendar.calendar_name", "MediBuddy App")
	v.SetDefault("calendar.time_zone", "Asia/Kolkata")
	v.SetDefault("calendar.timeout", "10s")

	v.SetDefault("chat.history_limit", 10)
	v.SetDefault("chat.retention", "720h")
	v.SetDefault("chat.prune_at", "03:00")

	v.SetDefault("auth.google_client_id", "")
	v.SetDefault("auth.tokeninfo_url", "https://oauth2.googleapis.com/tokeninfo")

	v.SetDefault("rate_limit.rate", 3)
	v.SetDefault("rate_limit.capacity", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.app", "safedose-api")
}

// bindLegacyEnv mantiene los nombres de env que ya usa el despliegue actual.
func bindLegacyEnv(v *viper.Viper) error {
	legacy := map[string]string{
		"server.port":           "PORT",
		"database.dsn":          "DB_DSN",
		"gemini.api_key":        "GEMINI_API_KEY",
		"cache.redis_url":       "REDIS_URL",
		"log.level":             "LOG_LEVEL",
		"log.format":            "LOG_FORMAT",
		"log.app":               "APP_NAME",
		"auth.google_client_id": "GOOGLE_CLIENT_ID",
	}
	for key, env := range legacy {
		prefixed := "SAFEDOSE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	c.Analysis.Mode = strings.ToLower(strings.TrimSpace(c.Analysis.Mode))
	switch c.Analysis.Mode {
	case ModeHybrid, ModeTable:
	default:
		return fmt.Errorf("invalid analysis mode: %q", c.Analysis.Mode)
	}

	if c.Gemini.Timeout <= 0 {
		return errors.New("gemini timeout must be positive")
	}
	if c.Gemini.RequestsPerSecond <= 0 {
		return errors.New("gemini requests_per_second must be positive")
	}
	if c.Chat.HistoryLimit <= 0 {
		return errors.New("chat history_limit must be positive")
	}
	if c.RateLimit.Rate <= 0 || c.RateLimit.Capacity <= 0 {
		return errors.New("rate_limit rate and capacity must be positive")
	}
	if c.RateLimit.Capacity < MinRateLimitCapacity {
		return fmt.Errorf("rate_limit capacity must be at least %d, got %d", MinRateLimitCapacity, c.RateLimit.Capacity)
	}
	return nil
}

// GeminiEnabled indica si hay API key para llamar al modelo remoto.
func (c *Config) GeminiEnabled() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}
