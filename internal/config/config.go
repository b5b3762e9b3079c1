package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/segyhp/lending-engine/pkg/logger"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
	CORSOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"DATABASE_URL"`
	Host            string `mapstructure:"DATABASE_HOST"`
	Port            string `mapstructure:"DATABASE_PORT"`
	Name            string `mapstructure:"DATABASE_NAME"`
	User            string `mapstructure:"DATABASE_USER"`
	Password        string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	URL      string `mapstructure:"REDIS_URL"`
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	OverdueCron  string `mapstructure:"SCHEDULER_OVERDUE_CRON"`
	GenerateCron string `mapstructure:"SCHEDULER_GENERATE_CRON"`
	MetricsAddr  string `mapstructure:"SCHEDULER_METRICS_ADDR"`
	Timezone     string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	BaseInterestRate  string `mapstructure:"BASE_INTEREST_RATE"`
	ScoreCacheTTL     string `mapstructure:"SCORE_CACHE_TTL"`
	GenerationLockTTL string `mapstructure:"GENERATION_LOCK_TTL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":                "8080",
	"SERVER_HOST":                "0.0.0.0",
	"ENV":                        "development",
	"SERVER_READ_TIMEOUT":        "15s",
	"SERVER_WRITE_TIMEOUT":       "15s",
	"CORS_ALLOWED_ORIGINS":       "*",
	"DATABASE_URL":               "",
	"DATABASE_HOST":              "localhost",
	"DATABASE_PORT":              "5432",
	"DATABASE_NAME":              "lending_engine",
	"DATABASE_USER":              "postgres",
	"DATABASE_PASSWORD":          "",
	"DATABASE_SSLMODE":           "disable",
	"DATABASE_MAX_OPEN_CONNS":    25,
	"DATABASE_MAX_IDLE_CONNS":    5,
	"DATABASE_CONN_MAX_LIFETIME": "5m",
	"REDIS_URL":                  "",
	"REDIS_HOST":                 "localhost",
	"REDIS_PORT":                 "6379",
	"REDIS_PASSWORD":             "",
	"REDIS_DB":                   0,
	"SCHEDULER_OVERDUE_CRON":     "0 5 0 * * *",
	"SCHEDULER_GENERATE_CRON":    "0 0 1 * * *",
	"SCHEDULER_TIMEZONE":         "UTC",
	"SCHEDULER_METRICS_ADDR":     ":9091",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
	"BASE_INTEREST_RATE":         "12",
	"SCORE_CACHE_TTL":            "1h",
	"GENERATION_LOCK_TTL":        "5m",
	"HEALTH_CHECK_TIMEOUT":       "5s",
}

// Load reads configuration from an optional .env file and environment variables
func Load(envFiles ...string) (*Config, error) {
	// Missing .env files are fine, the environment alone is enough
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	rate, err := decimal.NewFromString(c.Business.BaseInterestRate)
	if err != nil {
		return fmt.Errorf("BASE_INTEREST_RATE must be a valid decimal: %w", err)
	}
	if rate.IsNegative() {
		return fmt.Errorf("BASE_INTEREST_RATE must not be negative")
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"SCORE_CACHE_TTL":            c.Business.ScoreCacheTTL,
		"GENERATION_LOCK_TTL":        c.Business.GenerationLockTTL,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if !logger.IsKnownLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not supported", c.Logging.Level)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// Addr is the host:port the HTTP server listens on
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// GetCORSOrigins splits the comma-separated CORS_ALLOWED_ORIGINS list
func (c *Config) GetCORSOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.Server.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// GetBaseInterestRate returns the base annual interest rate as decimal
func (c *Config) GetBaseInterestRate() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.BaseInterestRate)
	return rate
}

// GetScoreCacheTTL returns how long a score assessment stays cached
func (c *Config) GetScoreCacheTTL() time.Duration {
	return mustDuration(c.Business.ScoreCacheTTL)
}

// GetGenerationLockTTL returns how long a due-today run holds its lock
func (c *Config) GetGenerationLockTTL() time.Duration {
	return mustDuration(c.Business.GenerationLockTTL)
}

// GetReadTimeout returns the HTTP server read timeout
func (c *Config) GetReadTimeout() time.Duration {
	return mustDuration(c.Server.ReadTimeout)
}

// GetWriteTimeout returns the HTTP server write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return mustDuration(c.Server.WriteTimeout)
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	return mustDuration(c.Health.Timeout)
}

// Location returns the zone "today" is evaluated in. Falls back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN returns the postgres connection string
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	}
	return u.String()
}

// GetConnMaxLifetime returns the maximum lifetime of a pooled connection
func (d DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return mustDuration(d.ConnMaxLifetime)
}

// Addr returns the redis host:port
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

func mustDuration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}
