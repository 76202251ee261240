// Package config loads service configuration from the environment.
//
// Values are read with github.com/caarlos0/env; an optional .env file in the
// working directory is loaded first for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration of the API process.
type Config struct {
	HTTP     HTTPConfig
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":9090"`

	// Timezone is the location used for calendar-day boundaries.
	Timezone string `env:"APP_TIMEZONE" envDefault:"Local"`

	Auth     AuthConfig  `envPrefix:"AUTH_"`
	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	SeedOnStart bool `env:"SEED_ON_START" envDefault:"false"`
}

// HTTPConfig controls the HTTP listener and its middleware.
type HTTPConfig struct {
	Addr         string   `env:"HTTP_ADDR"          envDefault:":8080"`
	CORSOrigins  []string `env:"CORS_ORIGINS"       envDefault:"http://localhost:3000,http://localhost:5173" envSeparator:","`
	MaxBodyBytes int64    `env:"MAX_BODY_BYTES"     envDefault:"1048576"`
	RateBurst    int      `env:"RATE_LIMIT_BURST"   envDefault:"20"`
	RatePerSec   int      `env:"RATE_LIMIT_PER_SEC" envDefault:"10"`
	TrustProxy   bool     `env:"TRUST_PROXY"        envDefault:"false"`
}

// AuthConfig holds token issuance settings.
type AuthConfig struct {
	JWTSecret    string        `env:"JWT_SECRET"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"     envDefault:"24h"`
	Issuer       string        `env:"ISSUER"        envDefault:"staffdesk"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"false"`
}

// DBConfig contains PostgreSQL settings. An empty DSN selects the in-memory store.
type DBConfig struct {
	DSN           string `env:"DSN"`
	MaxOpenConns  int    `env:"MAX_OPEN_CONNS"  envDefault:"25"`
	RunMigrations bool   `env:"RUN_MIGRATIONS"  envDefault:"true"`
}

// RedisConfig configures the optional stats cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"ADDR"`
	Password string        `env:"PASSWORD"`
	DB       int           `env:"DB"        envDefault:"0"`
	StatsTTL time.Duration `env:"STATS_TTL" envDefault:"30s"`
}

// Load reads .env (when present) and the environment into a sanitized Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from the environment.
func (c *Config) Sanitize() {
	c.Auth.JWTSecret = strings.TrimSpace(c.Auth.JWTSecret)
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.HTTP.RateBurst < 1 {
		c.HTTP.RateBurst = 1
	}
	if c.HTTP.RatePerSec < 1 {
		c.HTTP.RatePerSec = 1
	}
	if c.Postgres.MaxOpenConns < 1 {
		c.Postgres.MaxOpenConns = 1
	}
	if c.Redis.StatsTTL <= 0 {
		c.Redis.StatsTTL = 30 * time.Second
	}
	origins := c.HTTP.CORSOrigins[:0]
	for _, o := range c.HTTP.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.HTTP.CORSOrigins = origins
}

// Validate reports configuration that prevents the API from starting.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}
