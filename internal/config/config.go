// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abdusco/linkbox/internal"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	BackendSupabase = "supabase"
	BackendLocal    = "local"
)

type Config struct {
	AppTitle       string `env:"APP_TITLE" envDefault:"Links API"`
	AppDescription string `env:"APP_DESCRIPTION" envDefault:""`
	AppVersion     string `env:"APP_VERSION" envDefault:"0.1.0"`

	Host     string `env:"HOST" envDefault:"0.0.0.0"`
	Port     string `env:"PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG" envDefault:"false"`

	// Origins allowed to make cross-origin requests, or "*".
	CORSOrigins []string `env:"BACKEND_CORS_ORIGINS,required,notEmpty" envSeparator:","`

	Backend string `env:"BACKEND" envDefault:"supabase"`

	SupabaseURL     string        `env:"SUPABASE_URL"`
	SupabaseKey     string        `env:"SUPABASE_KEY"`
	SupabaseTimeout time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`

	// Local backend
	DBPath    string        `env:"DB_PATH" envDefault:"linkbox.db"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Load reads an optional .env file, then parses and validates the environment.
// Variables already present in the environment win over the .env file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	origins, err := normalizeOrigins(c.CORSOrigins)
	if err != nil {
		return err
	}
	c.CORSOrigins = origins

	switch c.Backend {
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return errors.New("SUPABASE_URL is required")
		}
		if !internal.IsHTTPURL(c.SupabaseURL) {
			return fmt.Errorf("SUPABASE_URL must be an absolute http(s) URL, got %q", c.SupabaseURL)
		}
		if c.SupabaseKey == "" {
			return errors.New("SUPABASE_KEY is required")
		}
	case BackendLocal:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when BACKEND=local")
		}
		if c.DBPath == "" {
			return errors.New("DB_PATH is required when BACKEND=local")
		}
	default:
		return fmt.Errorf("unknown BACKEND %q (want %q or %q)", c.Backend, BackendSupabase, BackendLocal)
	}

	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}

	return nil
}

// normalizeOrigins trims whitespace and trailing slashes; browsers send origins
// without a path, so "http://localhost:3000/" would never match.
func normalizeOrigins(origins []string) ([]string, error) {
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if origin != "*" && !internal.IsHTTPURL(origin) {
			return nil, fmt.Errorf("BACKEND_CORS_ORIGINS: %q is not an http(s) URL or \"*\"", origin)
		}
		result = append(result, origin)
	}

	if len(result) == 0 {
		return nil, errors.New("BACKEND_CORS_ORIGINS must list at least one origin")
	}

	return result, nil
}
