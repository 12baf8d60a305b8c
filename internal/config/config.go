// Package config reads server settings from the environment.
//
// Values come from real environment variables, with an optional .env file
// in the working directory filling in anything unset. Every key has a
// default except JWT_SECRET, so `go run ./cmd/server` works out of the box.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Submitter modes: which listing.Submitter new dialogs get.
const (
	SubmitterSimulated = "simulated" // wait SUBMIT_DELAY, then succeed
	SubmitterCatalog   = "catalog"   // store in the SQLite catalog in-process
	SubmitterHTTP      = "http"      // POST to SUBMIT_BACKEND_URL
)

type Config struct {
	Port int    `envconfig:"PORT" default:"8080"`
	Env  string `envconfig:"ENV" default:"development"`

	// ":memory:" keeps the catalog for the life of the process only.
	DBPath string `envconfig:"DB_PATH" default:":memory:"`

	// Empty: no access credential is issued and the backend endpoint
	// accepts ownerless listings.
	JWTSecret string `envconfig:"JWT_SECRET"`

	Submitter        string        `envconfig:"SUBMITTER" default:"simulated"`
	SubmitDelay      time.Duration `envconfig:"SUBMIT_DELAY" default:"500ms"`
	SubmitBackendURL string        `envconfig:"SUBMIT_BACKEND_URL"`

	DialogTTL       time.Duration `envconfig:"DIALOG_TTL" default:"30m"`
	AccountsEnabled bool          `envconfig:"ACCOUNTS_ENABLED" default:"false"`
	CORSOrigins     []string      `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load reads .env (if present) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads the environment only.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings that would only fail later, at request time.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("config: ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	switch c.Submitter {
	case SubmitterSimulated, SubmitterCatalog:
	case SubmitterHTTP:
		if c.SubmitBackendURL == "" {
			return errors.New("config: SUBMITTER=http requires SUBMIT_BACKEND_URL")
		}
	default:
		return fmt.Errorf("config: unknown SUBMITTER %q", c.Submitter)
	}
	if c.SubmitDelay < 0 {
		return errors.New("config: SUBMIT_DELAY must not be negative")
	}
	if c.DialogTTL <= 0 {
		return errors.New("config: DIALOG_TTL must be positive")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 16 {
		return errors.New("config: JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// NewLogger builds the process logger: colored, debug-level console output
// in development and JSON at info level in production.
func NewLogger(env string, w io.Writer) *slog.Logger {
	if env == EnvProduction {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))
}
