package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "STUDYQUIZ_"

// App holds runtime configuration for the CLI and the HTTP service.
type App struct {
	Name            string        `env:"APP_NAME" envDefault:"studyquiz"`
	Env             string        `env:"ENV" envDefault:"development"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// DBPath overrides the default XDG database location. Empty disables
	// nothing; the store package resolves its own default.
	DBPath string `env:"DB"`

	Redis     Redis
	RateLimit RateLimit
	CORS      CORS
}

// Redis configures the optional topic cache.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	Password string        `env:"REDIS_PASSWORD"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"1h"`
}

// Enabled reports whether a Redis address was configured.
func (r Redis) Enabled() bool { return r.Addr != "" }

// RateLimit bounds generative calls per client IP.
type RateLimit struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"30"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// CORS mirrors the permissive headers the browser client expects.
type CORS struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	AllowedHeaders []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"authorization,x-client-info,apikey,content-type"`
}

// Load parses the process environment into App.
func Load() (*App, error) {
	return load(env.Options{Prefix: EnvPrefix})
}

// LoadFrom parses an explicit environment map. Used by tests.
func LoadFrom(environ map[string]string) (*App, error) {
	return load(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func load(opts env.Options) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *App) Validate() error {
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("%sRATE_LIMIT_REQUESTS must not be negative", EnvPrefix)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("%sRATE_LIMIT_WINDOW must be positive", EnvPrefix)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%sSHUTDOWN_TIMEOUT must be positive", EnvPrefix)
	}
	return nil
}
