// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix namespaces every variable: CALCFORM_HTTP_ADDR, CALCFORM_TEST_MODE, ...
const Prefix = "CALCFORM"

// Config is shared by both binaries; each reads the fields it needs.
type Config struct {
	// HTTPAddr is where the form UI listens.
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// BackendAddr is where the development backend listens.
	BackendAddr string `envconfig:"BACKEND_ADDR" default:":8081"`
	// BackendURL is the base URL the RPC client posts to.
	BackendURL string `envconfig:"BACKEND_URL" default:"http://localhost:8081"`

	// TestMode suppresses the client's failure diagnostics.
	TestMode bool `envconfig:"TEST_MODE" default:"false"`
	// Development switches the logger to human-readable console output.
	Development bool `envconfig:"DEVELOPMENT" default:"false"`
	// Telemetry enables OTLP export of traces, metrics and logs.
	Telemetry bool `envconfig:"TELEMETRY" default:"false"`

	// SessionTTL is how long an idle form survives before it is unmounted.
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	// SweepInterval is how often idle forms are looked for.
	SweepInterval time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`

	// CORSOrigins may call the development backend from a browser.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:8080,http://localhost:3000"`
}

// Load fills a Config from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the binaries cannot run with.
func (c Config) Validate() error {
	if !strings.HasPrefix(c.BackendURL, "http://") && !strings.HasPrefix(c.BackendURL, "https://") {
		return fmt.Errorf("config: %s_BACKEND_URL must be an http(s) URL, got %q", Prefix, c.BackendURL)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: %s_SESSION_TTL must be positive, got %s", Prefix, c.SessionTTL)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config: %s_SWEEP_INTERVAL must be positive, got %s", Prefix, c.SweepInterval)
	}
	return nil
}
