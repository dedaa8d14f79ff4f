package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every process-wide setting for the auth gateway. Handlers
// receive it at construction instead of reading the environment themselves,
// so they can be exercised with fake providers in tests.
type Config struct {
	Addr        string `env:"AUTHGW_ADDR" envDefault:":8080"`
	Environment string `env:"AUTHGW_ENVIRONMENT" envDefault:"development"`

	SupabaseURL     string `env:"SUPABASE_URL"`
	SupabaseAnonKey string `env:"SUPABASE_ANON_KEY"`

	// DatabaseDSN points at the Postgres database holding the profiles table.
	DatabaseDSN string `env:"SUPABASE_DB_DSN"`

	// SuccessRedirectURL is the custom URI scheme that hands control back to
	// the mobile app once a flow completes.
	SuccessRedirectURL string `env:"REDIRECT_URL_SUCCESS" envDefault:"petadopt://auth/success"`

	// RequestTimeout bounds every outbound call to the auth provider.
	RequestTimeout time.Duration `env:"AUTHGW_REQUEST_TIMEOUT" envDefault:"5s"`

	RateLimitRPS   float64 `env:"AUTHGW_RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"AUTHGW_RATE_LIMIT_BURST" envDefault:"20"`

	// OTLPEndpoint enables tracing when set, e.g. "localhost:4317".
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load parses configuration from environment variables and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings the gateway cannot run without.
func (c Config) Validate() error {
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	u, err := url.Parse(c.SupabaseURL)
	if err != nil {
		return fmt.Errorf("invalid SUPABASE_URL: %w", err)
	}
	if u.Host == "" {
		return errors.New("SUPABASE_URL host is required")
	}
	if c.Production() && u.Scheme != "https" {
		return errors.New("SUPABASE_URL must use https in production")
	}
	if c.SupabaseAnonKey == "" {
		return errors.New("SUPABASE_ANON_KEY is required")
	}
	if c.DatabaseDSN == "" {
		return errors.New("SUPABASE_DB_DSN is required")
	}
	if c.SuccessRedirectURL == "" {
		return errors.New("REDIRECT_URL_SUCCESS must not be empty")
	}
	return nil
}

// Production reports whether the gateway runs with production hardening.
func (c Config) Production() bool {
	return c.Environment == "production"
}
