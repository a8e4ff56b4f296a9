package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	auth "github.com/loadline/authd"
)

// Config collects the runtime options for the service. Values come from
// the environment with flag overrides; the signing secret has no default
// and is never logged.
type Config struct {
	Addr            string
	DSN             string
	SigningKey      string
	TokenExpiration time.Duration
	Issuer          string
	Audience        []string
	BcryptCost      int
	Debug           bool
}

var _ auth.Config = (*Config)(nil)

func (c *Config) GetSigningKey() string             { return c.SigningKey }
func (c *Config) GetTokenExpiration() time.Duration { return c.TokenExpiration }
func (c *Config) GetIssuer() string                 { return c.Issuer }
func (c *Config) GetAudience() []string             { return c.Audience }
func (c *Config) GetContextKey() string             { return "user" }
func (c *Config) GetAuthScheme() string             { return "Bearer" }
func (c *Config) GetTokenLookup() string            { return "header:Authorization" }

// LoadConfig reads AUTHD_* environment variables and applies any flag
// overrides from args.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{
		Addr:            envOr("AUTHD_ADDR", ":3000"),
		DSN:             envOr("AUTHD_DB_DSN", "file:authd.db?cache=shared"),
		SigningKey:      os.Getenv("AUTHD_JWT_SECRET"),
		TokenExpiration: auth.DefaultTokenTTL,
		Issuer:          envOr("AUTHD_JWT_ISSUER", ""),
	}

	if raw := os.Getenv("AUTHD_JWT_EXPIRATION"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTHD_JWT_EXPIRATION %q: %w", raw, err)
		}
		cfg.TokenExpiration = ttl
	}

	if raw := os.Getenv("AUTHD_BCRYPT_COST"); raw != "" {
		if _, err := fmt.Sscanf(raw, "%d", &cfg.BcryptCost); err != nil {
			return nil, fmt.Errorf("invalid AUTHD_BCRYPT_COST %q: %w", raw, err)
		}
	}

	fs := flag.NewFlagSet("authd", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "database DSN")
	fs.DurationVar(&cfg.TokenExpiration, "token-ttl", cfg.TokenExpiration, "bearer token lifetime")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt work factor, 0 uses the default")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.SigningKey == "" {
		return nil, fmt.Errorf("AUTHD_JWT_SECRET is required")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
