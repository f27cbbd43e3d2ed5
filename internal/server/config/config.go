// Package config handles configuration for the auth service, including
// defaults, environment overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the auth service.
//
// Fields:
//   - Address: bind address for the HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx).
//   - RefreshTokenSecret: HMAC secret for signing refresh JWTs (HS256).
//   - JWKSURI: endpoint the authentication middleware fetches public keys from.
//   - PrivateKey / PrivateKeyFile: RS256 signing key sources; the inline value
//     wins, the file is the fallback. The key is read lazily, not at boot.
//   - AccessTokenValidity / RefreshTokenValidity: JWT lifetimes.
//   - RefreshRecordValidity: lifetime of the persisted refresh-token record.
//   - DevMode: include error details in HTTP responses.
type Config struct {
	Address               string
	DatabaseDSN           string
	RefreshTokenSecret    string
	JWKSURI               string
	PrivateKey            string
	PrivateKeyFile        string
	AccessTokenValidity   time.Duration
	RefreshTokenValidity  time.Duration
	RefreshRecordValidity time.Duration
	DevMode               bool
}

// LoadDefaults populates Config with development defaults. Values without a
// safe default (DSN, secrets, JWKS URI) stay empty and must be provided.
func (c *Config) LoadDefaults() {
	c.Address = ":8080"
	c.PrivateKeyFile = "certs/private.pem"
	c.AccessTokenValidity = 1 * time.Hour
	c.RefreshTokenValidity = 24 * time.Hour
	c.RefreshRecordValidity = 365 * 24 * time.Hour
}

// Validate reports the first missing required setting. The private key is
// deliberately not read here: at least one source must be configured, but the
// material itself is loaded on first use.
func (c *Config) Validate() error {
	switch {
	case c.Address == "":
		return errors.New("listen address is required")
	case c.DatabaseDSN == "":
		return errors.New("database DSN is required")
	case c.RefreshTokenSecret == "":
		return errors.New("refresh token secret is required")
	case c.JWKSURI == "":
		return errors.New("JWKS URI is required")
	case c.PrivateKey == "" && c.PrivateKeyFile == "":
		return errors.New("a private key value or file path is required")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from the environment and finally from command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
