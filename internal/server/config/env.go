package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names. The deployment injects secrets this way; flags
// exist mostly for local runs.
const (
	envAddress            = "AUTH_ADDRESS"
	envDatabaseDSN        = "AUTH_DATABASE_DSN"
	envRefreshTokenSecret = "AUTH_REFRESH_TOKEN_SECRET"
	envJWKSURI            = "AUTH_JWKS_URI"
	envPrivateKey         = "AUTH_PRIVATE_KEY"
	envPrivateKeyFile     = "AUTH_PRIVATE_KEY_FILE"
	envAccessValidity     = "AUTH_ACCESS_TOKEN_VALIDITY"
	envRefreshValidity    = "AUTH_REFRESH_TOKEN_VALIDITY"
	envDevMode            = "AUTH_DEV_MODE"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the current value untouched; malformed durations are ignored rather
// than guessed at.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(envAddress); ok {
		config.Address = v
	}
	if v, ok := os.LookupEnv(envDatabaseDSN); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(envRefreshTokenSecret); ok {
		config.RefreshTokenSecret = v
	}
	if v, ok := os.LookupEnv(envJWKSURI); ok {
		config.JWKSURI = v
	}
	if v, ok := os.LookupEnv(envPrivateKey); ok {
		config.PrivateKey = v
	}
	if v, ok := os.LookupEnv(envPrivateKeyFile); ok {
		config.PrivateKeyFile = v
	}
	if v, ok := os.LookupEnv(envAccessValidity); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidity = d
		}
	}
	if v, ok := os.LookupEnv(envRefreshValidity); ok {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidity = d
		}
	}
	if v, ok := os.LookupEnv(envDevMode); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			config.DevMode = b
		}
	}
}
