package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkravets/auth-service/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   refresh-token HMAC secret
//	-j string   JWKS URI
//	-k string   private key file path
//	-t int      access token validity, minutes
//	-r int      refresh token validity, hours
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-j", "-k", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Address, "a", config.Address, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RefreshTokenSecret, "s", config.RefreshTokenSecret, "refresh token secret")
	fs.StringVar(&config.JWKSURI, "j", config.JWKSURI, "JWKS URI")
	fs.StringVar(&config.PrivateKeyFile, "k", config.PrivateKeyFile, "private key file path")

	accessValidity := fs.Int("t", int(config.AccessTokenValidity.Minutes()), "access token validity (in minutes)")
	refreshValidity := fs.Int("r", int(config.RefreshTokenValidity.Hours()), "refresh token validity (in hours)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.AccessTokenValidity = time.Duration(*accessValidity) * time.Minute
	config.RefreshTokenValidity = time.Duration(*refreshValidity) * time.Hour
	return nil
}
