package config

import (
	"flag"
	"os"
	"time"

	"github.com/johnsonjew/learning-journal/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":9093")
//	-d string   database DSN
//	-s string   session signing secret
//	-t int      session validity, minutes
//	-u string   admin username
//	-p string   admin password bcrypt hash
//	-v          debug mode
//
// os.Args is filtered with flagx.FilterArgs first so that -c/-config and
// flags owned by other components do not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-u", "-p", "-v"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session signing secret")
	sessionMinutes := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")
	fs.StringVar(&config.AdminUserName, "u", config.AdminUserName, "admin username")
	fs.StringVar(&config.AdminPasswordHash, "p", config.AdminPasswordHash, "admin password bcrypt hash")
	fs.BoolVar(&config.Debug, "v", config.Debug, "debug mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionValidityDuration = time.Duration(*sessionMinutes) * time.Minute
		}
	})
}
