package config

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// dotEnvFile is read before the environment is decoded. Variables already
// present in the process environment take precedence over the file.
var dotEnvFile = ".env"

// EnvConfig lists the environment variables understood by the server.
type EnvConfig struct {
	DatabaseURL     string        `env:"DATABASE_URL"`
	AdminUserName   string        `env:"AUTH_USERNAME"`
	AdminPassword   string        `env:"AUTH_PASSWORD"`
	SecretKey       string        `env:"JOURNAL_AUTH_SECRET"`
	SessionValidity time.Duration `env:"SESSION_VALIDITY"`
	Debug           bool          `env:"DEBUG"`
	Port            int           `env:"PORT"`
	ListenAddr      string        `env:"LISTEN_ADDR"`
	CookieSecure    bool          `env:"COOKIE_SECURE"`
}

// parseEnv overlays environment variables onto config. AUTH_PASSWORD holds a
// bcrypt hash, never a plaintext password. PORT binds all interfaces;
// LISTEN_ADDR, when set, wins over PORT.
func parseEnv(config *Config) {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	e := EnvConfig{
		DatabaseURL:     config.DatabaseDSN,
		AdminUserName:   config.AdminUserName,
		AdminPassword:   config.AdminPasswordHash,
		SecretKey:       config.SecretKey,
		SessionValidity: config.SessionValidityDuration,
		Debug:           config.Debug,
		CookieSecure:    config.CookieSecure,
	}

	// a value that fails to parse is an error, never a silent fallback
	if err := envdecode.StrictDecode(&e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return
		}
		panic(err)
	}

	config.DatabaseDSN = e.DatabaseURL
	config.AdminUserName = e.AdminUserName
	config.AdminPasswordHash = e.AdminPassword
	config.SecretKey = e.SecretKey
	config.SessionValidityDuration = e.SessionValidity
	config.Debug = e.Debug
	config.CookieSecure = e.CookieSecure

	switch {
	case e.ListenAddr != "":
		config.EndpointAddr = e.ListenAddr
	case e.Port > 0:
		config.EndpointAddr = ":" + strconv.Itoa(e.Port)
	}
}
