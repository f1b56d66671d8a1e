package config

import (
	"encoding/json"
	"os"

	"github.com/johnsonjew/learning-journal/internal/flagx"
	"github.com/johnsonjew/learning-journal/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept "12h" style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddr            string         `json:"endpoint_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	AdminUserName           string         `json:"admin_username"`
	AdminPasswordHash       string         `json:"admin_password_hash"`
	Debug                   *bool          `json:"debug"`
	CookieSecure            *bool          `json:"cookie_secure"`
}

// parseJson overlays the file named by -c/-config onto config. Keys missing
// from the file leave the current value untouched. An unreadable file or
// invalid JSON panics: the server must not start half-configured.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AdminUserName, c.AdminUserName)
	setString(&config.AdminPasswordHash, c.AdminPasswordHash)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
