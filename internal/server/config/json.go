package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/soundhub/internal/flagx"
	"github.com/dmitrijs2005/soundhub/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations
// accept "24h"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	Storage                 string         `json:"storage"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	TokenValidityDuration   timex.Duration `json:"token_validity_duration"`
	AuthMode                string         `json:"auth_mode"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	RedisURL                string         `json:"redis_url"`
	CookieSecure            *bool          `json:"cookie_secure"`
	BcryptCost              int            `json:"bcrypt_cost"`
	LogLevel                string         `json:"log_level"`
	RequestTimeout          timex.Duration `json:"request_timeout"`
}

// parseJson overlays values from the file named by -c/-config. Only keys
// present with non-zero values replace what is already in config;
// cookie_secure applies whenever present.
func parseJson(config *Config) error {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.Storage, c.Storage)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AuthMode, c.AuthMode)
	setString(&config.RedisURL, c.RedisURL)
	setString(&config.LogLevel, c.LogLevel)

	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
