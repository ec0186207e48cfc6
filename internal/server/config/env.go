package config

import (
	"fmt"

	"github.com/dmitrijs2005/soundhub/internal/flagx"
)

// Environment variables recognised by parseEnv.
const (
	EnvHTTPAddr     = "SOUNDHUB_HTTP_ADDR"
	EnvDatabaseDSN  = "SOUNDHUB_DATABASE_DSN"
	EnvSecretKey    = "SOUNDHUB_SECRET_KEY"
	EnvAuthMode     = "SOUNDHUB_AUTH_MODE"
	EnvRedisURL     = "SOUNDHUB_REDIS_URL"
	EnvStorage      = "SOUNDHUB_STORAGE"
	EnvCookieSecure = "SOUNDHUB_COOKIE_SECURE"
)

func parseEnv(config *Config) error {
	flagx.EnvString(EnvHTTPAddr, &config.EndpointAddrHTTP)
	flagx.EnvString(EnvDatabaseDSN, &config.DatabaseDSN)
	flagx.EnvString(EnvSecretKey, &config.SecretKey)
	flagx.EnvString(EnvAuthMode, &config.AuthMode)
	flagx.EnvString(EnvRedisURL, &config.RedisURL)
	flagx.EnvString(EnvStorage, &config.Storage)
	if _, err := flagx.EnvBool(EnvCookieSecure, &config.CookieSecure); err != nil {
		return fmt.Errorf("%s: %w", EnvCookieSecure, err)
	}
	return nil
}
