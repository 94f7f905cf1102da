package config

import (
	"net/url"
	"strings"
	"time"
)

// DatabaseConfig describes the record store connection.
// For postgres, URL is the connection string and Key, when set, replaces its password,
// mirroring the URL + key pair handed out by hosted Postgres providers.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Key             string        `mapstructure:"key"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the driver-specific data source name.
func (c *DatabaseConfig) DSN() string {
	if c.Driver != "postgres" {
		if c.Path == "" {
			return "file::memory:?cache=shared"
		}
		return c.Path
	}
	if c.Key == "" {
		return c.URL
	}
	// Keyword/value DSNs get the password appended; URLs get it injected.
	if !strings.Contains(c.URL, "://") {
		return strings.TrimSpace(c.URL) + " password=" + c.Key
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return c.URL
	}
	user := ""
	if u.User != nil {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, c.Key)
	return u.String()
}
