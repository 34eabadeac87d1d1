package config

import "time"

// DatabaseConfig configures the weighbridge record store.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"` // mysql, sqlite
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime"`
}

// GetConnMaxLifetime returns the pooled connection lifetime.
func (c DatabaseConfig) GetConnMaxLifetime() time.Duration {
	return parseDuration(c.ConnMaxLifetime, 5*time.Minute)
}
