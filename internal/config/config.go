package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all dtefiler configuration.
type Config struct {
	// Portal the documents are filed on
	Portal PortalConfig `yaml:"portal"`

	// Chrome instance driven for the portal session
	Browser BrowserConfig `yaml:"browser"`

	// Weighbridge record store
	Database DatabaseConfig `yaml:"database"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Portal: PortalConfig{
			URL:                   DefaultPortalURL,
			UserAgent:             "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/80.0.3987.162 Safari/537.36",
			AuthTimeout:           "45s",
			NavigationTimeout:     "45s",
			ElementTimeout:        "10s",
			GiroSignalTimeout:     "35s",
			RefreshTimeout:        "5s",
			HaulerNationalID:      "77686780-2",
			EmptyContainerPrice:   "1",
			EmptyContainerSuffix:  "VACIO",
			NotSaleIndicatorValue: "6",
			KiloUnitMarkers:       []string{"UVA", "PASAS"},
		},
		Browser: BrowserConfig{
			Headless:       false,
			ViewportWidth:  1366,
			ViewportHeight: 900,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			DSN:             "root:@tcp(localhost:3306)/romana?parseTime=true",
			MaxOpenConns:    4,
			MaxIdleConns:    2,
			ConnMaxLifetime: "5m",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DTEFILER_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DTEFILER_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("DTEFILER_PORTAL_URL"); v != "" {
		c.Portal.URL = v
	}
	if v := os.Getenv("DTEFILER_CHROME_URL"); v != "" {
		c.Browser.DebuggerURL = v
	}
	if v := os.Getenv("DTEFILER_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Browser.Headless = b
		}
	}
	if v := os.Getenv("DTEFILER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// ValidDrivers lists the supported record store drivers.
var ValidDrivers = []string{"mysql", "sqlite"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Portal.URL) == "" {
		return fmt.Errorf("portal url not configured (set portal.url or DTEFILER_PORTAL_URL)")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn not configured (set database.dsn or DTEFILER_DB_DSN)")
	}

	validDriver := false
	for _, d := range ValidDrivers {
		if c.Database.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid database driver: %s (valid: %v)", c.Database.Driver, ValidDrivers)
	}

	if _, err := c.Portal.EmptyContainerUnitPrice(); err != nil {
		return err
	}
	if body, check := c.Portal.Hauler(); body == "" || check == "" {
		return fmt.Errorf("invalid hauler national id: %q", c.Portal.HaulerNationalID)
	}

	return nil
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
