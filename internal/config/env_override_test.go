package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("database settings", func(t *testing.T) {
		t.Setenv("DTEFILER_DB_DRIVER", "sqlite")
		t.Setenv("DTEFILER_DB_DSN", "file:test.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "file:test.db", cfg.Database.DSN)
	})

	t.Run("browser settings", func(t *testing.T) {
		t.Setenv("DTEFILER_CHROME_URL", "ws://127.0.0.1:9222/devtools/browser/x")
		t.Setenv("DTEFILER_HEADLESS", "true")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/x", cfg.Browser.DebuggerURL)
		assert.True(t, cfg.Browser.Headless)
	})

	t.Run("invalid headless value is ignored", func(t *testing.T) {
		t.Setenv("DTEFILER_HEADLESS", "maybe")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Browser.Headless)
	})

	t.Run("portal url", func(t *testing.T) {
		t.Setenv("DTEFILER_PORTAL_URL", "http://localhost:8080/login")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "http://localhost:8080/login", cfg.Portal.URL)
	})
}

func TestLoggingCategories(t *testing.T) {
	cfg := LoggingConfig{}
	assert.True(t, cfg.IsCategoryEnabled("portal"))

	cfg.Categories = map[string]bool{"portal": false}
	assert.False(t, cfg.IsCategoryEnabled("portal"))
	assert.True(t, cfg.IsCategoryEnabled("session"))
}
