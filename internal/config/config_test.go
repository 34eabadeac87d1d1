package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Portal.URL != DefaultPortalURL {
		t.Errorf("expected default portal url, got %s", cfg.Portal.URL)
	}
	if cfg.Database.Driver != "mysql" {
		t.Errorf("expected Driver=mysql, got %s", cfg.Database.Driver)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("DTEFILER_DB_DSN", "")
	t.Setenv("DTEFILER_DB_DRIVER", "")

	path := filepath.Join(t.TempDir(), "dtefiler.yaml")

	cfg := DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = "file:romana.db"
	cfg.Portal.GiroSignalTimeout = "20s"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Database.Driver != "sqlite" {
		t.Errorf("expected Driver=sqlite, got %s", loaded.Database.Driver)
	}
	if loaded.Portal.GetGiroSignalTimeout() != 20*time.Second {
		t.Errorf("expected giro timeout 20s, got %s", loaded.Portal.GetGiroSignalTimeout())
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Portal.GetAuthTimeout() != 45*time.Second {
		t.Errorf("expected 45s auth timeout, got %s", cfg.Portal.GetAuthTimeout())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("portal: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid driver")
	}

	cfg = DefaultConfig()
	cfg.Portal.EmptyContainerPrice = "one"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for invalid empty container price")
	}

	cfg = DefaultConfig()
	cfg.Portal.HaulerNationalID = "77686780"
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error for hauler id without check digit")
	}
}

func TestPortalConfig_Helpers(t *testing.T) {
	p := DefaultConfig().Portal

	body, check := p.Hauler()
	if body != "77686780" || check != "2" {
		t.Errorf("Hauler() = %s, %s", body, check)
	}

	price, err := p.EmptyContainerUnitPrice()
	if err != nil || !price.Equal(decimal.NewFromInt(1)) {
		t.Errorf("EmptyContainerUnitPrice() = %s, %v", price, err)
	}

	p.NavigationTimeout = "garbage"
	if p.GetNavigationTimeout() != 45*time.Second {
		t.Error("GetNavigationTimeout should fall back to 45s")
	}
	if p.GetRefreshTimeout() != 5*time.Second {
		t.Error("GetRefreshTimeout should default to 5s")
	}
}
