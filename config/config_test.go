package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYaml = `
api:
  address: "0.0.0.0"
  port: 8080

database:
  path: "/tmp/electrack-test.db"

energy_price:
  provider_dsn: "tibber://secret-token@api.tibber.com"
  area: "SE3"
  fetch_timeout_seconds: 10

logging:
  console_level: "DEBUG"
  db_level: "WARN"
  db_attrs_format: "text"
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(testYaml), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	c, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	t.Run("Api", func(t *testing.T) {
		if c.Api.Address != "0.0.0.0" {
			t.Errorf("expected address 0.0.0.0, got %q", c.Api.Address)
		}
		if c.Api.Port != 8080 {
			t.Errorf("expected port 8080, got %d", c.Api.Port)
		}
	})

	t.Run("Database", func(t *testing.T) {
		if c.Database.Path != "/tmp/electrack-test.db" {
			t.Errorf("unexpected database path %q", c.Database.Path)
		}
		if c.Database.GetLogMaxEntries() != 10000 {
			t.Errorf("expected default log max entries 10000, got %d", c.Database.GetLogMaxEntries())
		}
	})

	t.Run("EnergyPrice", func(t *testing.T) {
		if c.EnergyPrice.ProviderDsn != "tibber://secret-token@api.tibber.com" {
			t.Errorf("unexpected provider dsn %q", c.EnergyPrice.ProviderDsn)
		}
		if c.EnergyPrice.Area != "SE3" {
			t.Errorf("expected area SE3, got %q", c.EnergyPrice.Area)
		}
		if c.EnergyPrice.GetFetchTimeout() != 10*time.Second {
			t.Errorf("expected fetch timeout 10s, got %v", c.EnergyPrice.GetFetchTimeout())
		}
		if c.EnergyPrice.GetRefreshAt() != "15 13 * * *" {
			t.Errorf("expected default refresh schedule, got %q", c.EnergyPrice.GetRefreshAt())
		}
	})

	t.Run("Logging", func(t *testing.T) {
		if c.Logging.GetConsoleLevel() != slog.LevelDebug {
			t.Errorf("expected console level DEBUG, got %v", c.Logging.GetConsoleLevel())
		}
		if c.Logging.GetDbLevel() != slog.LevelWarn {
			t.Errorf("expected db level WARN, got %v", c.Logging.GetDbLevel())
		}
		if c.Logging.GetDbAttrsFormat() != "TEXT" {
			t.Errorf("expected TEXT attrs format, got %v", c.Logging.GetDbAttrsFormat())
		}
	})
}
