package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "wamigrate.db" {
			t.Errorf("expected database path wamigrate.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Migration.StageDelaySeconds != 2 {
			t.Errorf("expected stage delay 2s, got %d", config.Migration.StageDelaySeconds)
		}

		if config.Migration.StageDelay() != 2*time.Second {
			t.Errorf("expected StageDelay 2s, got %v", config.Migration.StageDelay())
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[server]
host = "0.0.0.0"
port = 8080

[auth]
admin_phone = "+15550001111"
encryption_secret = "test-secret"

[migration]
stage_delay_seconds = 1

[[migration.allowed_pairs]]
from = "+15550001111"
to = "+15550002222"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Auth.AdminPhone != "+15550001111" {
			t.Errorf("expected admin phone +15550001111, got %s", config.Auth.AdminPhone)
		}

		if len(config.Migration.AllowedPairs) != 1 {
			t.Fatalf("expected one allowed pair, got %d", len(config.Migration.AllowedPairs))
		}

		if config.Migration.AllowedPairs[0].To != "+15550002222" {
			t.Errorf("expected pair destination +15550002222, got %s", config.Migration.AllowedPairs[0].To)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error loading missing config")
		}
	})
}
