package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Auth      AuthConfig      `toml:"auth"`
	Migration MigrationConfig `toml:"migration"`
	Export    ExportConfig    `toml:"export"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig identifies the administrator and the process-wide secret used
// for session tokens and backup payloads.
type AuthConfig struct {
	AdminPhone       string `toml:"admin_phone"`
	EncryptionSecret string `toml:"encryption_secret"`
}

// MigrationPair is an allow-listed source/destination number pair.
type MigrationPair struct {
	From string `toml:"from"`
	To   string `toml:"to"`
}

// MigrationConfig controls migration pipeline pacing and authorization.
type MigrationConfig struct {
	StageDelaySeconds int             `toml:"stage_delay_seconds"`
	AllowedPairs      []MigrationPair `toml:"allowed_pairs"`
}

// ExportConfig contains settings for file exports.
type ExportConfig struct {
	OutputDir string `toml:"output_dir"`
}

// StageDelay returns the configured inter-stage pause as a [time.Duration].
func (c MigrationConfig) StageDelay() time.Duration {
	return time.Duration(c.StageDelaySeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
