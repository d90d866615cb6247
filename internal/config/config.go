package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Auth modes
const (
	AuthLocal  = "local"
	AuthRemote = "remote"
)

// Config holds user preferences
type Config struct {
	ConfirmDelete bool `yaml:"confirm_delete" json:"confirm_delete"` // Require confirmation for delete

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging

	// Storage
	StorageDriver string `yaml:"storage_driver" json:"storage_driver"` // memory, sqlite, postgres, redis
	StorageDSN    string `yaml:"storage_dsn" json:"storage_dsn"`       // file path or connection URL
	Breaker       bool   `yaml:"breaker" json:"breaker"`               // circuit breaker for remote stores
	Passphrase    string `yaml:"-" json:"-"`                           // env only, enables encryption at rest

	// Auth
	AuthMode  string        `yaml:"auth_mode" json:"auth_mode"`   // local or remote
	ServerURL string        `yaml:"server_url" json:"server_url"` // API base URL for remote auth
	AuthDelay time.Duration `yaml:"auth_delay" json:"auth_delay"` // simulated latency of local auth

	// Server
	ServerAddr string `yaml:"server_addr" json:"server_addr"`
}

// Dir returns ~/.eisenhower
func Dir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		return ".eisenhower"
	}
	return filepath.Join(home, ".eisenhower")
}

// Path returns the config file location, EISENHOWER_CONFIG if set
func Path() string {
	return getEnv("EISENHOWER_CONFIG", filepath.Join(Dir(), "config.yaml"))
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	return &Config{
		ConfirmDelete: true,
		LogLevel:      "INFO",
		LogFile:       filepath.Join(Dir(), "logs", "eisenhower.log"),
		StorageDriver: "sqlite",
		StorageDSN:    filepath.Join(Dir(), "eisenhower.db"),
		Breaker:       true,
		AuthMode:      AuthLocal,
		ServerURL:     "http://localhost:8080",
		AuthDelay:     500 * time.Millisecond,
		ServerAddr:    ":8080",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

// applyEnv lets EISENHOWER_* variables override file settings
func (c *Config) applyEnv() {
	c.ConfirmDelete = getEnvBool("EISENHOWER_CONFIRM_DELETE", c.ConfirmDelete)
	c.LogLevel = getEnv("EISENHOWER_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("EISENHOWER_LOG_FILE", c.LogFile)
	c.LogConsole = getEnvBool("EISENHOWER_LOG_CONSOLE", c.LogConsole)
	c.StorageDriver = getEnv("EISENHOWER_STORAGE_DRIVER", c.StorageDriver)
	c.StorageDSN = getEnv("EISENHOWER_STORAGE_DSN", c.StorageDSN)
	c.Breaker = getEnvBool("EISENHOWER_BREAKER", c.Breaker)
	c.Passphrase = getEnv("EISENHOWER_PASSPHRASE", c.Passphrase)
	c.AuthMode = getEnv("EISENHOWER_AUTH_MODE", c.AuthMode)
	c.ServerURL = getEnv("EISENHOWER_SERVER_URL", c.ServerURL)
	c.AuthDelay = getEnvDuration("EISENHOWER_AUTH_DELAY", c.AuthDelay)
	c.ServerAddr = getEnv("EISENHOWER_SERVER_ADDR", c.ServerAddr)
}

// Validate checks enumerated settings
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	switch c.AuthMode {
	case AuthLocal, AuthRemote:
	default:
		return fmt.Errorf("unknown auth mode %q", c.AuthMode)
	}
	if c.AuthDelay < 0 {
		return errors.New("auth delay cannot be negative")
	}
	return nil
}

// Load reads a .env file if present, then the config file, then the
// environment
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFrom(Path())
}

// LoadFrom loads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to Path()
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
