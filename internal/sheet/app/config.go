package app

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Env       string `yaml:"env"`        // Environment (dev, prod) (default: dev)
	LogLevel  string `yaml:"log_level"`  // Log level (debug, info, warn, error) (default: info)
	LogFormat string `yaml:"log_format"` // Log format (json, text) (default: text)

	Storage  StorageConfig  `yaml:"storage"`
	Autosave AutosaveConfig `yaml:"autosave"`
}

type StorageConfig struct {
	// Backend selects the store driver: sqlite, redis or memory.
	Backend string `yaml:"backend"`

	// SQLitePath is the database file for the sqlite backend (default:
	// ./sheetvault.db).
	SQLitePath string `yaml:"sqlite_path"`

	Redis RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type AutosaveConfig struct {
	// Debounce is the quiet period after the last edit before a save fires.
	Debounce Duration `yaml:"debounce"`
}

// Duration parses yaml values like "500ms" or "2s"; yaml.v2 cannot decode
// those into time.Duration on its own.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// LoadConfig reads the optional yaml config file, then applies environment
// variable overrides on top. A missing file is not an error; everything has
// a default.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		Env:       "dev",
		LogLevel:  "info",
		LogFormat: "text",
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "sheetvault.db",
			Redis:      RedisConfig{Addr: "localhost:6379"},
		},
		Autosave: AutosaveConfig{Debounce: Duration(500 * time.Millisecond)},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Env = getEnvOrDefault("SHEETVAULT_ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("SHEETVAULT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("SHEETVAULT_LOG_FORMAT", cfg.LogFormat)
	cfg.Storage.Backend = getEnvOrDefault("SHEETVAULT_BACKEND", cfg.Storage.Backend)
	cfg.Storage.SQLitePath = getEnvOrDefault("SHEETVAULT_SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.Redis.Addr = getEnvOrDefault("SHEETVAULT_REDIS_ADDR", cfg.Storage.Redis.Addr)
	cfg.Storage.Redis.Password = getEnvOrDefault("SHEETVAULT_REDIS_PASSWORD", cfg.Storage.Redis.Password)
	cfg.Storage.Redis.DB = getEnvIntOrDefault("SHEETVAULT_REDIS_DB", cfg.Storage.Redis.DB)
	cfg.Autosave.Debounce = Duration(getEnvDurationOrDefault("SHEETVAULT_AUTOSAVE_DEBOUNCE", cfg.Autosave.Debounce.Std()))

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
