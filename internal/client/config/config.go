package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the dblook CLI.
//
// Units: OnlineCheckInterval, StorageTimeout and RequestTimeout are
// time.Duration values (e.g., 3*time.Second).
type Config struct {
	// ServerURL is the base URL of the backend HTTP API.
	ServerURL           string
	OnlineCheckInterval time.Duration

	// StorageDriver selects where client state is persisted:
	// sqlite, redis, memory or none.
	StorageDriver string
	StoragePath   string
	RedisURL      string
	StoragePrefix string
	// Passphrase, when set, encrypts persisted state at rest.
	Passphrase string

	StorageTimeout time.Duration
	RequestTimeout time.Duration

	LogBackend string
	LogLevel   string
	LogFormat  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8011"
	c.OnlineCheckInterval = 3 * time.Second
	c.StorageDriver = "sqlite"
	c.StoragePath = "dblook.db"
	c.RedisURL = "redis://127.0.0.1:6379/0"
	c.StoragePrefix = "dblook:"
	c.Passphrase = ""
	c.StorageTimeout = 2 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogBackend = "slog"
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
