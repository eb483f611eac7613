package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/dblook/internal/flagx"
)

var knownFlags = []string{"-a", "-i", "-s", "-d", "-r", "-p", "-k", "-lb", "-l", "-lf"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend server
//	-i int      online check interval in seconds
//	-s string   storage driver (sqlite, redis, memory, none)
//	-d string   sqlite database file
//	-r string   redis URL
//	-p string   storage key prefix
//	-k string   passphrase for encrypting persisted state
//	-lb string  log backend (slog, zerolog)
//	-l string   log level
//	-lf string  log format (text, json)
//
// Note: The function filters args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the backend server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver: sqlite, redis, memory, none")
	fs.StringVar(&cfg.StoragePath, "d", cfg.StoragePath, "sqlite database file")
	fs.StringVar(&cfg.RedisURL, "r", cfg.RedisURL, "redis URL")
	fs.StringVar(&cfg.StoragePrefix, "p", cfg.StoragePrefix, "storage key prefix")
	fs.StringVar(&cfg.Passphrase, "k", cfg.Passphrase, "passphrase for encrypting persisted state")
	fs.StringVar(&cfg.LogBackend, "lb", cfg.LogBackend, "log backend: slog, zerolog")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "lf", cfg.LogFormat, "log format: text, json")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
