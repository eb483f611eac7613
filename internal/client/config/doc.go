// Package config loads runtime configuration for the dblook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the backend HTTP API
//	-i int      online status check interval (seconds)
//	-s string   storage driver: sqlite, redis, memory, none
//	-d string   sqlite database file
//	-r string   redis URL
//	-p string   storage key prefix
//	-k string   passphrase for encrypting persisted state
//	-lb string  log backend: slog, zerolog
//	-l string   log level
//	-lf string  log format: text, json
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8011",
//	  "online_check_interval": "3s",
//	  "storage_driver": "sqlite",
//	  "storage_path": "dblook.db",
//	  "redis_url": "redis://127.0.0.1:6379/0",
//	  "storage_prefix": "dblook:",
//	  "passphrase": "",
//	  "storage_timeout": "2s",
//	  "request_timeout": "10s",
//	  "log_backend": "slog",
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
