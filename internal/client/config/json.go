package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/dblook/internal/flagx"
	"github.com/dmitrijs2005/dblook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	StorageDriver       string         `json:"storage_driver"`
	StoragePath         string         `json:"storage_path"`
	RedisURL            string         `json:"redis_url"`
	StoragePrefix       string         `json:"storage_prefix"`
	Passphrase          string         `json:"passphrase"`
	StorageTimeout      timex.Duration `json:"storage_timeout"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	LogBackend          string         `json:"log_backend"`
	LogLevel            string         `json:"log_level"`
	LogFormat           string         `json:"log_format"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flag (flagx.ConfigPath). If no
// path is given, nothing is loaded. Fields missing from the file keep their
// current value. Panics on read or unmarshal errors.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config, args []string) {
	jsonConfigFile := flagx.ConfigPath(args)
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.StorageDriver, jc.StorageDriver)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.RedisURL, jc.RedisURL)
	setString(&cfg.StoragePrefix, jc.StoragePrefix)
	setString(&cfg.Passphrase, jc.Passphrase)
	setString(&cfg.LogBackend, jc.LogBackend)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.StorageTimeout.Duration > 0 {
		cfg.StorageTimeout = jc.StorageTimeout.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
