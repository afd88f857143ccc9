package config

import (
	"encoding/json"
	"os"
	"time"

	"libapp/internal/flagx"
	"libapp/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Intervals
// can be given either as strings like "5s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	PollInterval       timex.Duration `json:"poll_interval"`
	DatabasePath       string         `json:"database_path"`
	StoragePassphrase  string         `json:"storage_passphrase"`
}

// parseJson overlays Config with values from the JSON file named by the
// -c/-config flag. No flag, no file, nothing happens. Read or parse errors
// panic: a config file that exists but cannot be used is a startup bug.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.StoragePassphrase != "" {
		cfg.StoragePassphrase = jc.StoragePassphrase
	}
}
