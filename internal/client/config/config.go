// Package config loads runtime settings for the libapp client.
//
// Sources are applied in order, later ones overriding earlier ones:
// built-in defaults, environment (optionally seeded from a .env file),
// a JSON config file given via -c/-config, and command-line flags.
package config

import "time"

// Config holds runtime settings for the libapp client.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend, e.g. "http://localhost:8080".
//   - PollInterval: how often an active feed polls for new books.
//   - DatabasePath: sqlite file holding local client state.
//   - StoragePassphrase: passphrase the session encryption key is derived from.
type Config struct {
	ServerEndpointAddr string
	PollInterval       time.Duration
	DatabasePath       string
	StoragePassphrase  string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:8080"
	c.PollInterval = 5 * time.Second
	c.DatabasePath = "libapp.db"
	c.StoragePassphrase = "libapp-local-storage"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, JSON (if present), and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
