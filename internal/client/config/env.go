package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, seeding the
// environment from a .env file in the working directory when one exists.
// Variables already set in the environment win over the file.
//
// Recognized variables:
//
//	LIBAPP_SERVER    base URL of the backend
//	LIBAPP_POLL      poll interval, e.g. "5s"
//	LIBAPP_DB        path of the local sqlite database
//	LIBAPP_STORAGE_PASSPHRASE  local storage passphrase
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("LIBAPP_SERVER"); v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v := os.Getenv("LIBAPP_POLL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv("LIBAPP_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("LIBAPP_STORAGE_PASSPHRASE"); v != "" {
		cfg.StoragePassphrase = v
	}
}
