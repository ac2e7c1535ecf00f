package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables recognized by parseEnv.
const (
	envBaseURL        = "CVADVISOR_BASE_URL"
	envRequestTimeout = "CVADVISOR_REQUEST_TIMEOUT"
	envDataDir        = "CVADVISOR_DATA_DIR"
	envTokenTTL       = "CVADVISOR_TOKEN_TTL"
)

// parseEnv overlays cfg with values from the process environment. A .env
// file in the working directory is loaded first; real environment variables
// win over the file. Durations use time.ParseDuration syntax ("90s", "2m").
// Malformed duration values are ignored rather than fatal.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(envRequestTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv(envDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(envTokenTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TokenTTL = d
		}
	}
}
