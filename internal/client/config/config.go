// Package config assembles the runtime settings of the CV Advisor CLI from
// layered sources: built-in defaults, then a JSON config file, then
// environment variables (a .env file is honored), then command-line flags.
// Later sources take precedence.
package config

import "time"

// Config holds runtime settings for the CLI.
//
// Fields:
//   - BaseURL: root of the backend API, including any path prefix.
//   - RequestTimeout: per-request HTTP timeout; uploads included.
//   - DataDir: directory for the local session database. Empty means a
//     "cvadvisor" subdirectory of the working directory.
//   - TokenTTL: client-side lifetime of a stored bearer token.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DataDir        string
	TokenTTL       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:3000/Resume_Analyzer_db"
	c.RequestTimeout = 60 * time.Second
	c.DataDir = ""
	c.TokenTTL = 7 * 24 * time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
