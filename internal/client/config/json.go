package config

import (
	"encoding/json"
	"os"

	"github.com/mkalvans/cvadvisor/internal/flagx"
	"github.com/mkalvans/cvadvisor/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so the file can specify durations either as strings like
// "60s" or as integer nanoseconds. Values are copied into the runtime
// Config afterwards.
type JSONConfig struct {
	BaseURL        string         `json:"base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DataDir        string         `json:"data_dir"`
	TokenTTL       timex.Duration `json:"token_ttl"`
}

// parseJSON overlays cfg with values loaded from the JSON file named by the
// -c/-config flag. Absent flag means no JSON stage. Only fields present in
// the file override the current values.
func parseJSON(cfg *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.TokenTTL.Duration != 0 {
		cfg.TokenTTL = jc.TokenTTL.Duration
	}
}
