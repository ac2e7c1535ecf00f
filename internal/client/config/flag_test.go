package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlags_Overrides(t *testing.T) {
	setArgs(t, "-a", "http://flag-host/api", "-t", "90", "-d", "/flag-data")

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "http://flag-host/api", cfg.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/flag-data", cfg.DataDir)
}

func TestParseFlags_NoFlags_KeepsDefaults(t *testing.T) {
	setArgs(t)

	var cfg Config
	cfg.LoadDefaults()
	before := cfg
	parseFlags(&cfg)

	assert.Equal(t, before, cfg)
}

func TestParseFlags_IgnoresForeignFlags(t *testing.T) {
	setArgs(t, "-c", "conf.json", "-a", "http://flag-host/api")

	var cfg Config
	cfg.LoadDefaults()
	parseFlags(&cfg)

	assert.Equal(t, "http://flag-host/api", cfg.BaseURL)
}
