package config

import (
	"github.com/dmitrijs2005/daybook/internal/configx"
	"github.com/dmitrijs2005/daybook/internal/flagx"
	"github.com/dmitrijs2005/daybook/internal/timex"
)

// FileConfig is a DTO used exclusively for config file unmarshalling.
// Empty fields leave the corresponding Config value untouched.
type FileConfig struct {
	ServerURL           string         `json:"server_url" yaml:"server_url"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DatabasePath        string         `json:"database_path" yaml:"database_path"`
	Timezone            string         `json:"timezone" yaml:"timezone"`
	LogLevel            string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays Config with values loaded from the file named by -c or
// -config. It panics on read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	var fc FileConfig
	if err := configx.DecodeFile(path, &fc); err != nil {
		panic(err)
	}

	if fc.ServerURL != "" {
		cfg.ServerURL = fc.ServerURL
	}
	if fc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.DatabasePath != "" {
		cfg.DatabasePath = fc.DatabasePath
	}
	if fc.Timezone != "" {
		cfg.Timezone = fc.Timezone
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
