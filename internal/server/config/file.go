package config

import (
	"github.com/dmitrijs2005/daybook/internal/configx"
	"github.com/dmitrijs2005/daybook/internal/flagx"
	"github.com/dmitrijs2005/daybook/internal/timex"
)

// FileConfig is a DTO used only for reading config files (JSON or YAML).
// Interval fields use timex.Duration, which accepts both string values such
// as "30m" and integer nanoseconds. Empty fields keep the current value.
type FileConfig struct {
	EndpointAddr                string         `json:"endpoint_addr" yaml:"endpoint_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ExportURLValidity           timex.Duration `json:"export_url_validity" yaml:"export_url_validity"`
	ListLimit                   int            `json:"list_limit" yaml:"list_limit"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile loads the file named by -c or -config into config. It panics
// when the file cannot be read or decoded.
func parseFile(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	c := &FileConfig{}
	if err := configx.DecodeFile(path, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if c.ExportURLValidity.Duration != 0 {
		config.ExportURLValidity = c.ExportURLValidity.Duration
	}
	if c.ListLimit > 0 {
		config.ListLimit = c.ListLimit
	}
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
