// Package config loads runtime configuration for the Daybook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file (see parseFile) selected via flags: -c or -config.
//     JSON by default, YAML when the file ends in .yaml or .yml.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the diary server
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-z string   IANA timezone of the diary calendar
//	-l string   log level
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8000",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "database_path": "daybook.db",
//	  "timezone": "Europe/Riga",
//	  "log_level": "info"
//	}
package config
