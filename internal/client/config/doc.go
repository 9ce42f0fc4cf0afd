// Package config loads runtime configuration for the AgriSense CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c / -config, or $AGRISENSE_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL (default http://localhost:8000)
//	-d string   local data directory
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-m string   Prometheus listen address
//	-l string   log level
//	-k string   vault passphrase
//
// # JSON schema
//
// Durations are strings like "10s" or integer nanoseconds:
//
//	{
//	  "base_url": "https://agrisense.example/api",
//	  "data_dir": "/var/lib/agrisense",
//	  "request_timeout": "15s",
//	  "online_check_interval": "5s",
//	  "metrics_addr": "127.0.0.1:9464",
//	  "log_level": "debug",
//	  "rate_limit": 10,
//	  "rate_burst": 20
//	}
package config
