package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/agrisense/internal/filex"
)

// Config holds runtime settings for the AgriSense terminal client.
//
// Units: RequestTimeout and OnlineCheckInterval are time.Duration values;
// RateLimit is requests per second (zero disables limiting).
type Config struct {
	BaseURL             string
	DataDir             string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	MetricsAddr         string
	LogLevel            string
	VaultPassphrase     string
	RateLimit           float64
	RateBurst           int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8000"
	c.DataDir = filex.DefaultDataDir()
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
	c.MetricsAddr = ""
	c.LogLevel = "warn"
	c.VaultPassphrase = ""
	c.RateLimit = 10
	c.RateBurst = 20
}

// LoadConfig constructs a Config from defaults, then the JSON file (if any)
// and finally the command-line flags. Later sources take precedence.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
