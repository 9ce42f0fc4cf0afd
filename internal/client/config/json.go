package config

import (
	"os"

	"github.com/dmitrijs2005/agrisense/internal/flagx"
	"github.com/dmitrijs2005/agrisense/internal/timex"
	"github.com/goccy/go-json"
)

// JsonConfig is the on-disk shape of the configuration file. Absent fields
// leave the current value untouched.
type JsonConfig struct {
	BaseURL             *string         `json:"base_url"`
	DataDir             *string         `json:"data_dir"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	MetricsAddr         *string         `json:"metrics_addr"`
	LogLevel            *string         `json:"log_level"`
	VaultPassphrase     *string         `json:"vault_passphrase"`
	RateLimit           *float64        `json:"rate_limit"`
	RateBurst           *int            `json:"rate_burst"`
}

// parseJson overlays cfg with the file named by -c/-config in args, or by
// $AGRISENSE_CONFIG. It panics on read or decode errors.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setIf(&cfg.BaseURL, jc.BaseURL)
	setIf(&cfg.DataDir, jc.DataDir)
	setIf(&cfg.MetricsAddr, jc.MetricsAddr)
	setIf(&cfg.LogLevel, jc.LogLevel)
	setIf(&cfg.VaultPassphrase, jc.VaultPassphrase)
	setIf(&cfg.RateLimit, jc.RateLimit)
	setIf(&cfg.RateBurst, jc.RateBurst)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
