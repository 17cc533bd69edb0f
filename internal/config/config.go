// Package config loads the process configuration from environment variables
// prefixed with BSQINDEX_.
package config

import (
	"time"

	"github.com/bisq-network/bsqindex/internal/pkg/validation"

	"github.com/kelseyhightower/envconfig"
)

// Config is the full process configuration. Defaults target a single local
// daemon.
type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	DaemonBaseURL string        `envconfig:"DAEMON_BASE_URL" default:"http://127.0.0.1:8081/api/v1/explorer" validate:"required,url"`
	DaemonTimeout time.Duration `envconfig:"DAEMON_TIMEOUT" default:"5s"`

	StatsPollInterval     time.Duration `envconfig:"STATS_POLL_INTERVAL" default:"20s" validate:"min=1s"`
	MarketRefreshInterval time.Duration `envconfig:"MARKET_REFRESH_INTERVAL" default:"60s" validate:"min=1s"`

	PrefillBlocks        int `envconfig:"PREFILL_BLOCKS" default:"30" validate:"min=1"`
	BackfillRatePerSec   int `envconfig:"BACKFILL_RATE_PER_SEC" default:"10" validate:"min=1"`
	BackfillFetchRetries int `envconfig:"BACKFILL_FETCH_RETRIES" default:"2" validate:"min=1"`

	// StrictLow switches the OHLC low rule from the historical conditional to
	// a plain running minimum.
	StrictLow bool `envconfig:"STRICT_LOW" default:"false"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("bsqindex", &cfg); err != nil {
		return Config{}, err
	}

	if err := validation.Check(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
