package main

import (
	"context"

	"github.com/bisq-network/bsqindex/internal/aggregation"
	"github.com/bisq-network/bsqindex/internal/blockcache"
	"github.com/bisq-network/bsqindex/internal/config"
	"github.com/bisq-network/bsqindex/internal/handlers/cli"
	"github.com/bisq-network/bsqindex/internal/infra/daemon"
	"github.com/bisq-network/bsqindex/internal/marketdata"
	"github.com/bisq-network/bsqindex/internal/pkg/logger"
	"github.com/bisq-network/bsqindex/internal/pkg/resilience/retry"
	"github.com/bisq-network/bsqindex/internal/pkg/telemetry"
	"github.com/bisq-network/bsqindex/internal/pkg/transport/rest"
	"github.com/bisq-network/bsqindex/internal/pkg/validation"
	"github.com/bisq-network/bsqindex/internal/priceindex"
	"github.com/bisq-network/bsqindex/internal/statspoller"
)

const serviceName = "bsqindex"

func main() {
	ctx := context.Background()

	validation.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Init()
		logger.Fatal(ctx, "failed to load configuration", "error", err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			logger.Init()
			logger.Fatal(ctx, "failed to initialize telemetry", "error", err)
		}
		defer shutdown(ctx)
	}

	logger.Init(logger.WithLevel(cfg.LogLevel))
	defer logger.Sync()

	restClient := rest.NewClient(cfg.DaemonBaseURL, rest.WithTimeout(cfg.DaemonTimeout))
	daemonClient := daemon.NewClient(restClient)

	prices := priceindex.New()

	cache := blockcache.New(daemonClient,
		blockcache.WithPriceSource(prices),
		blockcache.WithPrefillCount(cfg.PrefillBlocks),
		blockcache.WithBackfillRate(cfg.BackfillRatePerSec),
		blockcache.WithRetry(retry.New(retry.WithAttempts(uint(cfg.BackfillFetchRetries)))),
	)

	lowMode := aggregation.LowModeLegacy
	if cfg.StrictLow {
		lowMode = aggregation.LowModeStrict
	}
	store := marketdata.NewStore(daemonClient, marketdata.WithLowMode(lowMode))

	poller, err := statspoller.New(cache, store,
		statspoller.WithStatsInterval(cfg.StatsPollInterval),
		statspoller.WithMarketInterval(cfg.MarketRefreshInterval),
	)
	if err != nil {
		logger.Fatal(ctx, "failed to build poller", "error", err)
	}

	if err := cli.Run(ctx, poller, store, prices); err != nil {
		logger.Fatal(ctx, "cli execution failed", "error", err)
	}
}
