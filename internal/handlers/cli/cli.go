// Package cli is the command-line entrypoint for the bsqindex service.
package cli

import (
	"context"
	"os"

	"github.com/bisq-network/bsqindex/internal/marketdata"
	"github.com/bisq-network/bsqindex/internal/priceindex"
	"github.com/bisq-network/bsqindex/internal/statspoller"

	"github.com/urfave/cli/v3"
)

// Run registers the available commands and executes the CLI application.
//
// Parameters:
//   - ctx: Context used to control the lifecycle of the CLI application.
//   - poller: The polling service that keeps the cache and market data fresh.
//   - store: The market-data store whose price updates feed the price index.
//   - prices: The reference price index consulted by the stats derivation.
func Run(ctx context.Context, poller statspoller.Service, store *marketdata.Store, prices *priceindex.Index) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "bsqindex",
		Description:           "Command-line interface for running the BSQ chain cache and market-data service.",
		Usage:                 "bsqindex [command] [flags]",
		Commands: []*cli.Command{
			startCommand(poller, store, prices),
		},
	}

	return app.Run(ctx, os.Args)
}
