package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bisq-network/bsqindex/internal/marketdata"
	"github.com/bisq-network/bsqindex/internal/pkg/x/chflow"
	"github.com/bisq-network/bsqindex/internal/priceindex"
	"github.com/bisq-network/bsqindex/internal/statspoller"

	"github.com/urfave/cli/v3"
)

// startCommand returns the CLI command that runs the service: the stats and
// market polling loops plus the forwarder that feeds trade-derived BSQ
// prices into the reference price index.
//
// Usage example:
//
//	bsqindex start
//
// The process runs indefinitely until it receives an interrupt (SIGINT or
// SIGTERM).
func startCommand(poller statspoller.Service, store *marketdata.Store, prices *priceindex.Index) *cli.Command {
	return &cli.Command{
		Name:        "start",
		Description: "Starts the chain-stats and market-data polling loops.",
		Usage:       "Initializes and runs the service. Terminates gracefully on Ctrl+C or termination signals.",
		Action: func(ctx context.Context, c *cli.Command) error {
			quit := make(chan os.Signal, 1)
			defer close(quit)

			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			forwardCtx, stopForwarding := context.WithCancel(ctx)
			defer stopForwarding()
			go forwardPriceUpdates(forwardCtx, store, prices)

			if err := poller.Start(ctx); err != nil {
				return err
			}
			defer poller.Close()

			<-quit
			return nil
		},
	}
}

// forwardPriceUpdates pushes every recomputed BSQ reference price from the
// market store into the price index until the context is canceled.
func forwardPriceUpdates(ctx context.Context, store *marketdata.Store, prices *priceindex.Index) {
	for {
		price, ok := chflow.Receive(ctx, store.PriceUpdates())
		if !ok {
			return
		}
		prices.SetBsqPrice(price)
	}
}
