package marketdata

import "context"

// Feed is the upstream source of market snapshots. Implementations fetch
// from the daemon's markets endpoints and decode into the upstream shapes.
type Feed interface {
	// Currencies fetches the full currency metadata table.
	Currencies(ctx context.Context) ([]Currency, error)

	// Offers fetches every open offer.
	Offers(ctx context.Context) ([]Offer, error)

	// Trades fetches trades in the [oldestMs, newestMs] window. Both bounds
	// are unix milliseconds; zero bounds ask for the full history.
	Trades(ctx context.Context, newestMs, oldestMs int64) ([]Trade, error)
}
