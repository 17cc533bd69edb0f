package blockcache

import (
	"context"
	"encoding/json"
	"errors"
	"math"
)

// ErrNotFound is returned by Daemon implementations when the daemon answers
// with not-found semantics for an id, hash, height, or address.
var ErrNotFound = errors.New("not found")

// Daemon is the pull-only, height-addressable REST surface of the BSQ
// daemon. Implementations must treat connection refusal and timeouts as
// plain errors; the cache decides how to recover.
type Daemon interface {
	// Stats fetches the aggregate chain statistics. Minted and burnt are
	// returned in the daemon's centi-BSQ form; the cache renormalizes them.
	Stats(ctx context.Context) (Stats, error)

	// BlockAtHeight fetches a single block by height.
	BlockAtHeight(ctx context.Context, height int) (Block, error)

	// BlockByHash fetches a single block by hash.
	BlockByHash(ctx context.Context, hash string) (Block, error)

	// Transaction fetches a single transaction by id. It returns
	// ErrNotFound when the daemon does not know the id.
	Transaction(ctx context.Context, txID string) (Transaction, error)

	// TransactionsPaginated fetches a page of transactions, optionally
	// restricted to the given type tags.
	TransactionsPaginated(ctx context.Context, start, limit int, txTypes []string) ([]Transaction, error)

	// TransactionsForAddress fetches every transaction touching the
	// address.
	TransactionsForAddress(ctx context.Context, address string) ([]Transaction, error)

	// DaoCycles fetches the governance cycle history as raw JSON.
	DaoCycles(ctx context.Context) (json.RawMessage, error)
}

// PriceSource supplies the latest known reference price for a currency code
// or a market pair such as "btc_usd". Implementations return NaN when no
// price is available.
type PriceSource interface {
	Price(currencyOrPair string) float64
}

// nopPriceSource is used when no price source is configured.
type nopPriceSource struct{}

func (nopPriceSource) Price(string) float64 {
	return math.NaN()
}
