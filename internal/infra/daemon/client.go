// Package daemon is the typed client for the BSQ daemon's explorer REST
// surface. It decodes the raw bodies fetched by the rest transport into the
// shapes the block cache and market store consume, and maps the daemon's
// not-found answers to the sentinel the cache understands.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/bisq-network/bsqindex/internal/blockcache"
	"github.com/bisq-network/bsqindex/internal/marketdata"
	"github.com/bisq-network/bsqindex/internal/pkg/transport/rest"
)

// typeFilterNone is the path placeholder the daemon expects when no
// transaction type filter applies.
const typeFilterNone = "~"

// Client talks to one daemon instance.
type Client struct {
	rest rest.Client
}

// Compile-time assertions for the surfaces the client serves.
var (
	_ blockcache.Daemon = (*Client)(nil)
	_ marketdata.Feed   = (*Client)(nil)
)

// NewClient wraps the given REST transport.
func NewClient(restClient rest.Client) *Client {
	return &Client{rest: restClient}
}

// Stats implements the blockcache.Daemon interface.
func (c *Client) Stats(ctx context.Context) (blockcache.Stats, error) {
	var stats blockcache.Stats
	if err := c.get(ctx, &stats, "dao", "get-bsq-stats"); err != nil {
		return blockcache.Stats{}, err
	}
	return stats, nil
}

// BlockAtHeight implements the blockcache.Daemon interface.
func (c *Client) BlockAtHeight(ctx context.Context, height int) (blockcache.Block, error) {
	var block blockcache.Block
	if err := c.get(ctx, &block, "blocks", "get-bsq-block-by-height", strconv.Itoa(height)); err != nil {
		return blockcache.Block{}, err
	}
	return block, nil
}

// BlockByHash implements the blockcache.Daemon interface.
func (c *Client) BlockByHash(ctx context.Context, hash string) (blockcache.Block, error) {
	var block blockcache.Block
	if err := c.get(ctx, &block, "blocks", "get-bsq-block-by-hash", hash); err != nil {
		return blockcache.Block{}, err
	}
	return block, nil
}

// Transaction implements the blockcache.Daemon interface.
func (c *Client) Transaction(ctx context.Context, txID string) (blockcache.Transaction, error) {
	var tx blockcache.Transaction
	if err := c.get(ctx, &tx, "transactions", "get-bsq-tx", txID); err != nil {
		return blockcache.Transaction{}, err
	}
	return tx, nil
}

// TransactionsPaginated implements the blockcache.Daemon interface.
func (c *Client) TransactionsPaginated(ctx context.Context, start, limit int, txTypes []string) ([]blockcache.Transaction, error) {
	filter := typeFilterNone
	if len(txTypes) > 0 {
		filter = strings.Join(txTypes, "~")
	}

	var txs []blockcache.Transaction
	if err := c.get(ctx, &txs, "transactions", "query-txs-paginated", strconv.Itoa(start), strconv.Itoa(limit), filter); err != nil {
		return nil, err
	}
	return txs, nil
}

// TransactionsForAddress implements the blockcache.Daemon interface.
func (c *Client) TransactionsForAddress(ctx context.Context, address string) ([]blockcache.Transaction, error) {
	var txs []blockcache.Transaction
	if err := c.get(ctx, &txs, "transactions", "get-bsq-tx-for-addr", address); err != nil {
		return nil, err
	}
	return txs, nil
}

// DaoCycles implements the blockcache.Daemon interface. The cycle history is
// kept as raw JSON; nothing downstream inspects it.
func (c *Client) DaoCycles(ctx context.Context) (json.RawMessage, error) {
	body, err := c.rest.Get(ctx, "dao", "query-dao-cycles")
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("dao cycles: invalid json body")
	}
	return json.RawMessage(body), nil
}

// Currencies implements the marketdata.Feed interface.
func (c *Client) Currencies(ctx context.Context) ([]marketdata.Currency, error) {
	var currencies []marketdata.Currency
	if err := c.get(ctx, &currencies, "markets", "get-currencies"); err != nil {
		return nil, err
	}
	return currencies, nil
}

// Offers implements the marketdata.Feed interface.
func (c *Client) Offers(ctx context.Context) ([]marketdata.Offer, error) {
	var offers []marketdata.Offer
	if err := c.get(ctx, &offers, "markets", "get-offers"); err != nil {
		return nil, err
	}
	return offers, nil
}

// Trades implements the marketdata.Feed interface.
func (c *Client) Trades(ctx context.Context, newestMs, oldestMs int64) ([]marketdata.Trade, error) {
	var trades []marketdata.Trade
	err := c.get(ctx, &trades, "markets", "get-trades",
		strconv.FormatInt(newestMs, 10), strconv.FormatInt(oldestMs, 10))
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// get fetches the resource and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, out any, segments ...string) error {
	body, err := c.rest.Get(ctx, segments...)
	if err != nil {
		return mapNotFound(err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", strings.Join(segments, "/"), err)
	}
	return nil
}

// mapNotFound translates an HTTP 404 into the cache's sentinel.
func mapNotFound(err error) error {
	var statusErr *rest.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", blockcache.ErrNotFound, err)
	}
	return err
}
