// Package blockcache owns the authoritative in-memory set of fetched BSQ
// blocks and transactions. It serves height windows from cache, backfills
// gaps on demand from the daemon, and maintains the derived hash, tx-id,
// and address indices, which are rebuilt in full whenever the block set
// changes.
//
// The cache is memory-only by design: it is rebuilt from the daemon on
// every restart and never persisted.
package blockcache

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/bisq-network/bsqindex/internal/pkg/logger"
	"github.com/bisq-network/bsqindex/internal/pkg/resilience/retry"
	"github.com/bisq-network/bsqindex/internal/pkg/types"

	"go.uber.org/ratelimit"
)

const (
	// defaultPrefillCount is how many blocks are pre-filled from the tip
	// the first time a stats poll finds the cache (nearly) empty.
	defaultPrefillCount = 30

	// defaultBackfillRate caps backfill fetches against the daemon, in
	// requests per second.
	defaultBackfillRate = 10
)

// Cache is the in-memory block/transaction cache. All mutation, including
// the index rebuild that follows it, is serialized behind one mutex; the
// timer-driven polls and on-demand backfills may otherwise overlap.
type Cache struct {
	mu sync.RWMutex

	daemon  Daemon
	prices  PriceSource
	retry   retry.Retry
	limiter ratelimit.Limiter

	prefillCount int

	blocks       map[int]Block  // height -> block, exactly one per height
	heightsDesc  []int          // cached heights, descending
	blockIndex   map[string]Block
	transactions []Transaction
	txIndex      map[string]Transaction
	addressIndex map[string][]Transaction

	stats     Stats
	daoCycles json.RawMessage
}

// config holds construction options for the cache.
type config struct {
	prices       PriceSource
	retry        retry.Retry
	prefillCount int
	backfillRate int
}

// Option configures the cache at construction time.
type Option func(*config)

// WithPriceSource sets the reference price source used to derive the
// BSQ/BTC price, BSQ/USD price, and market cap on each stats refresh.
func WithPriceSource(p PriceSource) Option {
	return func(c *config) {
		c.prices = p
	}
}

// WithRetry overrides the retry policy applied to individual backfill
// fetches before a failure is swallowed.
func WithRetry(r retry.Retry) Option {
	return func(c *config) {
		c.retry = r
	}
}

// WithPrefillCount sets how many blocks are pre-filled from the tip on
// startup. Default: 30.
func WithPrefillCount(n int) Option {
	return func(c *config) {
		c.prefillCount = n
	}
}

// WithBackfillRate caps backfill fetches in requests per second.
// Default: 10.
func WithBackfillRate(rps int) Option {
	return func(c *config) {
		c.backfillRate = rps
	}
}

// New constructs an empty cache around the given daemon client.
func New(d Daemon, opts ...Option) *Cache {
	cfg := config{
		prices:       nopPriceSource{},
		retry:        retry.New(retry.WithAttempts(2)),
		prefillCount: defaultPrefillCount,
		backfillRate: defaultBackfillRate,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Cache{
		daemon:       d,
		prices:       cfg.prices,
		retry:        cfg.retry,
		limiter:      ratelimit.New(cfg.backfillRate),
		prefillCount: cfg.prefillCount,
		blocks:       make(map[int]Block),
		blockIndex:   make(map[string]Block),
		txIndex:      make(map[string]Transaction),
		addressIndex: make(map[string][]Transaction),
	}
}

// Connected reports whether a stats poll has ever succeeded. Until then
// every read API returns empty results instead of reaching upstream.
func (c *Cache) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Height > 0
}

// GetStats returns the latest aggregate chain statistics.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// GetLatestBlockHeight returns the current chain tip height, or 0 when not
// yet connected.
func (c *Cache) GetLatestBlockHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats.Height
}

// GetDaoCycles returns the governance cycle history as fetched, or nil when
// it has not been retrieved yet.
func (c *Cache) GetDaoCycles() json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.daoCycles
}

// CachedBlockCount returns how many blocks the cache currently holds.
func (c *Cache) CachedBlockCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.blocks)
}

// SyncTip fetches fresh chain statistics and grows the cache to cover the
// current tip: a pre-fill from the tip while the cache holds fewer blocks
// than the configured pre-fill count, then a single-block fetch whenever
// the tip height changes. It returns an error only when the stats fetch
// itself fails; block fetch failures are logged and swallowed.
func (c *Cache) SyncTip(ctx context.Context) error {
	stats, err := c.daemon.Stats(ctx)
	if err != nil {
		return err
	}

	stats.Minted /= 100
	stats.Burnt /= 100
	if bsqPrice := c.prices.Price("BSQ"); !math.IsNaN(bsqPrice) {
		stats.BsqPrice = bsqPrice
		if usdPrice := bsqPrice * c.prices.Price("USD"); !math.IsNaN(usdPrice) {
			stats.UsdPrice = usdPrice
			stats.MarketCap = usdPrice * (stats.Minted - stats.Burnt)
		}
	}

	c.mu.Lock()
	c.stats = stats
	cached := len(c.blocks)
	topHeight := -1
	if len(c.heightsDesc) > 0 {
		topHeight = c.heightsDesc[0]
	}
	c.mu.Unlock()

	logger.Info(ctx, "chain stats received", "height", stats.Height, "cached_blocks", cached)

	switch {
	case cached < c.prefillCount:
		c.backfill(ctx, stats.Height, c.prefillCount)
	case topHeight != stats.Height:
		c.backfill(ctx, stats.Height, 1)
	}

	return nil
}

// FetchDaoCycles retrieves the governance cycle history once.
func (c *Cache) FetchDaoCycles(ctx context.Context) error {
	cycles, err := c.daemon.DaoCycles(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.daoCycles = cycles
	c.mu.Unlock()
	return nil
}

// GetBlocks serves a window of blocks. fromHeight is an offset from the
// chain tip: the window starts at tip-fromHeight and walks down for limit
// blocks. The second return value is the chain span (tip minus genesis
// height), not the number of cached blocks.
//
// The first pass serves strictly from cache and short-circuits on the first
// missing height. If it comes up short, one backfill pass fetches only the
// missing heights (individual failures logged and skipped), the indices are
// rebuilt once, and the cache pass runs again.
func (c *Cache) GetBlocks(ctx context.Context, fromHeight, limit int) ([]Block, int, error) {
	if !c.Connected() {
		return nil, 0, nil
	}

	c.mu.RLock()
	tip := c.stats.Height
	genesis := c.stats.GenesisHeight
	cached := len(c.blocks)
	c.mu.RUnlock()

	start := tip - fromHeight
	if start > tip {
		limit -= start - tip
		start = tip
	}
	if start < 0 || limit <= 0 {
		return nil, cached, nil
	}

	blocks := c.readWindow(start, limit)
	if len(blocks) == limit {
		return blocks, tip - genesis, nil
	}

	c.backfill(ctx, start, limit)

	blocks = c.readWindow(start, limit)
	return blocks, tip - genesis, nil
}

// GetBlock returns the block with the given hash. Cached blocks are served
// directly; otherwise, when connected, a single by-hash fetch is attempted,
// and on success the block is cached, the stats are refreshed, and the
// indices are rebuilt. A miss on the daemon side yields (nil, nil).
func (c *Cache) GetBlock(ctx context.Context, hash string) (*Block, error) {
	c.mu.RLock()
	block, ok := c.blockIndex[hash]
	c.mu.RUnlock()
	if ok {
		return &block, nil
	}

	if !c.Connected() {
		return nil, nil
	}

	block, err := c.daemon.BlockByHash(ctx, hash)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.blocks[block.Height] = block
	c.rebuildLocked()
	c.mu.Unlock()

	if err := c.refreshStats(ctx); err != nil {
		logger.Warn(ctx, "stats refresh after by-hash fetch failed", "error", err)
	}

	return &block, nil
}

// GetTransaction returns the transaction with the given id via the daemon,
// indexing its containing block as a side effect. It returns (nil, nil)
// when not connected or when the daemon does not know the id.
func (c *Cache) GetTransaction(ctx context.Context, txID string) (*Transaction, error) {
	if !c.Connected() {
		return nil, nil
	}

	tx, err := c.daemon.Transaction(ctx, txID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	c.backfill(ctx, tx.BlockHeight, 1)
	return &tx, nil
}

// GetTransactions returns one page of transactions, optionally filtered by
// type tags, together with the total TXO-derived count the daemon reports
// through stats. Empty results are returned while not connected.
func (c *Cache) GetTransactions(ctx context.Context, start, length int, txTypes []string) ([]Transaction, int, error) {
	if !c.Connected() {
		return nil, 0, nil
	}

	txs, err := c.daemon.TransactionsPaginated(ctx, start, length, txTypes)
	if err != nil {
		return nil, 0, err
	}

	c.mu.RLock()
	total := c.stats.UnspentTxos + c.stats.SpentTxos
	c.mu.RUnlock()
	return txs, total, nil
}

// GetAddress returns every transaction touching the address. It prefers the
// daemon's authoritative answer; while not connected it returns nil.
func (c *Cache) GetAddress(ctx context.Context, address string) ([]Transaction, error) {
	if !c.Connected() {
		return nil, nil
	}

	txs, err := c.daemon.TransactionsForAddress(ctx, address)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return txs, nil
}

// AddressTransactions serves the address index built from cached blocks,
// without touching the daemon.
func (c *Cache) AddressTransactions(address string) []Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.addressIndex[address]
}

// readWindow collects blocks by walking the requested heights descending
// from start. It stops at the first missing height and reports the partial
// result, so gaps are never skipped over.
func (c *Cache) readWindow(start, count int) []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]Block, 0, count)
	for height := start; height > start-count; height-- {
		block, ok := c.blocks[height]
		if !ok {
			return blocks
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// backfill performs one fetch pass over the missing heights in
// [start-count+1, start], walking down from start. Fetches run sequentially
// and rate limited; a failed height is logged and skipped so the rest of
// the batch still completes. All fetched blocks are inserted and the
// indices rebuilt exactly once at the end.
func (c *Cache) backfill(ctx context.Context, start, count int) {
	var fetched []Block

	for i, height := 0, start; i < count && height >= 0; i, height = i+1, height-1 {
		c.mu.RLock()
		_, ok := c.blocks[height]
		c.mu.RUnlock()
		if ok {
			continue
		}

		c.limiter.Take()

		var block Block
		err := c.retry.Execute(ctx, func() error {
			b, err := c.daemon.BlockAtHeight(ctx, height)
			if err != nil {
				return err
			}
			block = b
			return nil
		})
		if err != nil {
			logger.Warn(ctx, "block fetch failed during backfill", "height", height, "error", err)
			continue
		}

		fetched = append(fetched, block)
	}

	c.mu.Lock()
	for _, block := range fetched {
		c.blocks[block.Height] = block
	}
	c.rebuildLocked()
	c.mu.Unlock()
}

// refreshStats re-fetches the aggregate statistics without touching the
// block set. Used after a by-hash fetch extends the cache.
func (c *Cache) refreshStats(ctx context.Context) error {
	stats, err := c.daemon.Stats(ctx)
	if err != nil {
		return err
	}

	stats.Minted /= 100
	stats.Burnt /= 100

	c.mu.Lock()
	stats.BsqPrice = c.stats.BsqPrice
	stats.UsdPrice = c.stats.UsdPrice
	stats.MarketCap = c.stats.MarketCap
	c.stats = stats
	c.mu.Unlock()
	return nil
}

// rebuildLocked rebuilds every derived index from the block set. The caller
// must hold the write lock. Cost is O(total cached transactions).
func (c *Cache) rebuildLocked() {
	heights := make([]int, 0, len(c.blocks))
	for height := range c.blocks {
		heights = append(heights, height)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	c.heightsDesc = heights

	c.blockIndex = make(map[string]Block, len(c.blocks))
	c.transactions = c.transactions[:0]
	c.txIndex = make(map[string]Transaction)

	for _, height := range heights {
		block := c.blocks[height]
		c.blockIndex[block.Hash] = block
		for _, tx := range block.Txs {
			c.transactions = append(c.transactions, tx)
			c.txIndex[tx.ID] = tx
		}
	}

	addressIndex := types.NewDefaultMap[string, []Transaction](func() []Transaction { return nil })
	for _, tx := range c.transactions {
		addresses := types.NewSet[string]()
		for _, input := range tx.Inputs {
			if input.Address != "" {
				addresses.Add(input.Address)
			}
		}
		for _, output := range tx.Outputs {
			if output.Address != "" {
				addresses.Add(output.Address)
			}
		}
		for address := range addresses.ToIter() {
			addressIndex.Set(address, append(addressIndex.Get(address), tx))
		}
	}
	c.addressIndex = addressIndex.ToMap()
}

// isNotFound reports whether the daemon answered with not-found semantics.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
