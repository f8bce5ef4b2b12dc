package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/constants"
	"github.com/regolith-labs/ore-market/internal/flags"
	"github.com/regolith-labs/ore-market/internal/market"
	"github.com/regolith-labs/ore-market/internal/models"
	"github.com/regolith-labs/ore-market/internal/rpc"
	"github.com/regolith-labs/ore-market/internal/storage"
)

// ErrTradingPaused is returned when the trading-paused flag is set.
var ErrTradingPaused = errors.New("trading is paused")

// Engine hosts a market and serializes all mutation of it. It stamps each
// swap with the current slot clock, rolls the market over at epoch
// boundaries, and publishes executed swaps to the cache feed.
type Engine struct {
	mu sync.Mutex
	m  *market.Market

	clock     rpc.SlotClock
	flagStore *flags.Store
	cache     storage.SwapCache
	logger    *logrus.Logger

	baseMint  solana.PublicKey
	quoteMint solana.PublicKey

	// Epoch geometry. Block id is a pure function of the slot:
	// firstBlock + slot/epochSlots. Zero epochSlots disables rollover.
	firstBlock uint64
	epochSlots uint64

	// Fee rate override; zero keeps the market default.
	feeRateBps uint64
}

// Config holds engine settings.
type Config struct {
	BaseMint   solana.PublicKey
	QuoteMint  solana.PublicKey
	FirstBlock uint64
	EpochSlots uint64
	FeeRateBps uint64
	Logger     *logrus.Logger
}

// New creates an engine with a freshly initialized market. The flag store
// and cache may be nil; toggles then stay at their defaults and no feed is
// published.
func New(clock rpc.SlotClock, flagStore *flags.Store, swapCache storage.SwapCache, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	e := &Engine{
		m:          market.New(cfg.FirstBlock, cfg.BaseMint, cfg.QuoteMint),
		clock:      clock,
		flagStore:  flagStore,
		cache:      swapCache,
		logger:     cfg.Logger,
		baseMint:   cfg.BaseMint,
		quoteMint:  cfg.QuoteMint,
		firstBlock: cfg.FirstBlock,
		epochSlots: cfg.EpochSlots,
		feeRateBps: cfg.FeeRateBps,
	}
	e.applyFeeRate()
	return e
}

// applyFeeRate overrides the market fee rate when configured. Caller holds
// the lock (or owns the engine exclusively, as in New).
func (e *Engine) applyFeeRate() {
	if e.feeRateBps != 0 {
		e.m.Fee.Rate = e.feeRateBps
	}
}

// Swap executes a swap against the live market and publishes the resulting
// event. Returns the executed swap record.
func (e *Engine) Swap(ctx context.Context, amount uint64, direction market.SwapDirection, precision market.SwapPrecision) (*models.SwapRecord, error) {
	paused, sandwich := e.readToggles(ctx)
	if paused {
		return nil, ErrTradingPaused
	}

	clock, err := e.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}

	e.mu.Lock()
	e.maybeRollover(clock)
	e.applySandwichToggle(sandwich)

	ev, err := e.m.Swap(amount, direction, precision, clock)
	blockID := e.m.BlockID
	e.mu.Unlock()

	if err != nil {
		return nil, err
	}

	record := models.NewSwapRecord(&ev, precision, blockID, clock.Slot)

	e.logger.WithFields(logrus.Fields{
		"block_id":  blockID,
		"slot":      clock.Slot,
		"direction": record.Direction,
		"precision": record.Precision,
		"base":      record.BaseToTransfer,
		"quote":     record.QuoteToTransfer,
		"fee":       record.QuoteFee,
	}).Info("swap executed")

	e.publish(ctx, record)
	return record, nil
}

// Quote prices a swap against a copy of the live market. Nothing is
// mutated or published.
func (e *Engine) Quote(ctx context.Context, amount uint64, direction market.SwapDirection, precision market.SwapPrecision) (*models.SwapRecord, error) {
	_, sandwich := e.readToggles(ctx)

	clock, err := e.clock.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("read clock: %w", err)
	}

	e.mu.Lock()
	e.maybeRollover(clock)
	e.applySandwichToggle(sandwich)
	scratch := *e.m
	e.mu.Unlock()

	ev, err := scratch.Swap(amount, direction, precision, clock)
	if err != nil {
		return nil, err
	}
	return models.NewSwapRecord(&ev, precision, scratch.BlockID, clock.Slot), nil
}

// MarketState returns a copy of the current market, rolled over to the
// current slot.
func (e *Engine) MarketState(ctx context.Context) (market.Market, market.Clock, error) {
	clock, err := e.clock.Now(ctx)
	if err != nil {
		return market.Market{}, market.Clock{}, fmt.Errorf("read clock: %w", err)
	}

	e.mu.Lock()
	e.maybeRollover(clock)
	snapshot := *e.m
	e.mu.Unlock()

	return snapshot, clock, nil
}

// CheckQuoteVault verifies the observed vault balance covers committed
// quote reserves plus uncollected fees.
func (e *Engine) CheckQuoteVault(ctx context.Context, vaultAmount uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.m.CheckQuoteVault(vaultAmount)
}

// maybeRollover resets the market when the slot has crossed into a new
// epoch. Caller holds the lock.
func (e *Engine) maybeRollover(clock market.Clock) {
	if e.epochSlots == 0 {
		return
	}
	blockID := e.firstBlock + clock.Slot/e.epochSlots
	if blockID == e.m.BlockID {
		return
	}

	prev := e.m.BlockID
	e.m.Reset(blockID, e.baseMint, e.quoteMint)
	e.applyFeeRate()
	e.logger.WithFields(logrus.Fields{
		"prev_block_id": prev,
		"block_id":      blockID,
		"slot":          clock.Slot,
	}).Info("market rolled over to new block")
}

// applySandwichToggle syncs the flag-store toggle onto the market. Caller
// holds the lock.
func (e *Engine) applySandwichToggle(enabled bool) {
	if enabled {
		e.m.Snapshot.Enabled = 1
	} else {
		e.m.Snapshot.Enabled = 0
	}
}

// readToggles fetches the trading flags, falling back to defaults (trading
// live, resistance on) when the store is unavailable.
func (e *Engine) readToggles(ctx context.Context) (paused, sandwich bool) {
	paused, sandwich = false, true
	if e.flagStore == nil {
		return
	}

	v, err := e.flagStore.GetBool(ctx, constants.FlagTradingPaused, false)
	if err != nil {
		e.logger.WithError(err).Warn("flag lookup failed, trading stays live")
	} else {
		paused = v
	}

	v, err = e.flagStore.GetBool(ctx, constants.FlagSandwichResistance, true)
	if err != nil {
		e.logger.WithError(err).Warn("flag lookup failed, sandwich resistance stays on")
	} else {
		sandwich = v
	}
	return
}

func (e *Engine) publish(ctx context.Context, record *models.SwapRecord) {
	if e.cache == nil {
		return
	}
	if err := e.cache.AddRecentSwap(ctx, record); err != nil {
		e.logger.WithError(err).Warn("failed to cache swap")
	}
	if err := e.cache.PublishSwap(ctx, record); err != nil {
		e.logger.WithError(err).Warn("failed to publish swap")
	}
}
