package constants

// Fee math denominators
const (
	// DenominatorBps is the denominator for all basis-point fee calculations.
	DenominatorBps uint64 = 10_000

	// FeeRateBps is the default protocol fee rate (100 bps = 1%).
	FeeRateBps uint64 = 100
)

// Market bootstrap values
const (
	// SlotWindow is the size of the slot bucket within which the snapshot
	// price is frozen. This is the core sandwich-resistance parameter.
	SlotWindow uint64 = 4

	// HashTokenSupply is the fixed base-token supply minted to the market
	// at the start of each block.
	HashTokenSupply uint64 = 10_000_000

	// VirtualQuoteLiquidity is the phantom quote-side liquidity used to
	// bootstrap pricing before any real quote tokens enter the pool.
	VirtualQuoteLiquidity uint64 = 1_000_000_000
)

// Redis keys
const (
	RedisKeyRecentSwaps = "market:swaps:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSwaps = "market:swaps:live"
	PubSubChannelBuys  = "market:swaps:buy"
	PubSubChannelSells = "market:swaps:sell"
)

// Feature flag keys
const (
	FlagSandwichResistance = "market.sandwich_resistance"
	FlagTradingPaused      = "market.trading_paused"
)

// Limits
const (
	MaxRecentSwaps = 100
)
