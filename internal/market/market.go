package market

import (
	"math/big"

	"github.com/gagliardetto/solana-go"

	"github.com/regolith-labs/ore-market/internal/constants"
)

// SwapDirection selects which side of the pool the trader is buying.
type SwapDirection uint8

const (
	// DirectionBuy swaps quote tokens for base tokens.
	DirectionBuy SwapDirection = iota

	// DirectionSell swaps base tokens for quote tokens.
	DirectionSell
)

func (d SwapDirection) String() string {
	if d == DirectionBuy {
		return "buy"
	}
	return "sell"
}

// SwapPrecision selects whether the caller fixes the input or output amount.
type SwapPrecision uint8

const (
	// PrecisionExactIn fixes the input amount; the output is computed.
	PrecisionExactIn SwapPrecision = iota

	// PrecisionExactOut fixes the output amount; the required input is computed.
	PrecisionExactOut
)

func (p SwapPrecision) String() string {
	if p == PrecisionExactIn {
		return "exact_in"
	}
	return "exact_out"
}

// TokenType distinguishes the two sides of the pool.
type TokenType uint8

const (
	TokenBase TokenType = iota
	TokenQuote
)

// Clock carries the host-supplied slot and timestamp. The engine only reads
// it; it never waits on it.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// TokenParams tracks one side of the pool: the real balance backed by a
// vault and the virtual balance that participates in pricing but is never
// transferred.
type TokenParams struct {
	// Mint of the token.
	Mint solana.PublicKey

	// Amount of tokens held in liquidity.
	Balance uint64

	// Amount of virtual tokens held in liquidity.
	BalanceVirtual uint64
}

// Liquidity returns the total (real + virtual) liquidity, widened so curve
// products cannot overflow 64 bits.
func (t *TokenParams) Liquidity() *big.Int {
	return new(big.Int).SetUint64(t.Balance + t.BalanceVirtual)
}

// FeeParams tracks protocol fee accounting. Fees are always denominated in
// the quote token.
type FeeParams struct {
	// Cumulative protocol fees over the market's lifetime.
	Cumulative uint64

	// Fee rate in basis points.
	Rate uint64

	// Accrued fees not yet swept to the fee collector.
	Uncollected uint64
}

// Snapshot anchors the reference price used to size virtual limit orders.
// It is refreshed at most once per slot window.
type Snapshot struct {
	// Whether sandwich resistance is enabled (0 or 1).
	Enabled uint64

	// Base token liquidity at the time of the snapshot.
	BaseBalance uint64

	// Quote token liquidity at the time of the snapshot.
	QuoteBalance uint64

	// Slot-window boundary at which the snapshot was taken.
	Slot uint64
}

// VirtualLimitOrder is the synthetic order priced at the snapshot price.
// It is computed per swap and never persisted.
type VirtualLimitOrder struct {
	SizeInBase  *big.Int
	SizeInQuote *big.Int
}

func zeroOrder() VirtualLimitOrder {
	return VirtualLimitOrder{SizeInBase: new(big.Int), SizeInQuote: new(big.Int)}
}

// Market is a two-sided liquidity pool for one block's hashpower tokens.
// One market exists per block; it is reset wholesale at block rollover.
//
// A Market is not safe for concurrent use. The host must serialize all
// mutation of a given Market instance.
type Market struct {
	// Base token parameters.
	Base TokenParams

	// Quote token parameters.
	Quote TokenParams

	// Fee parameters.
	Fee FeeParams

	// Snapshot of the market state, used to anchor the reference price.
	Snapshot Snapshot

	// The id of the current block.
	BlockID uint64
}

// New returns a market initialized for the given block: the full hashpower
// token supply on the base side and virtual bootstrap liquidity on the
// quote side.
func New(blockID uint64, baseMint, quoteMint solana.PublicKey) *Market {
	m := &Market{}
	m.Reset(blockID, baseMint, quoteMint)
	return m
}

// Reset re-initializes the market for a new block. Fees are zeroed and the
// snapshot is cleared; the sandwich-resistance flag is preserved from the
// prior epoch (enabled on a fresh market).
func (m *Market) Reset(blockID uint64, baseMint, quoteMint solana.PublicKey) {
	enabled := uint64(1)
	if m.BlockID != 0 || m.Snapshot.Slot != 0 {
		enabled = m.Snapshot.Enabled
	}
	m.Base = TokenParams{
		Mint:           baseMint,
		Balance:        constants.HashTokenSupply,
		BalanceVirtual: 0,
	}
	m.Quote = TokenParams{
		Mint:           quoteMint,
		Balance:        0,
		BalanceVirtual: constants.VirtualQuoteLiquidity,
	}
	m.Fee = FeeParams{
		Cumulative:  0,
		Rate:        constants.FeeRateBps,
		Uncollected: 0,
	}
	m.Snapshot = Snapshot{
		Enabled:      enabled,
		BaseBalance:  0,
		QuoteBalance: 0,
		Slot:         0,
	}
	m.BlockID = blockID
}

// SandwichResistanceEnabled reports whether the virtual-limit-order path is
// active. When false, all trades fill purely via the curve.
func (m *Market) SandwichResistanceEnabled() bool {
	return m.Snapshot.Enabled == 1
}
