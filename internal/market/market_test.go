package market

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regolith-labs/ore-market/internal/constants"
)

var (
	testBaseMint  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testQuoteMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func newTestMarket() *Market {
	return &Market{
		Base: TokenParams{
			Mint:    testBaseMint,
			Balance: 1_000_000_000,
		},
		Quote: TokenParams{
			Mint:    testQuoteMint,
			Balance: 1_000_000_000,
		},
		Fee: FeeParams{
			Rate: constants.FeeRateBps,
		},
		Snapshot: Snapshot{
			Enabled: 1,
		},
	}
}

func TestFeesBuyExactIn(t *testing.T) {
	m := newTestMarket()
	ev, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, Clock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(99_000), ev.QuoteViaCurve)
	assert.Equal(t, uint64(1_000), m.Fee.Uncollected) // protocol fee is 1%
}

func TestFeesSellExactIn(t *testing.T) {
	m := newTestMarket()
	ev, err := m.Swap(100_000, DirectionSell, PrecisionExactIn, Clock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(98_991), ev.QuoteViaCurve)
	assert.Equal(t, uint64(999), m.Fee.Uncollected)
}

func TestFeesBuyExactOut(t *testing.T) {
	m := newTestMarket()
	ev, err := m.Swap(100_000, DirectionBuy, PrecisionExactOut, Clock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(100_011), ev.QuoteViaCurve)
	assert.Equal(t, uint64(1_010), m.Fee.Uncollected)
}

func TestFeesSellExactOut(t *testing.T) {
	m := newTestMarket()
	ev, err := m.Swap(100_000, DirectionSell, PrecisionExactOut, Clock{})
	require.NoError(t, err)
	assert.Equal(t, uint64(101_010), ev.QuoteViaCurve)
	assert.Equal(t, uint64(1_010), m.Fee.Uncollected)
}

func TestFills(t *testing.T) {
	m := newTestMarket()
	clock := Clock{Slot: 10}

	// Small buy fills via curve; post swap, price is above snapshot.
	swap1, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap1.BaseViaCurve > 0 && swap1.QuoteViaCurve > 0)
	assert.True(t, swap1.BaseViaOrder == 0 && swap1.QuoteViaOrder == 0)

	// Large sell fills partially via order, partially via curve; post
	// swap, price is below snapshot.
	swap2, err := m.Swap(1_000_000, DirectionSell, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap2.BaseViaCurve > 0 && swap2.QuoteViaCurve > 0)
	assert.True(t, swap2.BaseViaOrder > 0 && swap2.QuoteViaOrder > 0)

	// Small buy fills entirely via order; price stays below snapshot.
	swap3, err := m.Swap(1_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap3.BaseViaCurve == 0 && swap3.QuoteViaCurve == 0)
	assert.True(t, swap3.BaseViaOrder > 0 && swap3.QuoteViaOrder > 0)

	// Large buy consumes the order and spills onto the curve.
	swap4, err := m.Swap(1_000_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap4.BaseViaCurve > 0 && swap4.QuoteViaCurve > 0)
	assert.True(t, swap4.BaseViaOrder > 0 && swap4.QuoteViaOrder > 0)
}

func TestSandwich(t *testing.T) {
	m := newTestMarket()
	m.Fee.Rate = 0
	m.Snapshot = Snapshot{}
	clock := Clock{Slot: 10}

	// Open sandwich.
	swap1, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap1.BaseViaCurve > 0 && swap1.QuoteViaCurve > 0)
	assert.True(t, swap1.BaseViaOrder == 0 && swap1.QuoteViaOrder == 0)

	// Victim buys.
	swap2, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap2.BaseViaCurve > 0 && swap2.QuoteViaCurve > 0)
	assert.True(t, swap2.BaseViaOrder == 0 && swap2.QuoteViaOrder == 0)

	// Close sandwich.
	swap3, err := m.Swap(swap1.BaseToTransfer, DirectionSell, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap3.BaseViaCurve > 0 && swap3.QuoteViaCurve > 0)
	assert.True(t, swap3.BaseViaOrder == 0 && swap3.QuoteViaOrder == 0)

	// Without sandwich resistance the attack succeeds.
	assert.Greater(t, swap3.QuoteToTransfer, swap1.QuoteToTransfer)
}

func TestSandwichResistance(t *testing.T) {
	m := newTestMarket()
	m.Fee.Rate = 0
	clock := Clock{Slot: 10}

	// Open sandwich.
	swap1, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap1.BaseViaCurve > 0 && swap1.QuoteViaCurve > 0)
	assert.True(t, swap1.BaseViaOrder == 0 && swap1.QuoteViaOrder == 0)

	// Victim buys.
	swap2, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap2.BaseViaCurve > 0 && swap2.QuoteViaCurve > 0)
	assert.True(t, swap2.BaseViaOrder == 0 && swap2.QuoteViaOrder == 0)

	// Close sandwich: the sell fills against the virtual order at the
	// frozen snapshot price, not against the attacker's own price impact.
	swap3, err := m.Swap(swap1.BaseToTransfer, DirectionSell, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, swap3.BaseViaCurve == 0 && swap3.QuoteViaCurve == 0)
	assert.True(t, swap3.BaseViaOrder > 0 && swap3.QuoteViaOrder > 0)

	// The attack fails.
	assert.LessOrEqual(t, swap3.QuoteToTransfer, swap1.QuoteToTransfer)
}

func TestVirtualLiquidity(t *testing.T) {
	m := newTestMarket()
	m.Fee.Rate = 0
	m.Quote.BalanceVirtual = 1_000_000_000
	m.Quote.Balance = 0
	clock := Clock{Slot: 10}

	// Sell fails: virtual liquidity prices the trade but cannot be paid out.
	_, err := m.Swap(100_000, DirectionSell, PrecisionExactIn, clock)
	require.Error(t, err)

	// Buy succeeds, adding real quote liquidity.
	ev, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, clock)
	require.NoError(t, err)
	assert.True(t, ev.BaseViaCurve > 0 && ev.QuoteViaCurve > 0)
	assert.True(t, ev.BaseViaOrder == 0 && ev.QuoteViaOrder == 0)
	assert.Equal(t, uint64(100_000), m.Quote.Balance)
	assert.Equal(t, uint64(1_000_000_000), m.Quote.BalanceVirtual)

	// Exact-out sell beyond the real balance fails.
	_, err = m.Swap(100_001, DirectionSell, PrecisionExactOut, clock)
	require.ErrorIs(t, err, ErrInsufficientLiquidity)

	// Exact-out sell of the full real balance drains it.
	ev, err = m.Swap(100_000, DirectionSell, PrecisionExactOut, clock)
	require.NoError(t, err)
	assert.True(t, ev.BaseViaCurve > 0 && ev.QuoteViaCurve > 0)
	assert.True(t, ev.BaseViaOrder > 0 && ev.QuoteViaOrder > 0)
	assert.Equal(t, uint64(0), m.Quote.Balance)
	assert.Equal(t, uint64(1_000_000_000), m.Quote.BalanceVirtual)
}

func TestInvariantNeverDecreases(t *testing.T) {
	m := newTestMarket()
	steps := []struct {
		amount    uint64
		direction SwapDirection
		precision SwapPrecision
		slot      uint64
	}{
		{100_000, DirectionBuy, PrecisionExactIn, 10},
		{1_000_000, DirectionSell, PrecisionExactIn, 10},
		{50_000, DirectionBuy, PrecisionExactOut, 11},
		{25_000, DirectionSell, PrecisionExactOut, 13},
		{1_000, DirectionBuy, PrecisionExactIn, 17},
		{300_000, DirectionSell, PrecisionExactIn, 18},
		{300_000, DirectionBuy, PrecisionExactIn, 25},
	}
	for i, s := range steps {
		kPre := m.K()
		ev, err := m.Swap(s.amount, s.direction, s.precision, Clock{Slot: s.slot})
		require.NoError(t, err, "step %d", i)
		assert.True(t, m.K().Cmp(kPre) >= 0, "step %d: k decreased", i)

		// Conservation holds exactly on every event.
		assert.Equal(t, ev.BaseToTransfer, ev.BaseViaOrder+ev.BaseViaCurve, "step %d", i)
		switch {
		case s.direction == DirectionBuy:
			assert.Equal(t, ev.QuoteToTransfer, ev.QuoteViaOrder+ev.QuoteViaCurve+ev.QuoteFee, "step %d", i)
		case s.precision == PrecisionExactIn:
			assert.Equal(t, ev.QuoteToTransfer, ev.QuoteViaOrder+ev.QuoteViaCurve, "step %d", i)
		default:
			assert.Equal(t, ev.QuoteToTransfer, ev.QuoteViaOrder+ev.QuoteViaCurve-ev.QuoteFee, "step %d", i)
		}
	}
}

func TestSnapshotWindowIdempotent(t *testing.T) {
	m := newTestMarket()

	_, err := m.Swap(100_000, DirectionBuy, PrecisionExactIn, Clock{Slot: 10})
	require.NoError(t, err)
	snap := m.Snapshot
	assert.Equal(t, uint64(8), snap.Slot)
	assert.Equal(t, uint64(1_000_000_000), snap.BaseBalance)
	assert.Equal(t, uint64(1_000_000_000), snap.QuoteBalance)

	// Another swap inside the same slot bucket leaves the snapshot alone
	// even though the reserves have moved.
	_, err = m.Swap(100_000, DirectionBuy, PrecisionExactIn, Clock{Slot: 11})
	require.NoError(t, err)
	assert.Equal(t, snap, m.Snapshot)

	// Crossing the window boundary refreshes it.
	_, err = m.Swap(100_000, DirectionBuy, PrecisionExactIn, Clock{Slot: 12})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), m.Snapshot.Slot)
	assert.NotEqual(t, snap.BaseBalance, m.Snapshot.BaseBalance)
}

func TestFailedSwapLeavesMarketUnchanged(t *testing.T) {
	m := newTestMarket()
	m.Quote.Balance = 0
	m.Quote.BalanceVirtual = 1_000_000_000
	before := *m

	_, err := m.Swap(100_000, DirectionSell, PrecisionExactIn, Clock{Slot: 10})
	require.Error(t, err)
	assert.Equal(t, before, *m)
}

func TestBuyExactOutInsufficientLiquidity(t *testing.T) {
	m := newTestMarket()
	m.Base.Balance = 1_000

	_, err := m.Swap(1_001, DirectionBuy, PrecisionExactOut, Clock{Slot: 10})
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestCheckQuoteVault(t *testing.T) {
	m := newTestMarket()
	m.Quote.Balance = 500
	m.Fee.Uncollected = 25

	assert.NoError(t, m.CheckQuoteVault(525))
	assert.NoError(t, m.CheckQuoteVault(1_000))
	assert.ErrorIs(t, m.CheckQuoteVault(524), ErrInsufficientVaultReserves)
}

func TestResetReinitializesMarket(t *testing.T) {
	m := New(1, testBaseMint, testQuoteMint)
	assert.Equal(t, constants.HashTokenSupply, m.Base.Balance)
	assert.Equal(t, uint64(0), m.Quote.Balance)
	assert.Equal(t, constants.VirtualQuoteLiquidity, m.Quote.BalanceVirtual)
	assert.Equal(t, uint64(1), m.Snapshot.Enabled)

	_, err := m.Swap(1_000, DirectionBuy, PrecisionExactIn, Clock{Slot: 10})
	require.NoError(t, err)
	require.NotZero(t, m.Fee.Uncollected)

	m.Reset(2, testBaseMint, testQuoteMint)
	assert.Equal(t, uint64(2), m.BlockID)
	assert.Equal(t, constants.HashTokenSupply, m.Base.Balance)
	assert.Equal(t, uint64(0), m.Fee.Uncollected)
	assert.Equal(t, uint64(0), m.Fee.Cumulative)
	assert.Equal(t, uint64(0), m.Snapshot.Slot)
	assert.Equal(t, uint64(1), m.Snapshot.Enabled)
}
