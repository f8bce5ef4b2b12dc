package market

import (
	"math/big"

	"github.com/regolith-labs/ore-market/internal/constants"
)

// virtualLimitOrder solves the closed-form size of the synthetic limit
// order. The order is always priced at the snapshot price and sized by the
// constraint
//
//	quote_snapshot / base_snapshot = (quote_balance + d_quote) / (base_balance + d_base)
//
// where d_quote and d_base move in opposite directions. Filling the order
// completely moves the pool price to exactly the snapshot price. Solving
// the resulting linear system gives, for the ask (buy side):
//
//	d_quote = (quote_snapshot*base_balance - base_snapshot*quote_balance) / (2*base_snapshot)
//	d_base  = d_quote * base_snapshot / quote_snapshot
//
// and symmetrically for the bid. Division truncates, so the order very
// slightly under-fills, favoring the pool.
func (m *Market) virtualLimitOrder(direction SwapDirection) VirtualLimitOrder {
	baseBalance := m.Base.Liquidity()
	quoteBalance := m.Quote.Liquidity()
	baseSnapshot := new(big.Int).SetUint64(m.Snapshot.BaseBalance)
	quoteSnapshot := new(big.Int).SetUint64(m.Snapshot.QuoteBalance)

	qsb := new(big.Int).Mul(quoteSnapshot, baseBalance)
	bsq := new(big.Int).Mul(baseSnapshot, quoteBalance)

	switch direction {
	case DirectionBuy:
		// Ask: only present when the current price is below the snapshot
		// price, i.e. the pool has moved in the buyer's favor since the
		// snapshot was taken.
		if qsb.Cmp(bsq) <= 0 {
			return zeroOrder()
		}
		sizeInQuote := new(big.Int).Sub(qsb, bsq)
		sizeInQuote.Div(sizeInQuote, new(big.Int).Lsh(baseSnapshot, 1))
		sizeInBase := new(big.Int).Mul(sizeInQuote, baseSnapshot)
		sizeInBase.Div(sizeInBase, quoteSnapshot)
		return VirtualLimitOrder{SizeInBase: sizeInBase, SizeInQuote: sizeInQuote}
	default:
		// Bid: only present when the current price is above the snapshot
		// price.
		if bsq.Cmp(qsb) <= 0 {
			return zeroOrder()
		}
		sizeInBase := new(big.Int).Sub(bsq, qsb)
		sizeInBase.Div(sizeInBase, new(big.Int).Lsh(quoteSnapshot, 1))
		sizeInQuote := new(big.Int).Mul(sizeInBase, quoteSnapshot)
		sizeInQuote.Div(sizeInQuote, baseSnapshot)
		return VirtualLimitOrder{SizeInBase: sizeInBase, SizeInQuote: sizeInQuote}
	}
}

// complementarySize converts a known fill amount of one token type into the
// matching amount of the other type at the snapshot price. The rounding is
// asymmetric per (direction, tokenType): conversions into the currency that
// determines the trader's cost round up so the pool is never shortchanged;
// the reverse conversions round down.
func (m *Market) complementarySize(amount *big.Int, direction SwapDirection, tokenType TokenType) *big.Int {
	if amount.Sign() == 0 {
		return new(big.Int)
	}
	baseSnapshot := new(big.Int).SetUint64(m.Snapshot.BaseBalance)
	quoteSnapshot := new(big.Int).SetUint64(m.Snapshot.QuoteBalance)

	switch direction {
	case DirectionBuy:
		switch tokenType {
		case TokenBase:
			// Base amount known; the quote cost of the buy rounds up.
			return ceilDiv(new(big.Int).Mul(amount, quoteSnapshot), baseSnapshot)
		default:
			// Quote amount known; the base received rounds down.
			out := new(big.Int).Mul(amount, baseSnapshot)
			return out.Div(out, quoteSnapshot)
		}
	default:
		switch tokenType {
		case TokenBase:
			// Base amount known; the quote received rounds down.
			out := new(big.Int).Mul(amount, quoteSnapshot)
			return out.Div(out, baseSnapshot)
		default:
			// Quote amount known; the base cost of the sell rounds up.
			return ceilDiv(new(big.Int).Mul(amount, baseSnapshot), quoteSnapshot)
		}
	}
}

// ceilDiv computes ceil(n/d) as (n-1)/d + 1 with the subtraction clamped at
// zero, matching the saturating integer pattern of the fee and curve math.
// n is consumed.
func ceilDiv(n, d *big.Int) *big.Int {
	if n.Sign() > 0 {
		n.Sub(n, bigOne)
	}
	n.Div(n, d)
	return n.Add(n, bigOne)
}

// updateSnapshot refreshes the reference price at most once per slot
// window. It must run before any reserve mutation so the anchor reflects
// the state as of the start of the current window, not mid-trade.
func (m *Market) updateSnapshot(clock Clock) {
	snapshotSlot := (clock.Slot / constants.SlotWindow) * constants.SlotWindow
	if snapshotSlot != m.Snapshot.Slot {
		m.Snapshot.Slot = snapshotSlot
		m.Snapshot.BaseBalance = m.Base.Balance + m.Base.BalanceVirtual
		m.Snapshot.QuoteBalance = m.Quote.Balance + m.Quote.BalanceVirtual
	}
}

// updateReserves applies one fill leg to the real balances. Virtual
// balances participate in pricing but are never spent or received.
func (m *Market) updateReserves(base, quote *big.Int, direction SwapDirection) error {
	switch direction {
	case DirectionBuy:
		if base.Cmp(new(big.Int).SetUint64(m.Base.Balance)) > 0 {
			return ErrInsufficientVaultReserves
		}
		m.Base.Balance -= base.Uint64()
		m.Quote.Balance += quote.Uint64()
	default:
		if quote.Cmp(new(big.Int).SetUint64(m.Quote.Balance)) > 0 {
			return ErrInsufficientVaultReserves
		}
		m.Base.Balance += base.Uint64()
		m.Quote.Balance -= quote.Uint64()
	}
	return nil
}
