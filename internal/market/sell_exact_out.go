package market

import "math/big"

// sellExactOut fills a base->quote swap for a fixed quote output. The fee
// is pre-computed from the target post-fee amount; the pre-fee amount is
// what gets priced against the order and curve.
func (m *Market) sellExactOut(quoteOut uint64) (SwapEvent, error) {
	// Only the real balance can actually be delivered.
	if m.Quote.Balance < quoteOut {
		return SwapEvent{}, ErrInsufficientLiquidity
	}

	// Calculate fee.
	quoteOutPreFee := new(big.Int).SetUint64(m.preFee(quoteOut))
	quoteFee := new(big.Int).Sub(quoteOutPreFee, new(big.Int).SetUint64(quoteOut))

	out := new(big.Int).SetUint64(quoteOut)

	// Get virtual limit order.
	bid := m.virtualLimitOrder(DirectionSell)

	// Execute swap.
	var baseViaBid, quoteViaBid, baseViaCurve, quoteViaCurve *big.Int
	switch {
	case !m.SandwichResistanceEnabled():
		// Fill entire swap via curve.
		quoteViaCurve = quoteOutPreFee
		var err error
		baseViaCurve, err = m.getBaseIn(quoteViaCurve)
		if err != nil {
			return SwapEvent{}, err
		}
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		baseViaBid, quoteViaBid = new(big.Int), new(big.Int)

	case bid.SizeInQuote.Cmp(out) >= 0:
		// Fill entire swap via virtual limit order.
		quoteViaBid = quoteOutPreFee
		baseViaBid = m.complementarySize(quoteViaBid, DirectionSell, TokenQuote)
		if err := m.updateReserves(baseViaBid, quoteViaBid, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		baseViaCurve, quoteViaCurve = new(big.Int), new(big.Int)

	default:
		// Partially fill swap via virtual limit order.
		baseViaBid = bid.SizeInBase
		quoteViaBid = bid.SizeInQuote
		if err := m.updateReserves(baseViaBid, quoteViaBid, DirectionSell); err != nil {
			return SwapEvent{}, err
		}

		// Fill remaining swap amount via curve.
		quoteViaCurve = new(big.Int).Sub(quoteOutPreFee, quoteViaBid)
		var err error
		baseViaCurve, err = m.getBaseIn(quoteViaCurve)
		if err != nil {
			return SwapEvent{}, err
		}
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
	}

	// Produce swap result.
	baseIn := new(big.Int).Add(baseViaBid, baseViaCurve)
	ev := SwapEvent{
		Direction:       uint64(DirectionSell),
		BaseToTransfer:  baseIn.Uint64(),
		QuoteToTransfer: quoteOut,
		BaseViaOrder:    baseViaBid.Uint64(),
		QuoteViaOrder:   quoteViaBid.Uint64(),
		BaseViaCurve:    baseViaCurve.Uint64(),
		QuoteViaCurve:   quoteViaCurve.Uint64(),
		QuoteFee:        quoteFee.Uint64(),
	}

	// Sanity check swap result.
	if ev.BaseToTransfer != ev.BaseViaOrder+ev.BaseViaCurve {
		panic("sell_exact_out: base accounting mismatch")
	}
	if ev.QuoteToTransfer != ev.QuoteViaOrder+ev.QuoteViaCurve-ev.QuoteFee {
		panic("sell_exact_out: quote accounting mismatch")
	}

	return ev, nil
}
