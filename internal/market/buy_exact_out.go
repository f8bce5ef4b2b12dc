package market

import "math/big"

// buyExactOut fills a quote->base swap for a fixed base output. The fee is
// backed out of the pre-fee quote cost after pricing.
func (m *Market) buyExactOut(baseOut uint64) (SwapEvent, error) {
	// Only the real balance can actually be delivered.
	if m.Base.Balance < baseOut {
		return SwapEvent{}, ErrInsufficientLiquidity
	}

	out := new(big.Int).SetUint64(baseOut)

	// Get virtual limit order.
	ask := m.virtualLimitOrder(DirectionBuy)

	// Execute swap.
	var baseViaAsk, quoteViaAsk, baseViaCurve, quoteViaCurve *big.Int
	switch {
	case !m.SandwichResistanceEnabled():
		// Fill entire swap via curve.
		baseViaCurve = out
		var err error
		quoteViaCurve, err = m.getQuoteIn(baseViaCurve)
		if err != nil {
			return SwapEvent{}, err
		}
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}
		baseViaAsk, quoteViaAsk = new(big.Int), new(big.Int)

	case ask.SizeInBase.Cmp(out) >= 0:
		// Fill entire swap via virtual limit order.
		baseViaAsk = out
		quoteViaAsk = m.complementarySize(baseViaAsk, DirectionBuy, TokenBase)
		if err := m.updateReserves(baseViaAsk, quoteViaAsk, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}
		baseViaCurve, quoteViaCurve = new(big.Int), new(big.Int)

	default:
		// Partially fill swap via virtual limit order.
		baseViaAsk = ask.SizeInBase
		quoteViaAsk = ask.SizeInQuote
		if err := m.updateReserves(baseViaAsk, quoteViaAsk, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}

		// Fill remaining swap amount via curve.
		baseViaCurve = new(big.Int).Sub(out, baseViaAsk)
		var err error
		quoteViaCurve, err = m.getQuoteIn(baseViaCurve)
		if err != nil {
			return SwapEvent{}, err
		}
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}
	}

	// Back the fee out of the pre-fee quote cost.
	quotePostFee := new(big.Int).Add(quoteViaAsk, quoteViaCurve)
	quoteIn := m.preFee(quotePostFee.Uint64())
	quoteFee := quoteIn - quotePostFee.Uint64()

	// Produce swap result.
	ev := SwapEvent{
		Direction:       uint64(DirectionBuy),
		BaseToTransfer:  baseOut,
		QuoteToTransfer: quoteIn,
		BaseViaOrder:    baseViaAsk.Uint64(),
		QuoteViaOrder:   quoteViaAsk.Uint64(),
		BaseViaCurve:    baseViaCurve.Uint64(),
		QuoteViaCurve:   quoteViaCurve.Uint64(),
		QuoteFee:        quoteFee,
	}

	// Sanity check swap result.
	if ev.BaseToTransfer != ev.BaseViaOrder+ev.BaseViaCurve {
		panic("buy_exact_out: base accounting mismatch")
	}
	if ev.QuoteToTransfer != ev.QuoteViaOrder+ev.QuoteViaCurve+ev.QuoteFee {
		panic("buy_exact_out: quote accounting mismatch")
	}

	return ev, nil
}
