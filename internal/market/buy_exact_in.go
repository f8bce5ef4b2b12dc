package market

import "math/big"

// buyExactIn fills a quote->base swap for a fixed quote input. The fee is
// taken up front from the input; only the post-fee amount is priced.
func (m *Market) buyExactIn(quoteIn uint64) (SwapEvent, error) {
	// Take fee from the quote side.
	quoteFee := m.fee(quoteIn)
	quoteInPostFee := new(big.Int).SetUint64(quoteIn - quoteFee)

	// Get virtual limit order.
	ask := m.virtualLimitOrder(DirectionBuy)

	// Execute swap. The order leg fills first; the curve leg prices
	// against the reserves as they stand after the order leg.
	var baseViaAsk, quoteViaAsk, baseViaCurve, quoteViaCurve *big.Int
	switch {
	case !m.SandwichResistanceEnabled():
		// Fill entire swap via curve.
		quoteViaCurve = quoteInPostFee
		baseViaCurve = m.getBaseOut(quoteViaCurve)
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}
		baseViaAsk, quoteViaAsk = new(big.Int), new(big.Int)

	case ask.SizeInQuote.Cmp(quoteInPostFee) >= 0:
		// Fill entire swap via virtual limit order.
		quoteViaAsk = quoteInPostFee
		baseViaAsk = m.complementarySize(quoteInPostFee, DirectionBuy, TokenQuote)
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
		quoteViaCurve = new(big.Int).Sub(quoteInPostFee, ask.SizeInQuote)
		baseViaCurve = m.getBaseOut(quoteViaCurve)
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionBuy); err != nil {
			return SwapEvent{}, err
		}
	}

	// Produce swap result.
	baseOut := new(big.Int).Add(baseViaAsk, baseViaCurve)
	ev := SwapEvent{
		Direction:       uint64(DirectionBuy),
		BaseToTransfer:  baseOut.Uint64(),
		QuoteToTransfer: quoteIn,
		BaseViaOrder:    baseViaAsk.Uint64(),
		QuoteViaOrder:   quoteViaAsk.Uint64(),
		BaseViaCurve:    baseViaCurve.Uint64(),
		QuoteViaCurve:   quoteViaCurve.Uint64(),
		QuoteFee:        quoteFee,
	}

	// Sanity check swap result.
	if ev.BaseToTransfer != ev.BaseViaOrder+ev.BaseViaCurve {
		panic("buy_exact_in: base accounting mismatch")
	}
	if ev.QuoteToTransfer != ev.QuoteViaOrder+ev.QuoteViaCurve+ev.QuoteFee {
		panic("buy_exact_in: quote accounting mismatch")
	}

	return ev, nil
}
