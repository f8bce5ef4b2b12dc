package market

import "math/big"

// sellExactIn fills a base->quote swap for a fixed base input. The fee is
// taken per leg from the quote proceeds of that leg.
func (m *Market) sellExactIn(baseIn uint64) (SwapEvent, error) {
	var quoteFee uint64

	in := new(big.Int).SetUint64(baseIn)

	// Get virtual limit order.
	bid := m.virtualLimitOrder(DirectionSell)

	// Execute swap.
	var baseViaBid, quoteViaBid, baseViaCurve, quoteViaCurve *big.Int
	switch {
	case !m.SandwichResistanceEnabled():
		// Fill entire swap via curve.
		baseViaCurve = in
		quoteViaCurve = m.getQuoteOut(baseViaCurve)
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		swapFee := m.fee(quoteViaCurve.Uint64())
		quoteFee += swapFee
		quoteViaCurve.Sub(quoteViaCurve, new(big.Int).SetUint64(swapFee))
		baseViaBid, quoteViaBid = new(big.Int), new(big.Int)

	case bid.SizeInBase.Cmp(in) >= 0:
		// Fill entire swap via virtual limit order.
		baseViaBid = in
		quoteViaBid = m.complementarySize(in, DirectionSell, TokenBase)
		quoteFee += m.fee(quoteViaBid.Uint64())
		if err := m.updateReserves(baseViaBid, quoteViaBid, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		quoteViaBid.Sub(quoteViaBid, new(big.Int).SetUint64(quoteFee))
		baseViaCurve, quoteViaCurve = new(big.Int), new(big.Int)

	default:
		// Partially fill swap via virtual limit order.
		baseViaBid = bid.SizeInBase
		quoteViaBid = bid.SizeInQuote
		quoteFee += m.fee(quoteViaBid.Uint64())
		if err := m.updateReserves(baseViaBid, quoteViaBid, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		quoteViaBid = new(big.Int).Sub(quoteViaBid, new(big.Int).SetUint64(quoteFee))

		// Fill remaining swap via curve.
		baseViaCurve = new(big.Int).Sub(in, baseViaBid)
		quoteViaCurve = m.getQuoteOut(baseViaCurve)
		if err := m.updateReserves(baseViaCurve, quoteViaCurve, DirectionSell); err != nil {
			return SwapEvent{}, err
		}
		swapFee := m.fee(quoteViaCurve.Uint64())
		quoteFee += swapFee
		quoteViaCurve.Sub(quoteViaCurve, new(big.Int).SetUint64(swapFee))
	}

	// Produce swap result.
	quoteOut := new(big.Int).Add(quoteViaBid, quoteViaCurve)
	ev := SwapEvent{
		Direction:       uint64(DirectionSell),
		BaseToTransfer:  baseIn,
		QuoteToTransfer: quoteOut.Uint64(),
		BaseViaOrder:    baseViaBid.Uint64(),
		QuoteViaOrder:   quoteViaBid.Uint64(),
		BaseViaCurve:    baseViaCurve.Uint64(),
		QuoteViaCurve:   quoteViaCurve.Uint64(),
		QuoteFee:        quoteFee,
	}

	// Sanity check swap result.
	if ev.BaseToTransfer != ev.BaseViaOrder+ev.BaseViaCurve {
		panic("sell_exact_in: base accounting mismatch")
	}
	if ev.QuoteToTransfer != ev.QuoteViaOrder+ev.QuoteViaCurve {
		panic("sell_exact_in: quote accounting mismatch")
	}

	return ev, nil
}
