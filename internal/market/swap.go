package market

// Swap executes one atomic state transition on the market. It refreshes
// the snapshot, dispatches to the executor for (direction, precision),
// verifies the constant-product invariant did not decrease, applies the
// collected fee, and returns the swap event for the caller to emit and to
// perform the matching token transfers.
//
// A failed swap leaves the market exactly as it was before the call.
func (m *Market) Swap(amount uint64, direction SwapDirection, precision SwapPrecision, clock Clock) (SwapEvent, error) {
	// The market is a fixed-size value; keep a copy so any failure path
	// restores the pre-swap state wholesale.
	saved := *m

	// Update snapshot. This must happen before any reserve mutation so the
	// reference price reflects the start of the current slot window.
	m.updateSnapshot(clock)

	// Get invariant.
	kPre := m.K()

	// Execute swap.
	var ev SwapEvent
	var err error
	switch {
	case direction == DirectionBuy && precision == PrecisionExactIn:
		ev, err = m.buyExactIn(amount)
	case direction == DirectionBuy && precision == PrecisionExactOut:
		ev, err = m.buyExactOut(amount)
	case direction == DirectionSell && precision == PrecisionExactIn:
		ev, err = m.sellExactIn(amount)
	default:
		ev, err = m.sellExactOut(amount)
	}
	if err != nil {
		*m = saved
		return SwapEvent{}, err
	}

	// Check invariant.
	if kPre.Cmp(m.K()) > 0 {
		*m = saved
		return SwapEvent{}, ErrInvariantViolation
	}

	// Apply fees.
	m.applyFees(ev.QuoteFee)

	ev.Ts = clock.UnixTimestamp
	return ev, nil
}
