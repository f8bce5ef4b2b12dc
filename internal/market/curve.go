package market

import "math/big"

// Constant-product curve math. All intermediates are big.Int to avoid
// overflow on the reserve product. Every quotient is incremented by one
// before combining, rounding in the pool's favor: a curve fill always costs
// the trader at least one extra unit of input or one fewer unit of output
// versus the exact continuous curve.

var bigOne = big.NewInt(1)

// K returns the constant product invariant, with a -1 tolerance term so
// that post-trade k is allowed to be equal or greater, never less, even
// under integer rounding loss.
func (m *Market) K() *big.Int {
	k := new(big.Int).Mul(m.Base.Liquidity(), m.Quote.Liquidity())
	if k.Sign() > 0 {
		k.Sub(k, bigOne)
	}
	return k
}

// getBaseOut returns the amount of base tokens bought with a given amount
// of quote tokens.
func (m *Market) getBaseOut(quoteIn *big.Int) *big.Int {
	out := new(big.Int).Add(m.Quote.Liquidity(), quoteIn)
	out.Div(m.K(), out)
	out.Add(out, bigOne)
	return out.Sub(m.Base.Liquidity(), out)
}

// getQuoteOut returns the amount of quote tokens received from selling a
// given amount of base tokens.
func (m *Market) getQuoteOut(baseIn *big.Int) *big.Int {
	out := new(big.Int).Add(m.Base.Liquidity(), baseIn)
	out.Div(m.K(), out)
	out.Add(out, bigOne)
	return out.Sub(m.Quote.Liquidity(), out)
}

// getQuoteIn returns the amount of quote tokens needed to buy a given
// amount of base tokens. Fails if the request would drain the base side.
func (m *Market) getQuoteIn(baseOut *big.Int) (*big.Int, error) {
	baseLiq := m.Base.Liquidity()
	if baseOut.Cmp(baseLiq) >= 0 {
		return nil, ErrInsufficientVaultReserves
	}
	in := new(big.Int).Sub(baseLiq, baseOut)
	in.Div(m.K(), in)
	in.Add(in, bigOne)
	return in.Sub(in, m.Quote.Liquidity()), nil
}

// getBaseIn returns the amount of base tokens which must be sold to
// receive a given amount of quote tokens. Fails if the request would drain
// the quote side.
func (m *Market) getBaseIn(quoteOut *big.Int) (*big.Int, error) {
	quoteLiq := m.Quote.Liquidity()
	if quoteOut.Cmp(quoteLiq) >= 0 {
		return nil, ErrInsufficientVaultReserves
	}
	in := new(big.Int).Sub(quoteLiq, quoteOut)
	in.Div(m.K(), in)
	in.Add(in, bigOne)
	return in.Sub(in, m.Base.Liquidity()), nil
}
