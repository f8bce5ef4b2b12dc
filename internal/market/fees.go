package market

import (
	"math/big"

	"github.com/regolith-labs/ore-market/internal/constants"
)

// applyFees records a collected quote-denominated fee.
func (m *Market) applyFees(quoteFee uint64) {
	m.Fee.Cumulative += quoteFee
	m.Fee.Uncollected += quoteFee
}

// fee calculates the fee from a quote amount.
func (m *Market) fee(quoteSize uint64) uint64 {
	f := new(big.Int).SetUint64(quoteSize)
	f.Mul(f, new(big.Int).SetUint64(m.Fee.Rate))
	f.Div(f, new(big.Int).SetUint64(constants.DenominatorBps))
	return f.Uint64()
}

// preFee calculates the pre-fee quote amount from a post-fee quote amount.
// x * 10000 / (10000 - rate) inverts the fee applied by fee().
func (m *Market) preFee(quotePostFee uint64) uint64 {
	n := new(big.Int).SetUint64(quotePostFee)
	n.Mul(n, new(big.Int).SetUint64(constants.DenominatorBps))
	n.Div(n, new(big.Int).SetUint64(constants.DenominatorBps-m.Fee.Rate))
	return n.Uint64()
}
