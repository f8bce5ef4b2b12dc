package market

import "errors"

var (
	// ErrInsufficientLiquidity is returned when a real balance cannot cover
	// a requested exact-out amount. Virtual liquidity is priced but cannot
	// be delivered.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrInsufficientVaultReserves is returned when a curve computation or
	// reserve update would remove more than the vault holds.
	ErrInsufficientVaultReserves = errors.New("insufficient vault reserves")

	// ErrInvariantViolation is returned when the constant-product value
	// decreased across a swap. This is a defensive check; it indicates a
	// bug, not a user error.
	ErrInvariantViolation = errors.New("constant product invariant violation")
)
