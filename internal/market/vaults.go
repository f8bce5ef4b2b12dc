package market

// CheckQuoteVault verifies the quote vault holds reserves for all market
// debts: the real quote balance plus uncollected fees. The caller supplies
// the custodial token-account balance; the engine cannot observe vaults
// itself. Assumes the account has already been validated as the market's
// quote vault.
func (m *Market) CheckQuoteVault(vaultAmount uint64) error {
	if vaultAmount < m.Quote.Balance+m.Fee.Uncollected {
		return ErrInsufficientVaultReserves
	}
	return nil
}
