package market

import (
	"encoding/binary"
	"fmt"
)

// MarketAccountSize is the fixed wire size of an encoded Market record:
// two TokenParams (mint + 2 u64), FeeParams (3 u64), Snapshot (4 u64) and
// the block id.
const MarketAccountSize = 2*(32+16) + 24 + 32 + 8

func putTokenParams(data []byte, t *TokenParams) {
	copy(data[0:32], t.Mint[:])
	binary.LittleEndian.PutUint64(data[32:40], t.Balance)
	binary.LittleEndian.PutUint64(data[40:48], t.BalanceVirtual)
}

func getTokenParams(data []byte, t *TokenParams) {
	copy(t.Mint[:], data[0:32])
	t.Balance = binary.LittleEndian.Uint64(data[32:40])
	t.BalanceVirtual = binary.LittleEndian.Uint64(data[40:48])
}

// MarshalBinary encodes the market as a fixed-size little-endian record,
// field order preserved.
func (m *Market) MarshalBinary() ([]byte, error) {
	data := make([]byte, MarketAccountSize)
	putTokenParams(data[0:48], &m.Base)
	putTokenParams(data[48:96], &m.Quote)
	binary.LittleEndian.PutUint64(data[96:104], m.Fee.Cumulative)
	binary.LittleEndian.PutUint64(data[104:112], m.Fee.Rate)
	binary.LittleEndian.PutUint64(data[112:120], m.Fee.Uncollected)
	binary.LittleEndian.PutUint64(data[120:128], m.Snapshot.Enabled)
	binary.LittleEndian.PutUint64(data[128:136], m.Snapshot.BaseBalance)
	binary.LittleEndian.PutUint64(data[136:144], m.Snapshot.QuoteBalance)
	binary.LittleEndian.PutUint64(data[144:152], m.Snapshot.Slot)
	binary.LittleEndian.PutUint64(data[152:160], m.BlockID)
	return data, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (m *Market) UnmarshalBinary(data []byte) error {
	if len(data) != MarketAccountSize {
		return fmt.Errorf("market account: expected %d bytes, got %d", MarketAccountSize, len(data))
	}
	getTokenParams(data[0:48], &m.Base)
	getTokenParams(data[48:96], &m.Quote)
	m.Fee.Cumulative = binary.LittleEndian.Uint64(data[96:104])
	m.Fee.Rate = binary.LittleEndian.Uint64(data[104:112])
	m.Fee.Uncollected = binary.LittleEndian.Uint64(data[112:120])
	m.Snapshot.Enabled = binary.LittleEndian.Uint64(data[120:128])
	m.Snapshot.BaseBalance = binary.LittleEndian.Uint64(data[128:136])
	m.Snapshot.QuoteBalance = binary.LittleEndian.Uint64(data[136:144])
	m.Snapshot.Slot = binary.LittleEndian.Uint64(data[144:152])
	m.BlockID = binary.LittleEndian.Uint64(data[152:160])
	return nil
}
