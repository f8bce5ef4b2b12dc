package market

import (
	"encoding/binary"
	"fmt"
)

// SwapEventSize is the fixed wire size of an encoded SwapEvent.
const SwapEventSize = 72

// SwapEvent is the output record of one swap. Field order and widths are
// part of the wire format and must not change.
type SwapEvent struct {
	// Swap direction.
	Direction uint64

	// Amount of base tokens to transfer.
	BaseToTransfer uint64

	// Amount of quote tokens to transfer.
	QuoteToTransfer uint64

	// Amount of base tokens swapped via virtual limit order.
	BaseViaOrder uint64

	// Amount of quote tokens swapped via virtual limit order.
	QuoteViaOrder uint64

	// Amount of base tokens swapped via curve.
	BaseViaCurve uint64

	// Amount of quote tokens swapped via curve.
	QuoteViaCurve uint64

	// Amount of quote tokens taken in fees.
	QuoteFee uint64

	// Unix timestamp at dispatch.
	Ts int64
}

// SwapDirection decodes the direction field.
func (e *SwapEvent) SwapDirection() SwapDirection {
	return SwapDirection(e.Direction)
}

// MarshalBinary encodes the event as nine little-endian 8-byte fields.
func (e *SwapEvent) MarshalBinary() ([]byte, error) {
	data := make([]byte, SwapEventSize)
	binary.LittleEndian.PutUint64(data[0:8], e.Direction)
	binary.LittleEndian.PutUint64(data[8:16], e.BaseToTransfer)
	binary.LittleEndian.PutUint64(data[16:24], e.QuoteToTransfer)
	binary.LittleEndian.PutUint64(data[24:32], e.BaseViaOrder)
	binary.LittleEndian.PutUint64(data[32:40], e.QuoteViaOrder)
	binary.LittleEndian.PutUint64(data[40:48], e.BaseViaCurve)
	binary.LittleEndian.PutUint64(data[48:56], e.QuoteViaCurve)
	binary.LittleEndian.PutUint64(data[56:64], e.QuoteFee)
	binary.LittleEndian.PutUint64(data[64:72], uint64(e.Ts))
	return data, nil
}

// UnmarshalBinary decodes an event produced by MarshalBinary.
func (e *SwapEvent) UnmarshalBinary(data []byte) error {
	if len(data) != SwapEventSize {
		return fmt.Errorf("swap event: expected %d bytes, got %d", SwapEventSize, len(data))
	}
	e.Direction = binary.LittleEndian.Uint64(data[0:8])
	e.BaseToTransfer = binary.LittleEndian.Uint64(data[8:16])
	e.QuoteToTransfer = binary.LittleEndian.Uint64(data[16:24])
	e.BaseViaOrder = binary.LittleEndian.Uint64(data[24:32])
	e.QuoteViaOrder = binary.LittleEndian.Uint64(data[32:40])
	e.BaseViaCurve = binary.LittleEndian.Uint64(data[40:48])
	e.QuoteViaCurve = binary.LittleEndian.Uint64(data[48:56])
	e.QuoteFee = binary.LittleEndian.Uint64(data[56:64])
	e.Ts = int64(binary.LittleEndian.Uint64(data[64:72]))
	return nil
}
