// ============================================================================
// models/swap.go
// ============================================================================
package models

import (
	"time"

	"github.com/regolith-labs/ore-market/internal/market"
)

// SwapRecord is the JSON-facing view of a market.SwapEvent, carried over
// Redis pub/sub and persisted to ClickHouse. The binary SwapEvent stays
// authoritative; this record adds host context (block id, slot).
type SwapRecord struct {
	BlockID         uint64    `json:"block_id"`
	Slot            uint64    `json:"slot"`
	Direction       string    `json:"direction"` // "buy" or "sell"
	Precision       string    `json:"precision"` // "exact_in" or "exact_out"
	BaseToTransfer  uint64    `json:"base_to_transfer"`
	QuoteToTransfer uint64    `json:"quote_to_transfer"`
	BaseViaOrder    uint64    `json:"base_via_order"`
	QuoteViaOrder   uint64    `json:"quote_via_order"`
	BaseViaCurve    uint64    `json:"base_via_curve"`
	QuoteViaCurve   uint64    `json:"quote_via_curve"`
	QuoteFee        uint64    `json:"quote_fee"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewSwapRecord builds a record from an engine swap event.
func NewSwapRecord(ev *market.SwapEvent, precision market.SwapPrecision, blockID, slot uint64) *SwapRecord {
	return &SwapRecord{
		BlockID:         blockID,
		Slot:            slot,
		Direction:       ev.SwapDirection().String(),
		Precision:       precision.String(),
		BaseToTransfer:  ev.BaseToTransfer,
		QuoteToTransfer: ev.QuoteToTransfer,
		BaseViaOrder:    ev.BaseViaOrder,
		QuoteViaOrder:   ev.QuoteViaOrder,
		BaseViaCurve:    ev.BaseViaCurve,
		QuoteViaCurve:   ev.QuoteViaCurve,
		QuoteFee:        ev.QuoteFee,
		Timestamp:       time.Unix(ev.Ts, 0).UTC(),
	}
}
