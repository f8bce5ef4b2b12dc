package ai

// swapEventsSchemaDescription describes the ClickHouse schema used for
// NL→SQL prompting.
//
// Keep in sync with the table created by cache.ClickHouseStore.
const swapEventsSchemaDescription = `
Database: market
Table: swap_events

Columns:
  - block_id          UInt64    -- Block whose market the swap executed in
  - slot              UInt64    -- Slot the swap executed at
  - direction         String    -- "buy" (quote in, base out) or "sell" (base in, quote out)
  - precision         String    -- "exact_in" or "exact_out"
  - base_to_transfer  UInt64    -- Base tokens moved between user and vault (raw units)
  - quote_to_transfer UInt64    -- Quote tokens moved between user and vault (raw units)
  - base_via_order    UInt64    -- Base filled against the virtual limit order
  - quote_via_order   UInt64    -- Quote filled against the virtual limit order
  - base_via_curve    UInt64    -- Base filled against the constant-product curve
  - quote_via_curve   UInt64    -- Quote filled against the constant-product curve
  - quote_fee         UInt64    -- Protocol fee charged, in quote units
  - timestamp         DateTime  -- Time of the swap (UTC)

Notes:
  - Quote volume is SUM(quote_to_transfer); fee revenue is SUM(quote_fee).
  - The order/curve split shows how much of a fill was sandwich-protected:
    quote_via_order + quote_via_curve accounts for the full quote leg net of fee placement.
  - Time filters should use timestamp, e.g. timestamp >= now() - INTERVAL 24 HOUR.
  - One market exists per block_id; compare block_id ranges for per-epoch stats.
`
