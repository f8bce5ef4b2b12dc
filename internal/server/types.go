package server

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"` // Service health status
}

// TokenResponse represents one side of the market in API responses
type TokenResponse struct {
	Mint           string `json:"mint"`            // Token mint address
	Balance        uint64 `json:"balance"`         // Real reserves
	BalanceVirtual uint64 `json:"balance_virtual"` // Virtual reserves
}

// MarketResponse represents the current market state
type MarketResponse struct {
	BlockID              uint64        `json:"block_id"`
	Slot                 uint64        `json:"slot"`
	Base                 TokenResponse `json:"base"`
	Quote                TokenResponse `json:"quote"`
	FeeRateBps           uint64        `json:"fee_rate_bps"`
	FeesCumulative       uint64        `json:"fees_cumulative"`
	FeesUncollected      uint64        `json:"fees_uncollected"`
	SandwichResistance   bool          `json:"sandwich_resistance"`
	SnapshotSlot         uint64        `json:"snapshot_slot"`
	SnapshotBaseBalance  uint64        `json:"snapshot_base_balance"`
	SnapshotQuoteBalance uint64        `json:"snapshot_quote_balance"`
	K                    string        `json:"k"` // constant product, decimal string (exceeds uint64)
}

// SwapRequest represents a swap or quote request
type SwapRequest struct {
	Amount    uint64 `json:"amount"`    // Raw token amount; unit depends on direction and precision
	Direction string `json:"direction"` // "buy" or "sell"
	Precision string `json:"precision"` // "exact_in" or "exact_out"
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"` // New flag value
}

// AIAskRequest represents a natural language query request
type AIAskRequest struct {
	Question string `json:"question"` // Natural language question about swap data
	Model    string `json:"model"`    // Optional AI model override
}

// AIAskResponse represents the response from an AI query
type AIAskResponse struct {
	SQL    string `json:"sql"`     // Generated SQL query
	Answer string `json:"answer"`  // Natural language answer
	TookMs int64  `json:"took_ms"` // Execution time in milliseconds
}
