package rpc

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// SlotResponse is the response from getSlot
type SlotResponse struct {
	Result uint64    `json:"result"`
	Error  *RPCError `json:"error"`
}

// BlockTimeResponse is the response from getBlockTime
type BlockTimeResponse struct {
	Result *int64    `json:"result"`
	Error  *RPCError `json:"error"`
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenBalanceValue wraps the value field of getTokenAccountBalance
type TokenBalanceValue struct {
	Value TokenAmount `json:"value"`
}

// TokenBalanceResponse is the response from getTokenAccountBalance
type TokenBalanceResponse struct {
	Result *TokenBalanceValue `json:"result"`
	Error  *RPCError          `json:"error"`
}
