package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/regolith-labs/ore-market/internal/engine"
	"github.com/regolith-labs/ore-market/internal/market"
)

func parseDirection(s string) (market.SwapDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return market.DirectionBuy, nil
	case "sell":
		return market.DirectionSell, nil
	default:
		return 0, errors.New("must be buy or sell")
	}
}

func parsePrecision(s string) (market.SwapPrecision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact_in", "":
		return market.PrecisionExactIn, nil
	case "exact_out":
		return market.PrecisionExactOut, nil
	default:
		return 0, errors.New("must be exact_in or exact_out")
	}
}

// swapError maps engine and market errors onto HTTP statuses
func (h *Handlers) swapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, engine.ErrTradingPaused):
		return h.err(c, http.StatusConflict, "trading is paused", nil)
	case errors.Is(err, market.ErrInsufficientLiquidity):
		return h.err(c, http.StatusUnprocessableEntity, "insufficient liquidity", nil)
	case errors.Is(err, market.ErrInsufficientVaultReserves):
		return h.err(c, http.StatusUnprocessableEntity, "insufficient vault reserves", nil)
	case errors.Is(err, market.ErrInvariantViolation):
		return h.err(c, http.StatusInternalServerError, "swap rejected", nil)
	default:
		return h.err(c, http.StatusServiceUnavailable, "swap failed", map[string]any{"err": err.Error()})
	}
}

// Quote prices a swap without executing it
// Accepts amount, direction and precision query parameters
func (h *Handlers) Quote(c echo.Context) error {
	amountStr := strings.TrimSpace(c.QueryParam("amount"))
	if amountStr == "" {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "required"})
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil || amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	direction, err := parseDirection(c.QueryParam("direction"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid direction", map[string]any{"direction": err.Error()})
	}

	precision, err := parsePrecision(c.QueryParam("precision"))
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid precision", map[string]any{"precision": err.Error()})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	record, err := h.Engine.Quote(ctx, amount, direction, precision)
	if err != nil {
		return h.swapError(c, err)
	}
	return c.JSON(http.StatusOK, record)
}

// Swap executes a swap against the live market
func (h *Handlers) Swap(c echo.Context) error {
	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	direction, err := parseDirection(req.Direction)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid direction", map[string]any{"direction": err.Error()})
	}

	precision, err := parsePrecision(req.Precision)
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid precision", map[string]any{"precision": err.Error()})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	record, err := h.Engine.Swap(ctx, req.Amount, direction, precision)
	if err != nil {
		return h.swapError(c, err)
	}
	return c.JSON(http.StatusOK, record)
}
