package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regolith-labs/ore-market/internal/ai"
	"github.com/regolith-labs/ore-market/internal/cache"
	"github.com/regolith-labs/ore-market/internal/config"
	"github.com/regolith-labs/ore-market/internal/engine"
	"github.com/regolith-labs/ore-market/internal/flags"
	"github.com/regolith-labs/ore-market/internal/models"
	"github.com/regolith-labs/ore-market/internal/rpc"
	"github.com/regolith-labs/ore-market/internal/server"
)

const (
	testAPIAddr = ":8091"
	testAPIKey  = "test-api-key-integration"
)

var (
	testBaseMint  = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testQuoteMint = solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
)

func setupIntegrationTest(t *testing.T) (*server.Server, *redis.Client, func()) {
	// Check if Redis is available
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   2, // Use different DB for integration tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for integration tests: %v", err)
	}

	// Clear test DB
	_ = redisClient.FlushDB(ctx).Err()

	// Create test configuration
	cfg := &config.Config{
		APIAddr: testAPIAddr,
		APIKey:  testAPIKey,
		DevMode: true,
	}

	// Initialize cache, flags store and engine
	logger := logrus.New()
	swapCache := cache.NewRedisCacheFromClient(redisClient, logger)
	flagStore, err := flags.NewStore(redisClient)
	require.NoError(t, err)

	eng := engine.New(rpc.NewLocalClock(10*time.Millisecond), flagStore, swapCache, engine.Config{
		BaseMint:   testBaseMint,
		QuoteMint:  testQuoteMint,
		FirstBlock: 1,
		EpochSlots: 0, // no rollover during tests
		Logger:     logger,
	})

	// Create server dependencies
	handlers := &server.Handlers{
		Engine:       eng,
		Cache:        swapCache,
		Flags:        flagStore,
		AI:           nil,
		AIBaseConfig: ai.AgentConfig{},
		DevMode:      true,
		Logger:       logger,
	}

	serverConfig := server.ServerConfig{
		Addr:    cfg.APIAddr,
		DevMode: cfg.DevMode,
		APIKey:  cfg.APIKey,
	}

	deps := server.ServerDeps{
		Handlers: handlers,
		Config:   serverConfig,
	}

	srv, err := server.NewServer(deps)
	require.NoError(t, err)

	// Start server in background
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			t.Logf("Server error: %v", err)
		}
	}()

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)

	// Cleanup function
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(ctx)
		_ = redisClient.FlushDB(ctx).Err()
		_ = redisClient.Close()
	}

	return srv, redisClient, cleanup
}

func makeRequest(t *testing.T, method, url string, body interface{}, expectedStatus int) *http.Response {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)

	assert.Equal(t, expectedStatus, resp.StatusCode, "Expected status %d, got %d", expectedStatus, resp.StatusCode)

	return resp
}

func TestIntegration_Health(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/health", nil, http.StatusOK)
	defer resp.Body.Close()

	var response server.HealthResponse
	err := json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.True(t, response.OK)
}

func TestIntegration_Market(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/market", nil, http.StatusOK)
	defer resp.Body.Close()

	var response server.MarketResponse
	err := json.NewDecoder(resp.Body).Decode(&response)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), response.BlockID)
	assert.Equal(t, testBaseMint.String(), response.Base.Mint)
	assert.Equal(t, testQuoteMint.String(), response.Quote.Mint)
	assert.NotZero(t, response.Base.Balance)
	assert.NotZero(t, response.Quote.BalanceVirtual)
	assert.Equal(t, uint64(100), response.FeeRateBps)
	assert.NotEmpty(t, response.K)
}

func TestIntegration_QuoteAndSwap(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Quote a buy
	resp := makeRequest(t, http.MethodGet,
		"http://localhost:8091/v1/quote?amount=100000&direction=buy&precision=exact_in", nil, http.StatusOK)
	defer resp.Body.Close()

	var quote models.SwapRecord
	err := json.NewDecoder(resp.Body).Decode(&quote)
	require.NoError(t, err)
	assert.Equal(t, "buy", quote.Direction)
	assert.Equal(t, uint64(100_000), quote.QuoteToTransfer)
	assert.NotZero(t, quote.BaseToTransfer)
	assert.NotZero(t, quote.QuoteFee)

	// Quoting must not move the market
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/market", nil, http.StatusOK)
	defer resp.Body.Close()

	var before server.MarketResponse
	err = json.NewDecoder(resp.Body).Decode(&before)
	require.NoError(t, err)
	assert.Zero(t, before.FeesCumulative)

	// Execute the swap
	swapReq := server.SwapRequest{Amount: 100_000, Direction: "buy", Precision: "exact_in"}
	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusOK)
	defer resp.Body.Close()

	var executed models.SwapRecord
	err = json.NewDecoder(resp.Body).Decode(&executed)
	require.NoError(t, err)
	assert.Equal(t, quote.BaseToTransfer, executed.BaseToTransfer)
	assert.Equal(t, quote.QuoteFee, executed.QuoteFee)

	// The swap should land in the recent feed
	time.Sleep(50 * time.Millisecond)
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/swaps/recent?limit=5", nil, http.StatusOK)
	defer resp.Body.Close()

	var swapsResponse struct {
		Items []*models.SwapRecord `json:"items"`
	}
	err = json.NewDecoder(resp.Body).Decode(&swapsResponse)
	require.NoError(t, err)
	require.Len(t, swapsResponse.Items, 1)
	assert.Equal(t, "buy", swapsResponse.Items[0].Direction)
	assert.Equal(t, executed.QuoteToTransfer, swapsResponse.Items[0].QuoteToTransfer)

	// Market state reflects the fill
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/market", nil, http.StatusOK)
	defer resp.Body.Close()

	var after server.MarketResponse
	err = json.NewDecoder(resp.Body).Decode(&after)
	require.NoError(t, err)
	assert.Equal(t, executed.QuoteFee, after.FeesCumulative)
	assert.NotZero(t, after.Quote.Balance)
}

func TestIntegration_SwapValidation(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Zero amount
	swapReq := server.SwapRequest{Amount: 0, Direction: "buy", Precision: "exact_in"}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusBadRequest)
	resp.Body.Close()

	// Bad direction
	swapReq = server.SwapRequest{Amount: 100, Direction: "long", Precision: "exact_in"}
	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusBadRequest)
	resp.Body.Close()

	// Bad precision
	resp = makeRequest(t, http.MethodGet,
		"http://localhost:8091/v1/quote?amount=100&direction=buy&precision=exactly", nil, http.StatusBadRequest)
	resp.Body.Close()

	// Selling into a market with no real quote reserves must fail
	swapReq = server.SwapRequest{Amount: 100, Direction: "sell", Precision: "exact_in"}
	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusUnprocessableEntity)
	resp.Body.Close()
}

func TestIntegration_TradingPausedFlag(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Pause trading via the flags API
	upsertPayload := map[string]interface{}{"key": "market.trading_paused", "value": true}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/flags", upsertPayload, http.StatusOK)
	resp.Body.Close()

	swapReq := server.SwapRequest{Amount: 100_000, Direction: "buy", Precision: "exact_in"}
	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusConflict)
	resp.Body.Close()

	// Unpause and retry
	updatePayload := map[string]interface{}{"value": false}
	resp = makeRequest(t, http.MethodPut, "http://localhost:8091/v1/flags/market.trading_paused", updatePayload, http.StatusOK)
	resp.Body.Close()

	resp = makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusOK)
	resp.Body.Close()
}

func TestIntegration_FlagsCRUD(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Create flag
	upsertPayload := map[string]interface{}{"key": "test.flag", "value": true}
	resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/flags", upsertPayload, http.StatusOK)
	defer resp.Body.Close()

	var upsertResponse flags.Flag
	err := json.NewDecoder(resp.Body).Decode(&upsertResponse)
	require.NoError(t, err)
	assert.Equal(t, "test.flag", upsertResponse.Key)
	assert.True(t, upsertResponse.Value)
	assert.NotZero(t, upsertResponse.UpdatedAt)

	// Get flag
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/flags/test.flag", nil, http.StatusOK)
	defer resp.Body.Close()

	var getResponse flags.Flag
	err = json.NewDecoder(resp.Body).Decode(&getResponse)
	require.NoError(t, err)
	assert.Equal(t, "test.flag", getResponse.Key)
	assert.True(t, getResponse.Value)

	// Update flag
	updatePayload := map[string]interface{}{"value": false}
	resp = makeRequest(t, http.MethodPut, "http://localhost:8091/v1/flags/test.flag", updatePayload, http.StatusOK)
	defer resp.Body.Close()

	var updateResponse flags.Flag
	err = json.NewDecoder(resp.Body).Decode(&updateResponse)
	require.NoError(t, err)
	assert.Equal(t, "test.flag", updateResponse.Key)
	assert.False(t, updateResponse.Value)

	// List flags
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/flags", nil, http.StatusOK)
	defer resp.Body.Close()

	var listResponse struct {
		Items []*flags.Flag `json:"items"`
	}
	err = json.NewDecoder(resp.Body).Decode(&listResponse)
	require.NoError(t, err)
	assert.Len(t, listResponse.Items, 1)
	assert.Equal(t, "test.flag", listResponse.Items[0].Key)
	assert.False(t, listResponse.Items[0].Value)

	// Delete flag
	resp = makeRequest(t, http.MethodDelete, "http://localhost:8091/v1/flags/test.flag", nil, http.StatusNoContent)
	defer resp.Body.Close()

	// Verify deletion
	resp = makeRequest(t, http.MethodGet, "http://localhost:8091/v1/flags/test.flag", nil, http.StatusNotFound)
	defer resp.Body.Close()
}

func TestIntegration_SwapsValidation(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test invalid limit
	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/swaps/recent?limit=500", nil, http.StatusBadRequest)
	defer resp.Body.Close()

	var errorResponse server.ErrorResponse
	err := json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Contains(t, errorResponse.Error, "invalid limit")
}

func TestIntegration_Authentication(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test without API key
	req, err := http.NewRequest(http.MethodGet, "http://localhost:8091/v1/health", nil)
	require.NoError(t, err)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Test with invalid API key
	req, err = http.NewRequest(http.MethodGet, "http://localhost:8091/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "invalid-key")

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_ErrorHandling(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// Test 404 for non-existent endpoint
	req, err := http.NewRequest(http.MethodGet, "http://localhost:8091/v1/nonexistent", nil)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", testAPIKey)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var errorResponse server.ErrorResponse
	err = json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Equal(t, "not found", errorResponse.Error)
	assert.Equal(t, http.StatusNotFound, errorResponse.Code)

	// Test invalid JSON
	req, err = http.NewRequest(http.MethodPost, "http://localhost:8091/v1/echo", bytes.NewReader([]byte("invalid json")))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err = client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	err = json.NewDecoder(resp.Body).Decode(&errorResponse)
	require.NoError(t, err)
	assert.Contains(t, errorResponse.Error, "invalid json")
}

func TestIntegration_ConcurrentRequests(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	const numRequests = 50
	const numGoroutines = 10

	results := make(chan error, numRequests)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numRequests/numGoroutines; j++ {
				resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/health", nil, http.StatusOK)
				resp.Body.Close()
				results <- nil
			}
		}()
	}

	// Collect all results
	for i := 0; i < numRequests; i++ {
		err := <-results
		assert.NoError(t, err)
	}
}

func TestIntegration_ConcurrentSwaps(t *testing.T) {
	_, _, cleanup := setupIntegrationTest(t)
	defer cleanup()

	// The engine serializes swaps; total fees must equal the sum of the
	// per-swap fees regardless of interleaving.
	const numSwaps = 20

	type result struct {
		fee uint64
		err error
	}
	results := make(chan result, numSwaps)

	for i := 0; i < numSwaps; i++ {
		go func() {
			swapReq := server.SwapRequest{Amount: 10_000, Direction: "buy", Precision: "exact_in"}
			resp := makeRequest(t, http.MethodPost, "http://localhost:8091/v1/swap", swapReq, http.StatusOK)
			defer resp.Body.Close()

			var executed models.SwapRecord
			err := json.NewDecoder(resp.Body).Decode(&executed)
			results <- result{fee: executed.QuoteFee, err: err}
		}()
	}

	var totalFees uint64
	for i := 0; i < numSwaps; i++ {
		r := <-results
		require.NoError(t, r.err)
		totalFees += r.fee
	}

	resp := makeRequest(t, http.MethodGet, "http://localhost:8091/v1/market", nil, http.StatusOK)
	defer resp.Body.Close()

	var m server.MarketResponse
	err := json.NewDecoder(resp.Body).Decode(&m)
	require.NoError(t, err)
	assert.Equal(t, totalFees, m.FeesCumulative)
	assert.Equal(t, totalFees, m.FeesUncollected)
}
