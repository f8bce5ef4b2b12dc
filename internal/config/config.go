package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
)

type Config struct {
	// RPC settings (slot clock)
	RPCUrl       string
	RPCTimeout   time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	LocalClock   bool // derive slots locally instead of polling RPC

	// Market settings
	BaseMint    string
	QuoteMint   string
	QuoteVault  string // optional; enables the vault solvency check
	FeeRateBps  uint64
	EpochSlots  uint64 // slots per block before the market resets
	FirstBlock  uint64
	SlotTimeMs  int64 // local clock slot duration
	DevMode     bool

	// HTTP API settings
	APIAddr string
	APIKey  string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// AI settings
	OpenRouterAPIKey string
	AIModel          string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:       getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCTimeout:   getDurationEnv("RPC_TIMEOUT", 30*time.Second),
		MaxRetries:   getIntEnv("MAX_RETRIES", 5),
		RetryBackoff: getDurationEnv("RETRY_BACKOFF", 2*time.Second),
		LocalClock:   getBoolEnv("LOCAL_CLOCK", false),

		// Market
		BaseMint:   getEnv("BASE_MINT", "So11111111111111111111111111111111111111112"),
		QuoteMint:  getEnv("QUOTE_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
		QuoteVault: getEnv("QUOTE_VAULT", ""),
		FeeRateBps: getUint64Env("FEE_RATE_BPS", 100),
		EpochSlots: getUint64Env("EPOCH_SLOTS", 150),
		FirstBlock: getUint64Env("FIRST_BLOCK", 1),
		SlotTimeMs: int64(getIntEnv("SLOT_TIME_MS", 400)),
		DevMode:    getBoolEnv("DEV_MODE", false),

		// HTTP API
		APIAddr: getEnv("API_ADDR", ":8080"),
		APIKey:  getEnv("API_KEY", ""),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "market"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", "openai/gpt-4.1-mini"),
	}
}

// Validate checks the fields the engine cannot start without.
func (c *Config) Validate() error {
	if err := validateAddress("BASE_MINT", c.BaseMint); err != nil {
		return err
	}
	if err := validateAddress("QUOTE_MINT", c.QuoteMint); err != nil {
		return err
	}
	if c.QuoteVault != "" {
		if err := validateAddress("QUOTE_VAULT", c.QuoteVault); err != nil {
			return err
		}
	}
	if c.FeeRateBps >= 10_000 {
		return fmt.Errorf("FEE_RATE_BPS must be below 10000, got %d", c.FeeRateBps)
	}
	if c.EpochSlots == 0 {
		return fmt.Errorf("EPOCH_SLOTS must be positive")
	}
	return nil
}

// validateAddress checks a base58-encoded 32-byte Solana address.
func validateAddress(name, value string) error {
	raw, err := base58.Decode(value)
	if err != nil {
		return fmt.Errorf("%s is not valid base58: %w", name, err)
	}
	if len(raw) != 32 {
		return fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(raw))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getUint64Env(key string, defaultVal uint64) uint64 {
	if val := os.Getenv(key); val != "" {
		if u, err := strconv.ParseUint(val, 10, 64); err == nil {
			return u
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
