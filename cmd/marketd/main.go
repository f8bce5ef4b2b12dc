package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/ai"
	"github.com/regolith-labs/ore-market/internal/cache"
	"github.com/regolith-labs/ore-market/internal/config"
	"github.com/regolith-labs/ore-market/internal/constants"
	"github.com/regolith-labs/ore-market/internal/engine"
	"github.com/regolith-labs/ore-market/internal/flags"
	"github.com/regolith-labs/ore-market/internal/rpc"
	"github.com/regolith-labs/ore-market/internal/server"
	"github.com/regolith-labs/ore-market/internal/vault"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the market daemon
// It hosts the swap engine and serves the HTTP API with graceful shutdown
func main() {
	// Initialize structured logger with custom formatting
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Initialize Redis client for caching and feature flags
	rclient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   0, // Use default database for main application
	})
	if err := rclient.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}

	// Initialize swap cache for the recent feed and pub/sub
	swapCache := cache.NewRedisCacheFromClient(rclient, logger)

	// Initialize feature flags store for runtime configuration
	flagStore, err := flags.NewStore(rclient)
	if err != nil {
		logger.WithError(err).Fatal("failed to create flags store")
	}
	if err := flagStore.SeedDefaults(ctx, map[string]bool{
		constants.FlagSandwichResistance: true,
		constants.FlagTradingPaused:      false,
	}); err != nil {
		logger.WithError(err).Warn("failed to seed default flags")
	}

	// Slot clock: local in dev mode, RPC-backed otherwise
	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.RPCTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	var clock rpc.SlotClock
	if cfg.LocalClock || cfg.DevMode {
		clock = rpc.NewLocalClock(time.Duration(cfg.SlotTimeMs) * time.Millisecond)
		logger.WithField("slot_time_ms", cfg.SlotTimeMs).Info("using local slot clock")
	} else {
		clock = rpc.NewRemoteClock(rpcClient)
		logger.WithField("rpc", cfg.RPCUrl).Info("using RPC slot clock")
	}

	// Initialize the swap engine; mint addresses were validated above
	eng := engine.New(clock, flagStore, swapCache, engine.Config{
		BaseMint:   solana.MustPublicKeyFromBase58(cfg.BaseMint),
		QuoteMint:  solana.MustPublicKeyFromBase58(cfg.QuoteMint),
		FirstBlock: cfg.FirstBlock,
		EpochSlots: cfg.EpochSlots,
		FeeRateBps: cfg.FeeRateBps,
		Logger:     logger,
	})

	// Optional on-chain vault solvency watcher
	if cfg.QuoteVault != "" {
		watcher, err := vault.NewWatcher(rpcClient, vault.Config{
			Vault:  cfg.QuoteVault,
			Logger: logger,
		}, eng.CheckQuoteVault)
		if err != nil {
			logger.WithError(err).Fatal("failed to create vault watcher")
		}
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	// Initialize AI agent for natural language queries (optional)
	var agent *ai.Agent
	aiBase := ai.AgentConfig{
		ClickHouseAddr:     cfg.ClickHouseAddr,
		ClickHouseDatabase: cfg.ClickHouseDatabase,
		ClickHouseUsername: cfg.ClickHouseUsername,
		ClickHousePassword: cfg.ClickHousePassword,
		OpenRouterAPIKey:   cfg.OpenRouterAPIKey,
		Model:              cfg.AIModel,
		Logger:             logger,
	}

	// Only initialize AI if OpenRouter API key is provided
	if cfg.OpenRouterAPIKey != "" {
		a, err := ai.NewAgent(ctx, aiBase)
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai agent")
		} else {
			agent = a
			defer func() {
				_ = agent.Close() // Clean up AI resources on shutdown
			}()
		}
	}

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Engine:       eng,         // Swap engine hosting the market
		Cache:        swapCache,   // Redis-backed swap data cache
		Flags:        flagStore,   // Redis-backed feature flags
		AI:           agent,       // Optional AI agent (can be nil)
		AIBaseConfig: aiBase,      // Base AI configuration for model overrides
		DevMode:      cfg.DevMode, // Enable detailed error responses in development
		Logger:       logger,      // Structured logger
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr, // Server bind address (e.g., ":8080")
			DevMode: cfg.DevMode, // Development mode flag
			APIKey:  cfg.APIKey,  // Optional API key for authentication
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("market daemon starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		fmt.Fprintln(os.Stderr, "server error:", err)
		os.Exit(1)
	}
}
