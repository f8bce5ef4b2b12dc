package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/cache"
	"github.com/regolith-labs/ore-market/internal/config"
	"github.com/regolith-labs/ore-market/internal/models"
	"github.com/regolith-labs/ore-market/internal/stream"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// main runs the swap feed subscriber: it listens to the Redis pub/sub
// channel and persists every swap into ClickHouse for analytics.
func main() {
	loadEnv()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down subscriber")
		cancel()
	}()

	swapCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	defer swapCache.Close()

	store, err := cache.NewClickHouseStore(ctx,
		cfg.ClickHouseAddr, cfg.ClickHouseDatabase,
		cfg.ClickHouseUsername, cfg.ClickHousePassword, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}
	defer store.Close()

	feed := stream.NewRedisFeed(swapCache, logger)
	defer feed.Stop()

	logger.Info("subscriber running, persisting swaps to ClickHouse")

	err = feed.Start(ctx, func(swap *models.SwapRecord) {
		if err := store.InsertSwap(ctx, swap); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"block_id": swap.BlockID,
				"slot":     swap.Slot,
			}).Error("failed to persist swap")
			return
		}
		logger.WithFields(logrus.Fields{
			"block_id":  swap.BlockID,
			"slot":      swap.Slot,
			"direction": swap.Direction,
			"quote":     swap.QuoteToTransfer,
		}).Debug("persisted swap")
	})
	if err != nil && err != context.Canceled {
		logger.WithError(err).Error("swap feed terminated")
	}
}
