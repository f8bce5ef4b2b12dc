package stream

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/storage"
)

// RedisFeed implements StreamProvider over the Redis pub/sub swap channel.
// Consumers receive every swap published by the engine, in order.
type RedisFeed struct {
	cache  storage.SwapCache
	logger *logrus.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// NewRedisFeed creates a feed backed by the given cache.
func NewRedisFeed(cache storage.SwapCache, logger *logrus.Logger) *RedisFeed {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisFeed{cache: cache, logger: logger}
}

// Start subscribes to the swap channel and invokes handler for every swap
// until the context is cancelled or Stop is called. Blocks while streaming.
func (f *RedisFeed) Start(ctx context.Context, handler storage.SwapHandler) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return fmt.Errorf("feed already running")
	}
	ctx, f.cancel = context.WithCancel(ctx)
	f.running = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.running = false
		f.mu.Unlock()
	}()

	feed, err := f.cache.SubscribeSwaps(ctx)
	if err != nil {
		return fmt.Errorf("subscribe swap feed: %w", err)
	}

	f.logger.Info("swap feed started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case swap, ok := <-feed:
			if !ok {
				return nil
			}
			handler(swap)
		}
	}
}

// Stop cancels the stream.
func (f *RedisFeed) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	return nil
}
