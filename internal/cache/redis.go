package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/constants"
	"github.com/regolith-labs/ore-market/internal/models"
)

// RedisCache keeps the recent-swaps list and fans swap events out over
// Pub/Sub.
type RedisCache struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, addr string, logger *logrus.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = logrus.New()
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.WithField("addr", addr).Info("connected to Redis")
	return &RedisCache{client: client, logger: logger}, nil
}

// NewRedisCacheFromClient wraps an existing client (shared with the flag
// store).
func NewRedisCacheFromClient(client *redis.Client, logger *logrus.Logger) *RedisCache {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}
}

// AddRecentSwap pushes a swap onto the capped recent-swaps list.
func (r *RedisCache) AddRecentSwap(ctx context.Context, swap *models.SwapRecord) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.LPush(ctx, constants.RedisKeyRecentSwaps, data)
	pipe.LTrim(ctx, constants.RedisKeyRecentSwaps, 0, constants.MaxRecentSwaps-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent swap: %w", err)
	}
	return nil
}

// GetRecentSwaps returns up to limit most recent swaps, newest first.
func (r *RedisCache) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapRecord, error) {
	if limit <= 0 || limit > constants.MaxRecentSwaps {
		limit = constants.MaxRecentSwaps
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentSwaps, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent swaps: %w", err)
	}

	out := make([]*models.SwapRecord, 0, len(vals))
	for _, v := range vals {
		var swap models.SwapRecord
		if err := json.Unmarshal([]byte(v), &swap); err != nil {
			r.logger.WithError(err).Warn("skipping malformed cached swap")
			continue
		}
		out = append(out, &swap)
	}
	return out, nil
}

// PublishSwap publishes a swap event to the live channel and to the
// per-direction channel.
func (r *RedisCache) PublishSwap(ctx context.Context, swap *models.SwapRecord) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	channels := []string{constants.PubSubChannelSwaps}
	if swap.Direction == "buy" {
		channels = append(channels, constants.PubSubChannelBuys)
	} else {
		channels = append(channels, constants.PubSubChannelSells)
	}

	pipe := r.client.Pipeline()
	for _, channel := range channels {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

// SubscribeSwaps subscribes to the live swap channel. The returned channel
// closes when ctx is cancelled.
func (r *RedisCache) SubscribeSwaps(ctx context.Context) (<-chan *models.SwapRecord, error) {
	pubsub := r.client.Subscribe(ctx, constants.PubSubChannelSwaps)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe swaps: %w", err)
	}

	out := make(chan *models.SwapRecord)
	go func() {
		defer close(out)
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var swap models.SwapRecord
				if err := json.Unmarshal([]byte(msg.Payload), &swap); err != nil {
					r.logger.WithError(err).Warn("skipping malformed swap message")
					continue
				}
				select {
				case out <- &swap:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Ping checks if Redis is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}
