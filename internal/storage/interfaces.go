package storage

import (
	"context"
	"io"

	"github.com/regolith-labs/ore-market/internal/models"
)

// SwapCache defines the interface for caching and fanning out swap data
type SwapCache interface {
	// AddRecentSwap adds a swap to the recent swaps list
	AddRecentSwap(ctx context.Context, swap *models.SwapRecord) error

	// GetRecentSwaps retrieves the most recent swaps
	GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapRecord, error)

	// PublishSwap publishes a swap event to the Pub/Sub channels
	PublishSwap(ctx context.Context, swap *models.SwapRecord) error

	// SubscribeSwaps subscribes to real-time swap events
	SubscribeSwaps(ctx context.Context) (<-chan *models.SwapRecord, error)

	// Ping checks if the cache is reachable
	Ping(ctx context.Context) error

	// Close closes the cache connection
	io.Closer
}

// SwapStore defines the interface for persistent swap storage
type SwapStore interface {
	// InsertSwap inserts a swap event into the store
	InsertSwap(ctx context.Context, swap *models.SwapRecord) error

	// Ping checks if the store is reachable
	Ping(ctx context.Context) error

	// Close closes the store connection
	io.Closer
}

// SwapHandler is a function that processes swap events
type SwapHandler func(*models.SwapRecord)

// StreamProvider defines the interface for swap event streaming
type StreamProvider interface {
	// Start begins streaming swap events
	Start(ctx context.Context, handler SwapHandler) error

	// Stop stops the stream provider
	Stop() error
}
