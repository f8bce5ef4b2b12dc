package cache

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"

	"github.com/regolith-labs/ore-market/internal/models"
)

// ClickHouseStore persists swap events for analytical queries.
type ClickHouseStore struct {
	conn   driver.Conn
	logger *logrus.Logger
}

// NewClickHouseStore connects to ClickHouse and ensures the swap_events
// table exists.
func NewClickHouseStore(ctx context.Context, addr, database, username, password string, logger *logrus.Logger) (*ClickHouseStore, error) {
	if logger == nil {
		logger = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	store := &ClickHouseStore{conn: conn, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	logger.WithField("addr", addr).Info("connected to ClickHouse")
	return store, nil
}

func (c *ClickHouseStore) initSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS swap_events (
			block_id          UInt64,
			slot              UInt64,
			direction         LowCardinality(String),
			precision         LowCardinality(String),
			base_to_transfer  UInt64,
			quote_to_transfer UInt64,
			base_via_order    UInt64,
			quote_via_order   UInt64,
			base_via_curve    UInt64,
			quote_via_curve   UInt64,
			quote_fee         UInt64,
			timestamp         DateTime
		) ENGINE = MergeTree()
		ORDER BY (block_id, slot, timestamp)
	`
	if err := c.conn.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create swap_events table: %w", err)
	}
	return nil
}

// InsertSwap writes one swap event row.
func (c *ClickHouseStore) InsertSwap(ctx context.Context, swap *models.SwapRecord) error {
	query := `
		INSERT INTO swap_events (
			block_id, slot, direction, precision,
			base_to_transfer, quote_to_transfer,
			base_via_order, quote_via_order,
			base_via_curve, quote_via_curve,
			quote_fee, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		swap.BlockID,
		swap.Slot,
		swap.Direction,
		swap.Precision,
		swap.BaseToTransfer,
		swap.QuoteToTransfer,
		swap.BaseViaOrder,
		swap.QuoteViaOrder,
		swap.BaseViaCurve,
		swap.QuoteViaCurve,
		swap.QuoteFee,
		swap.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}
	return nil
}

// Ping checks if ClickHouse is reachable.
func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

// Close closes the ClickHouse connection.
func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
