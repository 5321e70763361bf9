package events

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/openamm/pool-engine/internal/models"
)

// ClickHouseStore persists swap events for offline analytics and indexers.
type ClickHouseStore struct {
	conn driver.Conn
}

// ClickHouseConfig holds connection settings for the swap store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping clickhouse: %w", err)
	}
	return &ClickHouseStore{conn: conn}, nil
}

func (c *ClickHouseStore) InsertSwap(ctx context.Context, swap *models.SwapEvent) error {
	query := `
		INSERT INTO amm_swaps (
			id, timestamp, pair, account, recipient, asset_in, asset_out,
			amount_in, amount_out, lp_fee, protocol_fee, price_impact_bps,
			reserve_a, reserve_b
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	err := c.conn.Exec(ctx, query,
		swap.ID,
		swap.Timestamp,
		swap.Pair,
		swap.Account,
		swap.Recipient,
		swap.AssetIn,
		swap.AssetOut,
		swap.AmountIn,
		swap.AmountOut,
		swap.LPFee,
		swap.ProtocolFee,
		swap.PriceImpactBps,
		swap.ReserveA,
		swap.ReserveB,
	)
	if err != nil {
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
