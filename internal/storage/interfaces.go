package storage

import (
	"context"
	"io"

	"github.com/openamm/pool-engine/internal/models"
)

// EventCache is the hot-path mirror of pool activity: recent swaps, live
// pub/sub fan-out, and a pool-summary snapshot for external dashboards.
type EventCache interface {
	// AddRecentSwap pushes a swap onto the capped recent-swaps list.
	AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error

	// GetRecentSwaps retrieves the most recent swaps, newest first.
	GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error)

	// PublishSwap fans a swap event out to subscribers.
	PublishSwap(ctx context.Context, swap *models.SwapEvent) error

	// SubscribeSwaps streams swap events published by other processes.
	SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error)

	// SetPoolSummary mirrors the pool's public view for off-process readers.
	SetPoolSummary(ctx context.Context, summary any) error

	// Ping checks if the cache is reachable.
	Ping(ctx context.Context) error

	io.Closer
}

// SwapStore is the durable swap-event store consumed by indexers.
type SwapStore interface {
	InsertSwap(ctx context.Context, swap *models.SwapEvent) error
	Ping(ctx context.Context) error
	io.Closer
}

// SwapHandler processes swap events from a subscription.
type SwapHandler func(*models.SwapEvent)
