package events

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openamm/pool-engine/internal/models"
)

// newTestRedis connects to a local Redis on DB 15 and skips the test when no
// server is reachable.
func newTestRedis(t *testing.T) *RedisEvents {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 15})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	re, err := NewRedisEvents(ctx, client, logger)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	require.NoError(t, client.FlushDB(ctx).Err())
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = re.Close()
	})
	return re
}

func testSwap(id string) *models.SwapEvent {
	return &models.SwapEvent{
		ID:        id,
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Pair:      "TOKX/TOKY",
		Account:   "alice",
		Recipient: "alice",
		AssetIn:   "TOKX",
		AssetOut:  "TOKY",
		AmountIn:  100,
		AmountOut: 90,
	}
}

func TestRedisRecentSwaps(t *testing.T) {
	re := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, re.AddRecentSwap(ctx, testSwap("first")))
	require.NoError(t, re.AddRecentSwap(ctx, testSwap("second")))

	items, err := re.GetRecentSwaps(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Newest first.
	assert.Equal(t, "second", items[0].ID)
	assert.Equal(t, "first", items[1].ID)
	assert.Equal(t, uint64(90), items[0].AmountOut)

	// Limit truncates.
	items, err = re.GetRecentSwaps(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRedisPublishSubscribeRoundTrip(t *testing.T) {
	re := newTestRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	swaps, err := re.SubscribeSwaps(ctx)
	require.NoError(t, err)

	want := testSwap("live-1")
	require.NoError(t, re.PublishSwap(ctx, want))

	select {
	case got := <-swaps:
		require.NotNil(t, got)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.AmountIn, got.AmountIn)
		assert.Equal(t, want.AssetIn, got.AssetIn)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published swap")
	}
}

func TestRedisPoolSummary(t *testing.T) {
	re := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, re.SetPoolSummary(ctx, map[string]any{"reserve_a": 1000}))
	assert.NoError(t, re.Ping(ctx))
}
