package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/models"
)

const (
	channelAllSwaps   = "amm:swaps:all"
	channelAdmin      = "amm:events:admin"
	channelLiquidity  = "amm:events:liquidity"
	recentSwapsKey    = "amm:swaps:recent"
	poolSummaryKey    = "amm:pool:summary"
	recentSwapsMaxLen = 500
)

// RedisEvents mirrors pool activity into Redis: pub/sub fan-out for live
// consumers, a capped recent-swaps list, and a pool-summary snapshot.
// It doubles as an Emitter; emission errors are logged, never surfaced.
type RedisEvents struct {
	client *redis.Client
	log    *logrus.Logger
}

func NewRedisEvents(ctx context.Context, client *redis.Client, log *logrus.Logger) (*RedisEvents, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisEvents{client: client, log: log}, nil
}

func (r *RedisEvents) AddRecentSwap(ctx context.Context, swap *models.SwapEvent) error {
	b, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, recentSwapsKey, b)
	pipe.LTrim(ctx, recentSwapsKey, 0, recentSwapsMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push recent swap: %w", err)
	}
	return nil
}

func (r *RedisEvents) GetRecentSwaps(ctx context.Context, limit int64) ([]*models.SwapEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	vals, err := r.client.LRange(ctx, recentSwapsKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read recent swaps: %w", err)
	}
	out := make([]*models.SwapEvent, 0, len(vals))
	for _, v := range vals {
		var ev models.SwapEvent
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			continue
		}
		out = append(out, &ev)
	}
	return out, nil
}

func (r *RedisEvents) PublishSwap(ctx context.Context, swap *models.SwapEvent) error {
	b, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	// Fan out to the firehose and the per-asset channels in one round trip.
	channels := []string{
		channelAllSwaps,
		fmt.Sprintf("amm:swaps:asset:%s", swap.AssetIn),
		fmt.Sprintf("amm:swaps:asset:%s", swap.AssetOut),
	}
	pipe := r.client.Pipeline()
	for _, ch := range channels {
		pipe.Publish(ctx, ch, b)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

func (r *RedisEvents) SubscribeSwaps(ctx context.Context) (<-chan *models.SwapEvent, error) {
	sub := r.client.Subscribe(ctx, channelAllSwaps)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe swaps: %w", err)
	}

	out := make(chan *models.SwapEvent)
	go func() {
		defer close(out)
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				var ev models.SwapEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.log.WithError(err).Warn("dropping malformed swap event")
					continue
				}
				select {
				case out <- &ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisEvents) SetPoolSummary(ctx context.Context, summary any) error {
	b, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := r.client.Set(ctx, poolSummaryKey, b, 0).Err(); err != nil {
		return fmt.Errorf("set pool summary: %w", err)
	}
	return nil
}

func (r *RedisEvents) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisEvents) Close() error {
	return r.client.Close()
}

// Emitter implementation.

func (r *RedisEvents) EmitSwap(ctx context.Context, ev *models.SwapEvent) {
	if err := r.PublishSwap(ctx, ev); err != nil {
		r.log.WithError(err).Warn("redis swap publish failed")
	}
	if err := r.AddRecentSwap(ctx, ev); err != nil {
		r.log.WithError(err).Warn("redis recent-swap push failed")
	}
}

func (r *RedisEvents) EmitLiquidity(ctx context.Context, ev *models.LiquidityEvent) {
	r.publishJSON(ctx, channelLiquidity, ev)
}

func (r *RedisEvents) EmitAdmin(ctx context.Context, ev *models.AdminEvent) {
	r.publishJSON(ctx, channelAdmin, ev)
}

func (r *RedisEvents) publishJSON(ctx context.Context, channel string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		r.log.WithError(err).Warn("event marshal failed")
		return
	}
	if err := r.client.Publish(ctx, channel, b).Err(); err != nil {
		r.log.WithError(err).WithField("channel", channel).Warn("event publish failed")
	}
}
