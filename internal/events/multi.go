package events

import (
	"context"

	"github.com/openamm/pool-engine/internal/models"
	"github.com/openamm/pool-engine/internal/pool"
)

// MultiEmitter fans every event out to each sink in order.
type MultiEmitter struct {
	sinks []pool.Emitter
}

func NewMultiEmitter(sinks ...pool.Emitter) *MultiEmitter {
	out := make([]pool.Emitter, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return &MultiEmitter{sinks: out}
}

func (m *MultiEmitter) EmitSwap(ctx context.Context, ev *models.SwapEvent) {
	for _, s := range m.sinks {
		s.EmitSwap(ctx, ev)
	}
}

func (m *MultiEmitter) EmitLiquidity(ctx context.Context, ev *models.LiquidityEvent) {
	for _, s := range m.sinks {
		s.EmitLiquidity(ctx, ev)
	}
}

func (m *MultiEmitter) EmitAdmin(ctx context.Context, ev *models.AdminEvent) {
	for _, s := range m.sinks {
		s.EmitAdmin(ctx, ev)
	}
}
