// Package events contains the Emitter implementations: structured-log,
// Redis fan-out, and the multi-sink combinator. Emission happens after an
// operation has committed; sink failures are logged and never propagate back
// into the engine.
package events

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/models"
)

// LogEmitter writes every event as a structured log line.
type LogEmitter struct {
	log *logrus.Logger
}

func NewLogEmitter(log *logrus.Logger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) EmitSwap(_ context.Context, ev *models.SwapEvent) {
	e.log.WithFields(logrus.Fields{
		"event":        "swap_executed",
		"id":           ev.ID,
		"pair":         ev.Pair,
		"asset_in":     ev.AssetIn,
		"amount_in":    ev.AmountIn,
		"amount_out":   ev.AmountOut,
		"lp_fee":       ev.LPFee,
		"protocol_fee": ev.ProtocolFee,
	}).Info("event")
}

func (e *LogEmitter) EmitLiquidity(_ context.Context, ev *models.LiquidityEvent) {
	e.log.WithFields(logrus.Fields{
		"event":    ev.Type,
		"id":       ev.ID,
		"provider": ev.Provider,
		"amount_a": ev.AmountA,
		"amount_b": ev.AmountB,
		"shares":   ev.Shares,
	}).Info("event")
}

func (e *LogEmitter) EmitAdmin(_ context.Context, ev *models.AdminEvent) {
	e.log.WithFields(logrus.Fields{
		"event":   ev.Type,
		"id":      ev.ID,
		"account": ev.Account,
		"details": ev.Details,
	}).Info("event")
}
