package models

import (
	"crypto/rand"
	"time"

	"github.com/mr-tron/base58"
)

// SwapEvent is emitted once a swap has fully committed. Numeric fields carry
// the exact amounts computed by the engine so external indexers can replay
// reserve state without re-deriving the math.
type SwapEvent struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Pair           string    `json:"pair"`
	Account        string    `json:"account"`
	Recipient      string    `json:"recipient"`
	AssetIn        string    `json:"asset_in"`
	AssetOut       string    `json:"asset_out"`
	AmountIn       uint64    `json:"amount_in"`
	AmountOut      uint64    `json:"amount_out"`
	LPFee          uint64    `json:"lp_fee"`
	ProtocolFee    uint64    `json:"protocol_fee"`
	PriceImpactBps uint64    `json:"price_impact_bps"`
	ReserveA       uint64    `json:"reserve_a"`
	ReserveB       uint64    `json:"reserve_b"`
}

// LiquidityEvent is emitted for both liquidity additions and removals.
type LiquidityEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Type         string    `json:"type"` // liquidity_added | liquidity_removed
	Pair         string    `json:"pair"`
	Provider     string    `json:"provider"`
	Recipient    string    `json:"recipient"`
	AmountA      uint64    `json:"amount_a"`
	AmountB      uint64    `json:"amount_b"`
	Shares       uint64    `json:"shares"`
	SharesBurned uint64    `json:"shares_burned,omitempty"`
	ReserveA     uint64    `json:"reserve_a"`
	ReserveB     uint64    `json:"reserve_b"`
}

// AdminEvent covers lifecycle and configuration changes: pool_initialized,
// fees_collected, fee_rate_updated, protocol_fee_updated, limits_updated,
// protection_updated, emergency_toggled, paused, unpaused.
type AdminEvent struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Type      string         `json:"type"`
	Account   string         `json:"account,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// NewEventID returns a random base58 identifier for an emitted event.
func NewEventID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; keep the event
		// usable rather than dropping it.
		return "evt-unidentified"
	}
	return base58.Encode(b[:])
}
