package pool

import "time"

const (
	// BpsScale is the basis-point denominator (10000 = 100%).
	BpsScale = 10000

	// MaxFeeRateBps caps the swap fee at 10%.
	MaxFeeRateBps = 1000

	// MinimumLiquidity is permanently locked on the first provision so the
	// pool can never be fully drained back to a zero share supply.
	MinimumLiquidity = 100

	// DefaultExitFeeBps is charged (in extra burned shares) on emergency
	// withdrawals.
	DefaultExitFeeBps = 50

	secondsPerDay = 86400
)

// RiskLimits configures the RiskController ceilings. Zero means unlimited.
type RiskLimits struct {
	MaxTradeAmount   uint64 `json:"max_trade_amount"`
	DailyVolumeLimit uint64 `json:"daily_volume_limit"`
	UserDailyLimit   uint64 `json:"user_daily_limit"`
}

// ProtectionSettings configures the two independently toggleable swap gates.
// The slippage gate bounds the fee-induced shortfall against the no-fee
// output; the impact gate bounds the marginal price move of a single trade.
// Their thresholds overlap in effect and should be chosen jointly.
type ProtectionSettings struct {
	SlippageGuard  bool   `json:"slippage_guard"`
	MaxSlippageBps uint64 `json:"max_slippage_bps"`
	ImpactGuard    bool   `json:"impact_guard"`
	MaxImpactBps   uint64 `json:"max_impact_bps"`
}

// Stats are append-only counters kept for observability. They never gate
// control flow and never decrease.
type Stats struct {
	TotalVolumeTraded  uint64 `json:"total_volume_traded"`
	TotalFeesCollected uint64 `json:"total_fees_collected"`
	TotalTransactions  uint64 `json:"total_transactions"`
	LargestTrade       uint64 `json:"largest_trade"`
}

// ProviderStats tracks per-account liquidity-provision history. Fields only
// ever grow; removals do not decrement them.
type ProviderStats struct {
	ProvisionCount              uint64    `json:"provision_count"`
	FirstProvisionTime          time.Time `json:"first_provision_time"`
	CumulativeLiquidityProvided uint64    `json:"cumulative_liquidity_provided"`
}

// Summary is the public view of pool state.
type Summary struct {
	AssetA            Asset              `json:"asset_a"`
	AssetB            Asset              `json:"asset_b"`
	ReserveA          uint64             `json:"reserve_a"`
	ReserveB          uint64             `json:"reserve_b"`
	ShareSupply       uint64             `json:"share_supply"`
	FeeRateBps        uint64             `json:"fee_rate_bps"`
	ProtocolFeeBps    uint64             `json:"protocol_fee_bps"`
	ProtocolRecipient Account            `json:"protocol_recipient,omitempty"`
	Initialized       bool               `json:"initialized"`
	Paused            bool               `json:"paused"`
	EmergencyMode     bool               `json:"emergency_mode"`
	LastUpdateTime    int64              `json:"last_update_time"`
	Price0Cumulative  string             `json:"price0_cumulative"`
	Price1Cumulative  string             `json:"price1_cumulative"`
	Limits            RiskLimits         `json:"limits"`
	Protection        ProtectionSettings `json:"protection"`
}

// SwapResult carries the committed amounts of a swap back to the caller.
type SwapResult struct {
	AmountOut      uint64
	LPFee          uint64
	ProtocolFee    uint64
	PriceImpactBps uint64
}
