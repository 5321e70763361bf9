package server

// ErrorResponse is the standardized error envelope for every failure.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Details any    `json:"details,omitempty"` // dev mode only
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	OK bool `json:"ok"`
}

// ReservesResponse is the currentReserves view.
type ReservesResponse struct {
	ReserveA       uint64 `json:"reserve_a"`
	ReserveB       uint64 `json:"reserve_b"`
	LastUpdateTime int64  `json:"last_update_time"`
}

// QuoteResponse answers the pure ratio quote.
type QuoteResponse struct {
	AmountB uint64 `json:"amount_b"`
}

// EstimateResponse answers a non-binding swap estimate.
type EstimateResponse struct {
	AssetIn   string `json:"asset_in"`
	AmountIn  uint64 `json:"amount_in"`
	AmountOut uint64 `json:"amount_out"`
}

// SwapRequest executes a swap on behalf of Account.
type SwapRequest struct {
	Account      string `json:"account"`
	AssetIn      string `json:"asset_in"`
	AmountIn     uint64 `json:"amount_in"`
	AmountOutMin uint64 `json:"amount_out_min"`
	Recipient    string `json:"recipient"`
	Deadline     int64  `json:"deadline"` // unix seconds
}

// SwapResponse reports the committed swap amounts.
type SwapResponse struct {
	AmountOut      uint64 `json:"amount_out"`
	LPFee          uint64 `json:"lp_fee"`
	ProtocolFee    uint64 `json:"protocol_fee"`
	PriceImpactBps uint64 `json:"price_impact_bps"`
}

// AddLiquidityRequest deposits both legs for shares.
type AddLiquidityRequest struct {
	Account        string `json:"account"`
	AmountADesired uint64 `json:"amount_a_desired"`
	AmountBDesired uint64 `json:"amount_b_desired"`
	AmountAMin     uint64 `json:"amount_a_min"`
	AmountBMin     uint64 `json:"amount_b_min"`
	Recipient      string `json:"recipient"`
	Deadline       int64  `json:"deadline"`
}

// AddLiquidityResponse reports the amounts actually used and shares minted.
type AddLiquidityResponse struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
	Shares  uint64 `json:"shares"`
}

// RemoveLiquidityRequest redeems shares for both legs.
type RemoveLiquidityRequest struct {
	Account    string `json:"account"`
	Shares     uint64 `json:"shares"`
	AmountAMin uint64 `json:"amount_a_min"`
	AmountBMin uint64 `json:"amount_b_min"`
	Recipient  string `json:"recipient"`
	Deadline   int64  `json:"deadline"`
}

// RemoveLiquidityResponse reports the redeemed amounts.
type RemoveLiquidityResponse struct {
	AmountA uint64 `json:"amount_a"`
	AmountB uint64 `json:"amount_b"`
}

// Admin requests. Caller is the acting account whose roles are checked.

type SetFeeRateRequest struct {
	Caller     string `json:"caller"`
	FeeRateBps uint64 `json:"fee_rate_bps"`
}

type SetProtocolFeeRequest struct {
	Caller    string `json:"caller"`
	RateBps   uint64 `json:"rate_bps"`
	Recipient string `json:"recipient"`
}

type SetLimitsRequest struct {
	Caller           string `json:"caller"`
	MaxTradeAmount   uint64 `json:"max_trade_amount"`
	DailyVolumeLimit uint64 `json:"daily_volume_limit"`
	UserDailyLimit   uint64 `json:"user_daily_limit"`
}

type SetProtectionRequest struct {
	Caller         string `json:"caller"`
	SlippageGuard  bool   `json:"slippage_guard"`
	MaxSlippageBps uint64 `json:"max_slippage_bps"`
	ImpactGuard    bool   `json:"impact_guard"`
	MaxImpactBps   uint64 `json:"max_impact_bps"`
}

type ToggleEmergencyRequest struct {
	Caller string `json:"caller"`
}

type ToggleEmergencyResponse struct {
	EmergencyMode bool `json:"emergency_mode"`
}

type PauseRequest struct {
	Caller string `json:"caller"`
}

type RoleRequest struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Account string `json:"account"`
}
