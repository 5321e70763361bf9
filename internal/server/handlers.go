package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/openamm/pool-engine/internal/pool"
	"github.com/openamm/pool-engine/internal/storage"
)

// Handlers contains all dependencies for API endpoint handlers.
type Handlers struct {
	Pool    *pool.Pool
	Cache   storage.EventCache // optional; recent-swaps endpoint and summary mirror
	DevMode bool
	Logger  *logrus.Logger
}

// err returns a standardized JSON error response. In dev mode the underlying
// error message rides along for debugging.
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// poolErr maps an engine failure to its HTTP status.
func (h *Handlers) poolErr(c echo.Context, err error) error {
	code := statusForPoolError(err)
	if code == http.StatusInternalServerError {
		h.Logger.WithError(err).Error("pool operation failed")
	}
	return h.err(c, code, err.Error(), nil)
}

func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// mirrorSummary refreshes the off-process pool snapshot after a mutation.
// Best effort: a cache outage never fails the committed operation.
func (h *Handlers) mirrorSummary(ctx context.Context) {
	if h.Cache == nil {
		return
	}
	summary, err := h.Pool.PoolSummary(ctx)
	if err != nil {
		return
	}
	if err := h.Cache.SetPoolSummary(ctx, summary); err != nil {
		h.Logger.WithError(err).Warn("summary mirror failed")
	}
}

// Health returns a simple health check.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Summary returns the pool's public view.
func (h *Handlers) Summary(c echo.Context) error {
	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	summary, err := h.Pool.PoolSummary(ctx)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Reserves returns both reserves and the last ledger update time.
func (h *Handlers) Reserves(c echo.Context) error {
	reserveA, reserveB, lastUpdate := h.Pool.CurrentReserves()
	return c.JSON(http.StatusOK, ReservesResponse{
		ReserveA:       reserveA,
		ReserveB:       reserveB,
		LastUpdateTime: lastUpdate,
	})
}

// Stats returns the append-only counters.
func (h *Handlers) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Pool.Statistics())
}

// Provider returns the provision history of one account.
func (h *Handlers) Provider(c echo.Context) error {
	account := strings.TrimSpace(c.Param("account"))
	if account == "" {
		return h.err(c, http.StatusBadRequest, "invalid account", nil)
	}
	ps := h.Pool.Provider(pool.Account(account))
	if ps == nil {
		return h.err(c, http.StatusNotFound, "provider not found", nil)
	}
	return c.JSON(http.StatusOK, ps)
}

// Quote answers the pure ratio helper: amount_a * reserve_b / reserve_a.
func (h *Handlers) Quote(c echo.Context) error {
	amountA, err1 := parseUintParam(c, "amount_a")
	reserveA, err2 := parseUintParam(c, "reserve_a")
	reserveB, err3 := parseUintParam(c, "reserve_b")
	if err1 != nil || err2 != nil || err3 != nil {
		return h.err(c, http.StatusBadRequest, "invalid query parameters", nil)
	}
	out, err := pool.Quote(amountA, reserveA, reserveB)
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, QuoteResponse{AmountB: out})
}

// Estimate answers a non-binding swap estimate against live reserves.
func (h *Handlers) Estimate(c echo.Context) error {
	amountIn, err := parseUintParam(c, "amount_in")
	if err != nil {
		return h.err(c, http.StatusBadRequest, "invalid amount_in", nil)
	}
	assetIn := strings.TrimSpace(c.QueryParam("asset_in"))
	if assetIn == "" {
		return h.err(c, http.StatusBadRequest, "asset_in is required", nil)
	}

	out, err := h.Pool.EstimateOutput(amountIn, pool.Asset(assetIn))
	if err != nil {
		return h.poolErr(c, err)
	}
	return c.JSON(http.StatusOK, EstimateResponse{
		AssetIn:   assetIn,
		AmountIn:  amountIn,
		AmountOut: out,
	})
}

// RecentSwaps returns the most recent swap events from the cache mirror.
func (h *Handlers) RecentSwaps(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusServiceUnavailable, "swap cache not configured", nil)
	}
	limit := int64(100)
	if s := c.QueryParam("limit"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 || n > 200 {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
		}
		limit = n
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentSwaps(ctx, limit)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get swaps", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// Swap executes a swap.
func (h *Handlers) Swap(c echo.Context) error {
	var req SwapRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Account == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Pool.Swap(ctx,
		pool.Account(req.Account),
		req.AmountIn,
		req.AmountOutMin,
		pool.Asset(req.AssetIn),
		pool.Account(req.Recipient),
		req.Deadline,
	)
	if err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.JSON(http.StatusOK, SwapResponse{
		AmountOut:      res.AmountOut,
		LPFee:          res.LPFee,
		ProtocolFee:    res.ProtocolFee,
		PriceImpactBps: res.PriceImpactBps,
	})
}

// AddLiquidity deposits both legs for shares.
func (h *Handlers) AddLiquidity(c echo.Context) error {
	var req AddLiquidityRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Account == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	amountA, amountB, shares, err := h.Pool.AddLiquidity(ctx,
		pool.Account(req.Account),
		req.AmountADesired,
		req.AmountBDesired,
		req.AmountAMin,
		req.AmountBMin,
		pool.Account(req.Recipient),
		req.Deadline,
	)
	if err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.JSON(http.StatusOK, AddLiquidityResponse{
		AmountA: amountA,
		AmountB: amountB,
		Shares:  shares,
	})
}

// RemoveLiquidity redeems shares for both legs.
func (h *Handlers) RemoveLiquidity(c echo.Context) error {
	var req RemoveLiquidityRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if req.Account == "" {
		return h.err(c, http.StatusBadRequest, "account is required", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	amountA, amountB, err := h.Pool.RemoveLiquidity(ctx,
		pool.Account(req.Account),
		req.Shares,
		req.AmountAMin,
		req.AmountBMin,
		pool.Account(req.Recipient),
		req.Deadline,
	)
	if err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.JSON(http.StatusOK, RemoveLiquidityResponse{AmountA: amountA, AmountB: amountB})
}

// Admin handlers. The admin route group is additionally key-authenticated.

func (h *Handlers) SetFeeRate(c echo.Context) error {
	var req SetFeeRateRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pool.SetFeeRate(ctx, pool.Account(req.Caller), req.FeeRateBps); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) SetProtocolFee(c echo.Context) error {
	var req SetProtocolFeeRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pool.SetProtocolFee(ctx, pool.Account(req.Caller), req.RateBps, pool.Account(req.Recipient)); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) SetLimits(c echo.Context) error {
	var req SetLimitsRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	limits := pool.RiskLimits{
		MaxTradeAmount:   req.MaxTradeAmount,
		DailyVolumeLimit: req.DailyVolumeLimit,
		UserDailyLimit:   req.UserDailyLimit,
	}
	if err := h.Pool.SetTradingLimits(ctx, pool.Account(req.Caller), limits); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) SetProtection(c echo.Context) error {
	var req SetProtectionRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	settings := pool.ProtectionSettings{
		SlippageGuard:  req.SlippageGuard,
		MaxSlippageBps: req.MaxSlippageBps,
		ImpactGuard:    req.ImpactGuard,
		MaxImpactBps:   req.MaxImpactBps,
	}
	if err := h.Pool.SetProtectionSettings(ctx, pool.Account(req.Caller), settings); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) ToggleEmergency(c echo.Context) error {
	var req ToggleEmergencyRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	active, err := h.Pool.ToggleEmergencyMode(ctx, pool.Account(req.Caller))
	if err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.JSON(http.StatusOK, ToggleEmergencyResponse{EmergencyMode: active})
}

func (h *Handlers) Pause(c echo.Context) error {
	var req PauseRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pool.Pause(ctx, pool.Account(req.Caller)); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) Unpause(c echo.Context) error {
	var req PauseRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Pool.Unpause(ctx, pool.Account(req.Caller)); err != nil {
		return h.poolErr(c, err)
	}
	h.mirrorSummary(ctx)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) GrantRole(c echo.Context) error {
	return h.roleChange(c, h.Pool.GrantRole)
}

func (h *Handlers) RevokeRole(c echo.Context) error {
	return h.roleChange(c, h.Pool.RevokeRole)
}

func (h *Handlers) roleChange(
	c echo.Context,
	op func(context.Context, pool.Account, pool.Role, pool.Account) error,
) error {
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, pool.Account(req.Caller), pool.Role(req.Role), pool.Account(req.Account)); err != nil {
		return h.poolErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseUintParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(c.QueryParam(name)), 10, 64)
}
