package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers.
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	e.HTTPErrorHandler = JSONErrorHandler()

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)
	v1.GET("/pool", h.Summary)
	v1.GET("/pool/reserves", h.Reserves)
	v1.GET("/pool/stats", h.Stats)
	v1.GET("/pool/providers/:account", h.Provider)
	v1.GET("/quote", h.Quote)
	v1.GET("/estimate", h.Estimate)
	v1.GET("/swaps/recent", h.RecentSwaps)

	// Trade routes get a modest rate limit so a runaway client cannot chew
	// through daily volume limits by brute force.
	trade := v1.Group("")
	trade.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(10),
		Burst:     20,
		ExpiresIn: 2 * time.Minute,
	})))
	trade.POST("/swap", h.Swap)
	trade.POST("/liquidity/add", h.AddLiquidity)
	trade.POST("/liquidity/remove", h.RemoveLiquidity)

	// Administrative routes sit behind the API key in addition to the
	// engine's own role checks.
	admin := v1.Group("/admin")
	if cfg.APIKey != "" {
		admin.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}
	admin.POST("/fee-rate", h.SetFeeRate)
	admin.POST("/protocol-fee", h.SetProtocolFee)
	admin.POST("/limits", h.SetLimits)
	admin.POST("/protection", h.SetProtection)
	admin.POST("/emergency-toggle", h.ToggleEmergency)
	admin.POST("/pause", h.Pause)
	admin.POST("/unpause", h.Unpause)
	admin.POST("/roles/grant", h.GrantRole)
	admin.POST("/roles/revoke", h.RevokeRole)

	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
