package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openamm/pool-engine/internal/pool"
)

// JSONErrorHandler returns a custom HTTP error handler so every failure,
// including 404s, carries the same JSON envelope.
func JSONErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, ErrorResponse{
				Error: http.StatusText(he.Code),
				Code:  he.Code,
			})
			return
		}
		_ = c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  http.StatusInternalServerError,
		})
	}
}

// statusForPoolError maps the engine's typed failures onto HTTP status
// codes. Unknown errors fall through to 500.
func statusForPoolError(err error) int {
	switch {
	case errors.Is(err, pool.ErrTransactionExpired),
		errors.Is(err, pool.ErrInvalidRecipient),
		errors.Is(err, pool.ErrInvalidAsset),
		errors.Is(err, pool.ErrIdenticalAssets),
		errors.Is(err, pool.ErrZeroAmount),
		errors.Is(err, pool.ErrZeroAddress),
		errors.Is(err, pool.ErrFeeRateTooHigh),
		errors.Is(err, pool.ErrAmountTooLarge),
		errors.Is(err, pool.ErrInsufficientInputAmount):
		return http.StatusBadRequest
	case errors.Is(err, pool.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, pool.ErrAlreadyInitialized),
		errors.Is(err, pool.ErrNotInitialized),
		errors.Is(err, pool.ErrReentrantCall):
		return http.StatusConflict
	case errors.Is(err, pool.ErrInsufficientLiquidity),
		errors.Is(err, pool.ErrInsufficientOutput),
		errors.Is(err, pool.ErrExcessiveSlippage),
		errors.Is(err, pool.ErrExcessivePriceImpact):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pool.ErrExceedsTransactionLimit),
		errors.Is(err, pool.ErrExceedsDailyLimit):
		return http.StatusTooManyRequests
	case errors.Is(err, pool.ErrEmergencyModeActive),
		errors.Is(err, pool.ErrPoolPaused):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
