package pool

import "errors"

// Every failure the engine can surface is a named condition. Operations are
// atomic: when one of these is returned, no reserve, counter, or transfer
// has been applied.
var (
	ErrAlreadyInitialized      = errors.New("pool already initialized")
	ErrNotInitialized          = errors.New("pool not initialized")
	ErrInvalidAsset            = errors.New("invalid asset")
	ErrIdenticalAssets         = errors.New("identical assets")
	ErrFeeRateTooHigh          = errors.New("fee rate too high")
	ErrInsufficientLiquidity   = errors.New("insufficient liquidity")
	ErrInsufficientInputAmount = errors.New("insufficient input amount")
	ErrInsufficientOutput      = errors.New("insufficient output amount")
	ErrExcessiveSlippage       = errors.New("excessive slippage")
	ErrTransactionExpired      = errors.New("transaction expired")
	ErrInvalidRecipient        = errors.New("invalid recipient")
	ErrExceedsTransactionLimit = errors.New("exceeds transaction limit")
	ErrExceedsDailyLimit       = errors.New("exceeds daily limit")
	ErrExcessivePriceImpact    = errors.New("excessive price impact")
	ErrEmergencyModeActive     = errors.New("emergency mode active")
	ErrZeroAmount              = errors.New("zero amount")
	ErrAmountTooLarge          = errors.New("amount too large")
	ErrZeroAddress             = errors.New("zero address")
	ErrPoolPaused              = errors.New("pool paused")
	ErrUnauthorized            = errors.New("caller lacks required role")
	ErrReentrantCall           = errors.New("reentrant call")
)
