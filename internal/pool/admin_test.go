package pool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openamm/pool-engine/internal/pool"
)

func TestAdminOperationsRequireRoles(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	// A stranger holds no roles at all.
	assert.ErrorIs(t, fx.pool.SetFeeRate(ctx, bob, 50), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.SetProtocolFee(ctx, bob, 1000, treasury), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.SetTradingLimits(ctx, bob, pool.RiskLimits{}), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.SetProtectionSettings(ctx, bob, pool.ProtectionSettings{}), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.Pause(ctx, bob), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.Unpause(ctx, bob), pool.ErrUnauthorized)
	assert.ErrorIs(t, fx.pool.GrantRole(ctx, bob, pool.RoleOperator, bob), pool.ErrUnauthorized)
	_, err := fx.pool.ToggleEmergencyMode(ctx, bob)
	assert.ErrorIs(t, err, pool.ErrUnauthorized)

	// Roles are capabilities, not a hierarchy: an operator cannot touch fees.
	require.NoError(t, fx.pool.GrantRole(ctx, admin, pool.RoleOperator, bob))
	assert.ErrorIs(t, fx.pool.SetFeeRate(ctx, bob, 50), pool.ErrUnauthorized)
	assert.NoError(t, fx.pool.Pause(ctx, bob))
	assert.NoError(t, fx.pool.Unpause(ctx, bob))
}

func TestGrantAndRevokeRole(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	require.NoError(t, fx.pool.GrantRole(ctx, admin, pool.RoleFeeManager, bob))
	assert.NoError(t, fx.pool.SetFeeRate(ctx, bob, 25))

	require.NoError(t, fx.pool.RevokeRole(ctx, admin, pool.RoleFeeManager, bob))
	assert.ErrorIs(t, fx.pool.SetFeeRate(ctx, bob, 25), pool.ErrUnauthorized)

	// Granting to nobody is rejected.
	assert.ErrorIs(t, fx.pool.GrantRole(ctx, admin, pool.RoleFeeManager, ""), pool.ErrZeroAddress)
}

func TestSetFeeRate(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	assert.ErrorIs(t, fx.pool.SetFeeRate(ctx, admin, pool.MaxFeeRateBps+1), pool.ErrFeeRateTooHigh)

	require.NoError(t, fx.pool.SetFeeRate(ctx, admin, pool.MaxFeeRateBps))
	summary, err := fx.pool.PoolSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(pool.MaxFeeRateBps), summary.FeeRateBps)
}

func TestSetProtocolFeeValidation(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	// A non-zero rate needs somewhere to send the fee.
	assert.ErrorIs(t, fx.pool.SetProtocolFee(ctx, admin, 2000, ""), pool.ErrZeroAddress)
	assert.ErrorIs(t, fx.pool.SetProtocolFee(ctx, admin, pool.BpsScale+1, treasury), pool.ErrFeeRateTooHigh)

	// Zero rate disables the split and needs no recipient.
	assert.NoError(t, fx.pool.SetProtocolFee(ctx, admin, 0, ""))

	require.NoError(t, fx.pool.SetProtocolFee(ctx, admin, 2000, treasury))
	summary, err := fx.pool.PoolSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2000), summary.ProtocolFeeBps)
	assert.Equal(t, treasury, summary.ProtocolRecipient)
}

func TestSetProtectionSettingsBounds(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	err := fx.pool.SetProtectionSettings(ctx, admin, pool.ProtectionSettings{
		SlippageGuard:  true,
		MaxSlippageBps: pool.BpsScale + 1,
	})
	assert.ErrorIs(t, err, pool.ErrFeeRateTooHigh)

	err = fx.pool.SetProtectionSettings(ctx, admin, pool.ProtectionSettings{
		ImpactGuard:  true,
		MaxImpactBps: pool.BpsScale + 1,
	})
	assert.ErrorIs(t, err, pool.ErrFeeRateTooHigh)
}

func TestToggleEmergencyMode(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	active, err := fx.pool.ToggleEmergencyMode(ctx, admin)
	require.NoError(t, err)
	assert.True(t, active)

	summary, err := fx.pool.PoolSummary(ctx)
	require.NoError(t, err)
	assert.True(t, summary.EmergencyMode)

	active, err = fx.pool.ToggleEmergencyMode(ctx, admin)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestSetTradingLimits(t *testing.T) {
	fx := newFixture(t)
	fx.init(30)
	ctx := context.Background()

	limits := pool.RiskLimits{
		MaxTradeAmount:   5000,
		DailyVolumeLimit: 100_000,
		UserDailyLimit:   10_000,
	}
	require.NoError(t, fx.pool.SetTradingLimits(ctx, admin, limits))

	summary, err := fx.pool.PoolSummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, limits, summary.Limits)
}
